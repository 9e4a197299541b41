package controllers

import (
	"net/http"

	"github.com/coopfin/coophub/lib/service"
	"github.com/labstack/echo/v4"
)

// GetInfoController : GetInfoController struct
type GetInfoController struct {
	svc *service.CoophubService
}

func NewGetInfoController(svc *service.CoophubService) *GetInfoController {
	return &GetInfoController{svc: svc}
}

type GetInfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (controller *GetInfoController) GetInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, &GetInfoResponse{
		Name:    "coophub",
		Version: "0.2.0",
	})
}

func (controller *GetInfoController) Health(c echo.Context) error {
	if err := controller.svc.DB.PingContext(c.Request().Context()); err != nil {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}
