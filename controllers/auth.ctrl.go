package controllers

import (
	"net/http"

	"github.com/coopfin/coophub/lib/responses"
	"github.com/coopfin/coophub/lib/service"
	"github.com/labstack/echo/v4"
)

// AuthController : AuthController struct
type AuthController struct {
	svc *service.CoophubService
}

func NewAuthController(svc *service.CoophubService) *AuthController {
	return &AuthController{svc: svc}
}

type AuthRequestBody struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponseBody struct {
	AccessToken string `json:"access_token"`
}

// Auth : Issue a staff access token
func (controller *AuthController) Auth(c echo.Context) error {
	reqBody := AuthRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		c.Logger().Errorf("Failed to load auth request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	accessToken, err := controller.svc.GenerateToken(c.Request().Context(), reqBody.Login, reqBody.Password)
	if err != nil {
		c.Logger().Errorf("Authentication failed login:%s error: %v", reqBody.Login, err)
		return c.JSON(http.StatusUnauthorized, responses.BadAuthError)
	}

	return c.JSON(http.StatusOK, &AuthResponseBody{AccessToken: accessToken})
}
