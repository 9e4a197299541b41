package controllers

import (
	"net/http"

	"github.com/coopfin/coophub/lib/responses"
	"github.com/coopfin/coophub/lib/service"
	"github.com/labstack/echo/v4"
)

// CreateUserController : Create staff user controller struct
type CreateUserController struct {
	svc *service.CoophubService
}

func NewCreateUserController(svc *service.CoophubService) *CreateUserController {
	return &CreateUserController{svc: svc}
}

type CreateUserRequestBody struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateUserResponseBody struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// CreateUser : Create a staff user. Gated by the admin token when one is
// configured.
func (controller *CreateUserController) CreateUser(c echo.Context) error {
	if !controller.svc.Config.AllowUserCreation {
		return c.JSON(http.StatusUnauthorized, responses.BadAuthError)
	}
	if controller.svc.Config.AdminToken != "" {
		if c.QueryParam("admin_token") != controller.svc.Config.AdminToken {
			return c.JSON(http.StatusUnauthorized, responses.BadAuthError)
		}
	}

	reqBody := CreateUserRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	user, err := controller.svc.CreateUser(c.Request().Context(), reqBody.Login, reqBody.Password)
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}

	return c.JSON(http.StatusOK, &CreateUserResponseBody{ID: user.ID, Login: user.Login})
}
