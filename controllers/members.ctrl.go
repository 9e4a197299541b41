package controllers

import (
	"net/http"
	"strconv"

	"github.com/coopfin/coophub/lib/responses"
	"github.com/coopfin/coophub/lib/service"
	"github.com/labstack/echo/v4"
)

// MembersController : Members controller struct
type MembersController struct {
	svc *service.CoophubService
}

func NewMembersController(svc *service.CoophubService) *MembersController {
	return &MembersController{svc: svc}
}

type MemberRequestBody struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Document  string `json:"document"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
}

// Create : Register a member
func (controller *MembersController) Create(c echo.Context) error {
	userID := c.Get("UserID").(int64)
	reqBody := MemberRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	member, err := controller.svc.CreateMember(c.Request().Context(), service.MemberParams{
		FirstName: reqBody.FirstName,
		LastName:  reqBody.LastName,
		Document:  reqBody.Document,
		Email:     reqBody.Email,
		Phone:     reqBody.Phone,
		CreatedBy: userID,
	})
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, member)
}

// List : List members
func (controller *MembersController) List(c echo.Context) error {
	members, err := controller.svc.Members(c.Request().Context())
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, members)
}

// Get : Fetch one member
func (controller *MembersController) Get(c echo.Context) error {
	memberId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	member, err := controller.svc.FindMember(c.Request().Context(), memberId)
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, member)
}

// Update : Update a member's contact details
func (controller *MembersController) Update(c echo.Context) error {
	userID := c.Get("UserID").(int64)
	memberId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	reqBody := MemberRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	member, err := controller.svc.UpdateMember(c.Request().Context(), memberId, service.MemberParams{
		FirstName: reqBody.FirstName,
		LastName:  reqBody.LastName,
		Document:  reqBody.Document,
		Email:     reqBody.Email,
		Phone:     reqBody.Phone,
		CreatedBy: userID,
	})
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, member)
}

// Deactivate : Soft-delete a member, keeping their financial history
func (controller *MembersController) Deactivate(c echo.Context) error {
	userID := c.Get("UserID").(int64)
	memberId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	member, err := controller.svc.DeactivateMember(c.Request().Context(), memberId, userID)
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, member)
}
