package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/coopfin/coophub/lib/responses"
	"github.com/coopfin/coophub/lib/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ObligationsController : Obligations controller struct
type ObligationsController struct {
	svc *service.CoophubService
}

func NewObligationsController(svc *service.CoophubService) *ObligationsController {
	return &ObligationsController{svc: svc}
}

type CreateObligationRequestBody struct {
	MemberID  int64           `json:"member_id" validate:"required"`
	Kind      string          `json:"kind" validate:"required,oneof=quota fee"`
	Period    string          `json:"period"`
	AmountDue decimal.Decimal `json:"amount_due" validate:"required"`
	DueDate   string          `json:"due_date" validate:"required,datetime=2006-01-02"`
}

// Create : Manually record an obligation for a member
func (controller *ObligationsController) Create(c echo.Context) error {
	userID := c.Get("UserID").(int64)
	reqBody := CreateObligationRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	dueDate, err := time.Parse("2006-01-02", reqBody.DueDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	obligation, err := controller.svc.CreateObligation(c.Request().Context(), service.ObligationParams{
		MemberID:  reqBody.MemberID,
		Kind:      reqBody.Kind,
		Period:    reqBody.Period,
		AmountDue: reqBody.AmountDue,
		DueDate:   dueDate,
		CreatedBy: userID,
	})
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, obligation)
}

type GenerateQuotasRequestBody struct {
	Period  string          `json:"period" validate:"required"`
	Amount  decimal.Decimal `json:"amount" validate:"required"`
	DueDate string          `json:"due_date" validate:"required,datetime=2006-01-02"`
}

type GenerateQuotasResponseBody struct {
	Created int `json:"created"`
}

// Generate : Create the month's quota obligation for every active member
func (controller *ObligationsController) Generate(c echo.Context) error {
	userID := c.Get("UserID").(int64)
	reqBody := GenerateQuotasRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	dueDate, err := time.Parse("2006-01-02", reqBody.DueDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	created, err := controller.svc.GenerateMonthlyQuotas(c.Request().Context(), service.GenerateQuotasParams{
		Period:    reqBody.Period,
		Amount:    reqBody.Amount,
		DueDate:   dueDate,
		CreatedBy: userID,
	})
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, &GenerateQuotasResponseBody{Created: created})
}

// ListForMember : List a member's obligations, optionally filtered by status
func (controller *ObligationsController) ListForMember(c echo.Context) error {
	memberId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	obligations, err := controller.svc.ObligationsForMember(c.Request().Context(), memberId, c.QueryParam("status"))
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, obligations)
}

// Cancel : Cancel an unpaid or partially paid obligation
func (controller *ObligationsController) Cancel(c echo.Context) error {
	userID := c.Get("UserID").(int64)
	obligationId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	obligation, err := controller.svc.CancelObligation(c.Request().Context(), obligationId, userID)
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, obligation)
}

// Payments : List the payment slices applied to an obligation
func (controller *ObligationsController) Payments(c echo.Context) error {
	obligationId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	payments, err := controller.svc.ListPaymentsForObligation(c.Request().Context(), obligationId)
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, payments)
}
