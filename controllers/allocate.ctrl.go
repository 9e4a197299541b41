package controllers

import (
	"net/http"
	"time"

	"github.com/coopfin/coophub/lib/responses"
	"github.com/coopfin/coophub/lib/service"
	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// AllocateController : Payment allocation controller struct
type AllocateController struct {
	svc *service.CoophubService
}

func NewAllocateController(svc *service.CoophubService) *AllocateController {
	return &AllocateController{svc: svc}
}

type AllocateRequestBody struct {
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	BankAccountID int64           `json:"bank_account_id" validate:"required"`
	MemberID      int64           `json:"member_id" validate:"required"`
	ObligationIDs []int64         `json:"obligation_ids" validate:"required,min=1"`
	PaymentDate   string          `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	Method        string          `json:"method" validate:"omitempty,oneof=cash bank_deposit bank_transfer"`
	Notes         string          `json:"notes"`
}

// Allocate : Distribute one incoming payment across a member's obligations
func (controller *AllocateController) Allocate(c echo.Context) error {
	userID := c.Get("UserID").(int64)
	reqBody := AllocateRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		c.Logger().Errorf("Failed to load allocate request body: user_id:%v error: %v", userID, err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&reqBody); err != nil {
		c.Logger().Errorf("Invalid allocate request body user_id:%v error: %v", userID, err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	var paymentDate time.Time
	if reqBody.PaymentDate != "" {
		var err error
		paymentDate, err = time.Parse("2006-01-02", reqBody.PaymentDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
		}
	}

	result, err := controller.svc.Allocate(c.Request().Context(), service.AllocateParams{
		Amount:        reqBody.Amount,
		BankAccountID: reqBody.BankAccountID,
		MemberID:      reqBody.MemberID,
		ObligationIDs: reqBody.ObligationIDs,
		PaymentDate:   paymentDate,
		Method:        reqBody.Method,
		Notes:         reqBody.Notes,
		RecordedBy:    userID,
	})
	if err != nil {
		c.Logger().Errorf("Allocation failed user_id:%v member_id:%v error: %v", userID, reqBody.MemberID, err)
		sentry.CaptureException(err)
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}

	return c.JSON(http.StatusOK, result)
}
