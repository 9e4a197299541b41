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

// TransferController : Inter-account transfer controller struct
type TransferController struct {
	svc *service.CoophubService
}

func NewTransferController(svc *service.CoophubService) *TransferController {
	return &TransferController{svc: svc}
}

type TransferRequestBody struct {
	FromAccountID int64           `json:"from_account_id" validate:"required"`
	ToAccountID   int64           `json:"to_account_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	TransferDate  string          `json:"transfer_date" validate:"omitempty,datetime=2006-01-02"`
	Description   string          `json:"description"`
}

// Transfer : Move funds between two bank accounts
func (controller *TransferController) Transfer(c echo.Context) error {
	userID := c.Get("UserID").(int64)
	reqBody := TransferRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		c.Logger().Errorf("Failed to load transfer request body: user_id:%v error: %v", userID, err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	var transferDate time.Time
	if reqBody.TransferDate != "" {
		var err error
		transferDate, err = time.Parse("2006-01-02", reqBody.TransferDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
		}
	}

	transfer, err := controller.svc.Transfer(c.Request().Context(), service.TransferParams{
		FromAccountID: reqBody.FromAccountID,
		ToAccountID:   reqBody.ToAccountID,
		Amount:        reqBody.Amount,
		TransferDate:  transferDate,
		Description:   reqBody.Description,
		RecordedBy:    userID,
	})
	if err != nil {
		c.Logger().Errorf("Transfer failed user_id:%v from:%v to:%v error: %v", userID, reqBody.FromAccountID, reqBody.ToAccountID, err)
		sentry.CaptureException(err)
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}

	return c.JSON(http.StatusOK, transfer)
}

// List : List recent transfers
func (controller *TransferController) List(c echo.Context) error {
	transfers, err := controller.svc.Transfers(c.Request().Context())
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, transfers)
}
