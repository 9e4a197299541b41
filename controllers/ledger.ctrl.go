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

// LedgerController : Ledger entries controller struct
type LedgerController struct {
	svc *service.CoophubService
}

func NewLedgerController(svc *service.CoophubService) *LedgerController {
	return &LedgerController{svc: svc}
}

type UpdateDescriptionRequestBody struct {
	Description string `json:"description" validate:"required"`
}

// UpdateDescription : Change a ledger entry's description. All financial
// fields are immutable; attempts to delete entries are rejected outright.
func (controller *LedgerController) UpdateDescription(c echo.Context) error {
	userID := c.Get("UserID").(int64)
	entryId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	reqBody := UpdateDescriptionRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	entry, err := controller.svc.UpdateLedgerEntryDescription(c.Request().Context(), entryId, reqBody.Description, userID)
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, entry)
}

// Delete : Always rejected, the ledger is append-only
func (controller *LedgerController) Delete(c echo.Context) error {
	entryId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	err = controller.svc.DeleteLedgerEntry(c.Request().Context(), entryId)
	resp := responses.ForServiceError(err)
	return c.JSON(resp.HttpStatusCode, resp)
}

type AdjustmentRequestBody struct {
	BankAccountID int64           `json:"bank_account_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Date          string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Description   string          `json:"description" validate:"required"`
}

// Adjust : Record a manual signed correction entry
func (controller *LedgerController) Adjust(c echo.Context) error {
	userID := c.Get("UserID").(int64)
	reqBody := AdjustmentRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	var date time.Time
	if reqBody.Date != "" {
		var err error
		date, err = time.Parse("2006-01-02", reqBody.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
		}
	}

	entry, err := controller.svc.AppendAdjustment(c.Request().Context(), service.AdjustmentParams{
		BankAccountID: reqBody.BankAccountID,
		Amount:        reqBody.Amount,
		Date:          date,
		Description:   reqBody.Description,
		RecordedBy:    userID,
	})
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, entry)
}
