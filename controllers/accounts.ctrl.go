package controllers

import (
	"net/http"
	"strconv"

	"github.com/coopfin/coophub/lib/responses"
	"github.com/coopfin/coophub/lib/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// AccountsController : Bank accounts controller struct
type AccountsController struct {
	svc *service.CoophubService
}

func NewAccountsController(svc *service.CoophubService) *AccountsController {
	return &AccountsController{svc: svc}
}

type CreateAccountRequestBody struct {
	Name           string          `json:"name" validate:"required"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// Create : Create a bank account with an optional opening balance
func (controller *AccountsController) Create(c echo.Context) error {
	userID := c.Get("UserID").(int64)
	reqBody := CreateAccountRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	account, err := controller.svc.CreateBankAccount(c.Request().Context(), service.BankAccountParams{
		Name:           reqBody.Name,
		OpeningBalance: reqBody.OpeningBalance,
		RecordedBy:     userID,
	})
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, account)
}

// List : List bank accounts
func (controller *AccountsController) List(c echo.Context) error {
	accounts, err := controller.svc.BankAccounts(c.Request().Context())
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, accounts)
}

// Get : Fetch one bank account
func (controller *AccountsController) Get(c echo.Context) error {
	accountId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	account, err := controller.svc.FindBankAccount(c.Request().Context(), accountId)
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, account)
}

// Ledger : List the account's recent ledger entries
func (controller *AccountsController) Ledger(c echo.Context) error {
	accountId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	entries, err := controller.svc.LedgerEntriesForAccount(c.Request().Context(), accountId)
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, entries)
}

// Reconcile : Compare the cached balance against the ledger sum
func (controller *AccountsController) Reconcile(c echo.Context) error {
	accountId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	result, err := controller.svc.ReconcileBalance(c.Request().Context(), accountId)
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	if !result.Matches {
		c.Logger().Errorf("Balance mismatch bank_account_id:%v cached:%s computed:%s",
			result.BankAccountID, result.Cached, result.Computed)
	}
	return c.JSON(http.StatusOK, result)
}

type SetAccountActiveRequestBody struct {
	Active *bool `json:"active" validate:"required"`
}

// SetActive : Activate or deactivate a bank account
func (controller *AccountsController) SetActive(c echo.Context) error {
	userID := c.Get("UserID").(int64)
	accountId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	reqBody := SetAccountActiveRequestBody{}
	if err := c.Bind(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&reqBody); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	account, err := controller.svc.SetBankAccountActive(c.Request().Context(), accountId, *reqBody.Active, userID)
	if err != nil {
		resp := responses.ForServiceError(err)
		return c.JSON(resp.HttpStatusCode, resp)
	}
	return c.JSON(http.StatusOK, account)
}
