package responses

import (
	"errors"
	"testing"

	"github.com/coopfin/coophub/lib/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestForServiceErrorValidation(t *testing.T) {
	resp := ForServiceError(service.ValidationError{Reason: "amount must be greater than zero"})

	assert.Equal(t, 400, resp.HttpStatusCode)
	assert.Equal(t, "amount must be greater than zero", resp.Message)
}

func TestForServiceErrorNotFound(t *testing.T) {
	resp := ForServiceError(service.NotFoundError{Entity: "bank account", ID: 9})

	assert.Equal(t, 404, resp.HttpStatusCode)
	assert.Equal(t, "bank account 9 not found", resp.Message)
}

func TestForServiceErrorInsufficientFunds(t *testing.T) {
	resp := ForServiceError(service.InsufficientFundsError{
		BankAccountID: 1,
		Balance:       decimal.NewFromInt(150),
		Requested:     decimal.NewFromInt(200),
	})

	assert.Equal(t, 400, resp.HttpStatusCode)
	assert.Equal(t, NotEnoughBalanceError.Code, resp.Code)
}

func TestForServiceErrorPolicy(t *testing.T) {
	resp := ForServiceError(service.PolicyError{Reason: "ledger entries cannot be deleted"})

	assert.Equal(t, 409, resp.HttpStatusCode)
	assert.Equal(t, PolicyViolationError.Code, resp.Code)
}

func TestForServiceErrorConflict(t *testing.T) {
	resp := ForServiceError(service.ConflictError{Err: errors.New("deadlock detected")})

	assert.Equal(t, ConflictError, resp)
}

func TestForServiceErrorUnknown(t *testing.T) {
	resp := ForServiceError(errors.New("boom"))

	assert.Equal(t, GeneralServerError, resp)
}
