package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDeleteLedgerEntryAlwaysFails(t *testing.T) {
	svc := &CoophubService{}

	err := svc.DeleteLedgerEntry(context.Background(), 42)

	assert.ErrorAs(t, err, &PolicyError{})
}

func TestAppendAdjustmentRejectsZeroAmount(t *testing.T) {
	svc := &CoophubService{}

	_, err := svc.AppendAdjustment(context.Background(), AdjustmentParams{
		BankAccountID: 1,
		Amount:        decimal.Zero,
	})
	assert.ErrorAs(t, err, &ValidationError{})
}

func TestAppendAdjustmentAcceptsSignedAmounts(t *testing.T) {
	// both directions pass input validation; only zero and sub-cent are
	// rejected before storage
	assert.NoError(t, validatePrecision(dec("-12.50")))
	assert.NoError(t, validatePrecision(dec("12.50")))
	assert.Error(t, validatePrecision(dec("12.505")))
}

func TestValidateAmount(t *testing.T) {
	assert.Error(t, validateAmount(decimal.Zero))
	assert.Error(t, validateAmount(dec("-1.00")))
	assert.Error(t, validateAmount(dec("0.001")))
	assert.NoError(t, validateAmount(dec("0.01")))
	assert.NoError(t, validateAmount(dec("250")))
}
