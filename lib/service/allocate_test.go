package service

import (
	"context"
	"testing"
	"time"

	"github.com/coopfin/coophub/common"
	"github.com/coopfin/coophub/db/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func obligation(id int64, due, paid string, dueDate time.Time) *models.Obligation {
	o := &models.Obligation{
		ID:         id,
		MemberID:   1,
		Kind:       common.ObligationKindQuota,
		AmountDue:  dec(due),
		AmountPaid: dec(paid),
		DueDate:    dueDate,
		Status:     common.ObligationStatusUnpaid,
	}
	if o.AmountPaid.GreaterThanOrEqual(o.AmountDue) {
		o.Status = common.ObligationStatusPaid
	} else if o.AmountPaid.Sign() > 0 {
		o.Status = common.ObligationStatusPartial
	}
	return o
}

var (
	january  = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	february = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
)

func TestPlanAllocationPartialPayment(t *testing.T) {
	obligations := []*models.Obligation{
		obligation(1, "100.00", "0", january),
	}

	steps, remaining := planAllocation(dec("60.00"), obligations)

	require.Len(t, steps, 1)
	assert.True(t, steps[0].payNow.Equal(dec("60.00")))
	assert.True(t, remaining.IsZero())
}

func TestPlanAllocationSpansObligationsOldestFirst(t *testing.T) {
	obligations := []*models.Obligation{
		obligation(1, "50.00", "0", january),
		obligation(2, "50.00", "0", february),
	}

	steps, remaining := planAllocation(dec("70.00"), obligations)

	require.Len(t, steps, 2)
	assert.Equal(t, int64(1), steps[0].obligation.ID)
	assert.True(t, steps[0].payNow.Equal(dec("50.00")))
	assert.Equal(t, int64(2), steps[1].obligation.ID)
	assert.True(t, steps[1].payNow.Equal(dec("20.00")))
	assert.True(t, remaining.IsZero())
}

func TestPlanAllocationCoversOnlyEarlierObligation(t *testing.T) {
	obligations := []*models.Obligation{
		obligation(1, "50.00", "0", january),
		obligation(2, "50.00", "0", february),
	}

	steps, remaining := planAllocation(dec("50.00"), obligations)

	require.Len(t, steps, 1)
	assert.Equal(t, int64(1), steps[0].obligation.ID)
	assert.True(t, remaining.IsZero())
}

func TestPlanAllocationConservation(t *testing.T) {
	obligations := []*models.Obligation{
		obligation(1, "33.33", "0", january),
		obligation(2, "20.00", "5.50", february),
		obligation(3, "12.01", "0", february.AddDate(0, 1, 0)),
	}
	amount := dec("45.00")

	steps, remaining := planAllocation(amount, obligations)

	applied := decimal.Zero
	for _, step := range steps {
		applied = applied.Add(step.payNow)
	}
	assert.True(t, applied.Add(remaining).Equal(amount),
		"applied %s + remaining %s != amount %s", applied, remaining, amount)
}

func TestPlanAllocationSkipsSettledObligation(t *testing.T) {
	obligations := []*models.Obligation{
		obligation(1, "50.00", "50.00", january),
		obligation(2, "50.00", "0", february),
	}

	steps, remaining := planAllocation(dec("30.00"), obligations)

	require.Len(t, steps, 1)
	assert.Equal(t, int64(2), steps[0].obligation.ID)
	assert.True(t, remaining.IsZero())
}

func TestPlanAllocationSkipsCancelledObligation(t *testing.T) {
	cancelled := obligation(1, "50.00", "0", january)
	cancelled.Status = common.ObligationStatusCancelled
	obligations := []*models.Obligation{
		cancelled,
		obligation(2, "50.00", "0", february),
	}

	steps, _ := planAllocation(dec("30.00"), obligations)

	require.Len(t, steps, 1)
	assert.Equal(t, int64(2), steps[0].obligation.ID)
}

func TestPlanAllocationExcessIsReturned(t *testing.T) {
	obligations := []*models.Obligation{
		obligation(1, "50.00", "40.00", january),
	}

	steps, remaining := planAllocation(dec("100.00"), obligations)

	require.Len(t, steps, 1)
	assert.True(t, steps[0].payNow.Equal(dec("10.00")))
	assert.True(t, remaining.Equal(dec("90.00")))
}

func TestPlanAllocationNeverOverpays(t *testing.T) {
	obligations := []*models.Obligation{
		obligation(1, "50.00", "25.50", january),
		obligation(2, "10.00", "9.99", february),
	}

	steps, _ := planAllocation(dec("1000.00"), obligations)

	for _, step := range steps {
		paid := step.obligation.AmountPaid.Add(step.payNow)
		assert.True(t, paid.LessThanOrEqual(step.obligation.AmountDue),
			"obligation %d would be overpaid: %s > %s", step.obligation.ID, paid, step.obligation.AmountDue)
	}
}

func TestApplyPaymentPartialStatus(t *testing.T) {
	o := obligation(1, "100.00", "0", january)

	applyPayment(o, dec("60.00"), january)

	assert.True(t, o.AmountPaid.Equal(dec("60.00")))
	assert.Equal(t, common.ObligationStatusPartial, o.Status)
	assert.True(t, o.PaidAt.IsZero())
}

func TestApplyPaymentPaidStatusSetsPaidAt(t *testing.T) {
	o := obligation(1, "100.00", "40.00", january)

	applyPayment(o, dec("60.00"), february)

	assert.True(t, o.AmountPaid.Equal(o.AmountDue))
	assert.Equal(t, common.ObligationStatusPaid, o.Status)
	assert.Equal(t, february, o.PaidAt.Time)
}

func TestAllocateRejectsNonPositiveAmount(t *testing.T) {
	svc := &CoophubService{}

	_, err := svc.Allocate(context.Background(), AllocateParams{
		Amount:        decimal.Zero,
		BankAccountID: 1,
		ObligationIDs: []int64{1},
	})
	assert.ErrorAs(t, err, &ValidationError{})

	_, err = svc.Allocate(context.Background(), AllocateParams{
		Amount:        dec("-10.00"),
		BankAccountID: 1,
		ObligationIDs: []int64{1},
	})
	assert.ErrorAs(t, err, &ValidationError{})
}

func TestAllocateRejectsEmptyObligationSelection(t *testing.T) {
	svc := &CoophubService{}

	_, err := svc.Allocate(context.Background(), AllocateParams{
		Amount:        dec("10.00"),
		BankAccountID: 1,
		ObligationIDs: []int64{},
	})
	assert.ErrorAs(t, err, &ValidationError{})
}

func TestAllocateRejectsSubCentAmount(t *testing.T) {
	svc := &CoophubService{}

	_, err := svc.Allocate(context.Background(), AllocateParams{
		Amount:        dec("10.005"),
		BankAccountID: 1,
		ObligationIDs: []int64{1},
	})
	assert.ErrorAs(t, err, &ValidationError{})
}
