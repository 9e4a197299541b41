package models

import (
	"testing"

	"github.com/coopfin/coophub/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOutstanding(t *testing.T) {
	o := &Obligation{
		AmountDue:  decimal.RequireFromString("100.00"),
		AmountPaid: decimal.RequireFromString("33.50"),
	}
	assert.True(t, o.Outstanding().Equal(decimal.RequireFromString("66.50")))
}

func TestOutstandingClampsToZero(t *testing.T) {
	o := &Obligation{
		AmountDue:  decimal.RequireFromString("100.00"),
		AmountPaid: decimal.RequireFromString("100.01"),
	}
	assert.True(t, o.Outstanding().IsZero())
}

func TestIsSettled(t *testing.T) {
	assert.True(t, (&Obligation{Status: common.ObligationStatusPaid}).IsSettled())
	assert.True(t, (&Obligation{Status: common.ObligationStatusCancelled}).IsSettled())
	assert.False(t, (&Obligation{Status: common.ObligationStatusUnpaid}).IsSettled())
	assert.False(t, (&Obligation{Status: common.ObligationStatusPartial}).IsSettled())
}
