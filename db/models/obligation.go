package models

import (
	"context"
	"time"

	"github.com/coopfin/coophub/common"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Obligation : Obligation Model
//
// A single payable unit (quota or fee) owed by one member for one period.
// amount_paid and status are mutated exclusively by the allocation engine,
// except for the explicit cancellation path.
type Obligation struct {
	ID         int64           `json:"id" bun:",pk,autoincrement"`
	MemberID   int64           `json:"member_id" bun:",notnull"`
	Member     *Member         `json:"-" bun:"rel:belongs-to,join:member_id=id"`
	Kind       string          `json:"kind" bun:",notnull"`
	Period     string          `json:"period" bun:",nullzero"`
	AmountDue  decimal.Decimal `json:"amount_due" bun:"amount_due,notnull,type:numeric(12,2)"`
	AmountPaid decimal.Decimal `json:"amount_paid" bun:"amount_paid,notnull,type:numeric(12,2)"`
	DueDate    time.Time       `json:"due_date" bun:",notnull"`
	Status     string          `json:"status" bun:",notnull,default:'unpaid'"`
	PaidAt     bun.NullTime    `json:"paid_at" bun:",nullzero"`
	CreatedAt  time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt  bun.NullTime    `json:"updated_at"`
}

func (o *Obligation) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		o.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

// Outstanding returns the amount still owed on the obligation.
// Negative results are clamped to zero so a concurrently settled
// obligation reads as fully paid rather than refundable.
func (o *Obligation) Outstanding() decimal.Decimal {
	outstanding := o.AmountDue.Sub(o.AmountPaid)
	if outstanding.IsNegative() {
		return decimal.Zero
	}
	return outstanding
}

func (o *Obligation) IsSettled() bool {
	return o.Status == common.ObligationStatusPaid || o.Status == common.ObligationStatusCancelled
}

var _ bun.BeforeAppendModelHook = (*Obligation)(nil)
