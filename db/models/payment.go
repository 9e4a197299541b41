package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment : Payment Model
//
// One slice of an incoming payment applied to exactly one obligation.
// Immutable after creation except for attaching a receipt reference.
type Payment struct {
	ID            int64           `json:"id" bun:",pk,autoincrement"`
	ObligationID  int64           `json:"obligation_id" bun:",notnull"`
	Obligation    *Obligation     `json:"-" bun:"rel:belongs-to,join:obligation_id=id"`
	BankAccountID int64           `json:"bank_account_id" bun:",notnull"`
	BankAccount   *BankAccount    `json:"-" bun:"rel:belongs-to,join:bank_account_id=id"`
	Amount        decimal.Decimal `json:"amount" bun:",notnull,type:numeric(12,2)"`
	PaymentDate   time.Time       `json:"payment_date" bun:",notnull"`
	Method        string          `json:"method" bun:",nullzero"`
	ReceiptRef    string          `json:"receipt_ref" bun:",nullzero"`
	Notes         string          `json:"notes" bun:",nullzero"`
	CreatedBy     int64           `json:"created_by" bun:",nullzero"`
	CreatedAt     time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
}
