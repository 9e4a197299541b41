package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry : Ledger Entry Model
//
// An append-only signed movement against a bank account. Entries are never
// deleted and only the description may change after insert; corrections are
// new compensating entries of kind adjustment.
type LedgerEntry struct {
	ID              int64           `json:"id" bun:",pk,autoincrement"`
	BankAccountID   int64           `json:"bank_account_id" bun:",notnull"`
	BankAccount     *BankAccount    `json:"-" bun:"rel:belongs-to,join:bank_account_id=id"`
	Kind            string          `json:"kind" bun:",notnull"`
	Amount          decimal.Decimal `json:"amount" bun:",notnull,type:numeric(12,2)"`
	TransactionDate time.Time       `json:"transaction_date" bun:",notnull"`
	Description     string          `json:"description" bun:",nullzero"`
	RelatedType     string          `json:"related_type" bun:",nullzero"`
	RelatedID       int64           `json:"related_id" bun:",nullzero"`
	RecordedBy      int64           `json:"recorded_by" bun:",nullzero"`
	CreatedAt       time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
}
