package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer : Transfer Model
//
// A paired movement between two bank accounts. Each transfer is backed by
// exactly two ledger entries (+amount and -amount) referencing its id.
type Transfer struct {
	ID            int64           `json:"id" bun:",pk,autoincrement"`
	FromAccountID int64           `json:"from_account_id" bun:",notnull"`
	FromAccount   *BankAccount    `json:"-" bun:"rel:belongs-to,join:from_account_id=id"`
	ToAccountID   int64           `json:"to_account_id" bun:",notnull"`
	ToAccount     *BankAccount    `json:"-" bun:"rel:belongs-to,join:to_account_id=id"`
	Amount        decimal.Decimal `json:"amount" bun:",notnull,type:numeric(12,2)"`
	TransferDate  time.Time       `json:"transfer_date" bun:",notnull"`
	Description   string          `json:"description" bun:",nullzero"`
	CreatedBy     int64           `json:"created_by" bun:",nullzero"`
	CreatedAt     time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
}
