package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// BankAccount : Bank Account Model
//
// current_balance is a materialized sum of the account's ledger entries and
// is only ever mutated inside the same transaction as a ledger entry insert.
type BankAccount struct {
	ID             int64           `json:"id" bun:",pk,autoincrement"`
	Name           string          `json:"name" bun:",notnull,unique"`
	CurrentBalance decimal.Decimal `json:"current_balance" bun:"current_balance,notnull,type:numeric(12,2)"`
	IsActive       bool            `json:"is_active" bun:",notnull,default:true"`
	CreatedAt      time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt      bun.NullTime    `json:"updated_at"`
}

func (a *BankAccount) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		a.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*BankAccount)(nil)
