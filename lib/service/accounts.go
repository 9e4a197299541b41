package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/coopfin/coophub/common"
	"github.com/coopfin/coophub/db/models"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// lockBankAccount acquires the row lock on a bank account for the duration
// of the caller's transaction. Every balance mutation goes through this
// first so concurrent movements against the same account serialize.
func lockBankAccount(ctx context.Context, tx bun.Tx, bankAccountId int64) (*models.BankAccount, error) {
	account := &models.BankAccount{}
	err := tx.NewSelect().
		Model(account).
		Where("bank_account.id = ?", bankAccountId).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, notFoundOr(err, "bank account", bankAccountId)
	}
	return account, nil
}

type BankAccountParams struct {
	Name           string
	OpeningBalance decimal.Decimal
	RecordedBy     int64
}

// CreateBankAccount creates an account. A non-zero opening balance is
// itself recorded as a ledger entry so the balance identity holds from the
// first movement on.
func (svc *CoophubService) CreateBankAccount(ctx context.Context, params BankAccountParams) (*models.BankAccount, error) {
	if params.Name == "" {
		return nil, ValidationError{Reason: "account name is required"}
	}
	if params.OpeningBalance.IsNegative() {
		return nil, ValidationError{Reason: "opening balance must not be negative"}
	}
	if err := validatePrecision(params.OpeningBalance); err != nil {
		return nil, err
	}

	account := &models.BankAccount{
		Name:           params.Name,
		CurrentBalance: decimal.Zero,
		IsActive:       true,
	}
	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(account).Exec(ctx); err != nil {
			return err
		}
		if params.OpeningBalance.IsZero() {
			return nil
		}
		entry := &models.LedgerEntry{
			BankAccountID:   account.ID,
			Kind:            common.EntryKindOpeningBalance,
			Amount:          params.OpeningBalance,
			TransactionDate: time.Now(),
			Description:     "opening balance",
			RelatedType:     common.RelatedTypeManual,
			RecordedBy:      params.RecordedBy,
		}
		return appendEntry(ctx, tx, account, entry)
	})
	if err != nil {
		return nil, asCoreError(err)
	}
	svc.auditLog(ctx, params.RecordedBy, "create", "bank_account", account.ID, map[string]interface{}{
		"name":            account.Name,
		"opening_balance": params.OpeningBalance.String(),
	})
	return account, nil
}

func (svc *CoophubService) FindBankAccount(ctx context.Context, bankAccountId int64) (*models.BankAccount, error) {
	account := &models.BankAccount{}
	err := svc.DB.NewSelect().Model(account).Where("bank_account.id = ?", bankAccountId).Limit(1).Scan(ctx)
	if err != nil {
		return nil, asCoreError(notFoundOr(err, "bank account", bankAccountId))
	}
	return account, nil
}

func (svc *CoophubService) BankAccounts(ctx context.Context) ([]models.BankAccount, error) {
	accounts := []models.BankAccount{}
	err := svc.DB.NewSelect().Model(&accounts).OrderExpr("id ASC").Scan(ctx)
	if err != nil {
		return nil, asCoreError(err)
	}
	return accounts, nil
}

// SetBankAccountActive toggles whether an account can receive allocations
// and transfers. Deactivation does not touch the ledger or the balance.
func (svc *CoophubService) SetBankAccountActive(ctx context.Context, bankAccountId int64, active bool, actor int64) (*models.BankAccount, error) {
	account, err := svc.FindBankAccount(ctx, bankAccountId)
	if err != nil {
		return nil, err
	}
	account.IsActive = active
	_, err = svc.DB.NewUpdate().Model(account).Column("is_active", "updated_at").WherePK().Exec(ctx)
	if err != nil {
		return nil, asCoreError(err)
	}
	svc.auditLog(ctx, actor, "set_active", "bank_account", account.ID, map[string]interface{}{
		"active": active,
	})
	return account, nil
}
