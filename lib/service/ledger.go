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

// appendEntry inserts a ledger entry and moves the account's cached balance
// by the same amount inside the caller's transaction. The caller must hold
// the account row lock. This is the only code path that mutates
// current_balance.
func appendEntry(ctx context.Context, tx bun.Tx, account *models.BankAccount, entry *models.LedgerEntry) error {
	if _, err := tx.NewInsert().Model(entry).Exec(ctx); err != nil {
		return err
	}
	account.CurrentBalance = account.CurrentBalance.Add(entry.Amount)
	if _, err := tx.NewUpdate().Model(account).Column("current_balance", "updated_at").WherePK().Exec(ctx); err != nil {
		return err
	}
	return nil
}

type AdjustmentParams struct {
	BankAccountID int64
	Amount        decimal.Decimal // signed: positive = inflow, negative = outflow
	Date          time.Time
	Description   string
	RecordedBy    int64
}

// AppendAdjustment records a manual signed correction entry. Corrections to
// past entries are always new compensating entries, never updates.
func (svc *CoophubService) AppendAdjustment(ctx context.Context, params AdjustmentParams) (*models.LedgerEntry, error) {
	if params.Amount.IsZero() {
		return nil, ValidationError{Reason: "adjustment amount must not be zero"}
	}
	if err := validatePrecision(params.Amount); err != nil {
		return nil, err
	}
	if params.Date.IsZero() {
		params.Date = time.Now()
	}

	entry := &models.LedgerEntry{
		BankAccountID:   params.BankAccountID,
		Kind:            common.EntryKindAdjustment,
		Amount:          params.Amount,
		TransactionDate: params.Date,
		Description:     params.Description,
		RelatedType:     common.RelatedTypeManual,
		RecordedBy:      params.RecordedBy,
	}
	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		account, err := lockBankAccount(ctx, tx, params.BankAccountID)
		if err != nil {
			return err
		}
		return appendEntry(ctx, tx, account, entry)
	})
	if err != nil {
		return nil, asCoreError(err)
	}
	svc.auditLog(ctx, params.RecordedBy, "adjust", "ledger_entry", entry.ID, map[string]interface{}{
		"bank_account_id": params.BankAccountID,
		"amount":          params.Amount.String(),
	})
	return entry, nil
}

type ReconcileResult struct {
	BankAccountID int64           `json:"bank_account_id"`
	Cached        decimal.Decimal `json:"cached"`
	Computed      decimal.Decimal `json:"computed"`
	Matches       bool            `json:"matches"`
}

// ReconcileBalance recomputes the sum of an account's ledger entries and
// compares it against the cached balance. A mismatch indicates a bug, not a
// valid state; the cache is never silently repaired here.
func (svc *CoophubService) ReconcileBalance(ctx context.Context, bankAccountId int64) (*ReconcileResult, error) {
	account, err := svc.FindBankAccount(ctx, bankAccountId)
	if err != nil {
		return nil, err
	}

	var computed decimal.Decimal
	err = svc.DB.NewSelect().
		Model((*models.LedgerEntry)(nil)).
		ColumnExpr("COALESCE(SUM(amount), 0)").
		Where("bank_account_id = ?", bankAccountId).
		Scan(ctx, &computed)
	if err != nil {
		return nil, asCoreError(err)
	}

	return &ReconcileResult{
		BankAccountID: bankAccountId,
		Cached:        account.CurrentBalance,
		Computed:      computed,
		Matches:       account.CurrentBalance.Equal(computed),
	}, nil
}

func (svc *CoophubService) FindLedgerEntry(ctx context.Context, entryId int64) (*models.LedgerEntry, error) {
	entry := &models.LedgerEntry{}
	err := svc.DB.NewSelect().Model(entry).Where("ledger_entry.id = ?", entryId).Limit(1).Scan(ctx)
	if err != nil {
		return nil, asCoreError(notFoundOr(err, "ledger entry", entryId))
	}
	return entry, nil
}

// UpdateLedgerEntryDescription changes the only mutable field of a ledger
// entry. Amount, kind, account and references are frozen at insert time.
func (svc *CoophubService) UpdateLedgerEntryDescription(ctx context.Context, entryId int64, description string, actor int64) (*models.LedgerEntry, error) {
	entry, err := svc.FindLedgerEntry(ctx, entryId)
	if err != nil {
		return nil, err
	}
	entry.Description = description
	_, err = svc.DB.NewUpdate().Model(entry).Column("description").WherePK().Exec(ctx)
	if err != nil {
		return nil, asCoreError(err)
	}
	svc.auditLog(ctx, actor, "update_description", "ledger_entry", entry.ID, nil)
	return entry, nil
}

// DeleteLedgerEntry always fails. The ledger is append-only; corrections go
// through AppendAdjustment.
func (svc *CoophubService) DeleteLedgerEntry(ctx context.Context, entryId int64) error {
	return PolicyError{Reason: "ledger entries cannot be deleted, record a compensating adjustment instead"}
}

func (svc *CoophubService) LedgerEntriesForAccount(ctx context.Context, bankAccountId int64) ([]models.LedgerEntry, error) {
	if _, err := svc.FindBankAccount(ctx, bankAccountId); err != nil {
		return nil, err
	}
	entries := []models.LedgerEntry{}
	err := svc.DB.NewSelect().
		Model(&entries).
		Where("bank_account_id = ?", bankAccountId).
		OrderExpr("id DESC").
		Limit(100).
		Scan(ctx)
	if err != nil {
		return nil, asCoreError(err)
	}
	return entries, nil
}
