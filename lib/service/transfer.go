package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/coopfin/coophub/common"
	"github.com/coopfin/coophub/db/models"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type TransferParams struct {
	FromAccountID int64
	ToAccountID   int64
	Amount        decimal.Decimal
	TransferDate  time.Time
	Description   string
	RecordedBy    int64
}

// Transfer moves funds between two bank accounts as a double-entry pair:
// one -amount entry on the source, one +amount entry on the destination,
// both referencing the transfer row, all in one atomic unit. The balance
// check happens under the source account's row lock, never read-then-write.
func (svc *CoophubService) Transfer(ctx context.Context, params TransferParams) (*models.Transfer, error) {
	if err := validateAmount(params.Amount); err != nil {
		return nil, err
	}
	if params.FromAccountID == params.ToAccountID {
		return nil, ValidationError{Reason: "cannot transfer between an account and itself"}
	}
	if params.TransferDate.IsZero() {
		params.TransferDate = time.Now()
	}

	transfer := &models.Transfer{
		FromAccountID: params.FromAccountID,
		ToAccountID:   params.ToAccountID,
		Amount:        params.Amount,
		TransferDate:  params.TransferDate,
		Description:   params.Description,
		CreatedBy:     params.RecordedBy,
	}
	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		// Lock both accounts in ascending id order so two opposite
		// transfers between the same pair cannot deadlock.
		fromAccount, toAccount, err := lockAccountPair(ctx, tx, params.FromAccountID, params.ToAccountID)
		if err != nil {
			return err
		}
		if !fromAccount.IsActive {
			return ValidationError{Reason: fmt.Sprintf("bank account %d is not active", fromAccount.ID)}
		}
		if !toAccount.IsActive {
			return ValidationError{Reason: fmt.Sprintf("bank account %d is not active", toAccount.ID)}
		}
		if fromAccount.CurrentBalance.LessThan(params.Amount) {
			return InsufficientFundsError{
				BankAccountID: fromAccount.ID,
				Balance:       fromAccount.CurrentBalance,
				Requested:     params.Amount,
			}
		}

		if _, err := tx.NewInsert().Model(transfer).Exec(ctx); err != nil {
			return err
		}

		outEntry := &models.LedgerEntry{
			BankAccountID:   fromAccount.ID,
			Kind:            common.EntryKindInternalTransferOut,
			Amount:          params.Amount.Neg(),
			TransactionDate: params.TransferDate,
			Description:     params.Description,
			RelatedType:     common.RelatedTypeTransfer,
			RelatedID:       transfer.ID,
			RecordedBy:      params.RecordedBy,
		}
		if err := appendEntry(ctx, tx, fromAccount, outEntry); err != nil {
			return err
		}

		inEntry := &models.LedgerEntry{
			BankAccountID:   toAccount.ID,
			Kind:            common.EntryKindInternalTransferIn,
			Amount:          params.Amount,
			TransactionDate: params.TransferDate,
			Description:     params.Description,
			RelatedType:     common.RelatedTypeTransfer,
			RelatedID:       transfer.ID,
			RecordedBy:      params.RecordedBy,
		}
		return appendEntry(ctx, tx, toAccount, inEntry)
	})
	if err != nil {
		return nil, asCoreError(err)
	}

	svc.auditLog(ctx, params.RecordedBy, "transfer", "transfer", transfer.ID, map[string]interface{}{
		"from_account_id": params.FromAccountID,
		"to_account_id":   params.ToAccountID,
		"amount":          params.Amount.String(),
	})
	return transfer, nil
}

func lockAccountPair(ctx context.Context, tx bun.Tx, fromId, toId int64) (fromAccount, toAccount *models.BankAccount, err error) {
	firstId, secondId := fromId, toId
	if secondId < firstId {
		firstId, secondId = secondId, firstId
	}
	first, err := lockBankAccount(ctx, tx, firstId)
	if err != nil {
		return nil, nil, err
	}
	second, err := lockBankAccount(ctx, tx, secondId)
	if err != nil {
		return nil, nil, err
	}
	if first.ID == fromId {
		return first, second, nil
	}
	return second, first, nil
}

func (svc *CoophubService) FindTransfer(ctx context.Context, transferId int64) (*models.Transfer, error) {
	transfer := &models.Transfer{}
	err := svc.DB.NewSelect().Model(transfer).Where("transfer.id = ?", transferId).Limit(1).Scan(ctx)
	if err != nil {
		return nil, asCoreError(notFoundOr(err, "transfer", transferId))
	}
	return transfer, nil
}

func (svc *CoophubService) Transfers(ctx context.Context) ([]models.Transfer, error) {
	transfers := []models.Transfer{}
	err := svc.DB.NewSelect().Model(&transfers).OrderExpr("id DESC").Limit(100).Scan(ctx)
	if err != nil {
		return nil, asCoreError(err)
	}
	return transfers, nil
}
