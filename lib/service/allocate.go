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

type AllocateParams struct {
	Amount        decimal.Decimal
	BankAccountID int64
	MemberID      int64
	ObligationIDs []int64
	PaymentDate   time.Time
	Method        string
	Notes         string
	RecordedBy    int64
}

type AllocationResult struct {
	PaymentIDs []int64         `json:"payment_ids"`
	AppliedTo  []int64         `json:"applied_to"`
	Remaining  decimal.Decimal `json:"remaining_amount"`
}

type allocationStep struct {
	obligation *models.Obligation
	payNow     decimal.Decimal
}

// planAllocation distributes one incoming amount across the given
// obligations, oldest due date first. Settled or cancelled obligations are
// skipped; they are not an error because a concurrent allocation may have
// settled them between selection and locking. Pure function, no storage
// access, so the conservation and ordering properties are testable in
// isolation.
//
// Invariant: sum of all steps plus the returned remainder equals amount.
func planAllocation(amount decimal.Decimal, obligations []*models.Obligation) (steps []allocationStep, remaining decimal.Decimal) {
	remaining = amount
	for _, obligation := range obligations {
		if remaining.Sign() <= 0 {
			break
		}
		if obligation.Status == common.ObligationStatusCancelled {
			continue
		}
		outstanding := obligation.Outstanding()
		if outstanding.Sign() <= 0 {
			continue
		}
		payNow := decimal.Min(remaining, outstanding)
		steps = append(steps, allocationStep{obligation: obligation, payNow: payNow})
		remaining = remaining.Sub(payNow)
	}
	return steps, remaining
}

// applyPayment moves an obligation forward by payNow and recomputes its
// status. Transitions are monotonic: unpaid -> partial -> paid.
func applyPayment(obligation *models.Obligation, payNow decimal.Decimal, paidAt time.Time) {
	obligation.AmountPaid = obligation.AmountPaid.Add(payNow)
	if obligation.AmountPaid.GreaterThanOrEqual(obligation.AmountDue) {
		obligation.Status = common.ObligationStatusPaid
		obligation.PaidAt = bun.NullTime{Time: paidAt}
	} else if obligation.AmountPaid.Sign() > 0 {
		obligation.Status = common.ObligationStatusPartial
	}
}

// Allocate distributes a single incoming payment across the member's
// selected obligations. Everything it writes (payments, obligation updates,
// ledger entries, the balance move) is one atomic unit: a failure at any
// step leaves no trace.
//
// The returned Remaining is the slice of the amount the selected
// obligations could not absorb. That is a genuine excess, not an error; it
// is reported to the caller and deliberately not auto-credited anywhere.
func (svc *CoophubService) Allocate(ctx context.Context, params AllocateParams) (*AllocationResult, error) {
	if err := validateAmount(params.Amount); err != nil {
		return nil, err
	}
	if len(params.ObligationIDs) == 0 {
		return nil, ValidationError{Reason: "at least one obligation must be selected"}
	}
	if params.PaymentDate.IsZero() {
		params.PaymentDate = time.Now()
	}

	result := &AllocationResult{
		PaymentIDs: []int64{},
		AppliedTo:  []int64{},
		Remaining:  params.Amount,
	}
	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		// Lock the receiving account first: the balance mutation below
		// must serialize with transfers and other allocations.
		account, err := lockBankAccount(ctx, tx, params.BankAccountID)
		if err != nil {
			return err
		}
		if !account.IsActive {
			return ValidationError{Reason: fmt.Sprintf("bank account %d is not active", account.ID)}
		}

		obligations, err := lockObligations(ctx, tx, params.ObligationIDs)
		if err != nil {
			return err
		}
		if params.MemberID != 0 {
			for _, obligation := range obligations {
				if obligation.MemberID != params.MemberID {
					return ValidationError{Reason: fmt.Sprintf("obligation %d does not belong to member %d", obligation.ID, params.MemberID)}
				}
			}
		}

		steps, remaining := planAllocation(params.Amount, obligations)
		for _, step := range steps {
			obligation := step.obligation

			payment := &models.Payment{
				ObligationID:  obligation.ID,
				BankAccountID: account.ID,
				Amount:        step.payNow,
				PaymentDate:   params.PaymentDate,
				Method:        params.Method,
				Notes:         params.Notes,
				CreatedBy:     params.RecordedBy,
			}
			if _, err := tx.NewInsert().Model(payment).Exec(ctx); err != nil {
				return err
			}

			applyPayment(obligation, step.payNow, params.PaymentDate)
			_, err = tx.NewUpdate().
				Model(obligation).
				Column("amount_paid", "status", "paid_at", "updated_at").
				WherePK().
				Exec(ctx)
			if err != nil {
				return err
			}

			entry := &models.LedgerEntry{
				BankAccountID:   account.ID,
				Kind:            common.EntryKindContributionReceived,
				Amount:          step.payNow,
				TransactionDate: params.PaymentDate,
				Description:     fmt.Sprintf("%s payment, obligation %d, member %d", obligation.Kind, obligation.ID, obligation.MemberID),
				RelatedType:     common.RelatedTypePayment,
				RelatedID:       payment.ID,
				RecordedBy:      params.RecordedBy,
			}
			if err := appendEntry(ctx, tx, account, entry); err != nil {
				return err
			}

			result.PaymentIDs = append(result.PaymentIDs, payment.ID)
			result.AppliedTo = append(result.AppliedTo, obligation.ID)
		}
		result.Remaining = remaining
		return nil
	})
	if err != nil {
		return nil, asCoreError(err)
	}

	svc.auditLog(ctx, params.RecordedBy, "allocate", "payment", 0, map[string]interface{}{
		"amount":          params.Amount.String(),
		"bank_account_id": params.BankAccountID,
		"member_id":       params.MemberID,
		"applied_to":      result.AppliedTo,
		"remaining":       result.Remaining.String(),
	})
	return result, nil
}

// lockObligations acquires row locks on the requested obligations, ordered
// oldest due date first. The ordering is a fixed allocation policy, never
// caller-controlled. A missing id is a NotFoundError before anything is
// written.
func lockObligations(ctx context.Context, tx bun.Tx, obligationIds []int64) ([]*models.Obligation, error) {
	obligations := []*models.Obligation{}
	err := tx.NewSelect().
		Model(&obligations).
		Where("obligation.id IN (?)", bun.In(obligationIds)).
		OrderExpr("due_date ASC, id ASC").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	found := make(map[int64]bool, len(obligations))
	for _, obligation := range obligations {
		found[obligation.ID] = true
	}
	for _, id := range obligationIds {
		if !found[id] {
			return nil, NotFoundError{Entity: "obligation", ID: id}
		}
	}
	return obligations, nil
}
