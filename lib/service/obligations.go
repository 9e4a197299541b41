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

type ObligationParams struct {
	MemberID  int64
	Kind      string
	Period    string
	AmountDue decimal.Decimal
	DueDate   time.Time
	CreatedBy int64
}

// CreateObligation records a manually entered payable unit for one member.
func (svc *CoophubService) CreateObligation(ctx context.Context, params ObligationParams) (*models.Obligation, error) {
	if params.Kind != common.ObligationKindQuota && params.Kind != common.ObligationKindFee {
		return nil, ValidationError{Reason: fmt.Sprintf("unknown obligation kind %q", params.Kind)}
	}
	if err := validateAmount(params.AmountDue); err != nil {
		return nil, err
	}
	if params.DueDate.IsZero() {
		return nil, ValidationError{Reason: "due date is required"}
	}
	member, err := svc.FindMember(ctx, params.MemberID)
	if err != nil {
		return nil, err
	}
	if !member.IsActive {
		return nil, ValidationError{Reason: fmt.Sprintf("member %d is not active", member.ID)}
	}

	obligation := &models.Obligation{
		MemberID:   params.MemberID,
		Kind:       params.Kind,
		Period:     params.Period,
		AmountDue:  params.AmountDue,
		AmountPaid: decimal.Zero,
		DueDate:    params.DueDate,
		Status:     common.ObligationStatusUnpaid,
	}
	_, err = svc.DB.NewInsert().Model(obligation).Exec(ctx)
	if err != nil {
		return nil, asCoreError(err)
	}
	svc.auditLog(ctx, params.CreatedBy, "create", "obligation", obligation.ID, map[string]interface{}{
		"member_id":  params.MemberID,
		"kind":       params.Kind,
		"amount_due": params.AmountDue.String(),
	})
	return obligation, nil
}

func (svc *CoophubService) FindObligation(ctx context.Context, obligationId int64) (*models.Obligation, error) {
	obligation := &models.Obligation{}
	err := svc.DB.NewSelect().Model(obligation).Where("obligation.id = ?", obligationId).Limit(1).Scan(ctx)
	if err != nil {
		return nil, asCoreError(notFoundOr(err, "obligation", obligationId))
	}
	return obligation, nil
}

func (svc *CoophubService) ObligationsForMember(ctx context.Context, memberId int64, status string) ([]models.Obligation, error) {
	if _, err := svc.FindMember(ctx, memberId); err != nil {
		return nil, err
	}
	obligations := []models.Obligation{}
	query := svc.DB.NewSelect().Model(&obligations).Where("member_id = ?", memberId)
	if status != "" {
		query.Where("status = ?", status)
	}
	query.OrderExpr("due_date ASC, id ASC")
	err := query.Scan(ctx)
	if err != nil {
		return nil, asCoreError(err)
	}
	return obligations, nil
}

// CancelObligation marks an obligation cancelled. Cancellation is terminal
// and only reachable from unpaid or partial; a paid obligation is immutable.
func (svc *CoophubService) CancelObligation(ctx context.Context, obligationId int64, actor int64) (*models.Obligation, error) {
	obligation := &models.Obligation{}
	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(obligation).
			Where("obligation.id = ?", obligationId).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			return notFoundOr(err, "obligation", obligationId)
		}
		switch obligation.Status {
		case common.ObligationStatusPaid:
			return PolicyError{Reason: fmt.Sprintf("obligation %d is paid and cannot be cancelled", obligationId)}
		case common.ObligationStatusCancelled:
			// already terminal, nothing to do
			return nil
		}
		obligation.Status = common.ObligationStatusCancelled
		_, err = tx.NewUpdate().Model(obligation).Column("status", "updated_at").WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return nil, asCoreError(err)
	}
	svc.auditLog(ctx, actor, "cancel", "obligation", obligation.ID, nil)
	return obligation, nil
}

type GenerateQuotasParams struct {
	Period    string // e.g. "2024-03"
	Amount    decimal.Decimal
	DueDate   time.Time
	CreatedBy int64
}

// GenerateMonthlyQuotas creates one quota obligation per active member for
// the given period. Members that already have a quota for the period are
// skipped, so re-running a generation is safe. Returns the number of
// obligations created.
func (svc *CoophubService) GenerateMonthlyQuotas(ctx context.Context, params GenerateQuotasParams) (int, error) {
	if _, err := time.Parse("2006-01", params.Period); err != nil {
		return 0, ValidationError{Reason: fmt.Sprintf("invalid period %q, expected YYYY-MM", params.Period)}
	}
	if err := validateAmount(params.Amount); err != nil {
		return 0, err
	}
	if params.DueDate.IsZero() {
		return 0, ValidationError{Reason: "due date is required"}
	}

	created := 0
	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		members := []models.Member{}
		err := tx.NewSelect().
			Model(&members).
			Where("is_active").
			Where("id NOT IN (SELECT member_id FROM obligations WHERE kind = ? AND period = ?)",
				common.ObligationKindQuota, params.Period).
			OrderExpr("id ASC").
			Scan(ctx)
		if err != nil {
			return err
		}
		if len(members) == 0 {
			return nil
		}

		obligations := make([]models.Obligation, 0, len(members))
		for _, member := range members {
			obligations = append(obligations, models.Obligation{
				MemberID:   member.ID,
				Kind:       common.ObligationKindQuota,
				Period:     params.Period,
				AmountDue:  params.Amount,
				AmountPaid: decimal.Zero,
				DueDate:    params.DueDate,
				Status:     common.ObligationStatusUnpaid,
			})
		}
		if _, err := tx.NewInsert().Model(&obligations).Exec(ctx); err != nil {
			return err
		}
		created = len(obligations)
		return nil
	})
	if err != nil {
		return 0, asCoreError(err)
	}
	svc.auditLog(ctx, params.CreatedBy, "generate_quotas", "obligation", 0, map[string]interface{}{
		"period":  params.Period,
		"amount":  params.Amount.String(),
		"created": created,
	})
	return created, nil
}
