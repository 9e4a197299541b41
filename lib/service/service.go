package service

import (
	"context"
	"time"

	"github.com/coopfin/coophub/lib/audit"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"github.com/ziflex/lecho/v3"
)

type CoophubService struct {
	Config    *Config
	DB        *bun.DB
	Logger    *lecho.Logger
	AuditSink audit.Sink
}

// auditLog reports an action to the audit sink. Sink failures are logged
// and swallowed: they must never mask or roll back the financial operation
// they describe, so this is only ever called after a successful commit.
func (svc *CoophubService) auditLog(ctx context.Context, actor int64, action, entity string, entityID int64, details map[string]interface{}) {
	if svc.AuditSink == nil {
		return
	}
	event := audit.Event{
		ID:       uuid.New(),
		Actor:    actor,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  details,
		LoggedAt: time.Now(),
	}
	if err := svc.AuditSink.Log(ctx, event); err != nil {
		svc.Logger.Warnf("Audit log failed action:%s entity:%s entity_id:%d error: %v", action, entity, entityID, err)
	}
}

// validateAmount enforces the monetary input contract: strictly positive
// and at most two decimal places, so allocation arithmetic stays exact.
func validateAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ValidationError{Reason: "amount must be greater than zero"}
	}
	return validatePrecision(amount)
}

func validatePrecision(amount decimal.Decimal) error {
	if amount.Exponent() < -2 {
		return ValidationError{Reason: "amount must have at most two decimal places"}
	}
	return nil
}
