package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// The core error taxonomy. Any of these aborts the whole atomic unit;
// nothing is partially recovered inside the service.

// ValidationError : a precondition on the caller's input failed before any
// storage access.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return e.Reason
}

// NotFoundError : the caller referenced an entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// InsufficientFundsError : a transfer was requested beyond the source
// account's balance.
type InsufficientFundsError struct {
	BankAccountID int64
	Balance       decimal.Decimal
	Requested     decimal.Decimal
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on account %d: balance %s, requested %s",
		e.BankAccountID, e.Balance, e.Requested)
}

// PolicyError : the operation is forbidden by the ledger's mutation policy
// or by the obligation status state machine.
type PolicyError struct {
	Reason string
}

func (e PolicyError) Error() string {
	return e.Reason
}

// ConflictError : a storage-level failure (lock contention, transaction
// abort, connection loss). The caller may retry the whole operation.
type ConflictError struct {
	Err error
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("storage conflict: %v", e.Err)
}

func (e ConflictError) Unwrap() error {
	return e.Err
}

// asCoreError normalizes errors escaping an atomic unit: taxonomy errors
// pass through untouched, everything else is a storage failure the caller
// may retry.
func asCoreError(err error) error {
	if err == nil {
		return nil
	}
	var (
		validationErr        ValidationError
		notFoundErr          NotFoundError
		insufficientFundsErr InsufficientFundsError
		policyErr            PolicyError
		conflictErr          ConflictError
	)
	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &notFoundErr),
		errors.As(err, &insufficientFundsErr),
		errors.As(err, &policyErr),
		errors.As(err, &conflictErr):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return ConflictError{Err: err}
	}
}

// notFoundOr maps the driver's empty-result error onto the taxonomy.
func notFoundOr(err error, entity string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return NotFoundError{Entity: entity, ID: id}
	}
	return err
}
