package services

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidOrderRequest = errors.New("invalid order request")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrTransientStorage    = errors.New("transient storage error")
	ErrIntegrityViolation  = errors.New("integrity violation")
	ErrOrderNotFound       = errors.New("order not found")
)

// InvalidOrderRequestError is a caller error raised before any write
type InvalidOrderRequestError struct {
	Reason string
}

func (e *InvalidOrderRequestError) Error() string {
	return "invalid order request: " + e.Reason
}

func (e *InvalidOrderRequestError) Is(target error) bool {
	return target == ErrInvalidOrderRequest
}

func invalidRequest(format string, args ...any) error {
	return &InvalidOrderRequestError{Reason: fmt.Sprintf(format, args...)}
}

// InsufficientFundsError reports the amounts needed for a user-facing message
type InsufficientFundsError struct {
	DealerID  string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required %s, available %s",
		e.Required.StringFixed(2), e.Available.StringFixed(2))
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// TransientStorageError means the transaction was rolled back and the
// whole placement can be retried.
type TransientStorageError struct {
	Op  string
	Err error
}

func (e *TransientStorageError) Error() string {
	return fmt.Sprintf("%s: transient storage error: %v", e.Op, e.Err)
}

func (e *TransientStorageError) Unwrap() error { return e.Err }

func (e *TransientStorageError) Is(target error) bool {
	return target == ErrTransientStorage
}

// IntegrityViolationError signals a broken locking discipline or corrupt
// historical data. It is never retried.
type IntegrityViolationError struct {
	Op     string
	Detail string
	Err    error
}

func (e *IntegrityViolationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: integrity violation: %s: %v", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: integrity violation: %s", e.Op, e.Detail)
}

func (e *IntegrityViolationError) Unwrap() error { return e.Err }

func (e *IntegrityViolationError) Is(target error) bool {
	return target == ErrIntegrityViolation
}

// classifyStorageError maps driver errors onto the placement taxonomy.
// Errors that are already classified pass through unchanged.
func classifyStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidOrderRequest) || errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrTransientStorage) || errors.Is(err, ErrIntegrityViolation) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return &IntegrityViolationError{Op: op, Detail: "unique constraint " + pqErr.Constraint, Err: err}
		case "23514":
			return &IntegrityViolationError{Op: op, Detail: "check constraint " + pqErr.Constraint, Err: err}
		case "23503":
			return &IntegrityViolationError{Op: op, Detail: "foreign key " + pqErr.Constraint, Err: err}
		case "40001", "40P01", "55P03", "57014":
			return &TransientStorageError{Op: op, Err: err}
		}
		switch pqErr.Code.Class() {
		case "08", "53":
			// connection exceptions and insufficient resources
			return &TransientStorageError{Op: op, Err: err}
		case "22":
			return &InvalidOrderRequestError{Reason: fmt.Sprintf("%s: value rejected by storage: %s", op, pqErr.Message)}
		}
		// schema, permission and internal errors never succeed on retry
		return &IntegrityViolationError{Op: op, Detail: fmt.Sprintf("postgres error %s", pqErr.Code), Err: err}
	}

	// Timeouts, cancellations and broken connections: the rollback already
	// undid every write, so the caller may retry.
	return &TransientStorageError{Op: op, Err: err}
}

// isLockTimeout reports whether err is a PostgreSQL lock_not_available error
func isLockTimeout(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "55P03"
}
