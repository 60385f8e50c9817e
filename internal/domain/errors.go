package domain

import (
	"errors"
	"fmt"
)

// ValidationError covers missing or malformed request input. The message is
// safe to show to the customer.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientStockError means a reservation's conditional decrement matched
// no row because stock ran out. The enclosing transaction must be rolled back.
type InsufficientStockError struct {
	PartID    string
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (requested %d)", e.PartID, e.Requested)
}

// PartUnavailableError means the part does not exist, is archived, or is not
// offered for online sale.
type PartUnavailableError struct{ PartID string }

func (e *PartUnavailableError) Error() string {
	return fmt.Sprintf("part %s is not available", e.PartID)
}

// InvalidTransitionError rejects an illegal status change.
type InvalidTransitionError struct {
	From, To string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

var ErrOrderNotFound = errors.New("order not found")

// IsClientError reports whether err should surface as a 400 with its own
// message rather than a generic 500.
func IsClientError(err error) bool {
	var ve *ValidationError
	var se *InsufficientStockError
	var pe *PartUnavailableError
	var te *InvalidTransitionError
	return errors.As(err, &ve) || errors.As(err, &se) || errors.As(err, &pe) || errors.As(err, &te)
}
