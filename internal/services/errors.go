package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"resto_pos_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

// --- Service error taxonomy ---
var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Entity sentinels wrap ErrNotFound so handlers can map them generically.
var (
	ErrOrderNotFound         = fmt.Errorf("order %w", ErrNotFound)
	ErrOrderItemNotFound     = fmt.Errorf("order item %w", ErrNotFound)
	ErrProductNotFound       = fmt.Errorf("product %w", ErrNotFound)
	ErrCategoryNotFound      = fmt.Errorf("category %w", ErrNotFound)
	ErrSupplementNotFound    = fmt.Errorf("supplement %w", ErrNotFound)
	ErrAccompanimentNotFound = fmt.Errorf("accompaniment %w", ErrNotFound)
	ErrTableNotFound         = fmt.Errorf("table %w", ErrNotFound)
	ErrNotificationNotFound  = fmt.Errorf("notification %w", ErrNotFound)
	ErrUserNotFound          = fmt.Errorf("user %w", ErrNotFound)
)

// ValidationError names each offending input field, e.g. "items.0.product_id".
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records a field problem, keeping the first message for a field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// OrNil returns nil when no field was recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// moneyScale is the number of decimal places the money columns store.
const moneyScale = 2

// AddMoney records a problem with a money input: negative values, zero when
// positive is required, or more than two decimal places.
func (e *ValidationError) AddMoney(field string, amount decimal.Decimal, positive bool) {
	switch {
	case positive && !amount.IsPositive():
		e.Add(field, "must be greater than 0")
	case amount.IsNegative():
		e.Add(field, "must be greater than or equal to 0")
	case !amount.Equal(amount.Truncate(moneyScale)):
		e.Add(field, "must have at most 2 decimal places")
	}
}

// conflictf builds an error matching ErrConflict.
func conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// notFoundOr translates repositories.ErrNotFound into the entity sentinel and
// wraps anything else with context.
func notFoundOr(err error, sentinel error, action string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return sentinel
	}
	if errors.Is(err, repositories.ErrDuplicateKey) || errors.Is(err, repositories.ErrForeignKey) {
		return fmt.Errorf("%w: %s: %v", ErrConflict, action, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}
