package budget

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when an operation targets an id the store does not hold.
	ErrNotFound = errors.New("not found")
	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError describes a rejected field on an entity submitted to the store.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Entity, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(entity, field, reason string) error {
	return &ValidationError{Entity: entity, Field: field, Reason: reason}
}

// ValidateBudget checks the fields every stored budget must carry.
func ValidateBudget(b Budget) error {
	if strings.TrimSpace(b.Name) == "" {
		return invalid("budget", "name", "is required")
	}

	if !(b.Amount > 0) {
		return invalid("budget", "amount", "must be positive")
	}

	if b.CategoryID == "" {
		return invalid("budget", "categoryId", "is required")
	}

	if !b.StartDate.IsZero() && !b.EndDate.IsZero() && b.EndDate.Before(b.StartDate.Time) {
		return invalid("budget", "endDate", "is before startDate")
	}

	return nil
}

// ValidateExpense checks the fields every stored expense must carry.
func ValidateExpense(e Expense) error {
	if strings.TrimSpace(e.Description) == "" {
		return invalid("expense", "description", "is required")
	}

	if !(e.Amount > 0) {
		return invalid("expense", "amount", "must be positive")
	}

	if e.CategoryID == "" {
		return invalid("expense", "categoryId", "is required")
	}

	return nil
}

func validateName(entity, name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid(entity, "name", "is required")
	}

	return nil
}
