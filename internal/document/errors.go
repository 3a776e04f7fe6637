package document

import (
	"errors"
	"fmt"

	"docgen/internal/amount"
)

var (
	// ErrEmptyServiceList is returned when a request lists no services.
	ErrEmptyServiceList = amount.ErrEmptyServiceList

	// ErrTotalsMismatch is returned by Reconcile when the invoice and act
	// of one run disagree.
	ErrTotalsMismatch = errors.New("invoice and act totals differ")

	// ErrInvalidProfile is returned when the profile lacks data the
	// documents need.
	ErrInvalidProfile = errors.New("invalid profile")
)

// ProfileError names the profile field that failed validation.
type ProfileError struct {
	Field string
}

// Error implements the error interface.
func (e *ProfileError) Error() string {
	return fmt.Sprintf("document: %s is required: %v", e.Field, ErrInvalidProfile)
}

// Unwrap returns ErrInvalidProfile.
func (e *ProfileError) Unwrap() error {
	return ErrInvalidProfile
}
