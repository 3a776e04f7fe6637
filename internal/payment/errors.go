package payment

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingQRField is returned when a required payment field is empty.
	ErrMissingQRField = errors.New("missing required payment field")

	// ErrInvalidQRField is returned when a field value cannot be carried in
	// the payload, e.g. it contains the field separator.
	ErrInvalidQRField = errors.New("invalid payment field")

	// ErrMalformedPayload is returned by Parse for strings that are not a
	// ST00012 payload.
	ErrMalformedPayload = errors.New("malformed payment payload")
)

// MissingFieldError names the required field that was empty.
type MissingFieldError struct {
	Field string
}

// Error implements the error interface.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("payment: %s: %v", e.Field, ErrMissingQRField)
}

// Unwrap returns ErrMissingQRField.
func (e *MissingFieldError) Unwrap() error {
	return ErrMissingQRField
}
