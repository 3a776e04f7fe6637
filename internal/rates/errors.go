package rates

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
)

// ErrRateUnavailable is returned when the rate source cannot supply a rate.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// FetchError describes a failed rate request.
type FetchError struct {
	// Currency is the requested currency code.
	Currency string

	// Date is the requested date.
	Date civil.Date

	// StatusCode is the HTTP status, if a response was received.
	StatusCode int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	msg := fmt.Sprintf("rates: %s on %s: %v", Pair(e.Currency), e.Date, ErrRateUnavailable)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports every FetchError as ErrRateUnavailable.
func (e *FetchError) Is(target error) bool {
	return target == ErrRateUnavailable
}
