// Package numbering derives invoice identifiers from the document date.
//
// The identifier is the year-month integer YYYYMM encoded in base 8, so
// every month maps to a short, stable number. A positive sequence index
// is appended as "-n" when several invoices are issued in one month.
package numbering

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
)

var (
	// ErrInvalidDate is returned when the document date is not a valid
	// calendar date with a four-digit year.
	ErrInvalidDate = errors.New("invalid invoice date")

	// ErrNonOctalDigit is returned by the OctalDigits scheme when YYYYMM
	// contains an 8 or a 9. It wraps ErrInvalidDate.
	ErrNonOctalDigit = fmt.Errorf("%w: year-month contains a non-octal digit", ErrInvalidDate)

	// ErrInvalidSequence is returned for a negative sequence index.
	ErrInvalidSequence = errors.New("invalid invoice sequence index")
)

// Scheme selects how YYYYMM is turned into a number.
type Scheme int

const (
	// Octal writes YYYYMM in base 8.
	Octal Scheme = iota
	// OctalDigits reads the decimal digits of YYYYMM as base-8 digits
	// and writes the resulting value in base 10. It is only defined for
	// year-months without an 8 or 9.
	OctalDigits
)

func (s Scheme) String() string {
	if s == OctalDigits {
		return "octal-digits"
	}
	return "octal"
}

// ParseScheme accepts "octal" (default) or "octal-digits".
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "octal":
		return Octal, nil
	case "octal-digits":
		return OctalDigits, nil
	default:
		return Octal, fmt.Errorf("unknown invoice number scheme %q", s)
	}
}

// Generator produces invoice numbers. It holds no mutable state.
type Generator struct {
	scheme Scheme
}

// NewGenerator returns a Generator for the given scheme.
func NewGenerator(scheme Scheme) *Generator {
	return &Generator{scheme: scheme}
}

// Generate returns the invoice number for document date d and sequence
// index n. n == 0 yields the bare month number.
func (g *Generator) Generate(d civil.Date, n int) (string, error) {
	if !d.IsValid() || d.Year < 1000 || d.Year > 9999 {
		return "", fmt.Errorf("%w: %v", ErrInvalidDate, d)
	}
	if n < 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidSequence, n)
	}

	yyyymm := int64(d.Year)*100 + int64(d.Month)

	var base string
	switch g.scheme {
	case OctalDigits:
		v, err := strconv.ParseInt(strconv.FormatInt(yyyymm, 10), 8, 64)
		if err != nil {
			return "", fmt.Errorf("%w: %d", ErrNonOctalDigit, yyyymm)
		}
		base = strconv.FormatInt(v, 10)
	default:
		base = strconv.FormatInt(yyyymm, 8)
	}

	if n > 0 {
		return base + "-" + strconv.Itoa(n), nil
	}
	return base, nil
}

// Period returns the "YYYY-MM" key that groups invoices sharing a base number.
func Period(d civil.Date) string {
	return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month))
}
