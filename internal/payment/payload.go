// Package payment builds the bank-transfer payload encoded into invoice QR
// codes (ГОСТ Р 56042-2014, "ST00012": version 0001, UTF-8 encoding).
//
// The payload is a pipe-delimited list starting with the format tag and
// followed by Key=Value pairs in a fixed order. Every required field must
// be present; the encoder refuses to emit a payload with an empty one.
package payment

import (
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
)

// FormatTag identifies the payload format: ST, version 0001, charset 2 (UTF-8).
const FormatTag = "ST00012"

const separator = "|"

// Payment is the decoded content of a payment payload.
type Payment struct {
	Name        string // payee name
	PersonalAcc string // payee settlement account
	BankName    string
	BIC         string
	CorrespAcc  string // bank correspondent account
	PayeeINN    string
	Sum         int64 // kopecks
	Purpose     string

	KPP string // optional
}

type field struct {
	key string
	get func(p *Payment) string
	set func(p *Payment, v string) error
}

func stringField(key string, ptr func(p *Payment) *string) field {
	return field{
		key: key,
		get: func(p *Payment) string { return *ptr(p) },
		set: func(p *Payment, v string) error {
			*ptr(p) = v
			return nil
		},
	}
}

// requiredFields lists the required keys in payload order.
var requiredFields = []field{
	stringField("Name", func(p *Payment) *string { return &p.Name }),
	stringField("PersonalAcc", func(p *Payment) *string { return &p.PersonalAcc }),
	stringField("BankName", func(p *Payment) *string { return &p.BankName }),
	stringField("BIC", func(p *Payment) *string { return &p.BIC }),
	stringField("CorrespAcc", func(p *Payment) *string { return &p.CorrespAcc }),
	stringField("PayeeINN", func(p *Payment) *string { return &p.PayeeINN }),
	{
		key: "Sum",
		get: func(p *Payment) string {
			if p.Sum <= 0 {
				return ""
			}
			return strconv.FormatInt(p.Sum, 10)
		},
		set: func(p *Payment, v string) error {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n <= 0 {
				return fmt.Errorf("%w: Sum=%q", ErrMalformedPayload, v)
			}
			p.Sum = n
			return nil
		},
	},
	stringField("Purpose", func(p *Payment) *string { return &p.Purpose }),
}

var optionalFields = []field{
	stringField("KPP", func(p *Payment) *string { return &p.KPP }),
}

// Encode serialises p. Required fields keep their fixed order; optional
// fields follow only when set.
func Encode(p Payment) (string, error) {
	parts := make([]string, 0, 1+len(requiredFields)+len(optionalFields))
	parts = append(parts, FormatTag)

	for _, f := range requiredFields {
		v := f.get(&p)
		if strings.TrimSpace(v) == "" {
			return "", &MissingFieldError{Field: f.key}
		}
		if err := checkValue(f.key, v); err != nil {
			return "", err
		}
		parts = append(parts, f.key+"="+v)
	}

	for _, f := range optionalFields {
		v := f.get(&p)
		if v == "" {
			continue
		}
		if err := checkValue(f.key, v); err != nil {
			return "", err
		}
		parts = append(parts, f.key+"="+v)
	}

	return strings.Join(parts, separator), nil
}

// Parse decodes a payload produced by Encode. Unknown keys are ignored;
// an empty or absent required field yields a *MissingFieldError.
func Parse(s string) (Payment, error) {
	parts := strings.Split(s, separator)
	if len(parts) == 0 || parts[0] != FormatTag {
		return Payment{}, fmt.Errorf("%w: missing %s tag", ErrMalformedPayload, FormatTag)
	}

	values := make(map[string]string, len(parts)-1)
	for _, kv := range parts[1:] {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return Payment{}, fmt.Errorf("%w: segment %q", ErrMalformedPayload, kv)
		}
		if _, dup := values[key]; dup {
			return Payment{}, fmt.Errorf("%w: duplicate key %s", ErrMalformedPayload, key)
		}
		values[key] = value
	}

	var p Payment
	for _, f := range requiredFields {
		v := values[f.key]
		if strings.TrimSpace(v) == "" {
			return Payment{}, &MissingFieldError{Field: f.key}
		}
		if err := f.set(&p, v); err != nil {
			return Payment{}, err
		}
	}
	for _, f := range optionalFields {
		if v, ok := values[f.key]; ok {
			if err := f.set(&p, v); err != nil {
				return Payment{}, err
			}
		}
	}
	return p, nil
}

// Purpose formats the payment purpose referencing an invoice.
func Purpose(invoiceNumber string, invoiceDate civil.Date) string {
	return fmt.Sprintf("Оплата по счету №%s от %02d.%02d.%04d",
		invoiceNumber, invoiceDate.Day, int(invoiceDate.Month), invoiceDate.Year)
}

func checkValue(key, v string) error {
	if strings.Contains(v, separator) {
		return fmt.Errorf("%w: %s contains %q", ErrInvalidQRField, key, separator)
	}
	return nil
}
