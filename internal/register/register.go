// Package register keeps the ledger of issued documents. The ledger
// supplies the same-month sequence index used in invoice numbers and
// records every generated invoice and act pair.
//
// Two backends share one row layout: a local XLSX workbook and a Google
// Sheets spreadsheet.
package register

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"docgen/internal/numbering"
	"docgen/pkg/models"
)

// DefaultSheet is the worksheet holding the ledger.
const DefaultSheet = "Реестр"

var (
	// ErrMalformedRow is returned for a ledger row that cannot be parsed.
	ErrMalformedRow = errors.New("malformed register row")

	// ErrDuplicateInvoice is returned when an invoice number is recorded twice.
	ErrDuplicateInvoice = errors.New("invoice already recorded")
)

// Register is a ledger of issued documents.
type Register interface {
	// NextSequence returns the sequence index for the next invoice dated
	// in date's month: 0 for the first, then 1, 2 and so on.
	NextSequence(ctx context.Context, date civil.Date) (int, error)

	// Record appends an issued invoice and act pair.
	Record(ctx context.Context, e Entry) error

	// Entries lists every recorded pair in insertion order.
	Entries(ctx context.Context) ([]Entry, error)
}

// Entry is one ledger row.
type Entry struct {
	Period        string          `json:"period"` // YYYY-MM
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	ActNumber     string          `json:"act_number,omitempty"`
	Date          civil.Date      `json:"date"`
	PeriodStart   civil.Date      `json:"period_start"`
	PeriodEnd     civil.Date      `json:"period_end"`
	Currency      string          `json:"currency,omitempty"`
	FXRate        decimal.Decimal `json:"fx_rate"`
	Total         decimal.Decimal `json:"total"`
	Services      int             `json:"services"`
	IssuedAt      time.Time       `json:"issued_at"`
}

// EntryFromDocuments builds the ledger row for one generation run. Either
// document may be nil when only one was produced.
func EntryFromDocuments(inv *models.InvoiceDocument, act *models.ActDocument) Entry {
	e := Entry{IssuedAt: time.Now().UTC().Truncate(time.Second)}
	if act != nil {
		e.ActNumber = act.Number
		e.Date = act.Date
		e.PeriodStart = act.PeriodStart
		e.PeriodEnd = act.PeriodEnd
		e.Currency = act.Currency
		e.FXRate = act.FXRate
		e.Total = act.TotalAmountRUB
		e.Services = len(act.LineItems)
	}
	if inv != nil {
		e.InvoiceNumber = inv.Number
		e.Date = inv.Date
		e.Total = inv.TotalAmount
		e.Services = len(inv.LineItems)
	}
	e.Period = numbering.Period(e.Date)
	return e
}

var header = []string{
	"Месяц", "Номер счета", "Дата", "Номер акта", "Период с", "Период по",
	"Валюта", "Курс", "Сумма, руб.", "Услуг", "Создано",
}

const columns = "A:K"

func (e Entry) row() []any {
	return []any{
		e.Period,
		e.InvoiceNumber,
		formatDate(e.Date),
		e.ActNumber,
		formatDate(e.PeriodStart),
		formatDate(e.PeriodEnd),
		e.Currency,
		e.FXRate.String(),
		e.Total.StringFixed(2),
		e.Services,
		e.IssuedAt.Format(time.RFC3339),
	}
}

func parseRow(cells []string, rowNum int) (Entry, error) {
	if len(cells) < len(header) {
		cells = append(cells, make([]string, len(header)-len(cells))...)
	}
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}

	e := Entry{
		Period:        cells[0],
		InvoiceNumber: cells[1],
		ActNumber:     cells[3],
		Currency:      cells[6],
	}
	if e.Period == "" {
		return Entry{}, fmt.Errorf("%w: row %d: empty month", ErrMalformedRow, rowNum)
	}

	var err error
	if e.Date, err = parseDate(cells[2]); err != nil {
		return Entry{}, fmt.Errorf("%w: row %d: date: %v", ErrMalformedRow, rowNum, err)
	}
	if e.PeriodStart, err = parseDate(cells[4]); err != nil {
		return Entry{}, fmt.Errorf("%w: row %d: period start: %v", ErrMalformedRow, rowNum, err)
	}
	if e.PeriodEnd, err = parseDate(cells[5]); err != nil {
		return Entry{}, fmt.Errorf("%w: row %d: period end: %v", ErrMalformedRow, rowNum, err)
	}
	if e.FXRate, err = parseDecimal(cells[7]); err != nil {
		return Entry{}, fmt.Errorf("%w: row %d: rate: %v", ErrMalformedRow, rowNum, err)
	}
	if e.Total, err = parseDecimal(cells[8]); err != nil {
		return Entry{}, fmt.Errorf("%w: row %d: total: %v", ErrMalformedRow, rowNum, err)
	}
	if cells[9] != "" {
		if e.Services, err = strconv.Atoi(cells[9]); err != nil {
			return Entry{}, fmt.Errorf("%w: row %d: services: %v", ErrMalformedRow, rowNum, err)
		}
	}
	if cells[10] != "" {
		if e.IssuedAt, err = time.Parse(time.RFC3339, cells[10]); err != nil {
			return Entry{}, fmt.Errorf("%w: row %d: issued at: %v", ErrMalformedRow, rowNum, err)
		}
	}
	return e, nil
}

// nextSequence counts the entries already recorded for date's month.
func nextSequence(entries []Entry, date civil.Date) int {
	period := numbering.Period(date)
	n := 0
	for _, e := range entries {
		if e.Period == period && e.InvoiceNumber != "" {
			n++
		}
	}
	return n
}

func checkDuplicate(entries []Entry, e Entry) error {
	if e.InvoiceNumber == "" {
		return nil
	}
	for _, existing := range entries {
		if existing.InvoiceNumber == e.InvoiceNumber {
			return fmt.Errorf("%w: %s", ErrDuplicateInvoice, e.InvoiceNumber)
		}
	}
	return nil
}

func formatDate(d civil.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func parseDate(s string) (civil.Date, error) {
	if s == "" {
		return civil.Date{}, nil
	}
	return civil.ParseDate(s)
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.Replace(s, ",", ".", 1))
}
