// Package document assembles the monthly invoice and service act.
//
// One Engine run resolves the service periods, fetches the exchange rate
// exactly once, computes the shared ruble total and builds both documents
// from it, so the invoice total always equals the act total. Any
// component failure aborts the run without returning a partial document,
// and the component's error is returned as is for errors.Is checks.
package document

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"docgen/internal/amount"
	"docgen/internal/logger"
	"docgen/internal/numbering"
	"docgen/internal/payment"
	"docgen/internal/period"
	"docgen/internal/rates"
	"docgen/internal/words"
	"docgen/pkg/models"
)

// Options selects the interchangeable rules of an Engine.
type Options struct {
	Policy     period.Policy
	Scheme     numbering.Scheme
	RoundTo    decimal.Decimal // zero means one kopeck
	MinorStyle words.Style
}

// Engine builds documents for one profile. It holds no mutable state and
// is safe for concurrent use.
type Engine struct {
	profile models.Profile
	rates   rates.Provider
	periods *period.Calculator
	numbers *numbering.Generator
	amounts *amount.Calculator
	words   *words.Converter
	log     zerolog.Logger
}

// Request is one generation run.
type Request struct {
	Services      []models.ServiceInput
	ReferenceDate civil.Date
	Sequence      int // same-month invoice index, 0 for the first
}

// Totals carries an already agreed rate and total. Passing it to the
// single-document variants skips the rate fetch.
type Totals struct {
	FXRate models.ExchangeRate
	Amount decimal.Decimal
}

// NewEngine validates the profile and builds an Engine.
func NewEngine(profile models.Profile, provider rates.Provider, opts Options) (*Engine, error) {
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	amounts := amount.NewCalculator()
	if !opts.RoundTo.IsZero() {
		var err error
		if amounts, err = amount.NewCalculatorWithStep(opts.RoundTo); err != nil {
			return nil, err
		}
	}

	e := &Engine{
		profile: profile,
		rates:   provider,
		periods: period.NewCalculator(opts.Policy),
		numbers: numbering.NewGenerator(opts.Scheme),
		amounts: amounts,
		words:   words.NewConverter(opts.MinorStyle),
		log:     logger.WithComponent("document-engine"),
	}

	e.log.Debug().
		Str("currency", profile.Financial.Currency).
		Str("base_rate", profile.Financial.BaseRate.String()).
		Str("round_to", amounts.Step().String()).
		Str("policy", e.periods.Policy().String()).
		Msg("Document engine configured")

	return e, nil
}

// Profile returns the engine's profile.
func (e *Engine) Profile() models.Profile {
	return e.profile
}

// run is the state shared by the invoice and act of one request.
type run struct {
	date    civil.Date
	entries []models.ServiceEntry
	totals  Totals
	words   string
}

// Generate builds the invoice and act of one run from a single rate fetch.
func (e *Engine) Generate(ctx context.Context, req Request) (*models.InvoiceDocument, *models.ActDocument, error) {
	start := time.Now()

	r, err := e.prepare(ctx, req, nil)
	if err != nil {
		return nil, nil, err
	}

	inv, err := e.invoice(r, req.Sequence)
	if err != nil {
		return nil, nil, err
	}
	act := e.act(r)

	e.log.Info().
		Str("invoice_number", inv.Number).
		Str("act_number", act.Number).
		Str("total", inv.TotalAmount.StringFixed(2)).
		Str("fx_rate", act.FXRate.String()).
		Int("services", len(r.entries)).
		Dur("duration", time.Since(start)).
		Msg("Documents generated")

	return inv, act, nil
}

// GenerateInvoice builds only the invoice. A nil totals fetches the rate.
func (e *Engine) GenerateInvoice(ctx context.Context, req Request, totals *Totals) (*models.InvoiceDocument, error) {
	r, err := e.prepare(ctx, req, totals)
	if err != nil {
		return nil, err
	}
	inv, err := e.invoice(r, req.Sequence)
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("invoice_number", inv.Number).
		Str("total", inv.TotalAmount.StringFixed(2)).
		Bool("fetched_rate", totals == nil).
		Msg("Invoice generated")

	return inv, nil
}

// GenerateAct builds only the act. A nil totals fetches the rate.
func (e *Engine) GenerateAct(ctx context.Context, req Request, totals *Totals) (*models.ActDocument, error) {
	r, err := e.prepare(ctx, req, totals)
	if err != nil {
		return nil, err
	}
	act := e.act(r)

	e.log.Info().
		Str("act_number", act.Number).
		Str("total", act.TotalAmountRUB.StringFixed(2)).
		Bool("fetched_rate", totals == nil).
		Msg("Act generated")

	return act, nil
}

// Quote fetches the rate for date and computes the total for count
// services, producing Totals that separately generated documents can share.
func (e *Engine) Quote(ctx context.Context, date civil.Date, count int) (*Totals, error) {
	rate, err := e.rates.Fetch(ctx, e.profile.Financial.Currency, date)
	if err != nil {
		return nil, err
	}
	total, err := e.amounts.Total(e.profile.Financial.BaseRate, rate.Rate, count)
	if err != nil {
		return nil, err
	}
	return &Totals{FXRate: rate, Amount: total}, nil
}

func (e *Engine) prepare(ctx context.Context, req Request, totals *Totals) (*run, error) {
	if len(req.Services) == 0 {
		return nil, ErrEmptyServiceList
	}
	if !req.ReferenceDate.IsValid() {
		return nil, fmt.Errorf("%w: reference date %v", period.ErrInvalidDate, req.ReferenceDate)
	}

	e.log.Debug().
		Str("reference_date", req.ReferenceDate.String()).
		Int("services", len(req.Services)).
		Int("sequence", req.Sequence).
		Str("policy", e.periods.Policy().String()).
		Msg("Starting document generation")

	entries, err := e.periods.Resolve(req.Services, req.ReferenceDate)
	if err != nil {
		return nil, err
	}

	if totals == nil {
		if totals, err = e.Quote(ctx, req.ReferenceDate, len(entries)); err != nil {
			return nil, err
		}
	} else if !totals.Amount.IsPositive() || !totals.FXRate.Rate.IsPositive() {
		return nil, fmt.Errorf("%w: supplied rate %s, total %s", amount.ErrInvalidRate, totals.FXRate.Rate, totals.Amount)
	}

	inWords, err := e.words.FromDecimal(totals.Amount, words.RUB)
	if err != nil {
		return nil, err
	}

	return &run{
		date:    req.ReferenceDate,
		entries: entries,
		totals:  *totals,
		words:   inWords,
	}, nil
}

func (e *Engine) invoice(r *run, sequence int) (*models.InvoiceDocument, error) {
	number, err := e.numbers.Generate(r.date, sequence)
	if err != nil {
		return nil, err
	}

	payload, err := e.payload(number, r.date, r.totals.Amount)
	if err != nil {
		return nil, err
	}

	return &models.InvoiceDocument{
		Number:        number,
		Date:          r.date,
		TotalAmount:   r.totals.Amount,
		AmountInWords: r.words,
		QRPayload:     payload,
		LineItems:     cloneEntries(r.entries),
		Payee:         e.profile.Company,
		Bank:          e.profile.Bank,
		Payer:         e.profile.Client,
		Detail:        PayeeDetails(e.profile.Company, e.profile.Bank),
	}, nil
}

// Renumber returns a copy of inv carrying the invoice number for sequence
// and a payment payload that quotes it. The total is unchanged.
func (e *Engine) Renumber(inv *models.InvoiceDocument, sequence int) (*models.InvoiceDocument, error) {
	number, err := e.numbers.Generate(inv.Date, sequence)
	if err != nil {
		return nil, err
	}
	payload, err := e.payload(number, inv.Date, inv.TotalAmount)
	if err != nil {
		return nil, err
	}

	out := *inv
	out.Number = number
	out.QRPayload = payload
	out.LineItems = cloneEntries(inv.LineItems)
	return &out, nil
}

func (e *Engine) payload(number string, date civil.Date, total decimal.Decimal) (string, error) {
	return payment.Encode(payment.Payment{
		Name:        e.profile.Company.Name,
		PersonalAcc: e.profile.Bank.PersonalAcc,
		BankName:    e.profile.Bank.Name,
		BIC:         e.profile.Bank.BIC,
		CorrespAcc:  e.profile.Bank.CorrespAcc,
		PayeeINN:    e.profile.Company.INN,
		Sum:         amount.MinorUnits(total),
		Purpose:     payment.Purpose(number, date),
		KPP:         e.profile.Company.KPP,
	})
}

func (e *Engine) act(r *run) *models.ActDocument {
	cover := period.Covering(r.entries)
	return &models.ActDocument{
		Number:         ActNumber(r.date),
		Date:           r.date,
		PeriodStart:    cover.Start,
		PeriodEnd:      cover.End,
		FXRate:         r.totals.FXRate.Rate,
		Currency:       e.profile.Financial.Currency,
		TotalAmountRUB: r.totals.Amount,
		AmountInWords:  r.words,
		LineItems:      cloneEntries(r.entries),
		Contractor:     e.profile.Company,
		Customer:       e.profile.Client,
	}
}

// ActNumber formats the act number as the day and month of its date.
func ActNumber(d civil.Date) string {
	return fmt.Sprintf("%02d%02d", d.Day, int(d.Month))
}

// PayeeDetails formats the one-line payee block printed on invoices.
func PayeeDetails(c models.Company, b models.Bank) string {
	return fmt.Sprintf("%s, ИНН %s, р/с %s, в банке %s, БИК %s, к/с %s",
		c.Name, c.INN, b.PersonalAcc, b.Name, b.BIC, b.CorrespAcc)
}

func cloneEntries(entries []models.ServiceEntry) []models.ServiceEntry {
	out := make([]models.ServiceEntry, len(entries))
	copy(out, entries)
	return out
}

func validateProfile(p models.Profile) error {
	required := []struct {
		field, value string
	}{
		{"company name", p.Company.Name},
		{"company INN", p.Company.INN},
		{"bank name", p.Bank.Name},
		{"bank BIC", p.Bank.BIC},
		{"bank correspondent account", p.Bank.CorrespAcc},
		{"bank personal account", p.Bank.PersonalAcc},
		{"client name", p.Client.Name},
		{"currency", p.Financial.Currency},
	}
	for _, r := range required {
		if r.value == "" {
			return &ProfileError{Field: r.field}
		}
	}
	if !p.Financial.BaseRate.IsPositive() {
		return fmt.Errorf("%w: base rate %s", amount.ErrInvalidRate, p.Financial.BaseRate)
	}
	return nil
}
