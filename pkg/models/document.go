package models

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ServiceEntry is one billed line with its resolved service period.
type ServiceEntry struct {
	Description string     `json:"description"`
	Start       civil.Date `json:"start_date"`
	End         civil.Date `json:"end_date"`
}

// ExchangeRate is the officially published rate of Base in Quote units on Date.
type ExchangeRate struct {
	Pair string          `json:"currency_pair"` // e.g. "USD/RUB"
	Date civil.Date      `json:"date"`
	Rate decimal.Decimal `json:"rate"`
}

// InvoiceDocument is the populated invoice handed to a renderer.
type InvoiceDocument struct {
	Number        string          `json:"number"`
	Date          civil.Date      `json:"date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AmountInWords string          `json:"amount_in_words"`
	QRPayload     string          `json:"qr_payload"`
	LineItems     []ServiceEntry  `json:"line_items"`

	Payee  Company `json:"payee"`
	Bank   Bank    `json:"bank"`
	Payer  Client  `json:"payer"`
	Detail string  `json:"payee_details"`
}

// ActDocument is the populated service act handed to a renderer. Its
// TotalAmountRUB always equals the TotalAmount of the invoice built in
// the same run.
type ActDocument struct {
	Number         string          `json:"number"`
	Date           civil.Date      `json:"date"`
	PeriodStart    civil.Date      `json:"period_start"`
	PeriodEnd      civil.Date      `json:"period_end"`
	FXRate         decimal.Decimal `json:"fx_rate"`
	Currency       string          `json:"currency"`
	TotalAmountRUB decimal.Decimal `json:"total_amount_rub"`
	AmountInWords  string          `json:"amount_in_words"`
	LineItems      []ServiceEntry  `json:"line_items"`

	Contractor Company `json:"contractor"`
	Customer   Client  `json:"customer"`
}
