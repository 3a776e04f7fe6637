package models

import (
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Company is the contractor issuing the documents.
type Company struct {
	LegalForm      string `json:"legal_form"`       // Индивидуальный предприниматель
	LegalFormShort string `json:"legal_form_short"` // ИП
	Name           string `json:"name"`
	INN            string `json:"inn"`
	KPP            string `json:"kpp,omitempty"`
	OGRNIP         string `json:"ogrnip,omitempty"`
	SignatureName  string `json:"signature_name"`
}

// Bank holds the payee's settlement account details.
type Bank struct {
	Name        string `json:"bank_name"`
	BIC         string `json:"bic"`
	CorrespAcc  string `json:"corresp_acc"`
	PersonalAcc string `json:"personal_acc"`
}

// Client is the customer the services are billed to.
type Client struct {
	Name         string     `json:"name"`
	ContractDate civil.Date `json:"contract_date"`
}

// SignatureName renders "LASTNAME FIRST MIDDLE" as "F.M. LASTNAME"; any
// other shape of name is returned unchanged.
func (c Client) SignatureName() string {
	parts := strings.Fields(c.Name)
	if len(parts) != 3 {
		return c.Name
	}
	first := []rune(parts[1])
	middle := []rune(parts[2])
	return string(first[0]) + "." + string(middle[0]) + ". " + parts[0]
}

// FinancialConfig is the billing rate expressed in a foreign currency.
type FinancialConfig struct {
	BaseRate decimal.Decimal `json:"base_rate"`
	Currency string          `json:"currency"`
}

// Profile bundles the read-only business parameters loaded once at
// startup. It is passed explicitly to the engine.
type Profile struct {
	Company   Company
	Bank      Bank
	Client    Client
	Financial FinancialConfig
}
