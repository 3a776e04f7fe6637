package document

import (
	"docgen/pkg/models"
)

// InvoiceContext flattens an invoice into the key/value context consumed
// by templates. Dates and amounts are left unformatted.
func InvoiceContext(inv *models.InvoiceDocument) map[string]any {
	return map[string]any{
		"number":          inv.Number,
		"date":            inv.Date,
		"total":           inv.TotalAmount,
		"total_in_words":  inv.AmountInWords,
		"qr_payload":      inv.QRPayload,
		"services":        inv.LineItems,
		"payee":           inv.Payee,
		"bank":            inv.Bank,
		"payer":           inv.Payer,
		"payee_details":   inv.Detail,
		"service_count":   len(inv.LineItems),
		"payer_signature": inv.Payer.SignatureName(),
	}
}

// ActContext flattens an act into the key/value context consumed by
// templates.
func ActContext(act *models.ActDocument) map[string]any {
	return map[string]any{
		"number":             act.Number,
		"date":               act.Date,
		"period_start":       act.PeriodStart,
		"period_end":         act.PeriodEnd,
		"fx_rate":            act.FXRate,
		"currency":           act.Currency,
		"total":              act.TotalAmountRUB,
		"total_in_words":     act.AmountInWords,
		"services":           act.LineItems,
		"contractor":         act.Contractor,
		"customer":           act.Customer,
		"customer_signature": act.Customer.SignatureName(),
		"contract_date":      act.Customer.ContractDate,
	}
}
