package document

import (
	"fmt"

	"docgen/pkg/models"
)

// Reconcile checks that an invoice and act describe the same billing: equal
// totals and the same number of line items.
func Reconcile(inv *models.InvoiceDocument, act *models.ActDocument) error {
	if inv == nil || act == nil {
		return fmt.Errorf("%w: missing document", ErrTotalsMismatch)
	}
	if !inv.TotalAmount.Equal(act.TotalAmountRUB) {
		return fmt.Errorf("%w: invoice %s has %s, act %s has %s",
			ErrTotalsMismatch, inv.Number, inv.TotalAmount.StringFixed(2), act.Number, act.TotalAmountRUB.StringFixed(2))
	}
	if len(inv.LineItems) != len(act.LineItems) {
		return fmt.Errorf("%w: invoice lists %d services, act lists %d",
			ErrTotalsMismatch, len(inv.LineItems), len(act.LineItems))
	}
	return nil
}
