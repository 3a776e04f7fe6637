package cmd

import (
	"github.com/spf13/cobra"

	"docgen/internal/logger"
	"docgen/pkg/services"
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Generate only the payment invoice",
	Long: `Generate the payment invoice (счет на оплату) with its payment QR code.

Without --total and --fx-rate the Central Bank rate of the reference date is
fetched. Pass the total and rate printed by an earlier act run to make the
invoice match that act exactly.`,
	Example: `  # Invoice at today's rate
  docgen invoice -s "Консультационные услуги"

  # Invoice matching an act issued earlier
  docgen invoice -d 2025-09-27 -s "Консультационные услуги" \
    --total 83452.10 --fx-rate 83.4521`,
	Args: cobra.NoArgs,
	RunE: runInvoice,
}

func init() {
	rootCmd.AddCommand(invoiceCmd)
	addIssueFlags(invoiceCmd)
	addTotalsFlags(invoiceCmd)
}

func runInvoice(cmd *cobra.Command, args []string) error {
	return runIssue(cmd, services.InvoiceOnly, logger.WithComponent("invoice"))
}
