package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"docgen/internal/logger"
	"docgen/pkg/services"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an invoice and a service act from one exchange rate",
	Long: `Generate the payment invoice and the service act for the given services.

The Central Bank rate of the reference date is fetched once and both
documents carry the same ruble total. The invoice number is derived from
the reference month; the same-month sequence index comes from the register
unless --sequence is given. Rendered HTML is written to OUTPUT_DIR and the
invoice is recorded in the register.

Service lines are either a bare description, whose period is computed from
the reference date, or "description|start|end" with an explicit period.

Required environment variables:
  COMPANY_NAME, COMPANY_INN          - contractor
  BANK_NAME, BANK_BIC, BANK_CORRESP_ACC, BANK_PERSONAL_ACC
  CLIENT_NAME                        - customer
  BASE_RATE, BASE_CURRENCY           - price per service (e.g. 1000 USD)`,
	Example: `  # Generate documents for today
  docgen generate -s "Консультационные услуги"

  # Two services, one with an explicit period, for a given date
  docgen generate -d 2025-09-27 \
    -s "Консультационные услуги" \
    -s "Аудит|01.06.2025|30.06.2025"

  # Read services from a file and skip the HTML output
  docgen generate -f services.txt --no-files -o result.json`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addIssueFlags(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	return runIssue(cmd, services.Both, logger.WithComponent("generate"))
}

// runIssue drives generate, invoice and act.
func runIssue(cmd *cobra.Command, kind services.Kind, log zerolog.Logger) error {
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	req, err := issueRequest(cmd, kind, log)
	if err != nil {
		return handleGenerationError(err, log)
	}

	log.Info().
		Str("kind", kind.String()).
		Str("date", req.ReferenceDate.String()).
		Int("services", len(req.Services)).
		Int("timeout", timeoutSecs).
		Msg("Starting document generation")

	ctx, cancel := createContext(timeoutSecs, log)
	defer cancel()

	a, err := loadApp(ctx, log)
	if err != nil {
		return err
	}

	if kind != services.Both {
		if req.Totals, err = readTotals(cmd, a.cfg.BaseCurrency, req.ReferenceDate); err != nil {
			return err
		}
	}

	result, err := a.issuer.Issue(ctx, req)
	if err != nil {
		return handleGenerationError(err, log)
	}

	event := log.Info().Int("sequence", result.Sequence).Bool("recorded", result.Recorded)
	if result.Invoice != nil {
		event = event.Str("invoice", result.Invoice.Number).Str("total", result.Invoice.TotalAmount.StringFixed(2))
	}
	if result.Act != nil {
		event = event.Str("act", result.Act.Number).Str("fx_rate", result.Act.FXRate.String())
	}
	event.Msg("Documents generated successfully")

	return writeResult(result, outputPath, log)
}
