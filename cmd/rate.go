package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"docgen/internal/config"
	"docgen/internal/logger"
	"docgen/internal/rates"
)

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Show the official Central Bank exchange rate",
	Long: `Fetch the exchange rate published by the Central Bank of Russia for a
currency on a date. The published date may precede the requested one on
weekends and holidays.`,
	Example: `  # Rate of BASE_CURRENCY for today
  docgen rate

  # Euro rate on a given date
  docgen rate -c EUR -d 2025-09-27`,
	Args: cobra.NoArgs,
	RunE: runRate,
}

func init() {
	rootCmd.AddCommand(rateCmd)

	rateCmd.Flags().StringP("currency", "c", "", "ISO currency code (default: BASE_CURRENCY)")
	rateCmd.Flags().StringP("date", "d", "", "Date YYYY-MM-DD (default: today)")
	rateCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	rateCmd.Flags().Int("timeout", 30, "Timeout in seconds")
}

func runRate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("rate")

	currency, _ := cmd.Flags().GetString("currency")
	dateStr, _ := cmd.Flags().GetString("date")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration. Please check your .env file: %w", err)
	}
	if currency == "" {
		currency = cfg.BaseCurrency
	}
	currency = strings.ToUpper(currency)

	date, err := parseDateFlag(dateStr)
	if err != nil {
		return err
	}

	ctx, cancel := createContext(timeoutSecs, log)
	defer cancel()

	rate, err := rates.NewCBRClient(cfg.CBRURL, cfg.CBRTimeout).Fetch(ctx, currency, date)
	if err != nil {
		return handleGenerationError(err, log)
	}

	log.Info().
		Str("pair", rate.Pair).
		Str("rate", rate.Rate.String()).
		Str("published", rate.Date.String()).
		Msg("Exchange rate fetched")

	return writeResult(rate, outputPath, log)
}
