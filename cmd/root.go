package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docgen/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "docgen",
	Short: "Docgen - invoice and act generator for foreign-currency services",
	Long: `Docgen produces a payment invoice (счет на оплату) and a service act
(акт оказанных услуг) for services billed at a fixed foreign-currency rate
and paid in rubles at the Central Bank of Russia rate of the issue date.

Business parameters (company, bank, client, base rate) come from the
environment or a .env file. Issued invoices are recorded in a register
(XLSX file or Google Sheet) which also supplies the same-month sequence
index for invoice numbers.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Docgen executed")

		fmt.Println("Welcome to Docgen!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
