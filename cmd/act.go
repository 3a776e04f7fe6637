package cmd

import (
	"github.com/spf13/cobra"

	"docgen/internal/logger"
	"docgen/pkg/services"
)

var actCmd = &cobra.Command{
	Use:   "act",
	Short: "Generate only the service act",
	Long: `Generate the service act (акт оказанных услуг) numbered by the day and
month of the reference date.

Without --total and --fx-rate the Central Bank rate of the reference date is
fetched. Pass the values of the matching invoice so both documents agree.`,
	Example: `  docgen act -d 2025-09-27 -s "Консультационные услуги" \
    --total 83452.10 --fx-rate 83.4521`,
	Args: cobra.NoArgs,
	RunE: runAct,
}

func init() {
	rootCmd.AddCommand(actCmd)
	addIssueFlags(actCmd)
	addTotalsFlags(actCmd)
}

func runAct(cmd *cobra.Command, args []string) error {
	return runIssue(cmd, services.ActOnly, logger.WithComponent("act"))
}
