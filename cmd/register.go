package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"docgen/internal/config"
	"docgen/internal/logger"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Inspect the document register",
}

var registerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issued documents recorded in the register",
	Example: `  docgen register list
  docgen register list --month 2025-09`,
	Args: cobra.NoArgs,
	RunE: runRegisterList,
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.AddCommand(registerListCmd)

	registerListCmd.Flags().String("month", "", "Only entries of this month, YYYY-MM")
	registerListCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	registerListCmd.Flags().Int("timeout", 30, "Timeout in seconds")
}

func runRegisterList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("register")

	month, _ := cmd.Flags().GetString("month")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration. Please check your .env file: %w", err)
	}

	ctx, cancel := createContext(timeoutSecs, log)
	defer cancel()

	reg, err := openRegister(ctx, cfg, log)
	if err != nil {
		return err
	}
	if reg == nil {
		return fmt.Errorf("no register configured. Set REGISTER_BACKEND to xlsx or sheets")
	}

	entries, err := reg.Entries(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read register")
		return fmt.Errorf("failed to read register: %w", err)
	}

	if month != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.Period == month {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	log.Info().Int("entries", len(entries)).Str("month", month).Msg("Register read")
	return writeResult(entries, outputPath, log)
}
