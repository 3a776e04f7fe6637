package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"docgen/internal/amount"
	"docgen/internal/config"
	"docgen/internal/document"
	"docgen/internal/issuer"
	"docgen/internal/numbering"
	"docgen/internal/payment"
	"docgen/internal/period"
	"docgen/internal/rates"
	"docgen/internal/register"
	"docgen/internal/render"
	"docgen/internal/sheets"
	"docgen/internal/words"
	"docgen/pkg/models"
	"docgen/pkg/services"
)

// app bundles the components a command needs.
type app struct {
	cfg      *config.Config
	rates    rates.Provider
	qr       *payment.Renderer
	renderer *render.Renderer
	register register.Register
	issuer   *issuer.Issuer
}

// loadApp builds the engine, register and renderer from configuration.
func loadApp(ctx context.Context, log zerolog.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Configuration invalid")
		return nil, fmt.Errorf("invalid configuration. Please check your .env file: %w", err)
	}

	provider := rates.NewCBRClient(cfg.CBRURL, cfg.CBRTimeout)
	engine, err := document.NewEngine(cfg.Profile(), provider, cfg.EngineOptions())
	if err != nil {
		return nil, handleGenerationError(err, log)
	}

	qr := payment.NewRenderer(cfg.QRSize)
	renderer, err := render.New(qr)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	reg, err := openRegister(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		rates:    provider,
		qr:       qr,
		renderer: renderer,
		register: reg,
		issuer:   issuer.New(engine, reg, renderer, cfg.OutputDir),
	}, nil
}

// openRegister returns the configured register, or nil for the none backend.
func openRegister(ctx context.Context, cfg *config.Config, log zerolog.Logger) (register.Register, error) {
	switch cfg.RegisterBackend {
	case config.RegisterSheets:
		svc, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
		if err != nil {
			if errors.Is(err, sheets.ErrMissingCredentials) {
				log.Error().Err(err).Msg("Google credentials not configured")
				return nil, fmt.Errorf("missing Google credentials for the sheets register. Please set one of:\n" +
					"  GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n" +
					"  GOOGLE_CREDENTIALS='<json-credentials>'\n" +
					"Original error: %w", err)
			}
			return nil, fmt.Errorf("failed to connect to Google Sheets: %w", err)
		}
		log.Debug().Str("sheet", cfg.RegisterSheet).Msg("Using Google Sheets register")
		return register.NewSheets(svc, cfg.RegisterSheet), nil
	case config.RegisterXLSX:
		log.Debug().Str("path", cfg.RegisterPath).Msg("Using XLSX register")
		return register.NewXLSX(cfg.RegisterPath, cfg.RegisterSheet), nil
	default:
		return nil, nil
	}
}

// createContext creates a context with timeout and signal handling
func createContext(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// addIssueFlags registers the flags shared by generate, invoice and act.
func addIssueFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("service", "s", nil, `Service line: "description" or "description|start|end" (repeatable)`)
	cmd.Flags().StringP("services-file", "f", "", "File with one service line per row (- for stdin)")
	cmd.Flags().StringP("date", "d", "", "Reference date YYYY-MM-DD (default: today)")
	cmd.Flags().Int("sequence", -1, "Same-month invoice index (default: taken from the register)")
	cmd.Flags().Bool("no-files", false, "Do not write HTML files to the output directory")
	cmd.Flags().StringP("output", "o", "", "Write the JSON result to a file (default: stdout)")
	cmd.Flags().Int("timeout", 30, "Timeout in seconds")
}

// addTotalsFlags registers --total and --fx-rate for single-document commands.
func addTotalsFlags(cmd *cobra.Command) {
	cmd.Flags().String("total", "", "Ruble total from an earlier run; requires --fx-rate")
	cmd.Flags().String("fx-rate", "", "Exchange rate from an earlier run; requires --total")
}

// issueRequest reads the shared issue flags.
func issueRequest(cmd *cobra.Command, kind services.Kind, log zerolog.Logger) (services.IssueRequest, error) {
	inputs, err := readServices(cmd, log)
	if err != nil {
		return services.IssueRequest{}, err
	}

	dateStr, _ := cmd.Flags().GetString("date")
	date, err := parseDateFlag(dateStr)
	if err != nil {
		return services.IssueRequest{}, err
	}

	noFiles, _ := cmd.Flags().GetBool("no-files")
	req := services.IssueRequest{
		Services:      inputs,
		ReferenceDate: date,
		Kind:          kind,
		WriteFiles:    !noFiles,
	}

	if cmd.Flags().Changed("sequence") {
		seq, _ := cmd.Flags().GetInt("sequence")
		req.Sequence = &seq
	}

	return req, nil
}

// readServices collects --service values and the --services-file contents.
func readServices(cmd *cobra.Command, log zerolog.Logger) ([]models.ServiceInput, error) {
	lines, _ := cmd.Flags().GetStringArray("service")
	path, _ := cmd.Flags().GetString("services-file")

	var inputs []models.ServiceInput
	for _, line := range lines {
		in, err := models.ParseServiceLine(line)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}

	if path != "" {
		var (
			data []byte
			err  error
		)
		if path == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("Failed to read services file")
			return nil, fmt.Errorf("failed to read services file: %w", err)
		}
		fromFile, err := models.ParseServiceLines(string(data))
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, fromFile...)
	}

	log.Debug().Int("services", len(inputs)).Msg("Services parsed")
	return inputs, nil
}

// readTotals builds Totals from --total and --fx-rate, or returns nil when
// neither is set.
func readTotals(cmd *cobra.Command, currency string, date civil.Date) (*document.Totals, error) {
	totalStr, _ := cmd.Flags().GetString("total")
	rateStr, _ := cmd.Flags().GetString("fx-rate")
	if totalStr == "" && rateStr == "" {
		return nil, nil
	}
	if totalStr == "" || rateStr == "" {
		return nil, fmt.Errorf("--total and --fx-rate must be given together")
	}

	total, err := decimal.NewFromString(normalizeDecimal(totalStr))
	if err != nil {
		return nil, fmt.Errorf("invalid --total %q: %w", totalStr, err)
	}
	rate, err := decimal.NewFromString(normalizeDecimal(rateStr))
	if err != nil {
		return nil, fmt.Errorf("invalid --fx-rate %q: %w", rateStr, err)
	}

	return &document.Totals{
		FXRate: models.ExchangeRate{Pair: rates.Pair(currency), Date: date, Rate: rate},
		Amount: total,
	}, nil
}

func normalizeDecimal(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	return strings.Replace(s, ",", ".", 1)
}

func parseDateFlag(s string) (civil.Date, error) {
	if s == "" {
		return civil.DateOf(time.Now()), nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// writeResult prints v as indented JSON to stdout or outputPath.
func writeResult(v any, outputPath string, log zerolog.Logger) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal result")
		return fmt.Errorf("failed to format output: %w", err)
	}

	if outputPath == "" {
		fmt.Println(string(jsonData))
		return nil
	}

	if err := os.WriteFile(outputPath, append(jsonData, '\n'), 0o644); err != nil {
		log.Error().Err(err).Str("output", outputPath).Msg("Failed to write output file")
		return fmt.Errorf("failed to write output file: %w", err)
	}
	log.Info().Str("output", outputPath).Msg("Result saved")
	return nil
}

// handleGenerationError provides user-friendly error messages for generation failures
func handleGenerationError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Document generation failed")

	var profileErr *document.ProfileError
	var fetchErr *rates.FetchError

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("timed out waiting for the exchange rate. Try increasing --timeout or CBR_TIMEOUT")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("document generation was canceled")
	case errors.As(err, &fetchErr) && fetchErr.StatusCode != 0:
		return fmt.Errorf("the Central Bank returned HTTP %d for the %s rate on %s. Try again later or pass --total and --fx-rate",
			fetchErr.StatusCode, fetchErr.Currency, fetchErr.Date)
	case errors.Is(err, rates.ErrRateUnavailable):
		return fmt.Errorf("exchange rate unavailable. Check the network or CBR_URL: %w", err)
	case errors.Is(err, document.ErrEmptyServiceList):
		return fmt.Errorf("no services given. Use --service or --services-file")
	case errors.Is(err, models.ErrInvalidServiceLine):
		return fmt.Errorf("could not parse a service line: %w", err)
	case errors.Is(err, numbering.ErrNonOctalDigit):
		return fmt.Errorf("the date cannot be written with the octal-digits scheme. Set INVOICE_NUMBER_SCHEME=octal: %w", err)
	case errors.Is(err, period.ErrInvalidDate), errors.Is(err, numbering.ErrInvalidDate):
		return fmt.Errorf("invalid reference date: %w", err)
	case errors.Is(err, numbering.ErrInvalidSequence):
		return fmt.Errorf("--sequence must not be negative")
	case errors.Is(err, amount.ErrInvalidRate):
		return fmt.Errorf("BASE_RATE, the exchange rate and --total must be positive: %w", err)
	case errors.Is(err, amount.ErrInvalidStep):
		return fmt.Errorf("AMOUNT_ROUND_TO must be at least 0.01: %w", err)
	case errors.As(err, &profileErr):
		return fmt.Errorf("business profile incomplete: %s is not set. Please check your .env file", profileErr.Field)
	case errors.Is(err, payment.ErrMissingQRField), errors.Is(err, payment.ErrInvalidQRField):
		return fmt.Errorf("payment QR code could not be built. Check the company and bank settings: %w", err)
	case errors.Is(err, words.ErrNegativeAmount):
		return fmt.Errorf("the total must not be negative: %w", err)
	case errors.Is(err, register.ErrDuplicateInvoice):
		return fmt.Errorf("invoice already recorded in the register. Pass --sequence to issue another one: %w", err)
	case errors.Is(err, document.ErrTotalsMismatch):
		return fmt.Errorf("invoice and act totals differ: %w", err)
	default:
		return fmt.Errorf("document generation failed: %w", err)
	}
}
