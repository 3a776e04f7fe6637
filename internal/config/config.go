package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"docgen/internal/document"
	"docgen/internal/logger"
	"docgen/internal/numbering"
	"docgen/internal/period"
	"docgen/internal/rates"
	"docgen/internal/words"
	"docgen/pkg/models"
)

// Register backends.
const (
	RegisterNone   = "none"
	RegisterXLSX   = "xlsx"
	RegisterSheets = "sheets"
)

type Config struct {
	// Contractor
	CompanyLegalForm      string
	CompanyLegalFormShort string
	CompanyName           string
	CompanyINN            string
	CompanyKPP            string
	CompanyOGRNIP         string
	CompanySignatureName  string

	// Payee bank
	BankName        string
	BankBIC         string
	BankCorrespAcc  string
	BankPersonalAcc string

	// Customer
	ClientName         string
	ClientContractDate civil.Date

	// Billing
	BaseRate     decimal.Decimal
	BaseCurrency string
	PeriodPolicy period.Policy
	NumberScheme numbering.Scheme
	RoundTo      decimal.Decimal
	MinorStyle   words.Style

	// Central Bank rates
	CBRURL     string
	CBRTimeout time.Duration

	// Register
	RegisterBackend string
	RegisterPath    string
	RegisterSheet   string

	// Google Sheets Configuration
	GoogleSheetURL string

	// Output
	OutputDir string
	QRSize    int
	HTTPAddr  string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		CompanyLegalForm:      getEnv("COMPANY_LEGAL_FORM", "Индивидуальный предприниматель"),
		CompanyLegalFormShort: getEnv("COMPANY_LEGAL_FORM_SHORT", "ИП"),
		CompanyName:           getEnv("COMPANY_NAME", ""),
		CompanyINN:            getEnv("COMPANY_INN", ""),
		CompanyKPP:            getEnv("COMPANY_KPP", ""),
		CompanyOGRNIP:         getEnv("COMPANY_OGRNIP", ""),
		CompanySignatureName:  getEnv("COMPANY_SIGNATURE_NAME", ""),
		BankName:              getEnv("BANK_NAME", ""),
		BankBIC:               getEnv("BANK_BIC", ""),
		BankCorrespAcc:        getEnv("BANK_CORRESP_ACC", ""),
		BankPersonalAcc:       getEnv("BANK_PERSONAL_ACC", ""),
		ClientName:            getEnv("CLIENT_NAME", ""),
		BaseCurrency:          strings.ToUpper(getEnv("BASE_CURRENCY", "USD")),
		CBRURL:                getEnv("CBR_URL", rates.DefaultCBRURL),
		RegisterBackend:       strings.ToLower(getEnv("REGISTER_BACKEND", RegisterXLSX)),
		RegisterPath:          getEnv("REGISTER_PATH", "output/register.xlsx"),
		RegisterSheet:         getEnv("REGISTER_SHEET", ""),
		GoogleSheetURL:        getEnv("GOOGLE_SHEET_URL", ""),
		OutputDir:             getEnv("OUTPUT_DIR", "output"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:             getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.parse(); err != nil {
		return nil, fmt.Errorf("config parsing failed: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) parse() error {
	var err error

	if v := getEnv("CLIENT_CONTRACT_DATE", ""); v != "" {
		if c.ClientContractDate, err = civil.ParseDate(v); err != nil {
			return fmt.Errorf("CLIENT_CONTRACT_DATE must be YYYY-MM-DD: %w", err)
		}
	}
	if c.BaseRate, err = decimal.NewFromString(getEnv("BASE_RATE", "0")); err != nil {
		return fmt.Errorf("BASE_RATE: %w", err)
	}
	if v := getEnv("AMOUNT_ROUND_TO", ""); v != "" {
		if c.RoundTo, err = decimal.NewFromString(v); err != nil {
			return fmt.Errorf("AMOUNT_ROUND_TO: %w", err)
		}
	}
	if c.PeriodPolicy, err = period.ParsePolicy(getEnv("PERIOD_POLICY", period.PrecedingMonth.String())); err != nil {
		return fmt.Errorf("PERIOD_POLICY: %w", err)
	}
	if c.NumberScheme, err = numbering.ParseScheme(getEnv("INVOICE_NUMBER_SCHEME", numbering.Octal.String())); err != nil {
		return fmt.Errorf("INVOICE_NUMBER_SCHEME: %w", err)
	}
	switch style := strings.ToLower(getEnv("AMOUNT_MINOR_STYLE", "digits")); style {
	case "digits":
		c.MinorStyle = words.MinorDigits
	case "words":
		c.MinorStyle = words.MinorWords
	default:
		return fmt.Errorf("AMOUNT_MINOR_STYLE must be digits or words, got %q", style)
	}
	if c.CBRTimeout, err = time.ParseDuration(getEnv("CBR_TIMEOUT", "10s")); err != nil {
		return fmt.Errorf("CBR_TIMEOUT: %w", err)
	}
	if c.QRSize, err = strconv.Atoi(getEnv("QR_SIZE", "256")); err != nil {
		return fmt.Errorf("QR_SIZE: %w", err)
	}
	return nil
}

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

func (c *Config) validate() error {
	if c.BaseRate.IsNegative() {
		return fmt.Errorf("BASE_RATE must not be negative")
	}
	if c.RoundTo.IsNegative() {
		return fmt.Errorf("AMOUNT_ROUND_TO must not be negative")
	}
	if !currencyCode.MatchString(c.BaseCurrency) {
		return fmt.Errorf("BASE_CURRENCY must be a three-letter ISO code, got %q", c.BaseCurrency)
	}
	if c.CBRTimeout <= 0 {
		return fmt.Errorf("CBR_TIMEOUT must be positive")
	}
	if c.QRSize < 64 {
		return fmt.Errorf("QR_SIZE must be at least 64 pixels")
	}
	switch c.RegisterBackend {
	case RegisterNone, RegisterXLSX:
	case RegisterSheets:
		if c.GoogleSheetURL == "" {
			return fmt.Errorf("GOOGLE_SHEET_URL is required for the sheets register")
		}
	default:
		return fmt.Errorf("REGISTER_BACKEND must be one of none, xlsx, sheets; got %q", c.RegisterBackend)
	}
	return nil
}

// Profile returns the business parameters the document engine works with.
func (c *Config) Profile() models.Profile {
	return models.Profile{
		Company: models.Company{
			LegalForm:      c.CompanyLegalForm,
			LegalFormShort: c.CompanyLegalFormShort,
			Name:           c.CompanyName,
			INN:            c.CompanyINN,
			KPP:            c.CompanyKPP,
			OGRNIP:         c.CompanyOGRNIP,
			SignatureName:  c.CompanySignatureName,
		},
		Bank: models.Bank{
			Name:        c.BankName,
			BIC:         c.BankBIC,
			CorrespAcc:  c.BankCorrespAcc,
			PersonalAcc: c.BankPersonalAcc,
		},
		Client: models.Client{
			Name:         c.ClientName,
			ContractDate: c.ClientContractDate,
		},
		Financial: models.FinancialConfig{
			BaseRate: c.BaseRate,
			Currency: c.BaseCurrency,
		},
	}
}

// EngineOptions returns the configured generation rules.
func (c *Config) EngineOptions() document.Options {
	return document.Options{
		Policy:     c.PeriodPolicy,
		Scheme:     c.NumberScheme,
		RoundTo:    c.RoundTo,
		MinorStyle: c.MinorStyle,
	}
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
