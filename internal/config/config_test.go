package config

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen/internal/numbering"
	"docgen/internal/period"
	"docgen/internal/words"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "USD", cfg.BaseCurrency)
	assert.Equal(t, period.PrecedingMonth, cfg.PeriodPolicy)
	assert.Equal(t, numbering.Octal, cfg.NumberScheme)
	assert.Equal(t, words.MinorDigits, cfg.MinorStyle)
	assert.True(t, cfg.RoundTo.IsZero())
	assert.Equal(t, 10*time.Second, cfg.CBRTimeout)
	assert.Equal(t, RegisterXLSX, cfg.RegisterBackend)
	assert.Equal(t, "ИП", cfg.Profile().Company.LegalFormShort)
}

func TestLoad_Profile(t *testing.T) {
	t.Setenv("COMPANY_NAME", "Иванов Иван Иванович")
	t.Setenv("COMPANY_INN", "771234567890")
	t.Setenv("BANK_BIC", "044525974")
	t.Setenv("CLIENT_NAME", "Петров Пётр Сергеевич")
	t.Setenv("CLIENT_CONTRACT_DATE", "2024-03-01")
	t.Setenv("BASE_RATE", "16667")
	t.Setenv("BASE_CURRENCY", "eur")
	t.Setenv("PERIOD_POLICY", "current")
	t.Setenv("INVOICE_NUMBER_SCHEME", "octal-digits")
	t.Setenv("AMOUNT_ROUND_TO", "10")
	t.Setenv("AMOUNT_MINOR_STYLE", "words")

	cfg, err := Load()
	require.NoError(t, err)

	p := cfg.Profile()
	assert.Equal(t, "Иванов Иван Иванович", p.Company.Name)
	assert.Equal(t, "044525974", p.Bank.BIC)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.March, Day: 1}, p.Client.ContractDate)
	assert.Equal(t, "16667", p.Financial.BaseRate.String())
	assert.Equal(t, "EUR", p.Financial.Currency)

	opts := cfg.EngineOptions()
	assert.Equal(t, period.CurrentMonth, opts.Policy)
	assert.Equal(t, numbering.OctalDigits, opts.Scheme)
	assert.Equal(t, "10", opts.RoundTo.String())
	assert.Equal(t, words.MinorWords, opts.MinorStyle)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"BASE_RATE":             "ten",
		"CLIENT_CONTRACT_DATE":  "01.03.2024",
		"PERIOD_POLICY":         "weekly",
		"INVOICE_NUMBER_SCHEME": "hex",
		"AMOUNT_MINOR_STYLE":    "roman",
		"CBR_TIMEOUT":           "soon",
		"BASE_CURRENCY":         "dollars",
		"REGISTER_BACKEND":      "postgres",
		"QR_SIZE":               "16",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_SheetsRegisterNeedsURL(t *testing.T) {
	t.Setenv("REGISTER_BACKEND", "sheets")
	_, err := Load()
	assert.ErrorContains(t, err, "GOOGLE_SHEET_URL")

	t.Setenv("GOOGLE_SHEET_URL", "https://docs.google.com/spreadsheets/d/abc/edit")
	_, err = Load()
	assert.NoError(t, err)
}
