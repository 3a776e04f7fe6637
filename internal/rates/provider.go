// Package rates fetches official exchange rates.
//
// The Central Bank of Russia publishes one rate per currency per business
// day at https://www.cbr.ru/scripts/XML_daily.asp. Requests for weekends
// and holidays return the last published rate, whose date is reported in
// the returned ExchangeRate.
//
// Rates are never cached: every call performs exactly one request, and any
// failure (timeout, non-200 status, empty body, unknown currency) is
// reported as ErrRateUnavailable. There is no fallback rate.
package rates

//go:generate mockgen -source=provider.go -destination=mocks/mock_provider.go -package=mocks

import (
	"context"

	"cloud.google.com/go/civil"
	"docgen/pkg/models"
)

// QuoteCurrency is the currency all rates are expressed in.
const QuoteCurrency = "RUB"

// Provider returns the official rate of one unit of currency in
// QuoteCurrency on the given date.
type Provider interface {
	Fetch(ctx context.Context, currency string, date civil.Date) (models.ExchangeRate, error)
}

// Pair formats the currency pair label, e.g. "USD/RUB".
func Pair(currency string) string {
	return currency + "/" + QuoteCurrency
}
