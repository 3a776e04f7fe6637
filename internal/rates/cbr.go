package rates

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"docgen/internal/logger"
	"docgen/pkg/models"
)

// DefaultCBRURL is the daily rates endpoint of the Central Bank of Russia.
const DefaultCBRURL = "https://www.cbr.ru/scripts/XML_daily.asp"

// DefaultTimeout bounds a single rate request.
const DefaultTimeout = 10 * time.Second

// CBRClient fetches rates from the Central Bank of Russia daily XML feed.
type CBRClient struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewCBRClient creates a client for baseURL. An empty baseURL selects
// DefaultCBRURL and a non-positive timeout selects DefaultTimeout.
func NewCBRClient(baseURL string, timeout time.Duration) *CBRClient {
	if baseURL == "" {
		baseURL = DefaultCBRURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CBRClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.WithComponent("cbr-rates"),
	}
}

type valCurs struct {
	XMLName xml.Name `xml:"ValCurs"`
	Date    string   `xml:"Date,attr"`
	Valutes []valute `xml:"Valute"`
}

type valute struct {
	CharCode string `xml:"CharCode"`
	Nominal  string `xml:"Nominal"`
	Value    string `xml:"Value"`
}

// Fetch returns the rate of one unit of currency in rubles published for
// date. The ruble itself is returned at 1 without a request.
func (c *CBRClient) Fetch(ctx context.Context, currency string, date civil.Date) (models.ExchangeRate, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == QuoteCurrency {
		return models.ExchangeRate{Pair: Pair(currency), Date: date, Rate: decimal.NewFromInt(1)}, nil
	}

	fail := func(status int, err error) (models.ExchangeRate, error) {
		c.log.Error().
			Err(err).
			Str("currency", currency).
			Str("date", date.String()).
			Int("status", status).
			Msg("Exchange rate request failed")
		return models.ExchangeRate{}, &FetchError{Currency: currency, Date: date, StatusCode: status, Err: err}
	}

	query := url.Values{}
	query.Set("date_req", fmt.Sprintf("%02d/%02d/%04d", date.Day, int(date.Month), date.Year))
	reqURL := c.baseURL + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fail(0, err)
	}

	c.log.Debug().
		Str("url", reqURL).
		Str("currency", currency).
		Msg("Requesting exchange rate")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fail(resp.StatusCode, nil)
	}

	var doc valCurs
	dec := xml.NewDecoder(resp.Body)
	dec.CharsetReader = charsetReader
	if err := dec.Decode(&doc); err != nil {
		return fail(resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}

	rate, err := doc.rate(currency)
	if err != nil {
		return fail(resp.StatusCode, err)
	}

	published := date
	if t, err := time.Parse("02.01.2006", doc.Date); err == nil {
		published = civil.DateOf(t)
	}

	c.log.Info().
		Str("pair", Pair(currency)).
		Str("requested_date", date.String()).
		Str("published_date", published.String()).
		Str("rate", rate.String()).
		Msg("Exchange rate fetched")

	return models.ExchangeRate{Pair: Pair(currency), Date: published, Rate: rate}, nil
}

func (v valCurs) rate(currency string) (decimal.Decimal, error) {
	if len(v.Valutes) == 0 {
		return decimal.Zero, fmt.Errorf("empty rate list")
	}
	for _, val := range v.Valutes {
		if !strings.EqualFold(val.CharCode, currency) {
			continue
		}
		value, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(val.Value), ",", ".", 1))
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse value %q: %w", val.Value, err)
		}
		nominal, err := decimal.NewFromString(strings.TrimSpace(val.Nominal))
		if err != nil || !nominal.IsPositive() {
			return decimal.Zero, fmt.Errorf("invalid nominal %q", val.Nominal)
		}
		return value.Div(nominal), nil
	}
	return decimal.Zero, fmt.Errorf("currency %s not listed", currency)
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "windows-1251", "cp1251":
		return charmap.Windows1251.NewDecoder().Reader(input), nil
	case "utf-8", "":
		return input, nil
	}
	return nil, fmt.Errorf("unsupported charset %q", label)
}
