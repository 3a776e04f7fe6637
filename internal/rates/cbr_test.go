package rates_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"docgen/internal/rates"
)

const dailyXML = `<?xml version="1.0" encoding="windows-1251"?>
<ValCurs Date="27.09.2025" name="Foreign Currency Market">
<Valute ID="R01235"><NumCode>840</NumCode><CharCode>USD</CharCode><Nominal>1</Nominal><Name>Доллар США</Name><Value>83,4521</Value><VunitRate>83,4521</VunitRate></Valute>
<Valute ID="R01239"><NumCode>978</NumCode><CharCode>EUR</CharCode><Nominal>1</Nominal><Name>Евро</Name><Value>97,6100</Value><VunitRate>97,61</VunitRate></Valute>
<Valute ID="R01820"><NumCode>392</NumCode><CharCode>JPY</CharCode><Nominal>100</Nominal><Name>Японских иен</Name><Value>56,1200</Value><VunitRate>0,5612</VunitRate></Valute>
</ValCurs>`

var refDate = civil.Date{Year: 2025, Month: time.September, Day: 28}

func cbrServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func serveDaily(t *testing.T) http.HandlerFunc {
	body, err := charmap.Windows1251.NewEncoder().String(dailyXML)
	require.NoError(t, err)

	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "28/09/2025", r.URL.Query().Get("date_req"))
		w.Header().Set("Content-Type", "application/xml; charset=windows-1251")
		_, _ = w.Write([]byte(body))
	}
}

func TestCBRClient_Fetch(t *testing.T) {
	srv := cbrServer(t, serveDaily(t))
	client := rates.NewCBRClient(srv.URL, time.Second)

	tests := []struct {
		currency string
		want     string
	}{
		{"USD", "83.4521"},
		{"eur", "97.61"},
		{"JPY", "0.5612"},
	}

	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			got, err := client.Fetch(context.Background(), tt.currency, refDate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Rate.String())
			assert.Equal(t, civil.Date{Year: 2025, Month: time.September, Day: 27}, got.Date)
		})
	}
}

func TestCBRClient_RubleNeedsNoRequest(t *testing.T) {
	srv := cbrServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	})

	got, err := rates.NewCBRClient(srv.URL, time.Second).Fetch(context.Background(), "RUB", refDate)
	require.NoError(t, err)
	assert.Equal(t, "1", got.Rate.String())
	assert.Equal(t, "RUB/RUB", got.Pair)
}

func TestCBRClient_Unavailable(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		currency string
		status   int
	}{
		{
			name:     "server error",
			handler:  func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) },
			currency: "USD",
			status:   http.StatusBadGateway,
		},
		{
			name:     "empty body",
			handler:  func(w http.ResponseWriter, r *http.Request) {},
			currency: "USD",
			status:   http.StatusOK,
		},
		{
			name: "empty list",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<?xml version="1.0" encoding="windows-1251"?><ValCurs Date="27.09.2025"></ValCurs>`))
			},
			currency: "USD",
			status:   http.StatusOK,
		},
		{
			name:     "unknown currency",
			handler:  serveDaily(t),
			currency: "XYZ",
			status:   http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := cbrServer(t, tt.handler)

			got, err := rates.NewCBRClient(srv.URL, time.Second).Fetch(context.Background(), tt.currency, refDate)
			require.ErrorIs(t, err, rates.ErrRateUnavailable)
			assert.True(t, got.Rate.IsZero())

			var fetchErr *rates.FetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.Equal(t, tt.status, fetchErr.StatusCode)
		})
	}
}

func TestCBRClient_Timeout(t *testing.T) {
	srv := cbrServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	start := time.Now()
	_, err := rates.NewCBRClient(srv.URL, 50*time.Millisecond).Fetch(context.Background(), "USD", refDate)
	assert.ErrorIs(t, err, rates.ErrRateUnavailable)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestCBRClient_ContextCancelled(t *testing.T) {
	srv := cbrServer(t, serveDaily(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rates.NewCBRClient(srv.URL, time.Second).Fetch(ctx, "USD", refDate)
	assert.ErrorIs(t, err, rates.ErrRateUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}
