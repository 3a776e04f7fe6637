package document_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"docgen/internal/amount"
	"docgen/internal/document"
	"docgen/internal/numbering"
	"docgen/internal/payment"
	"docgen/internal/period"
	"docgen/internal/rates"
	"docgen/internal/rates/mocks"
	"docgen/pkg/models"
)

func testProfile() models.Profile {
	return models.Profile{
		Company: models.Company{
			LegalForm:      "Индивидуальный предприниматель",
			LegalFormShort: "ИП",
			Name:           "Иванов Иван Иванович",
			INN:            "771234567890",
			OGRNIP:         "318774600000000",
			SignatureName:  "И.И. Иванов",
		},
		Bank: models.Bank{
			Name:        `АО "ТБанк"`,
			BIC:         "044525974",
			CorrespAcc:  "30101810145250000974",
			PersonalAcc: "40802810000000000001",
		},
		Client: models.Client{
			Name:         "Петров Пётр Сергеевич",
			ContractDate: civil.Date{Year: 2024, Month: time.March, Day: 1},
		},
		Financial: models.FinancialConfig{
			BaseRate: decimal.NewFromInt(1000),
			Currency: "USD",
		},
	}
}

func usdRate(date civil.Date, rate string) models.ExchangeRate {
	return models.ExchangeRate{Pair: rates.Pair("USD"), Date: date, Rate: decimal.RequireFromString(rate)}
}

var sept27 = civil.Date{Year: 2025, Month: time.September, Day: 27}

func newEngine(t *testing.T, provider rates.Provider) *document.Engine {
	t.Helper()
	engine, err := document.NewEngine(testProfile(), provider, document.Options{})
	require.NoError(t, err)
	return engine
}

func TestEngine_Generate(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().
		Fetch(gomock.Any(), "USD", sept27).
		Return(usdRate(sept27, "83.4521"), nil).
		Times(1)

	engine := newEngine(t, provider)
	inv, act, err := engine.Generate(context.Background(), document.Request{
		Services:      []models.ServiceInput{models.Simple{Description: "Консультационные услуги"}},
		ReferenceDate: sept27,
	})
	require.NoError(t, err)
	require.NotNil(t, inv)
	require.NotNil(t, act)

	assert.Equal(t, "613415", inv.Number)
	assert.Equal(t, "2709", act.Number)
	assert.Equal(t, "83452.10", inv.TotalAmount.StringFixed(2))
	assert.True(t, inv.TotalAmount.Equal(act.TotalAmountRUB))
	assert.Equal(t, "Восемьдесят три тысячи четыреста пятьдесят два рубля 10 копеек", inv.AmountInWords)
	assert.Equal(t, inv.AmountInWords, act.AmountInWords)
	assert.Equal(t, "83.4521", act.FXRate.String())
	assert.Equal(t, "USD", act.Currency)

	assert.Equal(t, civil.Date{Year: 2025, Month: time.August, Day: 26}, act.PeriodStart)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.September, Day: 26}, act.PeriodEnd)
	require.Len(t, inv.LineItems, 1)
	assert.Equal(t, act.PeriodStart, inv.LineItems[0].Start)

	p, err := payment.Parse(inv.QRPayload)
	require.NoError(t, err)
	assert.Equal(t, int64(8345210), p.Sum)
	assert.Equal(t, "Оплата по счету №613415 от 27.09.2025", p.Purpose)
	assert.Equal(t, "771234567890", p.PayeeINN)

	assert.Equal(t,
		`Иванов Иван Иванович, ИНН 771234567890, р/с 40802810000000000001, в банке АО "ТБанк", БИК 044525974, к/с 30101810145250000974`,
		inv.Detail)

	assert.NoError(t, document.Reconcile(inv, act))
}

func TestEngine_GenerateMixedPeriods(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().Fetch(gomock.Any(), "USD", sept27).Return(usdRate(sept27, "80"), nil)

	explicit := models.WithPeriod{
		Description: "Аудит",
		Start:       civil.Date{Year: 2025, Month: time.June, Day: 1},
		End:         civil.Date{Year: 2025, Month: time.June, Day: 30},
	}

	inv, act, err := newEngine(t, provider).Generate(context.Background(), document.Request{
		Services:      []models.ServiceInput{models.Simple{Description: "Консультации"}, explicit},
		ReferenceDate: sept27,
		Sequence:      2,
	})
	require.NoError(t, err)

	assert.Equal(t, "613415-2", inv.Number)
	assert.Equal(t, "160000.00", inv.TotalAmount.StringFixed(2))
	require.Len(t, act.LineItems, 2)
	assert.Equal(t, explicit.Start, act.LineItems[1].Start)
	assert.Equal(t, explicit.Start, act.PeriodStart)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.September, Day: 26}, act.PeriodEnd)
}

func TestEngine_RandomizedRunsReconcile(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 2025))

	for i := 0; i < 20; i++ {
		date := civil.Date{
			Year:  2020 + rng.IntN(10),
			Month: time.Month(1 + rng.IntN(12)),
			Day:   1 + rng.IntN(28),
		}
		fx := decimal.New(int64(500000+rng.IntN(1500000)), -4)
		count := 1 + rng.IntN(5)

		services := make([]models.ServiceInput, count)
		for j := range services {
			services[j] = models.Simple{Description: fmt.Sprintf("Услуга %d", j+1)}
		}

		t.Run(fmt.Sprintf("%s_x%d", date, count), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			provider := mocks.NewMockProvider(ctrl)
			provider.EXPECT().
				Fetch(gomock.Any(), "USD", date).
				Return(models.ExchangeRate{Pair: "USD/RUB", Date: date, Rate: fx}, nil).
				Times(1)

			inv, act, err := newEngine(t, provider).Generate(context.Background(), document.Request{
				Services:      services,
				ReferenceDate: date,
			})
			require.NoError(t, err)

			assert.True(t, inv.TotalAmount.Equal(act.TotalAmountRUB))
			assert.Len(t, inv.LineItems, count)
			assert.Len(t, act.LineItems, count)
			assert.Equal(t, civil.DateOf(act.PeriodStart.In(time.UTC).AddDate(0, 1, 0)), act.PeriodEnd)
			assert.Equal(t, period.BoundaryDay, act.PeriodStart.Day)
			assert.NoError(t, document.Reconcile(inv, act))
		})
	}
}

func TestEngine_RateTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().
		Fetch(gomock.Any(), "USD", sept27).
		DoAndReturn(func(ctx context.Context, currency string, date civil.Date) (models.ExchangeRate, error) {
			<-ctx.Done()
			return models.ExchangeRate{}, &rates.FetchError{Currency: currency, Date: date, Err: ctx.Err()}
		})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	inv, act, err := newEngine(t, provider).Generate(ctx, document.Request{
		Services:      []models.ServiceInput{models.Simple{Description: "Консультации"}},
		ReferenceDate: sept27,
	})
	assert.Nil(t, inv)
	assert.Nil(t, act)
	assert.ErrorIs(t, err, rates.ErrRateUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEngine_ComponentErrors(t *testing.T) {
	simple := []models.ServiceInput{models.Simple{Description: "Консультации"}}

	tests := []struct {
		name    string
		req     document.Request
		fetch   bool
		rate    string
		wantErr error
	}{
		{
			name:    "empty services",
			req:     document.Request{ReferenceDate: sept27},
			wantErr: document.ErrEmptyServiceList,
		},
		{
			name:    "invalid reference date",
			req:     document.Request{Services: simple, ReferenceDate: civil.Date{Year: 2025, Month: time.February, Day: 30}},
			wantErr: period.ErrInvalidDate,
		},
		{
			name: "inverted explicit period",
			req: document.Request{
				Services: []models.ServiceInput{models.WithPeriod{
					Description: "x",
					Start:       civil.Date{Year: 2025, Month: time.May, Day: 2},
					End:         civil.Date{Year: 2025, Month: time.May, Day: 1},
				}},
				ReferenceDate: sept27,
			},
			wantErr: period.ErrInvalidDate,
		},
		{
			name:    "zero rate",
			req:     document.Request{Services: simple, ReferenceDate: sept27},
			fetch:   true,
			rate:    "0",
			wantErr: amount.ErrInvalidRate,
		},
		{
			name:    "negative sequence",
			req:     document.Request{Services: simple, ReferenceDate: sept27, Sequence: -1},
			fetch:   true,
			rate:    "80",
			wantErr: numbering.ErrInvalidSequence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			provider := mocks.NewMockProvider(ctrl)
			if tt.fetch {
				provider.EXPECT().Fetch(gomock.Any(), "USD", sept27).Return(usdRate(sept27, tt.rate), nil)
			}

			inv, act, err := newEngine(t, provider).Generate(context.Background(), tt.req)
			assert.Nil(t, inv)
			assert.Nil(t, act)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEngine_SeparateDocumentsShareTotals(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().Fetch(gomock.Any(), "USD", sept27).Return(usdRate(sept27, "81.25"), nil).Times(1)

	engine := newEngine(t, provider)
	req := document.Request{
		Services:      []models.ServiceInput{models.Simple{Description: "Консультации"}},
		ReferenceDate: sept27,
	}

	totals, err := engine.Quote(context.Background(), req.ReferenceDate, len(req.Services))
	require.NoError(t, err)

	inv, err := engine.GenerateInvoice(context.Background(), req, totals)
	require.NoError(t, err)
	act, err := engine.GenerateAct(context.Background(), req, totals)
	require.NoError(t, err)

	assert.Equal(t, "81250.00", inv.TotalAmount.StringFixed(2))
	assert.NoError(t, document.Reconcile(inv, act))
}

func TestEngine_Renumber(t *testing.T) {
	engine := newEngine(t, mocks.NewMockProvider(gomock.NewController(t)))
	totals := &document.Totals{FXRate: usdRate(sept27, "80"), Amount: decimal.RequireFromString("80000.00")}

	inv, err := engine.GenerateInvoice(context.Background(), document.Request{
		Services:      []models.ServiceInput{models.Simple{Description: "Консультации"}},
		ReferenceDate: sept27,
	}, totals)
	require.NoError(t, err)

	renumbered, err := engine.Renumber(inv, 3)
	require.NoError(t, err)
	assert.Equal(t, "613415-3", renumbered.Number)
	assert.Equal(t, "613415", inv.Number)
	assert.True(t, renumbered.TotalAmount.Equal(inv.TotalAmount))

	p, err := payment.Parse(renumbered.QRPayload)
	require.NoError(t, err)
	assert.Equal(t, payment.Purpose("613415-3", sept27), p.Purpose)
	assert.Equal(t, int64(8000000), p.Sum)

	_, err = engine.Renumber(inv, -1)
	assert.ErrorIs(t, err, numbering.ErrInvalidSequence)
}

func TestEngine_SuppliedTotalsMustBePositive(t *testing.T) {
	engine := newEngine(t, mocks.NewMockProvider(gomock.NewController(t)))

	_, err := engine.GenerateInvoice(context.Background(), document.Request{
		Services:      []models.ServiceInput{models.Simple{Description: "x"}},
		ReferenceDate: sept27,
	}, &document.Totals{})
	assert.ErrorIs(t, err, amount.ErrInvalidRate)
}

func TestNewEngine_RoundTo(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().Fetch(gomock.Any(), "USD", sept27).Return(usdRate(sept27, "83.4567"), nil)

	engine, err := document.NewEngine(testProfile(), provider, document.Options{RoundTo: decimal.NewFromInt(10)})
	require.NoError(t, err)

	inv, _, err := engine.Generate(context.Background(), document.Request{
		Services:      []models.ServiceInput{models.Simple{Description: "x"}},
		ReferenceDate: sept27,
	})
	require.NoError(t, err)
	assert.Equal(t, "83460.00", inv.TotalAmount.StringFixed(2))

	_, err = document.NewEngine(testProfile(), provider, document.Options{RoundTo: decimal.RequireFromString("0.001")})
	assert.ErrorIs(t, err, amount.ErrInvalidStep)
}

func TestNewEngine_InvalidProfile(t *testing.T) {
	p := testProfile()
	p.Bank.BIC = ""
	_, err := document.NewEngine(p, nil, document.Options{})

	var profileErr *document.ProfileError
	require.ErrorAs(t, err, &profileErr)
	assert.Equal(t, "bank BIC", profileErr.Field)
	assert.ErrorIs(t, err, document.ErrInvalidProfile)

	p = testProfile()
	p.Financial.BaseRate = decimal.Zero
	_, err = document.NewEngine(p, nil, document.Options{})
	assert.ErrorIs(t, err, amount.ErrInvalidRate)
}

func TestReconcile(t *testing.T) {
	inv := &models.InvoiceDocument{Number: "613415", TotalAmount: decimal.RequireFromString("100.00"), LineItems: make([]models.ServiceEntry, 1)}
	act := &models.ActDocument{Number: "2709", TotalAmountRUB: decimal.RequireFromString("100"), LineItems: make([]models.ServiceEntry, 1)}
	assert.NoError(t, document.Reconcile(inv, act))

	act.TotalAmountRUB = decimal.RequireFromString("100.01")
	err := document.Reconcile(inv, act)
	require.ErrorIs(t, err, document.ErrTotalsMismatch)
	assert.True(t, strings.Contains(err.Error(), "100.01"))

	assert.ErrorIs(t, document.Reconcile(nil, act), document.ErrTotalsMismatch)
}

func TestContexts(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().Fetch(gomock.Any(), "USD", sept27).Return(usdRate(sept27, "80"), nil)

	inv, act, err := newEngine(t, provider).Generate(context.Background(), document.Request{
		Services:      []models.ServiceInput{models.Simple{Description: "x"}},
		ReferenceDate: sept27,
	})
	require.NoError(t, err)

	ic := document.InvoiceContext(inv)
	assert.Equal(t, "613415", ic["number"])
	assert.Equal(t, "П.С. Петров", ic["payer_signature"])

	ac := document.ActContext(act)
	assert.Equal(t, "2709", ac["number"])
	assert.Equal(t, act.Customer.ContractDate, ac["contract_date"])
}

type fixedRate string

func (f fixedRate) Fetch(_ context.Context, currency string, date civil.Date) (models.ExchangeRate, error) {
	return models.ExchangeRate{Pair: rates.Pair(currency), Date: date, Rate: decimal.RequireFromString(string(f))}, nil
}

func ExampleEngine_Generate() {
	profile := testProfile()
	profile.Financial.BaseRate = decimal.NewFromInt(16667)

	engine, _ := document.NewEngine(profile, fixedRate("90"), document.Options{})
	inv, act, _ := engine.Generate(context.Background(), document.Request{
		Services:      []models.ServiceInput{models.Simple{Description: "Консультационные услуги"}},
		ReferenceDate: civil.Date{Year: 2025, Month: time.September, Day: 25},
	})

	fmt.Println(inv.Number, inv.TotalAmount.StringFixed(2))
	fmt.Println(inv.AmountInWords)
	fmt.Println(act.Number, act.PeriodStart, act.PeriodEnd)
	// Output:
	// 613415 1500030.00
	// Один миллион пятьсот тысяч тридцать рублей 00 копеек
	// 2509 2025-07-26 2025-08-26
}
