package render_test

import (
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen/internal/payment"
	"docgen/internal/render"
	"docgen/pkg/models"
)

func TestLongDate(t *testing.T) {
	tests := []struct {
		date civil.Date
		want string
	}{
		{civil.Date{Year: 2026, Month: time.October, Day: 18}, "18 октября 2026 г."},
		{civil.Date{Year: 2025, Month: time.March, Day: 1}, "1 марта 2025 г."},
		{civil.Date{Year: 2025, Month: time.May, Day: 9}, "9 мая 2025 г."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, render.LongDate(tt.date))
	}

	assert.Equal(t, "«01» марта 2024 г.", render.QuotedDate(civil.Date{Year: 2024, Month: time.March, Day: 1}))
	assert.Equal(t, "05.01.2025", render.ShortDate(civil.Date{Year: 2025, Month: time.January, Day: 5}))
	assert.Empty(t, render.MonthGenitive(13))
}

func TestMoney(t *testing.T) {
	tests := map[string]string{
		"0":          "0,00",
		"5.5":        "5,50",
		"999.99":     "999,99",
		"1000":       "1 000,00",
		"83452.1":    "83 452,10",
		"1500030":    "1 500 030,00",
		"-123456.78": "-123 456,78",
	}
	for in, want := range tests {
		assert.Equal(t, want, render.Money(decimal.RequireFromString(in)), in)
	}
	assert.Equal(t, "83,4521", render.Rate(decimal.RequireFromString("83.4521")))
}

func sampleDocuments() (*models.InvoiceDocument, *models.ActDocument) {
	date := civil.Date{Year: 2025, Month: time.September, Day: 27}
	items := []models.ServiceEntry{{
		Description: "Консультационные услуги",
		Start:       civil.Date{Year: 2025, Month: time.August, Day: 26},
		End:         civil.Date{Year: 2025, Month: time.September, Day: 26},
	}}
	company := models.Company{
		LegalForm:      "Индивидуальный предприниматель",
		LegalFormShort: "ИП",
		Name:           "Иванов Иван Иванович",
		INN:            "771234567890",
		OGRNIP:         "318774600000000",
		SignatureName:  "И.И. Иванов",
	}
	client := models.Client{
		Name:         "Петров Пётр Сергеевич",
		ContractDate: civil.Date{Year: 2024, Month: time.March, Day: 1},
	}
	total := decimal.RequireFromString("83452.10")

	inv := &models.InvoiceDocument{
		Number:        "613415",
		Date:          date,
		TotalAmount:   total,
		AmountInWords: "Восемьдесят три тысячи четыреста пятьдесят два рубля 10 копеек",
		QRPayload:     "ST00012|Name=Иванов Иван Иванович|Sum=8345210",
		LineItems:     items,
		Payee:         company,
		Bank:          models.Bank{Name: "ТБанк", BIC: "044525974", CorrespAcc: "30101810145250000974", PersonalAcc: "40802810000000000001"},
		Payer:         client,
		Detail:        "Иванов Иван Иванович, ИНН 771234567890",
	}
	act := &models.ActDocument{
		Number:         "2709",
		Date:           date,
		PeriodStart:    items[0].Start,
		PeriodEnd:      items[0].End,
		FXRate:         decimal.RequireFromString("83.4521"),
		Currency:       "USD",
		TotalAmountRUB: total,
		AmountInWords:  inv.AmountInWords,
		LineItems:      items,
		Contractor:     company,
		Customer:       client,
	}
	return inv, act
}

func TestRenderer_Invoice(t *testing.T) {
	r, err := render.New(payment.NewRenderer(128))
	require.NoError(t, err)

	inv, _ := sampleDocuments()
	out, err := r.Invoice(inv)
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "Счет на оплату № 613415 от 27 сентября 2025 г.")
	assert.Contains(t, html, "83 452,10")
	assert.Contains(t, html, inv.AmountInWords)
	assert.Contains(t, html, `src="data:image/png;base64,`)
	assert.Contains(t, html, "26.08.2025 – 26.09.2025")
	assert.Contains(t, html, "Всего наименований 1")
}

func TestRenderer_Act(t *testing.T) {
	r, err := render.New(payment.NewRenderer(128))
	require.NoError(t, err)

	_, act := sampleDocuments()
	out, err := r.Act(act)
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "АКТ № 2709")
	assert.Contains(t, html, "«27» сентября 2025 г.")
	assert.Contains(t, html, "договору от «01» марта 2024 г.")
	assert.Contains(t, html, "с 26.08.2025 по 26.09.2025")
	assert.Contains(t, html, "83,4521")
	assert.Contains(t, html, "П.С. Петров")
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	r, err := render.New(payment.NewRenderer(128))
	require.NoError(t, err)

	_, err = r.Render("receipt.html", nil)
	assert.ErrorIs(t, err, render.ErrUnknownTemplate)
}

func ExampleLongDate() {
	fmt.Println(render.LongDate(civil.Date{Year: 2026, Month: time.October, Day: 18}))
	fmt.Println(render.Money(decimal.RequireFromString("1500030")))
	// Output:
	// 18 октября 2026 г.
	// 1 500 030,00
}
