package render

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

var genitiveMonths = [...]string{
	time.January:   "января",
	time.February:  "февраля",
	time.March:     "марта",
	time.April:     "апреля",
	time.May:       "мая",
	time.June:      "июня",
	time.July:      "июля",
	time.August:    "августа",
	time.September: "сентября",
	time.October:   "октября",
	time.November:  "ноября",
	time.December:  "декабря",
}

// MonthGenitive returns the month name as used after a day number.
func MonthGenitive(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return genitiveMonths[m]
}

// LongDate formats d as «27 сентября 2025 г.».
func LongDate(d civil.Date) string {
	return fmt.Sprintf("%d %s %d г.", d.Day, MonthGenitive(d.Month), d.Year)
}

// QuotedDate formats d as «"27" сентября 2025 г.», the form used in
// signature blocks and contract references.
func QuotedDate(d civil.Date) string {
	return fmt.Sprintf("«%02d» %s %d г.", d.Day, MonthGenitive(d.Month), d.Year)
}

// ShortDate formats d as dd.mm.yyyy.
func ShortDate(d civil.Date) string {
	return fmt.Sprintf("%02d.%02d.%04d", d.Day, int(d.Month), d.Year)
}

// Money formats d with two decimals, a decimal comma and space-separated
// thousands: 1 500 030,00.
func Money(d decimal.Decimal) string {
	return group(d.StringFixed(2))
}

// Rate formats an exchange rate with four decimals: 83,4521.
func Rate(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(4), ".", ",", 1)
}

func group(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString(",")
		b.WriteString(frac)
	}
	return sign + b.String()
}
