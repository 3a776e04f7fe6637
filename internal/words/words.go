// Package words spells monetary amounts in Russian.
//
// Nouns agree with the number through the three-way cardinal rule: the
// "one" form for 1, 21, 31…; the "few" form for 2–4, 22–24…; the "many"
// form for 0, 5–20, 25–30… and every number ending in 11–14. Units agree
// in gender with the noun they count ("одна копейка", "две тысячи").
package words

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"docgen/internal/amount"
)

var (
	// ErrNegativeAmount is returned for amounts below zero.
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrMinorOutOfRange is returned when the minor part is not in 0..99.
	ErrMinorOutOfRange = errors.New("minor units out of range")
)

// Gender is the grammatical gender of a counted noun.
type Gender int

const (
	Masculine Gender = iota
	Feminine
	Neuter
)

// Noun holds the three cardinal-agreement forms of a noun.
type Noun struct {
	Gender Gender
	One    string // 1, 21, 101
	Few    string // 2–4, 22–24
	Many   string // 0, 5–20, 25–30
}

// Form returns the noun form agreeing with n.
func (w Noun) Form(n int64) string {
	return Plural(n, w.One, w.Few, w.Many)
}

// Currency names the major and minor units of a currency.
type Currency struct {
	Code  string
	Major Noun
	Minor Noun
}

var (
	RUB = Currency{
		Code:  "RUB",
		Major: Noun{Gender: Masculine, One: "рубль", Few: "рубля", Many: "рублей"},
		Minor: Noun{Gender: Feminine, One: "копейка", Few: "копейки", Many: "копеек"},
	}
	USD = Currency{
		Code:  "USD",
		Major: Noun{Gender: Masculine, One: "доллар США", Few: "доллара США", Many: "долларов США"},
		Minor: Noun{Gender: Masculine, One: "цент", Few: "цента", Many: "центов"},
	}
	EUR = Currency{
		Code:  "EUR",
		Major: Noun{Gender: Neuter, One: "евро", Few: "евро", Many: "евро"},
		Minor: Noun{Gender: Masculine, One: "евроцент", Few: "евроцента", Many: "евроцентов"},
	}
)

// Style controls how the minor part is written.
type Style int

const (
	// MinorDigits writes the minor part as a zero-padded two-digit numeral:
	// "Один рубль 01 копейка".
	MinorDigits Style = iota
	// MinorWords spells the minor part: "Один рубль одна копейка".
	MinorWords
)

// Converter renders amounts as words.
type Converter struct {
	style Style
}

// NewConverter returns a Converter using the given minor-unit style.
func NewConverter(style Style) *Converter {
	return &Converter{style: style}
}

// Convert spells major units in words followed by the minor part, each
// with its agreeing noun. The first letter is capitalised.
func (c *Converter) Convert(major, minor int64, cur Currency) (string, error) {
	if major < 0 || minor < 0 {
		return "", fmt.Errorf("%w: %d.%02d", ErrNegativeAmount, major, minor)
	}
	if minor > 99 {
		return "", fmt.Errorf("%w: %d", ErrMinorOutOfRange, minor)
	}

	var minorPart string
	if c.style == MinorWords {
		minorPart = Spell(minor, cur.Minor.Gender)
	} else {
		minorPart = fmt.Sprintf("%02d", minor)
	}

	s := strings.Join([]string{
		Spell(major, cur.Major.Gender),
		cur.Major.Form(major),
		minorPart,
		cur.Minor.Form(minor),
	}, " ")
	return capitalize(s), nil
}

// FromDecimal splits d into whole and hundredth units (rounded half-up
// to the hundredth) and converts them.
func (c *Converter) FromDecimal(d decimal.Decimal, cur Currency) (string, error) {
	if d.IsNegative() {
		return "", fmt.Errorf("%w: %s", ErrNegativeAmount, d)
	}
	major, minor := amount.Split(d)
	return c.Convert(major, minor, cur)
}

// Plural selects the form agreeing with n.
func Plural(n int64, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	n %= 100
	if n >= 11 && n <= 14 {
		return many
	}
	switch n % 10 {
	case 1:
		return one
	case 2, 3, 4:
		return few
	default:
		return many
	}
}

var (
	unitsMasculine = [...]string{"", "один", "два", "три", "четыре", "пять", "шесть", "семь", "восемь", "девять"}
	unitsFeminine  = [...]string{"", "одна", "две", "три", "четыре", "пять", "шесть", "семь", "восемь", "девять"}
	unitsNeuter    = [...]string{"", "одно", "два", "три", "четыре", "пять", "шесть", "семь", "восемь", "девять"}

	teens = [...]string{
		"десять", "одиннадцать", "двенадцать", "тринадцать", "четырнадцать",
		"пятнадцать", "шестнадцать", "семнадцать", "восемнадцать", "девятнадцать",
	}
	tens = [...]string{
		"", "", "двадцать", "тридцать", "сорок",
		"пятьдесят", "шестьдесят", "семьдесят", "восемьдесят", "девяносто",
	}
	hundreds = [...]string{
		"", "сто", "двести", "триста", "четыреста",
		"пятьсот", "шестьсот", "семьсот", "восемьсот", "девятьсот",
	}
)

type scale struct {
	value int64
	noun  Noun
}

var scales = []scale{
	{1_000_000_000_000_000_000, Noun{Masculine, "квинтиллион", "квинтиллиона", "квинтиллионов"}},
	{1_000_000_000_000_000, Noun{Masculine, "квадриллион", "квадриллиона", "квадриллионов"}},
	{1_000_000_000_000, Noun{Masculine, "триллион", "триллиона", "триллионов"}},
	{1_000_000_000, Noun{Masculine, "миллиард", "миллиарда", "миллиардов"}},
	{1_000_000, Noun{Masculine, "миллион", "миллиона", "миллионов"}},
	{1_000, Noun{Feminine, "тысяча", "тысячи", "тысяч"}},
}

// Spell writes a non-negative integer in words, agreeing the final
// group with gender g. Zero is "ноль".
func Spell(n int64, g Gender) string {
	if n <= 0 {
		return "ноль"
	}

	var parts []string
	for _, s := range scales {
		if n < s.value {
			continue
		}
		group := n / s.value
		parts = append(parts, triad(group, s.noun.Gender), s.noun.Form(group))
		n %= s.value
	}
	if n > 0 {
		parts = append(parts, triad(n, g))
	}
	return strings.Join(parts, " ")
}

// triad spells 1..999.
func triad(n int64, g Gender) string {
	var parts []string

	if n >= 100 {
		parts = append(parts, hundreds[n/100])
		n %= 100
	}

	switch {
	case n >= 10 && n <= 19:
		parts = append(parts, teens[n-10])
	default:
		if n >= 20 {
			parts = append(parts, tens[n/10])
			n %= 10
		}
		if n > 0 {
			parts = append(parts, unitWord(n, g))
		}
	}
	return strings.Join(parts, " ")
}

func unitWord(n int64, g Gender) string {
	switch g {
	case Feminine:
		return unitsFeminine[n]
	case Neuter:
		return unitsNeuter[n]
	default:
		return unitsMasculine[n]
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
