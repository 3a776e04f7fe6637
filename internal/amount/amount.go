// Package amount computes invoice totals from a foreign-currency base rate.
package amount

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidRate is returned when the FX rate or base rate is missing
	// or not positive. No fallback rate is ever substituted.
	ErrInvalidRate = errors.New("invalid exchange rate")

	// ErrEmptyServiceList is returned when fewer than one service is billed.
	ErrEmptyServiceList = errors.New("service list is empty")

	// ErrInvalidStep is returned for a non-positive rounding step.
	ErrInvalidStep = errors.New("invalid rounding step")
)

// MinorStep is the default rounding step: one kopeck.
var MinorStep = decimal.New(1, -2)

// Calculator multiplies the base rate by the FX rate and service count.
type Calculator struct {
	step decimal.Decimal
}

// NewCalculator rounds totals to one kopeck.
func NewCalculator() *Calculator {
	return &Calculator{step: MinorStep}
}

// NewCalculatorWithStep rounds totals half-up to a multiple of step,
// e.g. 10 for whole tens of rubles. The step must be a positive multiple
// of one kopeck.
func NewCalculatorWithStep(step decimal.Decimal) (*Calculator, error) {
	if !step.IsPositive() || !step.Mod(MinorStep).IsZero() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStep, step)
	}
	return &Calculator{step: step}, nil
}

// Step reports the rounding step.
func (c *Calculator) Step() decimal.Decimal {
	return c.step
}

// Total returns baseRate × fxRate × serviceCount rounded half-up to the
// calculator's step.
func (c *Calculator) Total(baseRate, fxRate decimal.Decimal, serviceCount int) (decimal.Decimal, error) {
	if !fxRate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: fx rate %s", ErrInvalidRate, fxRate)
	}
	if !baseRate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: base rate %s", ErrInvalidRate, baseRate)
	}
	if serviceCount < 1 {
		return decimal.Zero, ErrEmptyServiceList
	}

	exact := baseRate.Mul(fxRate).Mul(decimal.NewFromInt(int64(serviceCount)))
	return roundHalfUp(exact, c.step), nil
}

// MinorUnits converts an amount to whole kopecks.
func MinorUnits(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// Split returns the major and minor parts of a non-negative amount.
func Split(d decimal.Decimal) (major, minor int64) {
	units := MinorUnits(d)
	return units / 100, units % 100
}

// roundHalfUp rounds a non-negative value to the nearest multiple of step.
// decimal.Round rounds half away from zero, which is half-up here.
func roundHalfUp(v, step decimal.Decimal) decimal.Decimal {
	return v.Div(step).Round(0).Mul(step).Round(2)
}
