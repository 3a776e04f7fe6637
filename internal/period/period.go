// Package period derives the service period a set of billed services covers.
//
// Periods run from the 26th of one month to the 26th of the next. Which
// pair of months is chosen for a reference date is governed by a Policy:
//
//   - PrecedingMonth: the period ends on the 26th of the previous month when
//     the reference day is 26 or earlier, otherwise on the 26th of the
//     reference month.
//   - CurrentMonth: the period always ends on the 26th of the reference month.
package period

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"docgen/pkg/models"
)

// BoundaryDay is the day of month on which every default period starts and ends.
const BoundaryDay = 26

// ErrInvalidDate is returned for malformed or out-of-range calendar input.
var ErrInvalidDate = errors.New("invalid calendar date")

// Policy selects the month a default period is anchored to.
type Policy int

const (
	PrecedingMonth Policy = iota
	CurrentMonth
)

func (p Policy) String() string {
	switch p {
	case CurrentMonth:
		return "current"
	default:
		return "preceding"
	}
}

// ParsePolicy accepts "preceding" or "current". An empty string selects
// PrecedingMonth.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "preceding":
		return PrecedingMonth, nil
	case "current":
		return CurrentMonth, nil
	default:
		return PrecedingMonth, fmt.Errorf("unknown period policy %q", s)
	}
}

// Range is an inclusive service period.
type Range struct {
	Start civil.Date
	End   civil.Date
}

// Calculator computes default service periods.
type Calculator struct {
	policy Policy
}

// NewCalculator returns a Calculator using the given policy.
func NewCalculator(policy Policy) *Calculator {
	return &Calculator{policy: policy}
}

// Policy reports the calculator's boundary policy.
func (c *Calculator) Policy() Policy {
	return c.policy
}

// Calculate returns the default period for reference date d.
func (c *Calculator) Calculate(d civil.Date) (Range, error) {
	if !d.IsValid() {
		return Range{}, fmt.Errorf("%w: %v", ErrInvalidDate, d)
	}

	month := d.Month
	if c.policy == PrecedingMonth && d.Day <= BoundaryDay {
		month--
	}

	return Range{
		Start: boundary(d.Year, month-1),
		End:   boundary(d.Year, month),
	}, nil
}

// Resolve turns user inputs into service entries. Simple inputs receive
// the default period for d; inputs with an explicit period keep it.
func (c *Calculator) Resolve(inputs []models.ServiceInput, d civil.Date) ([]models.ServiceEntry, error) {
	var def *Range

	entries := make([]models.ServiceEntry, 0, len(inputs))
	for i, in := range inputs {
		switch v := in.(type) {
		case models.WithPeriod:
			if !v.Start.IsValid() || !v.End.IsValid() || v.End.Before(v.Start) {
				return nil, fmt.Errorf("%w: service %d period %v..%v", ErrInvalidDate, i+1, v.Start, v.End)
			}
			entries = append(entries, models.ServiceEntry{
				Description: v.Description,
				Start:       v.Start,
				End:         v.End,
			})
		default:
			if def == nil {
				r, err := c.Calculate(d)
				if err != nil {
					return nil, err
				}
				def = &r
			}
			entries = append(entries, models.ServiceEntry{
				Description: in.ServiceDescription(),
				Start:       def.Start,
				End:         def.End,
			})
		}
	}
	return entries, nil
}

// Covering returns the smallest range containing every entry's period.
func Covering(entries []models.ServiceEntry) Range {
	var r Range
	for i, e := range entries {
		if i == 0 || e.Start.Before(r.Start) {
			r.Start = e.Start
		}
		if i == 0 || e.End.After(r.End) {
			r.End = e.End
		}
	}
	return r
}

// boundary returns the BoundaryDay of the given month; month may fall
// outside 1..12 and is normalised into the neighbouring year.
func boundary(year int, month time.Month) civil.Date {
	return civil.DateOf(time.Date(year, month, BoundaryDay, 0, 0, 0, 0, time.UTC))
}
