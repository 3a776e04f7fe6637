package numbering_test

import (
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen/internal/numbering"
)

func TestGenerator_Octal(t *testing.T) {
	gen := numbering.NewGenerator(numbering.Octal)

	tests := []struct {
		date civil.Date
		n    int
		want string
	}{
		{civil.Date{Year: 2025, Month: time.January, Day: 1}, 0, "613405"},
		{civil.Date{Year: 2025, Month: time.August, Day: 28}, 0, "613414"},
		{civil.Date{Year: 2025, Month: time.September, Day: 27}, 0, "613415"},
		{civil.Date{Year: 2025, Month: time.December, Day: 31}, 0, "613420"},
		{civil.Date{Year: 2026, Month: time.October, Day: 18}, 0, "613562"},
		{civil.Date{Year: 2026, Month: time.October, Day: 18}, 2, "613562-2"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v/%d", tt.date, tt.n), func(t *testing.T) {
			got, err := gen.Generate(tt.date, tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerator_DeterministicWithinMonth(t *testing.T) {
	gen := numbering.NewGenerator(numbering.Octal)

	first, err := gen.Generate(civil.Date{Year: 2025, Month: time.March, Day: 1}, 0)
	require.NoError(t, err)

	seen := map[string]bool{}
	for day := 1; day <= 31; day++ {
		got, err := gen.Generate(civil.Date{Year: 2025, Month: time.March, Day: day}, 0)
		require.NoError(t, err)
		assert.Equal(t, first, got)

		seq, err := gen.Generate(civil.Date{Year: 2025, Month: time.March, Day: day}, day)
		require.NoError(t, err)
		assert.False(t, seen[seq], "sequence %s issued twice", seq)
		seen[seq] = true
	}

	other, err := gen.Generate(civil.Date{Year: 2025, Month: time.April, Day: 1}, 0)
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestGenerator_OctalDigits(t *testing.T) {
	gen := numbering.NewGenerator(numbering.OctalDigits)

	got, err := gen.Generate(civil.Date{Year: 2025, Month: time.July, Day: 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, "66887", got)

	_, err = gen.Generate(civil.Date{Year: 2025, Month: time.August, Day: 1}, 0)
	assert.ErrorIs(t, err, numbering.ErrNonOctalDigit)
	assert.ErrorIs(t, err, numbering.ErrInvalidDate)

	_, err = gen.Generate(civil.Date{Year: 2025, Month: time.September, Day: 1}, 0)
	assert.ErrorIs(t, err, numbering.ErrNonOctalDigit)
}

func TestGenerator_InvalidInput(t *testing.T) {
	gen := numbering.NewGenerator(numbering.Octal)

	_, err := gen.Generate(civil.Date{Year: 2025, Month: time.February, Day: 29}, 0)
	assert.ErrorIs(t, err, numbering.ErrInvalidDate)

	_, err = gen.Generate(civil.Date{}, 0)
	assert.ErrorIs(t, err, numbering.ErrInvalidDate)

	_, err = gen.Generate(civil.Date{Year: 2025, Month: time.May, Day: 1}, -1)
	assert.ErrorIs(t, err, numbering.ErrInvalidSequence)
}

func TestPeriod(t *testing.T) {
	assert.Equal(t, "2025-09", numbering.Period(civil.Date{Year: 2025, Month: time.September, Day: 30}))
}

func ExampleGenerator_Generate() {
	gen := numbering.NewGenerator(numbering.Octal)

	number, _ := gen.Generate(civil.Date{Year: 2025, Month: time.September, Day: 27}, 0)
	again, _ := gen.Generate(civil.Date{Year: 2025, Month: time.September, Day: 27}, 1)
	fmt.Println(number, again)
	// Output: 613415 613415-1
}
