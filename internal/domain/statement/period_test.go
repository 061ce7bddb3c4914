package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headerLines(texts ...string) []RawLine {
	return NormalizeLines(texts)
}

func TestResolvePeriod(t *testing.T) {
	t.Run("numeric range", func(t *testing.T) {
		p, err := ResolvePeriod(headerLines(
			"FIRST NATIONAL BANK",
			"Statement Period 12/15/2024 through 01/14/2025",
		), 0)
		require.NoError(t, err)
		assert.Equal(t, 12, p.StartMonth)
		assert.Equal(t, 2024, p.StartYear)
		assert.Equal(t, 1, p.EndMonth)
		assert.Equal(t, 2025, p.EndYear)
		assert.True(t, p.CrossesYearBoundary())
	})

	t.Run("two digit years expand", func(t *testing.T) {
		p, err := ResolvePeriod(headerLines("03/01/24 to 03/31/24"), 0)
		require.NoError(t, err)
		assert.Equal(t, 2024, p.StartYear)
		assert.Equal(t, 2024, p.EndYear)
	})

	t.Run("prose range", func(t *testing.T) {
		p, err := ResolvePeriod(headerLines(
			"Account statement for December 15, 2024 through January 14, 2025",
		), 0)
		require.NoError(t, err)
		assert.Equal(t, 12, p.StartMonth)
		assert.Equal(t, 1, p.EndMonth)
		assert.Equal(t, 2025, p.EndYear)
	})

	t.Run("as of date", func(t *testing.T) {
		p, err := ResolvePeriod(headerLines("Balances as of 03/31/2025"), 0)
		require.NoError(t, err)
		assert.Equal(t, 3, p.EndMonth)
		assert.Equal(t, 2025, p.EndYear)
		assert.Equal(t, 0, p.StartMonth)
	})

	t.Run("prose single date", func(t *testing.T) {
		p, err := ResolvePeriod(headerLines("Statement for November 30, 2024"), 0)
		require.NoError(t, err)
		assert.Equal(t, 11, p.EndMonth)
		assert.Equal(t, 2024, p.EndYear)
	})

	t.Run("bare year fallback", func(t *testing.T) {
		p, err := ResolvePeriod(headerLines("ANNUAL SUMMARY 2023"), 0)
		require.NoError(t, err)
		assert.Equal(t, 2023, p.EndYear)
		assert.Equal(t, 0, p.EndMonth)
	})

	t.Run("implausible year is ignored", func(t *testing.T) {
		_, err := ResolvePeriod(headerLines("FORM 1986 REVISION"), 0)
		assert.ErrorIs(t, err, ErrNoPeriod)
	})

	t.Run("nothing found", func(t *testing.T) {
		_, err := ResolvePeriod(headerLines("ACME BANK", "MEMBER FDIC"), 0)
		assert.ErrorIs(t, err, ErrNoPeriod)
	})

	t.Run("scan depth is honored", func(t *testing.T) {
		lines := headerLines("line one", "12/01/2024 through 12/31/2024")
		_, err := ResolvePeriod(lines, 1)
		assert.ErrorIs(t, err, ErrNoPeriod)

		p, err := ResolvePeriod(lines, 2)
		require.NoError(t, err)
		assert.Equal(t, 2024, p.EndYear)
	})
}

func TestStatementPeriod_YearFor(t *testing.T) {
	t.Run("cross year boundary", func(t *testing.T) {
		p := StatementPeriod{StartMonth: 12, StartYear: 2024, EndMonth: 1, EndYear: 2025}
		assert.Equal(t, 2025, p.YearFor(1))
		assert.Equal(t, 2024, p.YearFor(12))
	})

	t.Run("single year", func(t *testing.T) {
		p := StatementPeriod{StartMonth: 3, StartYear: 2024, EndMonth: 3, EndYear: 2024}
		assert.Equal(t, 2024, p.YearFor(3))
		assert.Equal(t, 2024, p.YearFor(7))
	})

	t.Run("year only", func(t *testing.T) {
		assert.Equal(t, 2023, SingleYear(2023).YearFor(6))
	})

	t.Run("unresolved period", func(t *testing.T) {
		assert.Equal(t, 0, StatementPeriod{}.YearFor(6))
	})
}
