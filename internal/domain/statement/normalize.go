package statement

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Amount and date normalization. These are pure functions: a malformed
// fragment yields (zero, false), never a panic or an error that escapes a
// parsing pass. Downstream code must treat the false case as "unknown".

// twoDigitYearCutoff: two-digit years below it land in the 2000s, the rest in
// the 1900s. Fixed policy, not configuration.
const twoDigitYearCutoff = 50

var (
	// -1,234.56 / 1234.56 / (1,234.56) / $1,234.56
	amountPattern = regexp.MustCompile(`^\(?\$?\s*-?\d{1,3}(?:,\d{3})*\.\d{2}\)?$|^\(?\$?\s*-?\d+\.\d{2}\)?$`)

	// MM/DD/YYYY, MM/DD/YY, MM/DD, MM-DD variants
	datePattern = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2,4}))?$`)
)

// ExpandYear widens a two-digit year using the fixed cutoff. Four-digit years
// pass through unchanged.
func ExpandYear(year int) int {
	if year >= 100 {
		return year
	}
	if year < twoDigitYearCutoff {
		return 2000 + year
	}
	return 1900 + year
}

// ParseAmount converts an amount fragment into a decimal rounded to 2 places.
// Accepted forms: optional leading $, thousands separators, a leading minus or
// surrounding parentheses for negatives. Returns (zero, false) for anything
// else.
func ParseAmount(fragment string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(fragment)
	if s == "" || !amountPattern.MatchString(s) {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimPrefix(s, "-")
	}
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	d = d.Round(2)
	if negative {
		d = d.Neg()
	}
	return d, true
}

// FormatAmount renders a decimal in the canonical exchange form with exactly
// two fraction digits.
func FormatAmount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

// ParseDateFragment extracts month, day and an optional year from a date
// fragment like "12/05", "12/5/24" or "12-05-2024". The year, when present,
// is already expanded. Returns ok=false for malformed fragments.
func ParseDateFragment(fragment string) (month, day, year int, ok bool) {
	m := datePattern.FindStringSubmatch(strings.TrimSpace(fragment))
	if m == nil {
		return 0, 0, 0, false
	}
	month = atoi(m[1])
	day = atoi(m[2])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, false
	}
	if m[3] != "" {
		year = ExpandYear(atoi(m[3]))
	}
	return month, day, year, true
}

// NormalizeDate converts a date fragment into a calendar day, inferring the
// year from the statement period when the fragment omits it. A zero time is
// returned for malformed fragments or when no year can be inferred.
func NormalizeDate(fragment string, period StatementPeriod) time.Time {
	month, day, year, ok := ParseDateFragment(fragment)
	if !ok {
		return time.Time{}
	}
	return ResolveDay(month, day, year, period)
}

// ResolveDay builds the canonical day for an already-split fragment. A year of
// zero is resolved against the period; if the period has none either, the zero
// time is returned.
func ResolveDay(month, day, year int, period StatementPeriod) time.Time {
	if year == 0 {
		year = period.YearFor(month)
	}
	if year == 0 {
		return time.Time{}
	}
	return Day(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
}

// Day truncates a timestamp to its UTC calendar day, the unit of grouping for
// reconciliation.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
