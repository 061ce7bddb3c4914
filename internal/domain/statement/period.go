package statement

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoPeriod indicates that no statement period or standalone year could be
// found in the header region. Callers decide whether to substitute a default
// year or halt; the resolver never guesses on its own.
var ErrNoPeriod = errors.New("no statement period found in header")

// Plausible range for standalone year tokens found in headers.
const (
	minPlausibleYear = 1990
	maxPlausibleYear = 2030
)

// DefaultHeaderScanLines is how deep into the document the resolver looks for
// period phrases before giving up.
const DefaultHeaderScanLines = 60

// StatementPeriod is the date range a document covers. Zero fields are unset.
// When any date inference succeeds at least EndYear is set.
type StatementPeriod struct {
	StartMonth int
	StartYear  int
	EndMonth   int
	EndYear    int
}

// IsZero reports whether no period information was resolved.
func (p StatementPeriod) IsZero() bool {
	return p.StartMonth == 0 && p.StartYear == 0 && p.EndMonth == 0 && p.EndYear == 0
}

// CrossesYearBoundary reports whether the period spans two calendar years
// (e.g. Dec 15 through Jan 14).
func (p StatementPeriod) CrossesYearBoundary() bool {
	return p.StartMonth != 0 && p.EndMonth != 0 && p.EndMonth < p.StartMonth
}

// YearFor resolves the calendar year for a month observed inside this period.
// For a cross-boundary period months at or before EndMonth belong to EndYear
// and later months belong to StartYear. For single-year periods EndYear wins.
func (p StatementPeriod) YearFor(month int) int {
	if p.CrossesYearBoundary() {
		if month <= p.EndMonth {
			return p.EndYear
		}
		return p.StartYear
	}
	if p.EndYear != 0 {
		return p.EndYear
	}
	return p.StartYear
}

// SingleYear builds a period covering exactly one calendar year.
func SingleYear(year int) StatementPeriod {
	return StatementPeriod{EndYear: year}
}

var (
	// "12/15/2024 through 01/14/2025", also "to" and "-" as connectors
	periodRangePattern = regexp.MustCompile(`(\d{1,2})/\d{1,2}/(\d{2,4})\s*(?:through|thru|to|-)\s*(\d{1,2})/\d{1,2}/(\d{2,4})`)

	// "as of 03/31/2025", "statement ending 03/31/2025"
	periodAsOfPattern = regexp.MustCompile(`(?i)(?:as\s+of|statement\s+ending|ending|statement\s+date:?)\s+(\d{1,2})/\d{1,2}/(\d{2,4})`)

	// Prose ranges: "December 15, 2024 through January 14, 2025"
	prosePeriodPattern = regexp.MustCompile(`(?i)(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+(\d{4})\s*(?:through|thru|to|-)\s*(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+(\d{4})`)

	// Prose single date: "November 30, 2024"
	proseDatePattern = regexp.MustCompile(`(?i)(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+(\d{4})`)

	// Standalone 4-digit year token
	bareYearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

var monthsByName = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
}

// ResolvePeriod scans the header region of a document for a statement period.
// It tries explicit range phrases first, then single "as of"/"ending" dates,
// then prose month-day-year phrases, and finally falls back to any standalone
// plausible 4-digit year. Returns ErrNoPeriod when nothing is found.
func ResolvePeriod(lines []RawLine, scanLines int) (StatementPeriod, error) {
	if scanLines <= 0 {
		scanLines = DefaultHeaderScanLines
	}
	if scanLines > len(lines) {
		scanLines = len(lines)
	}

	for _, line := range lines[:scanLines] {
		if m := periodRangePattern.FindStringSubmatch(line.Text); m != nil {
			return StatementPeriod{
				StartMonth: atoi(m[1]),
				StartYear:  ExpandYear(atoi(m[2])),
				EndMonth:   atoi(m[3]),
				EndYear:    ExpandYear(atoi(m[4])),
			}, nil
		}
		if m := prosePeriodPattern.FindStringSubmatch(line.Text); m != nil {
			return StatementPeriod{
				StartMonth: monthsByName[strings.ToLower(m[1])],
				StartYear:  atoi(m[2]),
				EndMonth:   monthsByName[strings.ToLower(m[3])],
				EndYear:    atoi(m[4]),
			}, nil
		}
		if m := periodAsOfPattern.FindStringSubmatch(line.Text); m != nil {
			return StatementPeriod{
				EndMonth: atoi(m[1]),
				EndYear:  ExpandYear(atoi(m[2])),
			}, nil
		}
		if m := proseDatePattern.FindStringSubmatch(line.Text); m != nil {
			return StatementPeriod{
				EndMonth: monthsByName[strings.ToLower(m[1])],
				EndYear:  atoi(m[2]),
			}, nil
		}
	}

	// Degraded scan: any standalone plausible year in the same region.
	for _, line := range lines[:scanLines] {
		if m := bareYearPattern.FindString(line.Text); m != "" {
			year := atoi(m)
			if year >= minPlausibleYear && year <= maxPlausibleYear {
				return SingleYear(year), nil
			}
		}
	}

	return StatementPeriod{}, ErrNoPeriod
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
