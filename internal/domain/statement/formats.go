package statement

import (
	"errors"
	"regexp"
	"strings"
)

// ErrUnknownFormat indicates no registered format descriptor matched the
// document's header region.
var ErrUnknownFormat = errors.New("no known statement format detected")

// SectionRule maps a section-header line to its kind and to the polarity that
// bare (unsigned) amounts take while the section is active.
type SectionRule struct {
	Pattern *regexp.Regexp
	Kind    string
	Sign    int // +1, -1, or 0 to leave amounts as printed
}

// FieldRule binds a labeled value line inside a grouped block to a named slot
// (rate, regular hours, tip, ...). Used only by grouped formats.
type FieldRule struct {
	Pattern *regexp.Regexp // must capture the numeric fragment
	Slot    string
}

// FormatDescriptor is the full grammar for one source layout: detection
// probes, skip/noise sets, line patterns and sign conventions. Descriptors are
// plain values in a registry; one shared state-machine driver interprets them.
type FormatDescriptor struct {
	Name string

	// ProbePhrases identify the format; the descriptor with the most phrase
	// hits in the header region wins detection.
	ProbePhrases []string

	// NoisePhrases are matched in bulk (Aho-Corasick) against the uppercased
	// line; any hit classifies the line as noise. Column headers, footers,
	// "continued on next page" and similar boilerplate belong here.
	NoisePhrases []string

	// SkipPatterns catch noise that needs position anchors (page numbers).
	SkipPatterns []*regexp.Regexp

	SectionRules []SectionRule

	// NamePattern marks entity headers in grouped layouts; nil otherwise.
	NamePattern *regexp.Regexp

	DateOnlyPattern   *regexp.Regexp // captures the full date fragment
	AmountOnlyPattern *regexp.Regexp // captures the full amount fragment
	DateAmountPattern *regexp.Regexp // groups: date, desc (optional), amount
	ReferencePattern  *regexp.Regexp // captures the digit run

	// DefaultSign applies to unsigned amounts outside any signed section.
	// Bank layouts print debits unsigned inside withdrawal sections; card
	// layouts print purchases unsigned everywhere (positive by convention).
	DefaultSign int

	// FieldRules drive the grouped assembler's per-entity slots; empty for
	// flat formats.
	FieldRules []FieldRule

	// Grouped selects the two-level assembler (outer loop over name headers).
	Grouped bool
}

// Registry holds the known format descriptors in detection priority order.
type Registry struct {
	formats []*FormatDescriptor
}

// NewRegistry builds a registry with the built-in formats.
func NewRegistry() *Registry {
	return &Registry{formats: []*FormatDescriptor{
		BankStatementFormat(),
		CardStatementFormat(),
		PayrollFormat(),
	}}
}

// Register appends a custom descriptor.
func (r *Registry) Register(f *FormatDescriptor) {
	r.formats = append(r.formats, f)
}

// Formats returns the registered descriptors.
func (r *Registry) Formats() []*FormatDescriptor {
	return r.formats
}

// Lookup returns a descriptor by name.
func (r *Registry) Lookup(name string) (*FormatDescriptor, bool) {
	for _, f := range r.formats {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Detect probes the header region for each format's distinctive phrases and
// returns the descriptor with the most hits. Ties go to registration order.
func (r *Registry) Detect(lines []RawLine, scanLines int) (*FormatDescriptor, error) {
	if scanLines <= 0 || scanLines > len(lines) {
		scanLines = len(lines)
	}

	var header strings.Builder
	for _, line := range lines[:scanLines] {
		header.WriteString(strings.ToUpper(line.Text))
		header.WriteByte('\n')
	}
	region := header.String()

	var best *FormatDescriptor
	bestHits := 0
	for _, f := range r.formats {
		hits := 0
		for _, phrase := range f.ProbePhrases {
			if strings.Contains(region, strings.ToUpper(phrase)) {
				hits++
			}
		}
		if hits > bestHits {
			best = f
			bestHits = hits
		}
	}
	if best == nil {
		return nil, ErrUnknownFormat
	}
	return best, nil
}

// Shared line patterns. Formats override these only when their layout differs.
var (
	dateOnlyPattern   = regexp.MustCompile(`^(\d{1,2}/\d{1,2}(?:/\d{2,4})?)$`)
	amountOnlyPattern = regexp.MustCompile(`^(\(?-?\$?[\d,]+\.\d{2}\)?)$`)
	dateAmountPattern = regexp.MustCompile(`^(\d{1,2}/\d{1,2}(?:/\d{2,4})?)\s*(.*?)\s*(\(?-?\$?[\d,]+\.\d{2}\)?)$`)
	referencePattern  = regexp.MustCompile(`^(?:REF(?:ERENCE)?[:# ]*)?(\d{6,})$`)
	pageNumberPattern = regexp.MustCompile(`(?i)^page \d+(?: of \d+)?$`)
)

// BankStatementFormat describes a common US checking-account layout.
// Sign convention: deposits positive, withdrawals/checks/fees negative.
func BankStatementFormat() *FormatDescriptor {
	return &FormatDescriptor{
		Name: "bank",
		ProbePhrases: []string{
			"Beginning Balance", "Ending Balance", "Statement Period", "Account Summary",
		},
		NoisePhrases: []string{
			"CONTINUED ON NEXT PAGE", "DATE DESCRIPTION AMOUNT", "POSTING DATE",
			"DAILY BALANCE SUMMARY", "ACCOUNT MESSAGES", "MEMBER FDIC",
			"CUSTOMER SERVICE", "THANK YOU FOR BANKING",
		},
		SkipPatterns: []*regexp.Regexp{pageNumberPattern},
		SectionRules: []SectionRule{
			{regexp.MustCompile(`(?i)^(?:electronic )?deposits`), "deposits", +1},
			{regexp.MustCompile(`(?i)^other credits`), "credits", +1},
			{regexp.MustCompile(`(?i)^checks(?: paid)?`), "checks", -1},
			{regexp.MustCompile(`(?i)^(?:electronic payments|other withdrawals|withdrawals)`), "withdrawals", -1},
			{regexp.MustCompile(`(?i)^service (?:charges|fees)`), "fees", -1},
		},
		DateOnlyPattern:   dateOnlyPattern,
		AmountOnlyPattern: amountOnlyPattern,
		DateAmountPattern: dateAmountPattern,
		ReferencePattern:  referencePattern,
		DefaultSign:       -1,
	}
}

// CardStatementFormat describes a credit-card layout.
// Sign convention: purchases positive, payments and credits negative.
func CardStatementFormat() *FormatDescriptor {
	return &FormatDescriptor{
		Name: "card",
		ProbePhrases: []string{
			"New Balance", "Minimum Payment", "Payment Due Date", "Transaction Detail",
		},
		NoisePhrases: []string{
			"CONTINUED ON NEXT PAGE", "TRANS DATE POST DATE", "SEE REVERSE SIDE",
			"IMPORTANT INFORMATION", "INTEREST CHARGE CALCULATION",
		},
		SkipPatterns: []*regexp.Regexp{pageNumberPattern},
		SectionRules: []SectionRule{
			{regexp.MustCompile(`(?i)^payments(?: and(?: other)? credits)?`), "payments", -1},
			{regexp.MustCompile(`(?i)^(?:purchases|transaction detail)`), "purchases", +1},
			{regexp.MustCompile(`(?i)^fees(?: charged)?`), "fees", +1},
		},
		DateOnlyPattern:   dateOnlyPattern,
		AmountOnlyPattern: amountOnlyPattern,
		DateAmountPattern: dateAmountPattern,
		ReferencePattern:  referencePattern,
		DefaultSign:       +1,
	}
}

// PayrollFormat describes a grouped payroll summary: an outer loop over
// employee name headers, each block carrying labeled rate/hour/adjustment
// lines. The first bare dollar amount after a rate line is that block's tip;
// later dollar amounts are ignored. That heuristic is specific to this layout
// and deliberately not shared with other formats.
func PayrollFormat() *FormatDescriptor {
	return &FormatDescriptor{
		Name: "payroll",
		ProbePhrases: []string{
			"Payroll Summary", "Pay Period", "Regular Hours",
		},
		NoisePhrases: []string{
			"CONTINUED ON NEXT PAGE", "EMPLOYEE HOURS RATE", "TOTALS",
			"PAYROLL SUMMARY", "PAY PERIOD",
		},
		SkipPatterns: []*regexp.Regexp{pageNumberPattern},
		NamePattern:  regexp.MustCompile(`^([A-Z][A-Za-z'.-]+(?:,)? [A-Z][A-Za-z'.-]+)$`),
		SectionRules: []SectionRule{
			{regexp.MustCompile(`(?i)^(?:week|period) (?:one|1)\b`), "week1", 0},
			{regexp.MustCompile(`(?i)^(?:week|period) (?:two|2)\b`), "week2", 0},
		},
		DateOnlyPattern:   dateOnlyPattern,
		AmountOnlyPattern: amountOnlyPattern,
		DateAmountPattern: dateAmountPattern,
		ReferencePattern:  referencePattern,
		FieldRules: []FieldRule{
			{regexp.MustCompile(`(?i)^rate[: ]+\$?(\d+\.\d{2})$`), SlotRate},
			{regexp.MustCompile(`(?i)^(?:reg(?:ular)?(?: hours)?)[: ]+(\d+(?:\.\d+)?)$`), SlotRegular},
			{regexp.MustCompile(`(?i)^(?:ot|overtime)(?: hours)?[: ]+(\d+(?:\.\d+)?)$`), SlotOvertime},
			{regexp.MustCompile(`(?i)^(?:dt|double ?time)(?: hours)?[: ]+(\d+(?:\.\d+)?)$`), SlotDoubleTime},
			{regexp.MustCompile(`(?i)^sick(?: hours)?[: ]+(\d+(?:\.\d+)?)$`), SlotSick},
			{regexp.MustCompile(`(?i)^(?:cash )?advance[: ]+\$?([\d,]+\.\d{2})$`), SlotCashAdvance},
			{regexp.MustCompile(`(?i)^bonus[: ]+\$?([\d,]+\.\d{2})$`), SlotBonus},
		},
		Grouped: true,
	}
}
