package statement

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/shopspring/decimal"
)

// TagKind identifies the classification of a single line.
type TagKind int

const (
	TagNoise TagKind = iota
	TagSectionHeader
	TagNameHeader
	TagDateOnly
	TagAmountOnly
	TagDateAndAmount
	TagReference
	TagFreeText
)

func (k TagKind) String() string {
	switch k {
	case TagNoise:
		return "noise"
	case TagSectionHeader:
		return "section-header"
	case TagNameHeader:
		return "name-header"
	case TagDateOnly:
		return "date-only"
	case TagAmountOnly:
		return "amount-only"
	case TagDateAndAmount:
		return "date-and-amount"
	case TagReference:
		return "reference"
	case TagFreeText:
		return "free-text"
	}
	return "unknown"
}

// Tag is the classification of one line plus the fields extracted from it.
// Only the fields relevant to the Kind are set.
type Tag struct {
	Kind TagKind

	Month, Day, Year int             // date kinds; Year 0 when the source omitted it
	Amount           decimal.Decimal // amount kinds, rounded to 2 places
	ExplicitSign     bool            // the source printed a minus or parentheses
	Isolated         bool            // TagAmountOnly with blank lines on both sides

	Section     string // TagSectionHeader
	SectionSign int    // polarity bare amounts take inside this section

	Name      string // TagNameHeader
	Reference string // TagReference
	Text      string // TagFreeText and the description part of TagDateAndAmount
}

// Context is the small lookaround window a classifier may consult. Lines are
// already normalized; empty strings mean no neighbor.
type Context struct {
	Prev string
	Next string
}

// Classifier applies one format's grammar to individual lines. Patterns apply
// in a fixed priority order: skip/noise first, then section headers, name
// headers, date-only, amount-only, date+amount, reference, and finally free
// text. The ordering is deliberate: description text can coincidentally look
// like a bare number or date fragment, so the narrowest patterns go first.
type Classifier struct {
	format *FormatDescriptor
	noise  *ahocorasick.Matcher
}

// NewClassifier compiles a classifier for the given format. The format's
// noise phrases are compiled into a single Aho-Corasick matcher so every line
// is checked against the whole set in one pass.
func NewClassifier(format *FormatDescriptor) *Classifier {
	c := &Classifier{format: format}
	if len(format.NoisePhrases) > 0 {
		patterns := make([][]byte, len(format.NoisePhrases))
		for i, p := range format.NoisePhrases {
			patterns[i] = []byte(strings.ToUpper(p))
		}
		c.noise = ahocorasick.NewMatcher(patterns)
	}
	return c
}

// Classify returns exactly one tag for the line.
func (c *Classifier) Classify(line RawLine, ctx Context) Tag {
	text := line.Text
	if text == "" {
		return Tag{Kind: TagNoise}
	}
	upper := strings.ToUpper(text)

	if c.isNoise(text, upper) {
		return Tag{Kind: TagNoise}
	}

	for _, rule := range c.format.SectionRules {
		if rule.Pattern.MatchString(text) {
			return Tag{Kind: TagSectionHeader, Section: rule.Kind, SectionSign: rule.Sign}
		}
	}

	if c.format.NamePattern != nil {
		if m := c.format.NamePattern.FindStringSubmatch(text); m != nil {
			return Tag{Kind: TagNameHeader, Name: m[1]}
		}
	}

	if c.format.DateOnlyPattern != nil {
		if m := c.format.DateOnlyPattern.FindStringSubmatch(text); m != nil {
			if month, day, year, ok := ParseDateFragment(m[1]); ok {
				return Tag{Kind: TagDateOnly, Month: month, Day: day, Year: year}
			}
		}
	}

	if c.format.AmountOnlyPattern != nil {
		if m := c.format.AmountOnlyPattern.FindStringSubmatch(text); m != nil {
			if amount, ok := ParseAmount(m[1]); ok {
				return Tag{
					Kind:         TagAmountOnly,
					Amount:       amount,
					ExplicitSign: hasExplicitSign(m[1]),
					// Blank lines on both sides suggest a floating page total.
					// Whether that matters depends on accumulation state, so
					// the assembler decides, not the classifier.
					Isolated: ctx.Prev == "" && ctx.Next == "",
				}
			}
		}
	}

	if c.format.DateAmountPattern != nil {
		if m := c.format.DateAmountPattern.FindStringSubmatch(text); m != nil {
			month, day, year, dateOK := ParseDateFragment(m[1])
			amount, amountOK := ParseAmount(m[3])
			if dateOK && amountOK {
				return Tag{
					Kind:         TagDateAndAmount,
					Month:        month,
					Day:          day,
					Year:         year,
					Amount:       amount,
					ExplicitSign: hasExplicitSign(m[3]),
					Text:         strings.TrimSpace(m[2]),
				}
			}
		}
	}

	if c.format.ReferencePattern != nil {
		if m := c.format.ReferencePattern.FindStringSubmatch(text); m != nil {
			return Tag{Kind: TagReference, Reference: m[1]}
		}
	}

	return Tag{Kind: TagFreeText, Text: text}
}

// ClassifyAll tags every line, supplying each line's immediate neighbors as
// context.
func (c *Classifier) ClassifyAll(lines []RawLine) []Tag {
	tags := make([]Tag, len(lines))
	for i, line := range lines {
		var ctx Context
		if i > 0 {
			ctx.Prev = lines[i-1].Text
		}
		if i+1 < len(lines) {
			ctx.Next = lines[i+1].Text
		}
		tags[i] = c.Classify(line, ctx)
	}
	return tags
}

func (c *Classifier) isNoise(text, upper string) bool {
	if c.noise != nil && len(c.noise.Match([]byte(upper))) > 0 {
		return true
	}
	for _, p := range c.format.SkipPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// hasExplicitSign reports whether an amount fragment carried its own sign.
func hasExplicitSign(fragment string) bool {
	s := strings.TrimSpace(fragment)
	return strings.HasPrefix(s, "-") || strings.HasPrefix(s, "(") ||
		strings.HasPrefix(strings.TrimPrefix(s, "$"), "-")
}
