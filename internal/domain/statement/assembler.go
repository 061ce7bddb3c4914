package statement

import (
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is a fully assembled transaction. Immutable once appended to a parse
// result. Amount is rounded to 2 places; the rounded value is the unit of
// equality everywhere downstream. An empty description is valid.
type Record struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Reference   string
}

// assembler FSM states.
type assemblerState int

const (
	awaitingRecordStart assemblerState = iota
	accumulatingFields
)

// Assembler walks a classified line sequence and groups lines into records.
// One instance per parse pass; construct fresh state for every document.
//
// The machine: AwaitingRecordStart skips noise and headers until a date-only
// or date+amount line seeds a record; AccumulatingFields joins description
// lines and captures a reference until an amount (or the next record start)
// finalizes the record. Records missing a date or an amount after
// accumulation are dropped, never half-emitted.
type Assembler struct {
	format *FormatDescriptor
	period StatementPeriod
	logger *slog.Logger

	state       assemblerState
	sectionSign int

	// current record under accumulation
	curDate   time.Time
	curDesc   []string
	curAmount decimal.Decimal
	hasDate   bool
	hasAmount bool
	curRef    string

	records   []Record
	abandoned int
}

// NewAssembler builds an assembler for one document. The statement period
// must already be resolved: date normalization depends on it.
func NewAssembler(format *FormatDescriptor, period StatementPeriod, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		format:      format,
		period:      period,
		logger:      logger,
		sectionSign: format.DefaultSign,
	}
}

// Assemble runs the machine over pre-classified lines and returns the
// completed records in document order.
func (a *Assembler) Assemble(tags []Tag) []Record {
	for _, tag := range tags {
		a.step(tag)
	}
	a.finalize()
	if a.abandoned > 0 {
		a.logger.Debug("dropped incomplete records",
			slog.String("format", a.format.Name),
			slog.Int("count", a.abandoned))
	}
	return a.records
}

// Parse is the whole pipeline for one document: classify, then assemble.
func Parse(format *FormatDescriptor, lines []RawLine, period StatementPeriod, logger *slog.Logger) []Record {
	tags := NewClassifier(format).ClassifyAll(lines)
	return NewAssembler(format, period, logger).Assemble(tags)
}

func (a *Assembler) step(tag Tag) {
	switch tag.Kind {
	case TagNoise:
		return

	case TagSectionHeader:
		// A section change ends any record in flight.
		a.finalize()
		if tag.SectionSign != 0 {
			a.sectionSign = tag.SectionSign
		} else {
			a.sectionSign = a.format.DefaultSign
		}

	case TagNameHeader:
		// Flat formats treat entity headers as block boundaries.
		a.finalize()

	case TagDateOnly:
		a.finalize()
		a.seed(tag)

	case TagDateAndAmount:
		a.finalize()
		a.seed(tag)
		a.setAmount(tag.Amount, tag.ExplicitSign)
		if tag.Text != "" {
			a.curDesc = append(a.curDesc, tag.Text)
		}

	case TagAmountOnly:
		if a.state != accumulatingFields {
			// Stray amount outside any record; isolated amounts here are
			// floating page totals. A record in flight still claims the
			// amount even when blank lines surround it.
			return
		}
		if a.hasAmount {
			// The record already has its amount; a second one starts nothing
			// on its own and is ignored here.
			return
		}
		a.setAmount(tag.Amount, tag.ExplicitSign)

	case TagReference:
		if a.state == accumulatingFields {
			// Captured, but does not terminate accumulation.
			a.curRef = tag.Reference
		}

	case TagFreeText:
		if a.state == accumulatingFields {
			a.curDesc = append(a.curDesc, tag.Text)
		}
	}
}

// seed begins a new record from a date-bearing tag.
func (a *Assembler) seed(tag Tag) {
	a.state = accumulatingFields
	a.curDate = ResolveDay(tag.Month, tag.Day, tag.Year, a.period)
	a.hasDate = !a.curDate.IsZero()
	a.curDesc = a.curDesc[:0]
	a.curAmount = decimal.Zero
	a.hasAmount = false
	a.curRef = ""
}

// setAmount records the amount, forcing section polarity onto unsigned
// values: inside a withdrawals section a bare "45.00" means -45.00 even
// though the source printed no sign.
func (a *Assembler) setAmount(amount decimal.Decimal, explicitSign bool) {
	if !explicitSign && a.sectionSign < 0 && amount.IsPositive() {
		amount = amount.Neg()
	}
	a.curAmount = amount
	a.hasAmount = true
}

// finalize emits the record in flight when complete, or drops it silently
// (counted, logged once at the end) when the date or amount never arrived.
func (a *Assembler) finalize() {
	if a.state != accumulatingFields {
		return
	}
	a.state = awaitingRecordStart

	if !a.hasDate || !a.hasAmount {
		a.abandoned++
		return
	}
	a.records = append(a.records, Record{
		Date:        a.curDate,
		Description: strings.Join(a.curDesc, " "),
		Amount:      a.curAmount.Round(2),
		Reference:   a.curRef,
	})
}
