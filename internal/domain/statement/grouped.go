package statement

import (
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"
)

// Slot names for grouped-format field rules.
const (
	SlotRate        = "rate"
	SlotRegular     = "regular"
	SlotOvertime    = "overtime"
	SlotDoubleTime  = "doubletime"
	SlotSick        = "sick"
	SlotCashAdvance = "advance"
	SlotBonus       = "bonus"
	SlotTip         = "tip"
)

// BucketKey identifies one accumulation bucket: an entity (employee) within a
// section of the document.
type BucketKey struct {
	Entity  string
	Section string
}

// EntityBucket accumulates the field slots for one entity+section block.
// Unset numeric slots stay at zero; that default is deliberate, real
// documents routinely omit fields and downstream code treats zero as "none".
type EntityBucket struct {
	Key   BucketKey
	Slots map[string]decimal.Decimal
}

// Get returns a slot value, zero when the slot was never filled.
func (b *EntityBucket) Get(slot string) decimal.Decimal {
	return b.Slots[slot]
}

// GroupedAssembler is the two-level variant of the block assembler: an outer
// loop over name-header lines partitions the stream into per-entity blocks,
// and labeled field lines inside a block accumulate into a keyed bucket.
// Buckets are created lazily on first reference and never merged. One
// instance per parse pass.
type GroupedAssembler struct {
	format *FormatDescriptor
	logger *slog.Logger

	buckets map[BucketKey]*EntityBucket
	order   []BucketKey

	curEntity  string
	curSection string

	// tip heuristic state: the first bare dollar amount after a rate line is
	// the block's tip; any later dollar amount in the block is ignored. This
	// convention is tied to one specific payroll layout.
	sawRate bool
	sawTip  bool
}

// NewGroupedAssembler builds a grouped assembler for one document.
func NewGroupedAssembler(format *FormatDescriptor, logger *slog.Logger) *GroupedAssembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GroupedAssembler{
		format:  format,
		logger:  logger,
		buckets: make(map[BucketKey]*EntityBucket),
	}
}

// Assemble walks the classified lines, partitioning on name headers and
// accumulating labeled fields into buckets. Returns buckets in first-seen
// order.
func (g *GroupedAssembler) Assemble(tags []Tag) []*EntityBucket {
	for _, tag := range tags {
		switch tag.Kind {
		case TagNoise:
			continue

		case TagNameHeader:
			g.curEntity = tag.Name
			g.sawRate = false
			g.sawTip = false

		case TagSectionHeader:
			g.curSection = tag.Section
			g.sawRate = false
			g.sawTip = false

		case TagAmountOnly:
			// Tip heuristic: first dollar amount after this block's rate.
			// Amounts floating between blank lines are page totals, never tips.
			if tag.Isolated || g.curEntity == "" || !g.sawRate || g.sawTip {
				continue
			}
			g.bucket().Slots[SlotTip] = tag.Amount.Round(2)
			g.sawTip = true

		case TagFreeText:
			if g.curEntity == "" {
				continue
			}
			g.applyFieldRules(tag.Text)
		}
	}

	out := make([]*EntityBucket, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, g.buckets[key])
	}
	return out
}

// applyFieldRules matches a line against the format's labeled-field grammar
// and fills the corresponding slot.
func (g *GroupedAssembler) applyFieldRules(text string) {
	for _, rule := range g.format.FieldRules {
		m := rule.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value, err := decimal.NewFromString(stripThousands(m[1]))
		if err != nil {
			g.logger.Debug("unparseable field value",
				slog.String("slot", rule.Slot), slog.String("line", text))
			return
		}
		g.bucket().Slots[rule.Slot] = value
		if rule.Slot == SlotRate {
			g.sawRate = true
			g.sawTip = false
		}
		return
	}
}

// bucket returns the current (entity, section) bucket, creating it lazily.
func (g *GroupedAssembler) bucket() *EntityBucket {
	key := BucketKey{Entity: g.curEntity, Section: g.curSection}
	b, ok := g.buckets[key]
	if !ok {
		b = &EntityBucket{Key: key, Slots: make(map[string]decimal.Decimal)}
		g.buckets[key] = b
		g.order = append(g.order, key)
	}
	return b
}

// Entities returns the distinct entity names seen, sorted.
func (g *GroupedAssembler) Entities() []string {
	seen := make(map[string]bool)
	var names []string
	for _, key := range g.order {
		if !seen[key.Entity] {
			seen[key.Entity] = true
			names = append(names, key.Entity)
		}
	}
	sort.Strings(names)
	return names
}

func stripThousands(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != ',' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
