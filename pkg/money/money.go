// Package money bridges shopspring/decimal amounts and go-money display
// values. Parsing and arithmetic stay in decimal; go-money handles currency
// formatting for reports.
package money

import (
	"fmt"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// USD is the default display currency for reconciliation reports.
const USD = gomoney.USD

// Round2 rounds an amount to the 2-decimal precision used as the unit of
// equality across the system.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ToMoney converts a decimal amount into a go-money value in the given
// currency, rounding to cents.
func ToMoney(d decimal.Decimal, currencyCode string) *gomoney.Money {
	cents := d.Round(2).Mul(decimal.NewFromInt(100)).IntPart()
	return gomoney.New(cents, currencyCode)
}

// FromMoney converts a go-money value back into a decimal amount.
func FromMoney(m *gomoney.Money) decimal.Decimal {
	return decimal.NewFromInt(m.Amount()).Div(decimal.NewFromInt(100))
}

// Display formats an amount for human-readable output ("-$1,234.56").
func Display(d decimal.Decimal, currencyCode string) string {
	return ToMoney(d, currencyCode).Display()
}

// DisplayUSD is Display with the default report currency.
func DisplayUSD(d decimal.Decimal) string {
	return Display(d, USD)
}

// String renders an amount with exactly two fraction digits and no currency
// symbol, the canonical exchange form.
func String(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

// Sum adds a list of amounts, rounding the result to cents.
func Sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a.Round(2))
	}
	return total.Round(2)
}

// Equal reports whether two amounts agree at 2-decimal precision.
func Equal(a, b decimal.Decimal) bool {
	return a.Round(2).Equal(b.Round(2))
}

// ParseSigned parses a plain signed decimal string ("-1234.56") into an
// amount. Unlike statement-text amount parsing this accepts no thousands
// separators or parentheses; it exists for canonical exchange rows.
func ParseSigned(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d.Round(2), nil
}
