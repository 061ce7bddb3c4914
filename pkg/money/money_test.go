package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, "10.00", Round2(decimal.RequireFromString("10.004")).StringFixed(2))
	assert.Equal(t, "10.01", Round2(decimal.RequireFromString("10.005")).StringFixed(2))
	assert.Equal(t, "-4.50", Round2(decimal.RequireFromString("-4.499")).StringFixed(2))
}

func TestToMoneyFromMoney(t *testing.T) {
	d := decimal.RequireFromString("-1234.56")

	m := ToMoney(d, USD)
	assert.Equal(t, int64(-123456), m.Amount())

	back := FromMoney(m)
	assert.True(t, back.Equal(d))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "$1,234.56", DisplayUSD(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "-$45.00", DisplayUSD(decimal.RequireFromString("-45")))
}

func TestString(t *testing.T) {
	assert.Equal(t, "10.00", String(decimal.RequireFromString("10")))
	assert.Equal(t, "-0.50", String(decimal.RequireFromString("-0.5")))
}

func TestSum(t *testing.T) {
	got := Sum([]decimal.Decimal{
		decimal.RequireFromString("10.00"),
		decimal.RequireFromString("-4.50"),
		decimal.RequireFromString("0.004"), // rounds away
	})
	assert.Equal(t, "5.50", got.StringFixed(2))

	assert.True(t, Sum(nil).IsZero())
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(
		decimal.RequireFromString("10.004"),
		decimal.RequireFromString("9.996"),
	))
	assert.False(t, Equal(
		decimal.RequireFromString("10.00"),
		decimal.RequireFromString("10.01"),
	))
}

func TestParseSigned(t *testing.T) {
	t.Run("plain signed decimal", func(t *testing.T) {
		d, err := ParseSigned("-1234.56")
		require.NoError(t, err)
		assert.Equal(t, "-1234.56", d.StringFixed(2))
	})

	t.Run("no thousands separators", func(t *testing.T) {
		_, err := ParseSigned("1,234.56")
		assert.Error(t, err)
	})

	t.Run("no currency symbols", func(t *testing.T) {
		_, err := ParseSigned("$10.00")
		assert.Error(t, err)
	})
}
