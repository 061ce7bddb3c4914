package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Detect(t *testing.T) {
	registry := NewRegistry()

	t.Run("bank header", func(t *testing.T) {
		format, err := registry.Detect(NormalizeLines([]string{
			"FIRST NATIONAL BANK",
			"Account Summary",
			"Beginning Balance $4,102.33",
			"Ending Balance $3,988.10",
		}), 0)
		require.NoError(t, err)
		assert.Equal(t, "bank", format.Name)
	})

	t.Run("card header", func(t *testing.T) {
		format, err := registry.Detect(NormalizeLines([]string{
			"PLATINUM CARD",
			"New Balance: $812.40",
			"Minimum Payment: $35.00",
			"Payment Due Date: 04/25/2024",
		}), 0)
		require.NoError(t, err)
		assert.Equal(t, "card", format.Name)
	})

	t.Run("payroll header", func(t *testing.T) {
		format, err := registry.Detect(NormalizeLines([]string{
			"Payroll Summary",
			"Pay Period 03/01/2024 - 03/15/2024",
			"Regular Hours",
		}), 0)
		require.NoError(t, err)
		assert.Equal(t, "payroll", format.Name)
		assert.True(t, format.Grouped)
	})

	t.Run("most hits wins", func(t *testing.T) {
		// "New Balance" alone probes card; two bank phrases outvote it.
		format, err := registry.Detect(NormalizeLines([]string{
			"Statement Period 03/01/2024 to 03/31/2024",
			"Beginning Balance $10.00",
			"New Balance $12.00",
		}), 0)
		require.NoError(t, err)
		assert.Equal(t, "bank", format.Name)
	})

	t.Run("no probe hits", func(t *testing.T) {
		_, err := registry.Detect(NormalizeLines([]string{
			"GROCERY RECEIPT", "THANK YOU",
		}), 0)
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})

	t.Run("scan depth limits the probe region", func(t *testing.T) {
		lines := NormalizeLines([]string{
			"cover page",
			"Beginning Balance $10.00",
			"Ending Balance $12.00",
		})
		_, err := registry.Detect(lines, 1)
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})
}

func TestRegistry_Lookup(t *testing.T) {
	registry := NewRegistry()

	format, ok := registry.Lookup("card")
	require.True(t, ok)
	assert.Equal(t, "card", format.Name)

	_, ok = registry.Lookup("nope")
	assert.False(t, ok)
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()
	custom := &FormatDescriptor{Name: "custom", ProbePhrases: []string{"VERY CUSTOM HEADER"}}
	registry.Register(custom)

	format, err := registry.Detect(NormalizeLines([]string{"very custom header"}), 0)
	require.NoError(t, err)
	assert.Equal(t, "custom", format.Name)

	got, ok := registry.Lookup("custom")
	require.True(t, ok)
	assert.Same(t, custom, got)
}
