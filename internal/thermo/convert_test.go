package thermo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		from  Unit
		want  []string
	}{
		{"freezing", 0, Celsius, []string{"32.00 °F", "273.15 K"}},
		{"boiling", 212, Fahrenheit, []string{"100.00 °C", "373.15 K"}},
		{"absolute zero", 0, Kelvin, []string{"-273.15 °C", "-459.67 °F"}},
		{"body", 98.6, Fahrenheit, []string{"37.00 °C", "310.15 K"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.value, tt.from)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, tt.want, []string{got[0].Text, got[1].Text})
			for _, r := range got {
				assert.NotEqual(t, tt.from, r.Unit)
			}
		})
	}

	_, err := Convert(1, Unit(9))
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestParseAndConvert_RejectsNonNumbers(t *testing.T) {
	for _, in := range []string{"", "abc", "12,5", "NaN", "inf"} {
		_, err := ParseAndConvert(in, Celsius)
		assert.ErrorIs(t, err, ErrNotNumber, in)
	}
	got, err := ParseAndConvert(" 25 ", Celsius)
	require.NoError(t, err)
	assert.Equal(t, 77.0, got[0].Value)
}

func TestParseUnit(t *testing.T) {
	for in, want := range map[string]Unit{"Celsius": Celsius, "F": Fahrenheit, "°f": Fahrenheit, "kelvin": Kelvin} {
		u, err := ParseUnit(in)
		require.NoError(t, err)
		assert.Equal(t, want, u)
	}
	_, err := ParseUnit("rankine")
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestPanel_BadInputKeepsState(t *testing.T) {
	p := NewPanel()
	v := p.Render(context.Background())
	assert.Equal(t, "---", v.Results[0].Text)
	assert.Equal(t, "Celsius (°C)", v.Units[0])

	_, err := p.Submit("212", Fahrenheit)
	require.NoError(t, err)
	v = p.Render(context.Background())
	assert.Equal(t, "100.00 °C", v.Results[0].Text)
	assert.Equal(t, "32.00 °F", v.Results[1].Text)
	assert.Equal(t, "373.15 K", v.Results[2].Text)

	_, err = p.Submit("hot", Celsius)
	assert.ErrorIs(t, err, ErrNotNumber)
	assert.Equal(t, v, p.Render(context.Background()))
}
