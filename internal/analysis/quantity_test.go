package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		unit  Unit
	}{
		{"kilograms", "2 кг картошки", 2000, UnitGram},
		{"kilograms latin", "1.5 kg", 1500, UnitGram},
		{"grams", "250 г риса", 250, UnitGram},
		{"grams full word", "300 грамм гречки", 300, UnitGram},
		{"liters", "1 л молока", 1000, UnitMilliliter},
		{"milliliters", "500 мл кефира", 500, UnitMilliliter},
		{"pieces", "3 шт", 300, UnitGram},
		{"portions", "2 порции борща", 400, UnitGram},
		{"cups", "1 стакан сметаны", 250, UnitGram},
		{"tablespoons", "3 ст. л. масла", 45, UnitGram},
		{"teaspoons", "2 ч. л. сахара", 10, UnitGram},
		{"fractional", "0.5 кг", 500, UnitGram},
		{"uppercase input", "2 КГ мяса", 2000, UnitGram},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, unit := ParseQuantity(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.unit, unit)
		})
	}
}

func TestParseQuantityDefault(t *testing.T) {
	for _, input := range []string{"asdf", "", "тарелка борща", "немного хлеба"} {
		got, unit := ParseQuantity(input)
		assert.Equal(t, DefaultQuantity, got, "input %q", input)
		assert.Equal(t, UnitGram, unit)
	}
}

// Kilogram spellings must not be shadowed by the bare gram rule.
func TestParseQuantityRuleOrder(t *testing.T) {
	got, unit := ParseQuantity("2кг")
	assert.Equal(t, 2000.0, got)
	assert.Equal(t, UnitGram, unit)

	got, unit = ParseQuantity("2л")
	assert.Equal(t, 2000.0, got)
	assert.Equal(t, UnitMilliliter, unit)
}
