package crm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"dashes", "555-0100", "5550100"},
		{"parens and spaces", "(55) 1234 5678", "5512345678"},
		{"country code", "+52 55 1234 5678", "525512345678"},
		{"already digits", "5512345678", "5512345678"},
		{"no digits", "ext.", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhone(tt.input))
		})
	}
}

func TestFoldText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"accents removed", "García", "GARCIA"},
		{"enye folded", "Peña Nieto", "PENA NIETO"},
		{"mixed case", "maría JOSÉ", "MARIA JOSE"},
		{"whitespace collapsed", "  Juan\t\tPérez  ", "JUAN PEREZ"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FoldText(tt.input))
		})
	}
}

func TestFoldText_EquivalentSpellings(t *testing.T) {
	assert.Equal(t, FoldText("García"), FoldText("garcia"))
	assert.Equal(t, FoldText("José Ángel"), FoldText("jose angel"))
}

func TestNormalizeAddressKey(t *testing.T) {
	t.Run("joins folded parts in fixed order", func(t *testing.T) {
		key := NormalizeAddressKey("Av. Insurgentes Sur 123", "Ciudad de México", "CDMX", "03100", "MX")
		assert.Equal(t, "AV. INSURGENTES SUR 123|CIUDAD DE MEXICO|CDMX|03100|MX", key)
	})

	t.Run("accent and case variants collide", func(t *testing.T) {
		a := NormalizeAddressKey("Calle Juárez 5", "Mérida", "Yucatán", "97000", "MX")
		b := NormalizeAddressKey("calle juarez 5", "merida", "yucatan", "97000", "mx")
		assert.Equal(t, a, b)
	})

	t.Run("different streets do not collide", func(t *testing.T) {
		a := NormalizeAddressKey("Calle Juárez 5", "Mérida", "", "", "MX")
		b := NormalizeAddressKey("Calle Juárez 7", "Mérida", "", "", "MX")
		assert.NotEqual(t, a, b)
	})
}
