package cart

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
	}{
		{"euro string with comma", "12,50 €", 12.5},
		{"nil", nil, 0},
		{"non numeric", "sur devis", 0},
		{"empty string", "", 0},
		{"plain float", 250.0, 250},
		{"int", 350, 350},
		{"json number", json.Number("19.9"), 19.9},
		{"thousands with space", "1 250,00 €", 1250},
		{"french thousands", "1.250,50", 1250.5},
		{"english thousands", "€1,250.50", 1250.5},
		{"negative number", -20.0, 0},
		{"negative string", "-12", 0},
		{"NaN", math.NaN(), 0},
		{"infinity", math.Inf(1), 0},
		{"unsupported type", []string{"12"}, 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NormalizePrice(tt.input), 1e-9)
		})
	}
}
