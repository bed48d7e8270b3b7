package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalFloat(t *testing.T) {
	row := map[string]any{
		"totalPrice":     1200.0,
		"total_duration": 119.0,
		"is_one_way":     1.0,
		"searchRoute":    "MOWLED",
	}
	tests := []struct {
		expr   string
		want   float64
		wantOK bool
	}{
		{"row.totalPrice / (row.total_duration + 1.0)", 10, true},
		{"row.is_one_way == 1.0 ? 0.0 : row.total_duration", 0, true},
		{"row.searchRoute.startsWith('MOW')", 1, true},
		{"has(row.taxes) ? row.taxes : -1.0", -1, true},
		{"int(row.totalPrice)", 1200, true},
		{"row.taxes + 1.0", 0, false},
		{"row.searchRoute", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e, err := Compile(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expr, e.String())

			got, ok := e.EvalFloat(row)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCompileError(t *testing.T) {
	_, err := Compile("row.totalPrice +")
	assert.Error(t, err)
}
