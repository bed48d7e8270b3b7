package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceAnyToString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"nil", nil, nil},
		{"strings", []any{"MOWLED", "LEDMOW"}, []string{"MOWLED", "LEDMOW"}},
		{"typed", []string{"a"}, []string{"a"}},
		{"numbers", []any{12, 1.5, true, "x"}, []string{"12", "1.5", "x"}},
		{"scalar", "MOWLED", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SliceAnyToString(tt.in))
		})
	}
}

func TestConfigGet(t *testing.T) {
	cfg := map[string]any{"column": "price_per_minute", "parallelism": 4, "batch": 2.9, "flag": "yes"}

	assert.Equal(t, "price_per_minute", ConfigGet(cfg, "column", ""))
	assert.Equal(t, "dflt", ConfigGet(cfg, "parallelism", "dflt"))
	assert.Equal(t, "dflt", ConfigGet[string](nil, "column", "dflt"))

	assert.EqualValues(t, 4, ConfigGetInt64(cfg, "parallelism", 0))
	assert.EqualValues(t, 2, ConfigGetInt64(cfg, "batch", 0))
	assert.EqualValues(t, 7, ConfigGetInt64(cfg, "flag", 7))
	assert.EqualValues(t, 7, ConfigGetInt64(nil, "missing", 7))
}
