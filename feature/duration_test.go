package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rushteam/flightrank/frame"
)

func TestParseDurationMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"2:30", 150},
		{"02:30:00", 150},
		{"1.02:30", 1590},
		{"1.02:30:00", 1590},
		{"25:99", 1599},
		{"0:05", 5},
		{"", 0},
		{"abc", 0},
		{"3:", 180},
		{":45", 45},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDurationMinutes(tt.in))
		})
	}
}

func TestDurationMinutesColumn(t *testing.T) {
	c := frame.NewString("legs0_duration", []string{"2:30", "", "1.00:00"}, []bool{true, false, true})
	out := DurationMinutes(c)

	assert.Equal(t, frame.KindInt, out.Kind)
	assert.Equal(t, []float64{150, 0, 1440}, out.Nums)
	assert.Zero(t, out.NullCount())

	// 已解析的列再解析一次保持不变
	again := DurationMinutes(out)
	assert.Equal(t, out.Nums, again.Nums)
}
