package metric

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/flightrank/core"
)

// sessions 构造 n 个分组，每组 size 行、一个正样本；pos 返回正样本在组内的预测名次（0 为最高分）。
func sessions(n, size int, pos func(g int) int) (labels, scores []float64, groups []string) {
	for g := 0; g < n; g++ {
		p := pos(g)
		for r := 0; r < size; r++ {
			groups = append(groups, fmt.Sprintf("s%d", g))
			scores = append(scores, float64(size-r))
			if r == p {
				labels = append(labels, 1)
			} else {
				labels = append(labels, 0)
			}
		}
	}
	return labels, scores, groups
}

func TestHitRateAtK(t *testing.T) {
	tests := []struct {
		name string
		pos  func(g int) int
		want float64
	}{
		{name: "always top-3", pos: func(g int) int { return g % 3 }, want: 1.0},
		{name: "always last", pos: func(int) int { return 11 }, want: 0.0},
		{name: "half at rank 4", pos: func(g int) int { return 3 * (g % 2) }, want: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels, scores, groups := sessions(4, 12, tt.pos)
			got, err := HitRateAtK(labels, scores, groups, DefaultK)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestHitRateAtK_SmallGroupIgnored(t *testing.T) {
	labels, scores, groups := sessions(2, 12, func(int) int { return 0 })

	// 8 行的分组即使预测全错也不影响结果
	for r := 0; r < 8; r++ {
		groups = append(groups, "small")
		scores = append(scores, float64(8-r))
		labels = append(labels, map[bool]float64{true: 1, false: 0}[r == 7])
	}

	got, err := HitRateAtK(labels, scores, groups, 3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestHitRateAtK_ExactlyMinGroupSizeExcluded(t *testing.T) {
	labels, scores, groups := sessions(1, 10, func(int) int { return 0 })
	_, err := HitRateAtK(labels, scores, groups, 3)
	assert.ErrorIs(t, err, ErrNoEligibleGroups)
}

func TestHitRateAtK_NoEligibleGroups(t *testing.T) {
	labels, scores, groups := sessions(3, 8, func(int) int { return 0 })
	got, err := HitRateAtK(labels, scores, groups, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoEligibleGroups))
	assert.Equal(t, 0.0, got)

	de := core.GetDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, core.ErrorCodeNoEligibleGroups, de.Code)
}

func TestHitRateAtK_StableTies(t *testing.T) {
	// 全部同分：保持原顺序，前 3 行即组内前 3 行
	labels := make([]float64, 11)
	scores := make([]float64, 11)
	groups := make([]string, 11)
	for i := range groups {
		groups[i] = "g"
	}
	labels[2] = 1
	got, err := HitRateAtK(labels, scores, groups, 3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	labels[2], labels[3] = 0, 1
	got, err = HitRateAtK(labels, scores, groups, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestHitRateAtK_NaNScoresLast(t *testing.T) {
	labels := make([]float64, 11)
	scores := make([]float64, 11)
	groups := make([]string, 11)
	for i := range groups {
		groups[i] = "g"
		scores[i] = float64(i)
	}
	scores[10] = math.NaN()
	labels[10] = 1
	got, err := HitRateAtK(labels, scores, groups, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestHitRateAtK_KLargerThanGroup(t *testing.T) {
	labels, scores, groups := sessions(2, 11, func(int) int { return 10 })
	got, err := HitRateAtK(labels, scores, groups, 20)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestHitRate_InvalidInput(t *testing.T) {
	_, err := HitRateAtK([]float64{1}, []float64{1, 2}, []string{"a"}, 3)
	require.Error(t, err)
	assert.Equal(t, core.ErrorCodeLengthMismatch, core.GetDomainError(err).Code)

	_, err = HitRateAtK([]float64{1}, []float64{1}, []string{"a"}, 0)
	require.Error(t, err)
	assert.Equal(t, core.ErrorCodeInvalidInput, core.GetDomainError(err).Code)
}

func TestHitRate_Curve(t *testing.T) {
	// 正样本名次依次为 0,1,2,3
	labels, scores, groups := sessions(4, 12, func(g int) int { return g })
	curve, err := NewHitRate(1).Curve(labels, scores, groups, 5)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.5, 0.75, 1.0, 1.0}, curve)
}
