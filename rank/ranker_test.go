package rank

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/flightrank/core"
	"github.com/rushteam/flightrank/frame"
	"github.com/rushteam/flightrank/metric"
	"github.com/rushteam/flightrank/rerank"
)

// echoModel 返回特征 x 本身；x 缺失时返回 NaN
type echoModel struct{}

func (echoModel) Name() string { return "echo" }

func (echoModel) Predict(f map[string]float64) (float64, error) {
	v, ok := f["x"]
	if !ok {
		return math.NaN(), nil
	}
	return v, nil
}

// batchModel 记录每次批量请求的行数
type batchModel struct {
	echoModel
	batches []int
}

func (m *batchModel) PredictBatch(_ context.Context, list []map[string]float64) ([]float64, error) {
	m.batches = append(m.batches, len(list))
	out := make([]float64, len(list))
	for i, f := range list {
		out[i], _ = m.Predict(f)
	}
	return out, nil
}

func fixture() *frame.Table {
	return frame.MustNew(
		frame.NewString("Id", []string{"1", "2", "3", "4", "5"}, nil),
		frame.NewString("ranker_id", []string{"a", "b", "a", "a", "b"}, nil),
		frame.NewFloat("x", []float64{0.2, 0.9, math.NaN(), 0.7, 0.1}, nil),
		frame.NewFloat("selected", []float64{0, 1, 0, 1, 0}, nil),
	)
}

func TestRankerScore(t *testing.T) {
	m := &batchModel{}
	r := &Ranker{Model: m, Features: []string{"x"}, BatchSize: 2}

	scores, err := r.Score(context.Background(), fixture())
	require.NoError(t, err)
	require.Len(t, scores, 5)
	assert.Equal(t, 0.2, scores[0])
	assert.True(t, math.IsNaN(scores[2]))
	assert.Equal(t, []int{2, 2, 1}, m.batches)
}

func TestRankerScoreErrors(t *testing.T) {
	tbl := fixture()
	tests := []struct {
		name   string
		ranker *Ranker
		code   string
	}{
		{"nil model", &Ranker{Features: []string{"x"}}, core.ErrorCodeInvalidInput},
		{"missing feature", &Ranker{Model: echoModel{}, Features: []string{"y"}}, core.ErrorCodeMissingColumn},
		{"string feature", &Ranker{Model: echoModel{}, Features: []string{"ranker_id"}}, core.ErrorCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.ranker.Score(context.Background(), tbl)
			require.Error(t, err)
			assert.Equal(t, tt.code, core.GetDomainError(err).Code)
		})
	}
}

func TestRankerRank(t *testing.T) {
	r := &Ranker{Model: echoModel{}, Features: []string{"x"}}
	items, err := r.Rank(context.Background(), fixture(), "Id", "ranker_id", "selected")
	require.NoError(t, err)

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	// 分组按首次出现顺序，组内分数降序，NaN 最后
	assert.Equal(t, []string{"4", "1", "3", "2", "5"}, ids)
	assert.Equal(t, "1", items[0].Labels["rank_position"].Value)
	assert.Equal(t, "echo", items[0].Labels["rank_model"].Value)
	assert.Equal(t, 1.0, items[0].Label)

	top := (&rerank.TopN{N: 1}).Apply(items)
	require.Len(t, top, 2)
	hits, groups := rerank.Hits(top)
	assert.Equal(t, 2, hits)
	assert.Equal(t, 2, groups)

	// 与 HitRate 的组内排序保持一致
	h := &metric.HitRate{K: 1, MinGroupSize: 0}
	hr, err := h.Compute([]float64{0, 1, 0, 1, 0}, []float64{0.2, 0.9, math.NaN(), 0.7, 0.1},
		[]string{"a", "b", "a", "a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, hr)
}
