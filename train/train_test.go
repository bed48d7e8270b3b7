package train

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/flightrank/core"
	"github.com/rushteam/flightrank/frame"
)

func sampleTable() *frame.Table {
	return frame.MustNew(
		frame.NewString("ranker_id", []string{"a", "a", "a", "b", "b", "c"}, nil),
		frame.NewString("carrier", []string{"SU", "S7", "SU", "missing", "U6", "S7"}, nil),
		frame.NewFloat("price", []float64{100, 200, 300, 150, 250, 90}, nil),
		frame.NewInt("selected", []float64{1, 0, 0, 0, 1, 1}, nil),
	)
}

func TestEncodeCategorical(t *testing.T) {
	tbl := frame.MustNew(
		frame.NewString("carrier", []string{"SU", "S7", "", "SU"}, []bool{true, true, false, true}),
	)
	out, enc, err := EncodeCategorical(tbl, []string{"carrier"})
	require.NoError(t, err)

	c, ok := out.Col("carrier")
	require.True(t, ok)
	assert.Equal(t, frame.KindInt, c.Kind)
	// "S7" < "SU"
	assert.Equal(t, []float64{1, 0, -1, 1}, c.Nums)
	assert.Equal(t, map[string]int{"S7": 0, "SU": 1}, enc.LabelMap["carrier"])

	// 原表不变
	orig, _ := tbl.Col("carrier")
	assert.Equal(t, frame.KindString, orig.Kind)
}

func TestApplyEncoding(t *testing.T) {
	trainTbl := frame.MustNew(frame.NewString("carrier", []string{"AA", "SU"}, nil))
	_, enc, err := EncodeCategorical(trainTbl, []string{"carrier"})
	require.NoError(t, err)

	// 评估数据单独读入：SU 沿用训练时的编码，没见过的 ZZ 为 -1
	evalTbl := frame.MustNew(frame.NewString("carrier", []string{"SU", "ZZ", ""}, []bool{true, true, false}))
	out, err := ApplyEncoding(evalTbl, []string{"carrier"}, enc.LabelMap)
	require.NoError(t, err)
	c, _ := out.Col("carrier")
	assert.Equal(t, []float64{1, -1, -1}, c.Nums)

	refit, _, err := EncodeCategorical(evalTbl, []string{"carrier"})
	require.NoError(t, err)
	rc, _ := refit.Col("carrier")
	assert.NotEqual(t, c.Nums, rc.Nums)

	_, err = ApplyEncoding(evalTbl, []string{"carrier", "cabin"}, enc.LabelMap)
	require.Error(t, err)
	assert.True(t, core.IsMissingColumn(err))
}

func TestSplitRowsLabeledPrefix(t *testing.T) {
	// 3 行有标签，2 行待预测
	tbl := frame.MustNew(
		frame.NewString("ranker_id", []string{"a", "a", "b", "c", "c"}, nil),
		frame.NewFloat("selected", []float64{1, 0, 1, math.NaN(), math.NaN()}, nil),
	)
	assert.Equal(t, 3, LabeledRows(tbl, "selected"))
	assert.Equal(t, 0, LabeledRows(tbl, "absent"))

	tr, va, err := SplitRows(tbl, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, 1, va.Len())

	_, _, err = SplitRows(tbl, 4, 0)
	assert.Error(t, err)
}

func TestSplitRows(t *testing.T) {
	tbl := sampleTable()
	tests := []struct {
		name      string
		boundary  int
		end       int
		wantTrain int
		wantValid int
		wantErr   bool
	}{
		{name: "middle", boundary: 3, end: 0, wantTrain: 3, wantValid: 3},
		{name: "labeled prefix", boundary: 3, end: 5, wantTrain: 3, wantValid: 2},
		{name: "all train", boundary: 6, end: 6, wantTrain: 6, wantValid: 0},
		{name: "boundary past end", boundary: 7, end: 0, wantErr: true},
		{name: "end past table", boundary: 1, end: 9, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, va, err := SplitRows(tbl, tt.boundary, tt.end)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, core.ErrorCodeInvalidInput, core.GetDomainError(err).Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTrain, tr.Len())
			assert.Equal(t, tt.wantValid, va.Len())
		})
	}
}

func TestGroupSizes(t *testing.T) {
	groups := frame.NewString("ranker_id", []string{"b", "b", "a", "c", "c", "c"}, nil)
	assert.Equal(t, []int{2, 1, 3}, GroupSizes(groups))
}

func TestNewDataset(t *testing.T) {
	encoded, _, err := EncodeCategorical(sampleTable(), []string{"carrier"})
	require.NoError(t, err)

	ds, err := NewDataset(encoded, []string{"carrier", "price"}, "selected", "ranker_id")
	require.NoError(t, err)
	assert.Equal(t, 6, ds.Rows())
	assert.Equal(t, []int{3, 2, 1}, ds.Group)
	assert.Equal(t, []float64{1, 0, 0, 0, 1, 1}, ds.Label)
	// 字节序：S7 < SU < U6 < missing
	assert.Equal(t, []float64{1, 100}, ds.Data[0])
	assert.Equal(t, []float64{3, 150}, ds.Data[3])

	_, err = NewDataset(sampleTable(), []string{"carrier"}, "selected", "ranker_id")
	require.Error(t, err)
	assert.Equal(t, core.ErrorCodeInvalidInput, core.GetDomainError(err).Code)
}

func TestRPCTrainer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /train", func(w http.ResponseWriter, r *http.Request) {
		var req trainRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "rank:pairwise", req.Params.Objective)
		assert.Equal(t, 1000, req.Params.NumBoostRound)
		assert.Equal(t, []int{3, 2, 1}, req.Train.Group)
		_ = json.NewEncoder(w).Encode(map[string]string{"model_id": "m1"})
	})
	mux.HandleFunc("POST /models/m1/predict", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			FeaturesList []map[string]float64 `json:"features_list"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		scores := make([]float64, len(req.FeaturesList))
		for i, f := range req.FeaturesList {
			scores[i] = -f["price"]
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"scores": scores})
	})
	mux.HandleFunc("GET /models/m1/importance", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gain", r.URL.Query().Get("type"))
		_ = json.NewEncoder(w).Encode(map[string]any{"importance": map[string]float64{"price": 12.5, "carrier": 3}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	encoded, _, err := EncodeCategorical(sampleTable(), []string{"carrier"})
	require.NoError(t, err)
	ds, err := NewDataset(encoded, []string{"carrier", "price"}, "selected", "ranker_id")
	require.NoError(t, err)

	ctx := context.Background()
	booster, err := NewRPCTrainer(srv.URL+"/", 0).Train(ctx, ds, nil, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, "m1", booster.Name())

	scores, err := booster.PredictBatch(ctx, []map[string]float64{{"price": 10}, {"price": 20}})
	require.NoError(t, err)
	assert.Equal(t, []float64{-10, -20}, scores)

	imp, err := booster.Importance(ctx, "gain")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"price": 12.5, "carrier": 3}, imp)
}

func TestRPCTrainer_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "out of memory", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ds := &Dataset{Data: [][]float64{{1}}, Label: []float64{1}, Group: []int{1}}
	_, err := NewRPCTrainer(srv.URL, 0).Train(context.Background(), ds, nil, DefaultParams())
	require.Error(t, err)
	assert.Equal(t, core.ErrorCodeUnavailable, core.GetDomainError(err).Code)

	_, err = NewRPCTrainer(srv.URL, 0).Train(context.Background(), &Dataset{}, nil, DefaultParams())
	require.Error(t, err)
	assert.Equal(t, core.ErrorCodeInvalidInput, core.GetDomainError(err).Code)
}
