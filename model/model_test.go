package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/flightrank/core"
)

func TestSortImportance(t *testing.T) {
	got := SortImportance(map[string]float64{
		"log_price":      3.5,
		"price_pct_rank": 10,
		"is_direct_leg0": 3.5,
		"group_size":     0.1,
	})
	want := []FeatureImportance{
		{Feature: "price_pct_rank", Importance: 10},
		{Feature: "is_direct_leg0", Importance: 3.5},
		{Feature: "log_price", Importance: 3.5},
		{Feature: "group_size", Importance: 0.1},
	}
	assert.Equal(t, want, got)
}

func TestRPCModel_PredictBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req struct {
			Model        string               `json:"model"`
			FeaturesList []map[string]float64 `json:"features_list"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "xgb", req.Model)

		scores := make([]float64, len(req.FeaturesList))
		for i, f := range req.FeaturesList {
			scores[i] = -f["totalPrice"]
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"scores": scores})
	}))
	defer srv.Close()

	m := NewRPCModel("xgb", srv.URL, 0)
	scores, err := m.PredictBatch(context.Background(), []map[string]float64{
		{"totalPrice": 100},
		{"totalPrice": 50},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{-100, -50}, scores)

	s, err := m.Predict(map[string]float64{"totalPrice": 7})
	require.NoError(t, err)
	assert.Equal(t, -7.0, s)
}

func TestRPCModel_Errors(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantCode string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			wantCode: core.ErrorCodeUnavailable,
		},
		{
			name: "score count mismatch",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"scores":[1,2,3]}`))
			},
			wantCode: core.ErrorCodeLengthMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewRPCModel("xgb", srv.URL, 0).PredictBatch(context.Background(), []map[string]float64{{"a": 1}})
			require.Error(t, err)
			de := core.GetDomainError(err)
			require.NotNil(t, de)
			assert.Equal(t, tt.wantCode, de.Code)
		})
	}
}

func TestPredictAll_FallsBackToSingle(t *testing.T) {
	m := CheapestFirst()
	scores, err := PredictAll(context.Background(), m, []map[string]float64{
		{"price_pct_rank": 0.25},
		{"price_pct_rank": 1},
	})
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Greater(t, scores[0], scores[1])
}
