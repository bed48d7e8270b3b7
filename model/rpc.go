package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rushteam/flightrank/core"
)

// RPCModel 是通过 HTTP 调用外部 XGBoost 排序服务的 RankModel 实现。
type RPCModel struct {
	name     string
	Endpoint string // 例如 "http://localhost:8080/predict"
	Timeout  time.Duration
	Client   *http.Client
}

func NewRPCModel(name, endpoint string, timeout time.Duration) *RPCModel {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &RPCModel{
		name:     name,
		Endpoint: endpoint,
		Timeout:  timeout,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (m *RPCModel) Name() string {
	return m.name
}

// Predict 单条打分，内部调用批量接口。
func (m *RPCModel) Predict(features map[string]float64) (float64, error) {
	scores, err := m.PredictBatch(context.Background(), []map[string]float64{features})
	if err != nil {
		return 0, err
	}
	return scores[0], nil
}

// PredictBatch 批量打分。
// 请求格式（JSON）：
//
//	{"model": "xgb-ranker", "features_list": [{"price_pct_rank": 0.5, "is_direct_leg0": 1, ...}, ...]}
//
// 响应格式（JSON）：
//
//	{"scores": [0.85, 0.72, ...]}
func (m *RPCModel) PredictBatch(ctx context.Context, featuresList []map[string]float64) ([]float64, error) {
	if m.Client == nil {
		m.Client = &http.Client{Timeout: m.Timeout}
	}
	if len(featuresList) == 0 {
		return []float64{}, nil
	}

	jsonData, err := json.Marshal(map[string]any{
		"model":         m.name,
		"features_list": featuresList,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeUnavailable,
			fmt.Sprintf("model: rpc call: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeUnavailable,
			fmt.Sprintf("model: rpc error: status=%d, body=%s", resp.StatusCode, string(body)))
	}

	var result struct {
		Scores []float64 `json:"scores"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Scores) != len(featuresList) {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeLengthMismatch,
			fmt.Sprintf("model: response scores count mismatch: expected %d, got %d", len(featuresList), len(result.Scores)))
	}
	return result.Scores, nil
}
