package train

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rushteam/flightrank/core"
	"github.com/rushteam/flightrank/model"
)

// Params 是 XGBoost 排序模型的训练参数
type Params struct {
	Objective       string  `json:"objective" yaml:"objective" mapstructure:"objective"`
	EvalMetric      string  `json:"eval_metric" yaml:"eval_metric" mapstructure:"eval_metric"`
	LearningRate    float64 `json:"learning_rate" yaml:"learning_rate" mapstructure:"learning_rate"`
	MaxDepth        int     `json:"max_depth" yaml:"max_depth" mapstructure:"max_depth"`
	MinChildWeight  float64 `json:"min_child_weight" yaml:"min_child_weight" mapstructure:"min_child_weight"`
	Subsample       float64 `json:"subsample" yaml:"subsample" mapstructure:"subsample"`
	ColsampleByTree float64 `json:"colsample_bytree" yaml:"colsample_bytree" mapstructure:"colsample_bytree"`
	Seed            int     `json:"seed" yaml:"seed" mapstructure:"seed"`
	NumBoostRound   int     `json:"num_boost_round" yaml:"num_boost_round" mapstructure:"num_boost_round"`
	VerboseEval     int     `json:"verbose_eval" yaml:"verbose_eval" mapstructure:"verbose_eval"`
}

// DefaultParams 组内 pairwise 排序，以 ndcg@3 作为验证指标
func DefaultParams() Params {
	return Params{
		Objective:       "rank:pairwise",
		EvalMetric:      "ndcg@3",
		LearningRate:    0.0226,
		MaxDepth:        14,
		MinChildWeight:  2,
		Subsample:       0.88,
		ColsampleByTree: 0.46,
		Seed:            42,
		NumBoostRound:   1000,
		VerboseEval:     50,
	}
}

// Trainer 训练排序模型；具体实现由外部服务完成。
type Trainer interface {
	Train(ctx context.Context, trainSet, validSet *Dataset, params Params) (Booster, error)
}

// Booster 是训练得到的模型句柄：可以打分，也可以查询特征重要性。
type Booster interface {
	model.BatchRankModel
	// Importance 返回 特征名 -> 重要性，importanceType 如 "gain"
	Importance(ctx context.Context, importanceType string) (map[string]float64, error)
}

// RPCTrainer 通过 HTTP 调用 XGBoost 训练服务。
//
// 接口约定：
//
//	POST {endpoint}/train                          -> {"model_id": "..."}
//	POST {endpoint}/models/{id}/predict            -> {"scores": [...]}
//	GET  {endpoint}/models/{id}/importance?type=gain -> {"importance": {"f": 1.2, ...}}
type RPCTrainer struct {
	Endpoint string
	Client   *http.Client
}

// NewRPCTrainer 训练耗时较长，timeout 为 0 时不设置客户端超时，由 ctx 控制。
func NewRPCTrainer(endpoint string, timeout time.Duration) *RPCTrainer {
	return &RPCTrainer{
		Endpoint: strings.TrimRight(endpoint, "/"),
		Client:   &http.Client{Timeout: timeout},
	}
}

type trainRequest struct {
	Params Params   `json:"params"`
	Train  *Dataset `json:"train"`
	Valid  *Dataset `json:"valid,omitempty"`
}

func (t *RPCTrainer) Train(ctx context.Context, trainSet, validSet *Dataset, params Params) (Booster, error) {
	if trainSet == nil || trainSet.Rows() == 0 {
		return nil, core.NewDomainError(core.ModuleTrain, core.ErrorCodeInvalidInput, "train: empty training set")
	}
	var resp struct {
		ModelID string `json:"model_id"`
	}
	if err := t.do(ctx, http.MethodPost, "/train", trainRequest{Params: params, Train: trainSet, Valid: validSet}, &resp); err != nil {
		return nil, err
	}
	if resp.ModelID == "" {
		return nil, core.NewDomainError(core.ModuleTrain, core.ErrorCodeInternalError, "train: service returned empty model_id")
	}
	return t.Booster(resp.ModelID), nil
}

// Booster 返回已训练模型的句柄（用于只做推理的场景）
func (t *RPCTrainer) Booster(modelID string) Booster {
	predict := fmt.Sprintf("%s/models/%s/predict", t.Endpoint, url.PathEscape(modelID))
	m := model.NewRPCModel(modelID, predict, 0)
	if t.Client != nil {
		m.Client = t.Client
	}
	return &rpcBooster{RPCModel: m, trainer: t, id: modelID}
}

type rpcBooster struct {
	*model.RPCModel
	trainer *RPCTrainer
	id      string
}

func (b *rpcBooster) Importance(ctx context.Context, importanceType string) (map[string]float64, error) {
	path := fmt.Sprintf("/models/%s/importance?type=%s", url.PathEscape(b.id), url.QueryEscape(importanceType))
	var resp struct {
		Importance map[string]float64 `json:"importance"`
	}
	if err := b.trainer.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Importance, nil
}

func (t *RPCTrainer) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, t.Endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return core.NewDomainError(core.ModuleTrain, core.ErrorCodeUnavailable, fmt.Sprintf("train: %s %s: %v", method, path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return core.NewDomainError(core.ModuleTrain, core.ErrorCodeUnavailable,
			fmt.Sprintf("train: %s %s: status=%d, body=%s", method, path, resp.StatusCode, string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
