package model

import (
	"encoding/json"
	"math"
	"os"
)

// LRModel 逻辑回归打分，作为 XGBoost 排序模型的基线。
//
//	z = Bias + sum(Weight_i * Feature_i)
//	P = 1 / (1 + exp(-z))
//
// 组内排序只依赖相对大小，Sigmoid 不改变顺序。
type LRModel struct {
	Bias    float64
	Weights map[string]float64
}

// LoadLRModel 读取 {"bias": ..., "weights": {...}} 格式的权重文件
func LoadLRModel(path string) (*LRModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw struct {
		Bias    float64            `json:"bias"`
		Weights map[string]float64 `json:"weights"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return &LRModel{Bias: raw.Bias, Weights: raw.Weights}, nil
}

// CheapestFirst 返回只看价格排名的基线：越便宜分数越高。
func CheapestFirst() *LRModel {
	return &LRModel{Weights: map[string]float64{"price_pct_rank": -1}}
}

func (m *LRModel) Name() string { return "lr" }

func (m *LRModel) Predict(features map[string]float64) (float64, error) {
	score := m.Bias
	for k, w := range m.Weights {
		score += w * features[k]
	}
	return 1 / (1 + math.Exp(-score)), nil
}
