package model

import (
	"context"
	"sort"
)

// RankModel 是排序阶段的最小抽象：输入特征，输出一个可比较的分数。
// 具体实现可以是本地模型（LR）或远程 RPC（XGBoost 排序服务）。
type RankModel interface {
	Name() string
	Predict(features map[string]float64) (float64, error)
}

// BatchRankModel 支持批量打分。一个 ranker_id 分组的候选通常一次性打分。
type BatchRankModel interface {
	RankModel
	PredictBatch(ctx context.Context, featuresList []map[string]float64) ([]float64, error)
}

// PredictAll 对一批特征打分；模型支持批量时走批量接口。
func PredictAll(ctx context.Context, m RankModel, featuresList []map[string]float64) ([]float64, error) {
	if bm, ok := m.(BatchRankModel); ok {
		return bm.PredictBatch(ctx, featuresList)
	}
	scores := make([]float64, len(featuresList))
	for i, f := range featuresList {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := m.Predict(f)
		if err != nil {
			return nil, err
		}
		scores[i] = s
	}
	return scores, nil
}

// FeatureImportance 单个特征的重要性（gain）
type FeatureImportance struct {
	Feature    string  `json:"feature" csv:"feature"`
	Importance float64 `json:"importance" csv:"importance"`
}

// SortImportance 按重要性降序排列，同值按特征名升序保证输出稳定。
func SortImportance(scores map[string]float64) []FeatureImportance {
	out := make([]FeatureImportance, 0, len(scores))
	for f, v := range scores {
		out = append(out, FeatureImportance{Feature: f, Importance: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Importance != out[j].Importance {
			return out[i].Importance > out[j].Importance
		}
		return out[i].Feature < out[j].Feature
	})
	return out
}
