// Package metric 提供分组排序的离线评估指标。
package metric

import (
	"fmt"
	"math"
	"sort"

	"github.com/rushteam/flightrank/core"
)

const (
	// DefaultK 默认取每组预测分最高的前 3 个
	DefaultK = 3
	// DefaultMinGroupSize 分组行数必须严格大于该值才参与评估
	DefaultMinGroupSize = 10
)

// ErrNoEligibleGroups 没有任何分组满足最小规模，此时指标无定义，返回值为 0。
var ErrNoEligibleGroups = core.NewDomainError(core.ModuleMetric, core.ErrorCodeNoEligibleGroups,
	"metric: no group has more rows than the minimum group size")

// HitRate 计算 HitRate@K：前 K 个预测结果中包含真实选择的分组占比。
type HitRate struct {
	K            int
	MinGroupSize int
}

// NewHitRate 使用默认最小分组规模创建
func NewHitRate(k int) *HitRate {
	return &HitRate{K: k, MinGroupSize: DefaultMinGroupSize}
}

// Compute 对三个等长序列求值：labels（0/1）、scores、groups（ranker_id）。
//
// 行数 <= MinGroupSize 的分组不参与评估；组内按分数降序稳定排序（NaN 排最后），
// 前 K 行中任一 label 为 1 记为命中。
func (h *HitRate) Compute(labels, scores []float64, groups []string) (float64, error) {
	if len(labels) != len(scores) || len(labels) != len(groups) {
		return 0, core.NewDomainError(core.ModuleMetric, core.ErrorCodeLengthMismatch,
			fmt.Sprintf("metric: labels=%d scores=%d groups=%d must have equal length",
				len(labels), len(scores), len(groups)))
	}
	if h.K <= 0 {
		return 0, core.NewDomainError(core.ModuleMetric, core.ErrorCodeInvalidInput,
			fmt.Sprintf("metric: k must be positive, got %d", h.K))
	}

	order, rows := partition(groups)
	hits, eligible := 0, 0
	for _, g := range order {
		idx := rows[g]
		if len(idx) <= h.MinGroupSize {
			continue
		}
		eligible++
		if topKHit(idx, labels, scores, h.K) {
			hits++
		}
	}
	if eligible == 0 {
		return 0, ErrNoEligibleGroups
	}
	return float64(hits) / float64(eligible), nil
}

// Curve 计算 k = 1..maxK 的 HitRate，下标 i 对应 k = i+1。
func (h *HitRate) Curve(labels, scores []float64, groups []string, maxK int) ([]float64, error) {
	out := make([]float64, 0, maxK)
	for k := 1; k <= maxK; k++ {
		v, err := (&HitRate{K: k, MinGroupSize: h.MinGroupSize}).Compute(labels, scores, groups)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// HitRateAtK 使用默认最小分组规模计算 HitRate@k
func HitRateAtK(labels, scores []float64, groups []string, k int) (float64, error) {
	return NewHitRate(k).Compute(labels, scores, groups)
}

// partition 按首次出现顺序分组
func partition(groups []string) ([]string, map[string][]int) {
	rows := make(map[string][]int)
	order := make([]string, 0)
	for i, g := range groups {
		if _, ok := rows[g]; !ok {
			order = append(order, g)
		}
		rows[g] = append(rows[g], i)
	}
	return order, rows
}

func topKHit(idx []int, labels, scores []float64, k int) bool {
	ranked := append([]int(nil), idx...)
	sort.SliceStable(ranked, func(a, b int) bool {
		return scoreBefore(scores[ranked[a]], scores[ranked[b]])
	})
	if k > len(ranked) {
		k = len(ranked)
	}
	for _, i := range ranked[:k] {
		if labels[i] == 1 {
			return true
		}
	}
	return false
}

// scoreBefore 降序比较，NaN 视为最小
func scoreBefore(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}
