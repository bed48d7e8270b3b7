package rerank

import (
	"strconv"

	"github.com/rushteam/flightrank/core"
	"github.com/rushteam/flightrank/pkg/utils"
)

// TopN 对每个分组截取前 N 个候选，通常在 rank.Ranker.Rank 之后使用。
//
// 输入要求同组候选连续且已按分数排序（Rank 的输出满足）。
//
// 示例：
//
//	items, _ := ranker.Rank(ctx, table, "Id", "ranker_id", "selected")
//	top := (&rerank.TopN{N: 3}).Apply(items)
type TopN struct {
	// N 每组保留的候选数；N <= 0 时不截断
	N int
}

func (n *TopN) Name() string {
	return "rerank.topn"
}

func (n *TopN) Apply(items []*core.Item) []*core.Item {
	if n.N <= 0 {
		return items
	}
	out := make([]*core.Item, 0, len(items))
	seen := make(map[string]int)
	for _, it := range items {
		if it == nil {
			continue
		}
		if seen[it.Group] >= n.N {
			continue
		}
		seen[it.Group]++
		it.PutLabel("rerank_topn", utils.Label{Value: strconv.Itoa(n.N), Source: "rerank"})
		out = append(out, it)
	}
	return out
}

// Hits 统计截断后命中（Label == 1）的分组数与分组总数
func Hits(items []*core.Item) (hits, groups int) {
	hit := make(map[string]bool)
	for _, it := range items {
		if it == nil {
			continue
		}
		if _, ok := hit[it.Group]; !ok {
			hit[it.Group] = false
			groups++
		}
		if it.Label == 1 && !hit[it.Group] {
			hit[it.Group] = true
			hits++
		}
	}
	return hits, groups
}
