package core

import "github.com/rushteam/flightrank/pkg/utils"

// Item 是排序链路中的统一承载结构：一次搜索会话（Group）中的一个行程候选。
// Features 是模型输入；Score 用于排序决策；Label 是真实选择（1 表示被选中）。
type Item struct {
	ID       string
	Group    string
	Score    float64
	Label    float64
	Features map[string]float64
	Labels   map[string]utils.Label
}

func NewItem(id, group string) *Item {
	return &Item{
		ID:       id,
		Group:    group,
		Features: make(map[string]float64),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
