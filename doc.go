// Package flightrank 是航班行程排序的特征工程与离线评估工具包。
//
// 设计要点：
// - Step-first: 特征工程由 pipeline.Step 串联（时长解析 → 价格/航段/时刻 → 组内统计 → 空值填充）
// - Group-aware: 组内统计与评估都以 ranker_id 会话为单位，分组按首次出现顺序
// - Step 可扩展: 自定义 Step 或 CEL 表达式（feature.ExprStep）即可插拔新特征
package flightrank

import (
	"github.com/rushteam/flightrank/metric"
	"github.com/rushteam/flightrank/pipeline"
)

// 轻量 facade：便于直接 import "flightrank" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Step = pipeline.Step
type State = pipeline.State
type HitRate = metric.HitRate

const (
	DefaultK            = metric.DefaultK
	DefaultMinGroupSize = metric.DefaultMinGroupSize
)
