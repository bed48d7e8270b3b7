package pipeline

import (
	"context"
	"log/slog"

	"github.com/rushteam/flightrank/frame"
)

// Step 是特征流水线的最小可扩展单元。
// 统一采用“读取若干列 -> 写入派生列”的形态；后续 Step 可以读取前序 Step 的输出。
type Step interface {
	Name() string
	Apply(ctx context.Context, st *State) error
}

// State 是一次流水线调用的全部输入与输出。
//
//   - Table: 正在构建的特征表（由 Step 写入）
//   - Raw: 调用方传入的原始表，只读，用于判断原始值是否存在
//   - Reference: 人群统计来源表（train_df），只读，绝不从 Table 反推
type State struct {
	Table     *frame.Table
	Raw       *frame.Table
	Reference *frame.Table
	Logger    *slog.Logger

	// Values 供 Step 之间传递非列形式的中间结果（例如预先计算的先验）
	Values map[string]any
}

// NewState 创建流水线状态；Table 是 raw 的深拷贝，raw 本身不会被修改。
func NewState(raw, reference *frame.Table, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{
		Table:     raw.Clone(),
		Raw:       raw,
		Reference: reference,
		Logger:    logger,
		Values:    make(map[string]any),
	}
}

// StepFunc 把普通函数适配为 Step
type StepFunc struct {
	StepName string
	Fn       func(ctx context.Context, st *State) error
}

func (f StepFunc) Name() string { return f.StepName }

func (f StepFunc) Apply(ctx context.Context, st *State) error {
	return f.Fn(ctx, st)
}
