package pipeline

import (
	"context"
	"fmt"
	"time"
)

// Observer 接收每个 Step 的耗时，用于监控打点。
type Observer interface {
	ObserveStep(name string, d time.Duration)
}

// Pipeline 把特征工程拆成可组合的 Step 链，按顺序执行。
// 任一 Step 出错即整体失败，不产生部分结果。
type Pipeline struct {
	Name     string
	Steps    []Step
	Observer Observer
}

func (p *Pipeline) Run(ctx context.Context, st *State) error {
	for _, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		if err := step.Apply(ctx, st); err != nil {
			return fmt.Errorf("step %s: %w", step.Name(), err)
		}
		elapsed := time.Since(start)
		if p.Observer != nil {
			p.Observer.ObserveStep(step.Name(), elapsed)
		}
		st.Logger.Debug("feature step done",
			"pipeline", p.Name,
			"step", step.Name(),
			"columns", st.Table.Width(),
			"elapsed", elapsed,
		)
	}
	return nil
}

// Append 追加 Step，返回自身便于链式构建
func (p *Pipeline) Append(steps ...Step) *Pipeline {
	p.Steps = append(p.Steps, steps...)
	return p
}
