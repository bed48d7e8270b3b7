package feature

import (
	"context"
	"fmt"

	"github.com/rushteam/flightrank/frame"
	"github.com/rushteam/flightrank/pipeline"
	"github.com/rushteam/flightrank/pkg/dsl"
)

// ExprStep 用 CEL 表达式派生一个数值列，用于在配置中声明额外特征。
// Inputs 限定表达式可见的列（为空时整行可见）；null 值不放入 row。
// 表达式出错或结果非数值的行记为 null，最终由 FillNullStep 填 0。
type ExprStep struct {
	Column string
	Inputs []string
	expr   *dsl.Expr
}

// NewExprStep 编译表达式并创建 Step
func NewExprStep(column, expr string, inputs []string) (*ExprStep, error) {
	if column == "" {
		return nil, fmt.Errorf("expr step: column name is required")
	}
	compiled, err := dsl.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("expr step %s: %w", column, err)
	}
	return &ExprStep{Column: column, Inputs: inputs, expr: compiled}, nil
}

func (s *ExprStep) Name() string { return "expr." + s.Column }

func (s *ExprStep) Apply(_ context.Context, st *pipeline.State) error {
	var cols []*frame.Column
	if len(s.Inputs) == 0 {
		cols = st.Table.Columns()
	} else {
		for _, name := range s.Inputs {
			if c, ok := st.Table.Col(name); ok {
				cols = append(cols, c)
			}
		}
	}

	n := st.Table.Len()
	vals := make([]float64, n)
	valid := make([]bool, n)
	row := make(map[string]any, len(cols))
	for i := 0; i < n; i++ {
		clear(row)
		for _, c := range cols {
			if c.IsNull(i) {
				continue
			}
			if c.Kind == frame.KindString {
				row[c.Name] = c.Strs[i]
			} else {
				row[c.Name] = c.Nums[i]
			}
		}
		vals[i], valid[i] = s.expr.EvalFloat(row)
	}
	st.Table.MustSet(frame.NewFloat(s.Column, vals, valid))
	return nil
}
