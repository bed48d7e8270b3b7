package feature

import (
	"context"

	"github.com/rushteam/flightrank/frame"
	"github.com/rushteam/flightrank/pipeline"
)

// FillNullStep 最后一步：数值列 null 填 0，字符串列 null 填 "missing"。
// 每列填充的行数上报给 Monitor。
type FillNullStep struct {
	Monitor Monitor
}

func (s *FillNullStep) Name() string { return "fill_null" }

func (s *FillNullStep) Apply(_ context.Context, st *pipeline.State) error {
	for _, c := range st.Table.Columns() {
		missing := c.NullCount()
		if s.Monitor != nil {
			s.Monitor.RecordMissing(c.Name, missing)
		}
		if missing == 0 {
			continue
		}
		st.Table.MustSet(fillColumn(c))
	}
	return nil
}

func fillColumn(c *frame.Column) *frame.Column {
	out := c.Clone()
	for i, ok := range out.Valid {
		if ok {
			continue
		}
		if out.Kind == frame.KindString {
			out.Strs[i] = MissingString
		} else {
			out.Nums[i] = 0
		}
		out.Valid[i] = true
	}
	return out
}
