package feature

import (
	"context"

	"github.com/rushteam/flightrank/frame"
	"github.com/rushteam/flightrank/pipeline"
)

// GroupSizeStep 派生 group_size：同一 ranker_id 的行数（按 Id 非 null 计数）。
type GroupSizeStep struct{}

func (s *GroupSizeStep) Name() string { return "group_size" }

func (s *GroupSizeStep) Apply(_ context.Context, st *pipeline.State) error {
	groups := frame.GroupBy(st.Table.AnyCol(ColRankerID))
	st.Table.MustSet(groups.Count("group_size", st.Table.AnyCol(ColID)))
	return nil
}

// PriceRankStep 派生组内价格特征：
//   - price_pct_rank = 组内平均名次 / 组内非 null 价格数，取值 (0,1]
//   - is_cheapest    = 价格等于组内最小价格
type PriceRankStep struct{}

func (s *PriceRankStep) Name() string { return "price_rank" }

func (s *PriceRankStep) Apply(_ context.Context, st *pipeline.State) error {
	price := st.Table.FloatCol(ColTotalPrice)
	groups := frame.GroupBy(st.Table.AnyCol(ColRankerID))
	ranks := groups.RankAverage("price_rank", price)
	counts := groups.Count("price_count", price)
	mins := groups.Min("price_min", price)

	pct := binary("price_pct_rank", ranks, counts, func(r, c float64) float64 { return r / c })
	n := st.Table.Len()
	cheapest := make([]bool, n)
	for i := 0; i < n; i++ {
		p, okP := price.Float(i)
		m, okM := mins.Float(i)
		cheapest[i] = okP && okM && p == m
	}
	st.Table.MustSet(pct, flag("is_cheapest", cheapest))
	return nil
}
