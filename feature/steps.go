package feature

import (
	"context"
	"math"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/flightrank/frame"
	"github.com/rushteam/flightrank/pipeline"
)

// DurationStep 把所有存在的时长列原位解析为分钟数（整数列）。
// 各列互不依赖，使用 errgroup 并行解析后串行写回。
type DurationStep struct {
	Columns []string
	// Parallelism 限制同时解析的列数，<= 0 时取 GOMAXPROCS
	Parallelism int
}

func (s *DurationStep) Name() string { return "duration" }

func (s *DurationStep) Apply(ctx context.Context, st *pipeline.State) error {
	cols := s.Columns
	if len(cols) == 0 {
		cols = DurationColumns()
	}
	present := make([]*frame.Column, 0, len(cols))
	for _, name := range cols {
		if c, ok := st.Table.Col(name); ok {
			present = append(present, c)
		}
	}
	parsed := make([]*frame.Column, len(present))
	err := forEachColumn(ctx, s.Parallelism, len(present), func(i int) {
		parsed[i] = DurationMinutes(present[i])
	})
	if err != nil {
		return err
	}
	st.Table.MustSet(parsed...)
	return nil
}

// forEachColumn 以至多 limit 个 goroutine 执行 fn(0..n-1)。
// ctx 取消后尚未开始的任务不再执行，返回 ctx 的错误；结果写回由调用方在返回 nil 后进行。
func forEachColumn(ctx context.Context, limit, n int, fn func(i int)) error {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// PricingStep 派生价格比率特征：
//   - price_per_tax = totalPrice / (taxes + 1)
//   - tax_rate      = taxes / (totalPrice + 1)
//   - log_price     = log(1 + totalPrice)
type PricingStep struct{}

func (s *PricingStep) Name() string { return "pricing" }

func (s *PricingStep) Apply(_ context.Context, st *pipeline.State) error {
	price := st.Table.FloatCol(ColTotalPrice)
	taxes := st.Table.FloatCol(ColTaxes)
	st.Table.MustSet(
		binary("price_per_tax", price, taxes, func(p, t float64) float64 { return p / (t + 1) }),
		binary("tax_rate", price, taxes, func(p, t float64) float64 { return t / (p + 1) }),
		unary("log_price", price, math.Log1p),
	)
	return nil
}

// DurationAggregateStep 派生 total_duration 与 duration_ratio。
// duration_ratio 仅在 legs1 时长 > 0 时为 leg0/(leg1+1)，否则为 1.0。
type DurationAggregateStep struct{}

func (s *DurationAggregateStep) Name() string { return "duration_aggregate" }

func (s *DurationAggregateStep) Apply(_ context.Context, st *pipeline.State) error {
	leg0 := st.Table.FloatCol(legDuration(0))
	leg1 := st.Table.FloatCol(legDuration(1))
	n := st.Table.Len()

	total := make([]float64, n)
	ratio := make([]float64, n)
	ratioValid := make([]bool, n)
	for i := 0; i < n; i++ {
		l1 := zeroFilled(leg1, i)
		total[i] = zeroFilled(leg0, i) + l1
		if l1 > 0 {
			if l0, ok := leg0.Float(i); ok {
				ratio[i], ratioValid[i] = l0/(l1+1), true
			}
			continue
		}
		ratio[i], ratioValid[i] = 1.0, true
	}
	st.Table.MustSet(
		intCol("total_duration", total),
		frame.NewFloat("duration_ratio", ratio, ratioValid),
	)
	return nil
}

// OneWayStep 派生 is_one_way：legs1 时长为 null/0，或 legs1 首航段没有出发机场。
type OneWayStep struct{}

func (s *OneWayStep) Name() string { return "one_way" }

func (s *OneWayStep) Apply(_ context.Context, st *pipeline.State) error {
	leg1 := st.Table.FloatCol(legDuration(1))
	dep := st.Table.AnyCol(departureAirport(1, 0))
	n := st.Table.Len()
	oneWay := make([]bool, n)
	for i := 0; i < n; i++ {
		d, ok := leg1.Float(i)
		oneWay[i] = !ok || d == 0 || dep.IsNull(i)
	}
	st.Table.MustSet(flag("is_one_way", oneWay))
	return nil
}

// CarrierCountStep 派生 l0_seg：两段行程全部航段中非 null 的销售航司代码个数。
type CarrierCountStep struct{}

func (s *CarrierCountStep) Name() string { return "carrier_count" }

func (s *CarrierCountStep) Apply(_ context.Context, st *pipeline.State) error {
	n := st.Table.Len()
	counts := make([]float64, n)
	for leg := 0; leg < numLegs; leg++ {
		for seg := 0; seg < numSegments; seg++ {
			c, ok := st.Table.Col(CarrierColumn(leg, seg))
			if !ok {
				continue
			}
			for i := 0; i < n; i++ {
				if !c.IsNull(i) {
					counts[i]++
				}
			}
		}
	}
	st.Table.MustSet(intCol("l0_seg", counts))
	return nil
}

// FrequentFlyerStep 派生 n_ff_programs："/" 分隔的常旅客计划个数，空串为 0。
type FrequentFlyerStep struct{}

func (s *FrequentFlyerStep) Name() string { return "frequent_flyer" }

func (s *FrequentFlyerStep) Apply(_ context.Context, st *pipeline.State) error {
	ff := st.Table.StringCol(ColFrequentFly)
	n := st.Table.Len()
	counts := make([]float64, n)
	for i := 0; i < n; i++ {
		v, _ := ff.Str(i)
		counts[i] = float64(strings.Count(v, "/"))
		if v != "" {
			counts[i]++
		}
	}
	st.Table.MustSet(intCol("n_ff_programs", counts))
	return nil
}

// FlagStep 派生二值标志 has_corporate_tariff、has_access_tp。
type FlagStep struct{}

func (s *FlagStep) Name() string { return "flags" }

func (s *FlagStep) Apply(_ context.Context, st *pipeline.State) error {
	tariff := st.Table.AnyCol(ColCorpTariff)
	access := st.Table.FloatCol(ColAccessTP)
	n := st.Table.Len()
	hasTariff := make([]bool, n)
	hasAccess := make([]bool, n)
	accessValid := make([]bool, n)
	for i := 0; i < n; i++ {
		hasTariff[i] = !tariff.IsNull(i)
		if v, ok := access.Float(i); ok {
			hasAccess[i], accessValid[i] = v == 1, true
		}
	}
	st.Table.MustSet(
		flag("has_corporate_tariff", hasTariff),
		nullableFlag("has_access_tp", hasAccess, accessValid),
	)
	return nil
}

// BaggageFeeStep 派生 baggage_total 与 total_fees（null 记 0 后求和）。
type BaggageFeeStep struct{}

func (s *BaggageFeeStep) Name() string { return "baggage_fees" }

func (s *BaggageFeeStep) Apply(_ context.Context, st *pipeline.State) error {
	bag0 := st.Table.FloatCol(baggageQuantity(0, 0))
	bag1 := st.Table.FloatCol(baggageQuantity(1, 0))
	fee0 := st.Table.FloatCol(ColMiniRules0)
	fee1 := st.Table.FloatCol(ColMiniRules1)
	n := st.Table.Len()
	bags := make([]float64, n)
	fees := make([]float64, n)
	for i := 0; i < n; i++ {
		bags[i] = zeroFilled(bag0, i) + zeroFilled(bag1, i)
		fees[i] = zeroFilled(fee0, i) + zeroFilled(fee1, i)
	}
	st.Table.MustSet(
		frame.NewFloat("baggage_total", bags, nil),
		frame.NewFloat("total_fees", fees, nil),
	)
	return nil
}

// DefaultPopularRoutes 是历史数据中高频的航线（莫斯科-圣彼得堡走廊及莫斯科-索契往返）。
var DefaultPopularRoutes = []string{"MOWLED/LEDMOW", "LEDMOW/MOWLED", "MOWLED", "LEDMOW", "MOWAER/AERMOW"}

// PopularRouteStep 派生 is_popular_route：searchRoute 是否在白名单中。
type PopularRouteStep struct {
	Routes []string
}

func (s *PopularRouteStep) Name() string { return "popular_route" }

func (s *PopularRouteStep) Apply(_ context.Context, st *pipeline.State) error {
	routes := s.Routes
	if routes == nil {
		routes = DefaultPopularRoutes
	}
	whitelist := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		whitelist[r] = struct{}{}
	}
	route := st.Table.StringCol(ColSearchRoute)
	n := st.Table.Len()
	popular := make([]bool, n)
	for i := 0; i < n; i++ {
		if v, ok := route.Str(i); ok {
			_, popular[i] = whitelist[v]
		}
	}
	st.Table.MustSet(flag("is_popular_route", popular))
	return nil
}

// CabinStep 派生 avg_cabin_class（忽略 null 的均值）与 cabin_class_diff（null 记 0）。
type CabinStep struct{}

func (s *CabinStep) Name() string { return "cabin" }

func (s *CabinStep) Apply(_ context.Context, st *pipeline.State) error {
	c0 := st.Table.FloatCol(cabinClass(0, 0))
	c1 := st.Table.FloatCol(cabinClass(1, 0))
	n := st.Table.Len()
	avg := make([]float64, n)
	avgValid := make([]bool, n)
	diff := make([]float64, n)
	for i := 0; i < n; i++ {
		sum, cnt := 0.0, 0
		if v, ok := c0.Float(i); ok {
			sum += v
			cnt++
		}
		if v, ok := c1.Float(i); ok {
			sum += v
			cnt++
		}
		if cnt > 0 {
			avg[i], avgValid[i] = sum/float64(cnt), true
		}
		diff[i] = zeroFilled(c0, i) - zeroFilled(c1, i)
	}
	st.Table.MustSet(
		frame.NewFloat("avg_cabin_class", avg, avgValid),
		frame.NewFloat("cabin_class_diff", diff, nil),
	)
	return nil
}

// SegmentCountStep 派生 n_segments_leg{0,1}：该行程最多 4 个航段中时长非 null 的个数。
// 时长列在解析时 null 已记 0，因此存在性从原始输入表（State.Raw）判断。
type SegmentCountStep struct{}

func (s *SegmentCountStep) Name() string { return "segment_count" }

func (s *SegmentCountStep) Apply(_ context.Context, st *pipeline.State) error {
	n := st.Table.Len()
	for leg := 0; leg < numLegs; leg++ {
		counts := make([]float64, n)
		for seg := 0; seg < numSegments; seg++ {
			c, ok := st.Raw.Col(segmentDuration(leg, seg))
			if !ok {
				continue
			}
			for i := 0; i < n; i++ {
				if !c.IsNull(i) {
					counts[i]++
				}
			}
		}
		st.Table.MustSet(intCol(segmentCountColumn(leg), counts))
	}
	return nil
}

func segmentCountColumn(leg int) string {
	if leg == 0 {
		return "n_segments_leg0"
	}
	return "n_segments_leg1"
}

// DirectStep 派生 total_segments、is_direct_leg0、is_direct_leg1（单程时恒为 0）。
type DirectStep struct{}

func (s *DirectStep) Name() string { return "direct" }

func (s *DirectStep) Apply(_ context.Context, st *pipeline.State) error {
	seg0 := st.Table.FloatCol(segmentCountColumn(0))
	seg1 := st.Table.FloatCol(segmentCountColumn(1))
	oneWay := st.Table.FloatCol("is_one_way")
	n := st.Table.Len()
	total := make([]float64, n)
	direct0 := make([]bool, n)
	direct1 := make([]bool, n)
	for i := 0; i < n; i++ {
		s0, s1 := zeroFilled(seg0, i), zeroFilled(seg1, i)
		total[i] = s0 + s1
		direct0[i] = s0 == 1
		direct1[i] = zeroFilled(oneWay, i) != 1 && s1 == 1
	}
	st.Table.MustSet(
		intCol("total_segments", total),
		flag("is_direct_leg0", direct0),
		flag("is_direct_leg1", direct1),
	)
	return nil
}
