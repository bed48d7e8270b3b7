package feature

import (
	"github.com/rushteam/flightrank/pipeline"
	"github.com/rushteam/flightrank/pkg/conv"
)

// DefaultFactory 返回注册了全部内置 Step 的工厂，用于从 YAML 组装流水线。
//
// 配置示例：
//
//	pipeline:
//	  name: flightrank
//	  steps:
//	    - type: duration
//	      config:
//	        parallelism: 4
//	    - type: popular_route
//	      config:
//	        routes: ["MOWLED/LEDMOW", "LEDMOW/MOWLED"]
//	    - type: expr
//	      config:
//	        column: price_per_minute
//	        expr: "row.totalPrice / (row.total_duration + 1.0)"
//	    - type: fill_null
func DefaultFactory() *pipeline.StepFactory {
	f := pipeline.NewStepFactory()

	f.Register("duration", func(cfg map[string]interface{}) (pipeline.Step, error) {
		return &DurationStep{
			Columns:     conv.SliceAnyToString(cfg["columns"]),
			Parallelism: int(conv.ConfigGetInt64(cfg, "parallelism", 0)),
		}, nil
	})
	f.Register("pricing", stateless(&PricingStep{}))
	f.Register("duration_aggregate", stateless(&DurationAggregateStep{}))
	f.Register("one_way", stateless(&OneWayStep{}))
	f.Register("carrier_count", stateless(&CarrierCountStep{}))
	f.Register("frequent_flyer", stateless(&FrequentFlyerStep{}))
	f.Register("flags", stateless(&FlagStep{}))
	f.Register("baggage_fees", stateless(&BaggageFeeStep{}))
	f.Register("popular_route", func(cfg map[string]interface{}) (pipeline.Step, error) {
		return &PopularRouteStep{Routes: conv.SliceAnyToString(cfg["routes"])}, nil
	})
	f.Register("cabin", stateless(&CabinStep{}))
	f.Register("segment_count", stateless(&SegmentCountStep{}))
	f.Register("direct", stateless(&DirectStep{}))
	f.Register("time_of_day", func(cfg map[string]interface{}) (pipeline.Step, error) {
		return &TimeOfDayStep{
			Columns:     conv.SliceAnyToString(cfg["columns"]),
			Layouts:     conv.SliceAnyToString(cfg["layouts"]),
			Parallelism: int(conv.ConfigGetInt64(cfg, "parallelism", 0)),
		}, nil
	})
	f.Register("group_size", stateless(&GroupSizeStep{}))
	// 先验从 State.Reference 拟合；需要复用缓存先验时用 WithPriors 构建
	f.Register("carrier_popularity", stateless(&CarrierPopularityStep{}))
	f.Register("price_rank", stateless(&PriceRankStep{}))
	f.Register("expr", func(cfg map[string]interface{}) (pipeline.Step, error) {
		return NewExprStep(
			conv.ConfigGet(cfg, "column", ""),
			conv.ConfigGet(cfg, "expr", ""),
			conv.SliceAnyToString(cfg["inputs"]),
		)
	})
	f.Register("fill_null", stateless(&FillNullStep{}))

	return f
}

func stateless(step pipeline.Step) pipeline.StepBuilder {
	return func(map[string]interface{}) (pipeline.Step, error) {
		return step, nil
	}
}
