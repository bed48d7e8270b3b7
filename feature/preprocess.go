package feature

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rushteam/flightrank/core"
	"github.com/rushteam/flightrank/frame"
	"github.com/rushteam/flightrank/pipeline"
)

// ErrMissingColumn 是必需列缺失的哨兵错误，用 errors.Is 匹配。
var ErrMissingColumn = core.NewDomainError(core.ModuleFeature, core.ErrorCodeMissingColumn, "feature: missing required column")

// Result 是一次特征构建的产物。
//   - Table: 原始列 + 派生列，null 已填充，行数与输入一致
//   - FeatureColumns: 进入模型的列（表内顺序）
//   - CategoricalColumns: FeatureColumns 中的类别列
type Result struct {
	Table              *frame.Table
	FeatureColumns     []string
	CategoricalColumns []string
	// Labels 是 data_raw 中未经填充的 selected 列，null 表示该行没有标签（测试行）。
	// data_raw 不含 selected 时为 nil。
	Labels *frame.Column
}

// Options 特征构建配置
type Options struct {
	PopularRoutes []string
	TimeLayouts   []string
	Priors        *TargetEncoder
	ExtraSteps    []pipeline.Step
	Logger        *slog.Logger
	Monitor       Monitor
	Selector      *FeatureSelector
}

// Option 配置选项
type Option func(*Options)

// WithPopularRoutes 设置热门航线白名单（为空时使用 DefaultPopularRoutes）
func WithPopularRoutes(routes []string) Option {
	return func(o *Options) {
		o.PopularRoutes = routes
	}
}

// WithTimeLayouts 设置时间戳解析格式
func WithTimeLayouts(layouts []string) Option {
	return func(o *Options) {
		o.TimeLayouts = layouts
	}
}

// WithPriors 使用预先计算（例如从 Redis 读取）的航司先验，此时不再读取 train_df。
func WithPriors(priors *TargetEncoder) Option {
	return func(o *Options) {
		o.Priors = priors
	}
}

// WithExtraSteps 在 null 填充之前追加 Step（例如配置中声明的 expr 列）
func WithExtraSteps(steps ...pipeline.Step) Option {
	return func(o *Options) {
		o.ExtraSteps = append(o.ExtraSteps, steps...)
	}
}

// WithLogger 设置日志
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMonitor 设置监控
func WithMonitor(m Monitor) Option {
	return func(o *Options) {
		o.Monitor = m
	}
}

// WithSelector 替换默认的特征选择器
func WithSelector(s *FeatureSelector) Option {
	return func(o *Options) {
		o.Selector = s
	}
}

func buildOptions(opts []Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Selector == nil {
		o.Selector = NewFeatureSelector()
	}
	return o
}

// DefaultSteps 返回固定顺序的特征 Step 链。
// 后续 Step 会读取前序 Step 的输出：total_duration 依赖时长解析，
// is_direct_leg1 依赖 is_one_way 与分段计数，price_rank 在 group_size 之后。
func DefaultSteps(opts ...Option) []pipeline.Step {
	o := buildOptions(opts)
	steps := []pipeline.Step{
		&DurationStep{},
		&PricingStep{},
		&DurationAggregateStep{},
		&OneWayStep{},
		&CarrierCountStep{},
		&FrequentFlyerStep{},
		&FlagStep{},
		&BaggageFeeStep{},
		&PopularRouteStep{Routes: o.PopularRoutes},
		&CabinStep{},
		&SegmentCountStep{},
		&DirectStep{},
		&TimeOfDayStep{Layouts: o.TimeLayouts},
		&GroupSizeStep{},
		&CarrierPopularityStep{Priors: o.Priors},
		&PriceRankStep{},
	}
	steps = append(steps, o.ExtraSteps...)
	return append(steps, &FillNullStep{Monitor: o.Monitor})
}

// Preprocess 把原始行程表 dataRaw 转成模型可用的特征表。
//
// trainDF 只用于计算人群统计（航司选择率），不会被修改，也不会由 dataRaw 代替；
// 通过 WithPriors 传入先验时 trainDF 可以为 nil。
// 必需列缺失时立即返回 ErrMissingColumn；可选列缺失按 null 处理。
//
// 用法：
//
//	res, err := feature.Preprocess(ctx, raw, train,
//	    feature.WithPopularRoutes(cfg.Features.PopularRoutes),
//	    feature.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.FeatureColumns)
func Preprocess(ctx context.Context, dataRaw, trainDF *frame.Table, opts ...Option) (*Result, error) {
	o := buildOptions(opts)
	if dataRaw == nil {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput, "feature: data_raw is nil")
	}
	if err := requireColumns("data_raw", dataRaw, RequiredColumns); err != nil {
		return nil, err
	}
	if o.Priors == nil {
		if trainDF == nil {
			return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput,
				"feature: train_df is required when no carrier priors are given")
		}
		if err := requireColumns("train_df", trainDF, ReferenceColumns); err != nil {
			return nil, err
		}
	}

	st := pipeline.NewState(dataRaw, trainDF, o.Logger)
	p := &pipeline.Pipeline{Name: "preprocess", Steps: DefaultSteps(opts...)}
	if o.Monitor != nil {
		p.Observer = o.Monitor
	}
	if err := p.Run(ctx, st); err != nil {
		return nil, err
	}

	features, categorical := o.Selector.Select(st.Table)
	o.Logger.Debug("feature table built",
		"rows", st.Table.Len(),
		"columns", st.Table.Width(),
		"features", len(features),
		"categorical", len(categorical),
	)
	res := &Result{Table: st.Table, FeatureColumns: features, CategoricalColumns: categorical}
	if c, ok := dataRaw.Col(ColSelected); ok {
		res.Labels = c.AsFloat().Clone()
	}
	return res, nil
}

// FeatureTable 返回只含特征列的表（列共享底层数据）
func (r *Result) FeatureTable() (*frame.Table, error) {
	return r.Table.Select(r.FeatureColumns...)
}

// OutputTable 返回落盘用的表：Id、ranker_id、selected（若有）与全部特征列。
// selected 取未填充的原始标签，下游据此区分有标签行与待预测行。
func (r *Result) OutputTable() (*frame.Table, error) {
	cols := []string{ColID, ColRankerID}
	if r.Labels != nil {
		cols = append(cols, ColSelected)
	}
	out, err := r.Table.Select(append(cols, r.FeatureColumns...)...)
	if err != nil {
		return nil, err
	}
	if r.Labels != nil {
		if err := out.Set(r.Labels.Rename(ColSelected)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func requireColumns(table string, t *frame.Table, names []string) error {
	err := t.Require(names...)
	if err == nil {
		return nil
	}
	var de *core.DomainError
	if errors.As(err, &de) && de.Code == core.ErrorCodeMissingColumn {
		return core.NewDomainError(core.ModuleFeature, core.ErrorCodeMissingColumn,
			fmt.Sprintf("feature: %s: %s", table, de.Message))
	}
	return err
}
