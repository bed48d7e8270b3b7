package feature

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/rushteam/flightrank/core"
	"github.com/rushteam/flightrank/frame"
	"github.com/rushteam/flightrank/pipeline"
)

// 航司人气先验的输出列
const (
	ColCarrier0Pop       = "carrier0_pop"
	ColCarrier1Pop       = "carrier1_pop"
	ColCarrierPopProduct = "carrier_pop_product"
)

// FitCarrierPriors 在人群表（train_df）上计算两段行程首航段销售航司的平均选择率。
func FitCarrierPriors(reference *frame.Table) (*TargetEncoder, error) {
	if reference == nil {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput,
			"feature: reference table is required to compute carrier priors")
	}
	return FitTargetEncoder(reference, ColSelected, CarrierColumn(0, 0), CarrierColumn(1, 0))
}

// CarrierPopularityStep 左连接航司先验：carrier{0,1}_pop 与二者乘积，未命中为 0.0。
// 先验只来自 Priors 或 State.Reference，绝不从正在构建的表上计算。
type CarrierPopularityStep struct {
	Priors *TargetEncoder
}

func (s *CarrierPopularityStep) Name() string { return "carrier_popularity" }

func (s *CarrierPopularityStep) Apply(_ context.Context, st *pipeline.State) error {
	priors := s.Priors
	if priors == nil {
		var err error
		if priors, err = FitCarrierPriors(st.Reference); err != nil {
			return err
		}
	}
	key0, key1 := CarrierColumn(0, 0), CarrierColumn(1, 0)
	pop0 := priors.EncodeColumn(ColCarrier0Pop, key0, st.Table.AnyCol(key0))
	pop1 := priors.EncodeColumn(ColCarrier1Pop, key1, st.Table.AnyCol(key1))
	product := binary(ColCarrierPopProduct, pop0, pop1, func(a, b float64) float64 { return a * b })
	st.Table.MustSet(pop0, pop1, product)
	return nil
}

// SavePriors 把先验写入 KeyValueStore：每个 key 列一个 hash，field 为航司代码。
// 全部 hash 写完后再写入清单 {prefix}:keys，LoadPriors 以清单判断先验是否存在。
func SavePriors(ctx context.Context, kv core.KeyValueStore, prefix string, enc *TargetEncoder) error {
	saved := make([]string, 0, len(enc.Encodings))
	for _, key := range slices.Sorted(maps.Keys(enc.Encodings)) {
		m := enc.Encodings[key]
		if len(m) == 0 {
			continue
		}
		fields := make(map[string][]byte, len(m))
		for category, v := range m {
			fields[category] = []byte(strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := kv.HSet(ctx, priorKey(prefix, key), fields); err != nil {
			return fmt.Errorf("save priors %s: %w", key, err)
		}
		saved = append(saved, key)
	}
	if err := kv.Set(ctx, manifestKey(prefix), []byte(strings.Join(saved, ","))); err != nil {
		return fmt.Errorf("save priors manifest: %w", err)
	}
	return nil
}

// LoadPriors 从 KeyValueStore 读取航司先验。
// 清单不存在，或清单列出的 hash 为空时返回 store NOT_FOUND；
// 不在清单中的 key 列（人群表中该列全空）映射为空，全部未命中。
func LoadPriors(ctx context.Context, kv core.KeyValueStore, prefix string) (*TargetEncoder, error) {
	manifest, err := kv.Get(ctx, manifestKey(prefix))
	if err != nil {
		return nil, fmt.Errorf("load priors %q from %s: %w", prefix, kv.Name(), err)
	}
	saved := make(map[string]bool)
	for _, key := range strings.Split(string(manifest), ",") {
		if key != "" {
			saved[key] = true
		}
	}

	enc := NewTargetEncoder(nil)
	for _, key := range []string{CarrierColumn(0, 0), CarrierColumn(1, 0)} {
		m := make(map[string]float64)
		enc.Encodings[key] = m
		if !saved[key] {
			continue
		}
		fields, err := kv.HGetAll(ctx, priorKey(prefix, key))
		if err != nil {
			return nil, fmt.Errorf("load priors %s: %w", key, err)
		}
		if len(fields) == 0 {
			return nil, fmt.Errorf("load priors %s from %s: %w", key, kv.Name(), core.ErrStoreNotFound)
		}
		for category, raw := range fields {
			v, err := strconv.ParseFloat(string(raw), 64)
			if err != nil {
				return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput,
					fmt.Sprintf("feature: prior %s/%s is not a number: %q", key, category, raw))
			}
			m[category] = v
		}
	}
	return enc, nil
}

func manifestKey(prefix string) string {
	return prefix + ":keys"
}

func priorKey(prefix, key string) string {
	return prefix + ":" + key
}
