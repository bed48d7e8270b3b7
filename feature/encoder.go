package feature

import (
	"fmt"
	"sort"

	"github.com/rushteam/flightrank/core"
	"github.com/rushteam/flightrank/frame"
)

// TargetEncoder Target 编码（目标编码）
// 用目标变量在人群表上的均值编码类别：Encodings[列名][类别] = mean(target)。
// 未出现过的类别编码为 0.0。
type TargetEncoder struct {
	Encodings map[string]map[string]float64
}

// NewTargetEncoder 创建 Target 编码器
func NewTargetEncoder(encodings map[string]map[string]float64) *TargetEncoder {
	if encodings == nil {
		encodings = make(map[string]map[string]float64)
	}
	return &TargetEncoder{
		Encodings: encodings,
	}
}

// FitTargetEncoder 在 reference 表上按每个 key 列分组，计算 target 列均值。
// null 类别不参与（左连接时 null 键永远不匹配）；target 全为 null 的类别不写入。
func FitTargetEncoder(reference *frame.Table, target string, keys ...string) (*TargetEncoder, error) {
	if err := reference.Require(append([]string{target}, keys...)...); err != nil {
		return nil, err
	}
	enc := NewTargetEncoder(nil)
	y := reference.FloatCol(target)
	for _, key := range keys {
		groups := frame.GroupBy(reference.AnyCol(key))
		means, found := groups.Mean(y)
		m := make(map[string]float64, groups.Len())
		for gi, category := range groups.Keys {
			if gi == groups.Null || !found[gi] {
				continue
			}
			m[category] = means[gi]
		}
		enc.Encodings[key] = m
	}
	return enc, nil
}

// Lookup 查询编码值
func (e *TargetEncoder) Lookup(key, category string) (float64, bool) {
	m, ok := e.Encodings[key]
	if !ok {
		return 0, false
	}
	v, ok := m[category]
	return v, ok
}

// EncodeColumn 对整列做左连接式编码，未命中（含 null）记 0.0。
func (e *TargetEncoder) EncodeColumn(name, key string, c *frame.Column) *frame.Column {
	n := c.Len()
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		if category, ok := c.Str(i); ok {
			vals[i], _ = e.Lookup(key, category)
		}
	}
	return frame.NewFloat(name, vals, nil)
}

// LabelEncoder Label 编码（标签编码）
// 将类别映射为整数：按字节序排序后的稠密名次减一（0, 1, 2, ...），null 为 -1。
type LabelEncoder struct {
	LabelMap map[string]map[string]int
}

// FitLabelEncoder 在表上为每个给定列拟合稠密名次编码。
func FitLabelEncoder(t *frame.Table, columns ...string) (*LabelEncoder, error) {
	if err := t.Require(columns...); err != nil {
		return nil, err
	}
	enc := &LabelEncoder{LabelMap: make(map[string]map[string]int, len(columns))}
	for _, name := range columns {
		c := t.StringCol(name)
		seen := make(map[string]struct{})
		for i := 0; i < c.Len(); i++ {
			if v, ok := c.Str(i); ok {
				seen[v] = struct{}{}
			}
		}
		uniq := make([]string, 0, len(seen))
		for v := range seen {
			uniq = append(uniq, v)
		}
		sort.Strings(uniq)
		m := make(map[string]int, len(uniq))
		for i, v := range uniq {
			m[v] = i
		}
		enc.LabelMap[name] = m
	}
	return enc, nil
}

// Transform 返回新表：编码列替换为整数列，其余列共享数据。
// 未知类别（拟合时未出现）与 null 一样编码为 -1。
func (e *LabelEncoder) Transform(t *frame.Table) (*frame.Table, error) {
	out, err := t.Select(t.Names()...)
	if err != nil {
		return nil, err
	}
	for name, m := range e.LabelMap {
		c, ok := t.Col(name)
		if !ok {
			return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeMissingColumn,
				fmt.Sprintf("feature: encoded column %q is missing", name))
		}
		vals := make([]float64, c.Len())
		for i := range vals {
			vals[i] = -1
			if v, ok := c.Str(i); ok {
				if code, ok := m[v]; ok {
					vals[i] = float64(code)
				}
			}
		}
		if err := out.Set(frame.NewInt(name, vals, nil)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
