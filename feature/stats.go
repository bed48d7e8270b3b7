package feature

import (
	"math"
	"slices"

	"github.com/rushteam/flightrank/frame"
)

// FeatureStatistics 单个数值特征列的分布统计（忽略 null）
type FeatureStatistics struct {
	Column    string
	Count     int
	NullCount int
	Mean      float64
	Std       float64
	Min       float64
	Max       float64
	Median    float64
	P25       float64
	P75       float64
	P95       float64
}

// Describe 对数值特征列计算统计信息，字符串列与不存在的列跳过。
// 在 null 填充前后各调用一次即可看出填充对分布的影响。
func Describe(t *frame.Table, columns []string) []FeatureStatistics {
	out := make([]FeatureStatistics, 0, len(columns))
	for _, name := range columns {
		c, ok := t.Col(name)
		if !ok || !c.Kind.Numeric() {
			continue
		}
		out = append(out, DescribeColumn(c))
	}
	return out
}

// DescribeColumn 统计一列的非 null 值：均值与总体标准差用 Welford 单趟累计，
// 分位数在排序后的非 null 值上线性插值。全 null 列只填 Column 与 NullCount。
func DescribeColumn(c *frame.Column) FeatureStatistics {
	st := FeatureStatistics{Column: c.Name}
	present := make([]float64, 0, c.Len())
	var m2 float64
	for i, ok := range c.Valid {
		if !ok {
			st.NullCount++
			continue
		}
		v := c.Nums[i]
		present = append(present, v)
		delta := v - st.Mean
		st.Mean += delta / float64(len(present))
		m2 += delta * (v - st.Mean)
	}
	st.Count = len(present)
	if st.Count == 0 {
		st.Mean = 0
		return st
	}
	st.Std = math.Sqrt(m2 / float64(st.Count))

	slices.Sort(present)
	st.Min, st.Max = present[0], present[st.Count-1]
	st.P25 = quantile(present, 0.25)
	st.Median = quantile(present, 0.5)
	st.P75 = quantile(present, 0.75)
	st.P95 = quantile(present, 0.95)
	return st
}

// quantile 在升序切片 asc 上取 q 分位（位置 q*(n-1) 处的线性插值）
func quantile(asc []float64, q float64) float64 {
	pos := q * float64(len(asc)-1)
	lo := int(math.Floor(pos))
	if lo+1 >= len(asc) {
		return asc[len(asc)-1]
	}
	frac := pos - float64(lo)
	return asc[lo] + (asc[lo+1]-asc[lo])*frac
}
