package feature

import (
	"math"

	"github.com/rushteam/flightrank/frame"
)

// 以下是列级别的向量化运算，null 语义与列式计算引擎一致：
// 任一输入为 null 则结果为 null；NaN 结果视为 null。

func binary(name string, a, b *frame.Column, f func(x, y float64) float64) *frame.Column {
	n := a.Len()
	vals := make([]float64, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		x, okA := a.Float(i)
		y, okB := b.Float(i)
		if !okA || !okB {
			continue
		}
		v := f(x, y)
		if math.IsNaN(v) {
			continue
		}
		vals[i], valid[i] = v, true
	}
	return frame.NewFloat(name, vals, valid)
}

func unary(name string, a *frame.Column, f func(x float64) float64) *frame.Column {
	n := a.Len()
	vals := make([]float64, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		x, ok := a.Float(i)
		if !ok {
			continue
		}
		v := f(x)
		if math.IsNaN(v) {
			continue
		}
		vals[i], valid[i] = v, true
	}
	return frame.NewFloat(name, vals, valid)
}

// zeroFilled 返回数值，null 记 0
func zeroFilled(c *frame.Column, i int) float64 {
	v, ok := c.Float(i)
	if !ok {
		return 0
	}
	return v
}

// flag 把布尔向量转成 0/1 整数列
func flag(name string, vals []bool) *frame.Column {
	out := make([]float64, len(vals))
	for i, b := range vals {
		if b {
			out[i] = 1
		}
	}
	return frame.NewInt(name, out, nil)
}

// nullableFlag 生成可为 null 的 0/1 列
func nullableFlag(name string, vals, valid []bool) *frame.Column {
	out := make([]float64, len(vals))
	for i, b := range vals {
		if b {
			out[i] = 1
		}
	}
	return frame.NewInt(name, out, valid)
}

func intCol(name string, vals []float64) *frame.Column {
	return frame.NewInt(name, vals, nil)
}
