// Package frame 提供特征工程使用的列式内存表。
//
// 每一列是一段连续数组加一个有效位（Valid），null 以 Valid[i]==false 表示，
// 因此可以精确表达“缺失”与“0”的区别，这是航班数据（单程没有 legs1、
// 航段可选）所必需的。
package frame

import (
	"math"
	"strconv"
)

// Kind 是列的逻辑类型。
type Kind int

const (
	KindFloat  Kind = iota // 浮点数：价格、金额、比率
	KindInt                // 整数：计数、标志、分钟数（内部仍以 float64 存储）
	KindString             // 字符串：代码、ID、时间戳原文
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Numeric 判断是否为数值列
func (k Kind) Numeric() bool {
	return k == KindFloat || k == KindInt
}

// Column 是一列数据。数值列使用 Nums，字符串列使用 Strs。
type Column struct {
	Name  string
	Kind  Kind
	Nums  []float64
	Strs  []string
	Valid []bool
}

// NewFloat 创建浮点列；valid 为 nil 时 NaN 视为 null，其余均有效。
func NewFloat(name string, vals []float64, valid []bool) *Column {
	return newNumeric(name, KindFloat, vals, valid)
}

// NewInt 创建整数列；valid 为 nil 时全部有效。
func NewInt(name string, vals []float64, valid []bool) *Column {
	return newNumeric(name, KindInt, vals, valid)
}

func newNumeric(name string, kind Kind, vals []float64, valid []bool) *Column {
	if valid == nil {
		valid = make([]bool, len(vals))
		for i, v := range vals {
			valid[i] = !math.IsNaN(v)
		}
	}
	return &Column{Name: name, Kind: kind, Nums: vals, Valid: valid}
}

// NewString 创建字符串列；valid 为 nil 时全部有效。
func NewString(name string, vals []string, valid []bool) *Column {
	if valid == nil {
		valid = make([]bool, len(vals))
		for i := range valid {
			valid[i] = true
		}
	}
	return &Column{Name: name, Kind: KindString, Strs: vals, Valid: valid}
}

// Nulls 创建一个全部为 null 的列，用于缺失的可选输入列。
func Nulls(name string, kind Kind, n int) *Column {
	c := &Column{Name: name, Kind: kind, Valid: make([]bool, n)}
	if kind == KindString {
		c.Strs = make([]string, n)
	} else {
		c.Nums = make([]float64, n)
	}
	return c
}

// Len 返回行数
func (c *Column) Len() int {
	return len(c.Valid)
}

// IsNull 判断第 i 行是否为 null
func (c *Column) IsNull(i int) bool {
	return !c.Valid[i]
}

// Float 返回第 i 行的数值；字符串列会尝试解析。
func (c *Column) Float(i int) (float64, bool) {
	if !c.Valid[i] {
		return 0, false
	}
	if c.Kind == KindString {
		v, err := strconv.ParseFloat(c.Strs[i], 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return c.Nums[i], true
}

// Str 返回第 i 行的字符串表示；数值列按最短格式输出。
func (c *Column) Str(i int) (string, bool) {
	if !c.Valid[i] {
		return "", false
	}
	if c.Kind == KindString {
		return c.Strs[i], true
	}
	return FormatNumber(c.Kind, c.Nums[i]), true
}

// NullCount 返回 null 的行数
func (c *Column) NullCount() int {
	n := 0
	for _, ok := range c.Valid {
		if !ok {
			n++
		}
	}
	return n
}

// Clone 深拷贝列
func (c *Column) Clone() *Column {
	out := &Column{Name: c.Name, Kind: c.Kind, Valid: append([]bool(nil), c.Valid...)}
	if c.Strs != nil {
		out.Strs = append([]string(nil), c.Strs...)
	}
	if c.Nums != nil {
		out.Nums = append([]float64(nil), c.Nums...)
	}
	return out
}

// Rename 返回改名后的浅拷贝
func (c *Column) Rename(name string) *Column {
	out := *c
	out.Name = name
	return &out
}

// AsFloat 将任意列转换为浮点列（字符串列逐行解析，失败为 null）。
func (c *Column) AsFloat() *Column {
	if c.Kind == KindFloat {
		return c
	}
	n := c.Len()
	vals := make([]float64, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		vals[i], valid[i] = c.Float(i)
	}
	return &Column{Name: c.Name, Kind: KindFloat, Nums: vals, Valid: valid}
}

// AsString 将任意列转换为字符串列。
func (c *Column) AsString() *Column {
	if c.Kind == KindString {
		return c
	}
	n := c.Len()
	vals := make([]string, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		vals[i], valid[i] = c.Str(i)
	}
	return &Column{Name: c.Name, Kind: KindString, Strs: vals, Valid: valid}
}

// FormatNumber 按列类型格式化数值：整数列不带小数点。
func FormatNumber(kind Kind, v float64) string {
	if kind == KindInt {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
