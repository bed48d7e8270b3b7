package frame

import (
	"fmt"

	"github.com/rushteam/flightrank/core"
)

// Table 是有序列集合，所有列行数一致。
// Table 不是并发安全的：特征流水线在单个 goroutine 内写入，
// 并行计算只读取列，再由调用方串行 Set 回表。
type Table struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New 用给定列构建表；列名重复或行数不一致时返回错误。
func New(cols ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols)), rows: -1}
	for _, c := range cols {
		if _, dup := t.index[c.Name]; dup {
			return nil, core.NewDomainError(core.ModuleFrame, core.ErrorCodeInvalidInput,
				fmt.Sprintf("frame: duplicate column %q", c.Name))
		}
		if err := t.Set(c); err != nil {
			return nil, err
		}
	}
	if t.rows < 0 {
		t.rows = 0
	}
	return t, nil
}

// MustNew 同 New，出错时 panic，便于测试构造数据。
func MustNew(cols ...*Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len 返回行数
func (t *Table) Len() int {
	if t.rows < 0 {
		return 0
	}
	return t.rows
}

// Width 返回列数
func (t *Table) Width() int {
	return len(t.cols)
}

// Names 按表内顺序返回列名
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Columns 按表内顺序返回列（只读使用）
func (t *Table) Columns() []*Column {
	return t.cols
}

// Has 判断列是否存在
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Col 返回指定列
func (t *Table) Col(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// FloatCol 返回数值视图；列不存在时返回全 null 列（可选列缺失不是错误）。
func (t *Table) FloatCol(name string) *Column {
	c, ok := t.Col(name)
	if !ok {
		return Nulls(name, KindFloat, t.Len())
	}
	if c.Kind.Numeric() {
		return c
	}
	return c.AsFloat()
}

// StringCol 返回字符串视图；列不存在时返回全 null 列。
func (t *Table) StringCol(name string) *Column {
	c, ok := t.Col(name)
	if !ok {
		return Nulls(name, KindString, t.Len())
	}
	return c.AsString()
}

// AnyCol 返回列本身；列不存在时返回全 null 字符串列，仅用于判断是否为 null。
func (t *Table) AnyCol(name string) *Column {
	c, ok := t.Col(name)
	if !ok {
		return Nulls(name, KindString, t.Len())
	}
	return c
}

// Set 新增列或原位替换同名列（保留列位置）。
func (t *Table) Set(c *Column) error {
	if t.rows >= 0 && c.Len() != t.rows && len(t.cols) > 0 {
		return core.NewDomainError(core.ModuleFrame, core.ErrorCodeLengthMismatch,
			fmt.Sprintf("frame: column %q has %d rows, table has %d", c.Name, c.Len(), t.rows))
	}
	if len(t.cols) == 0 {
		t.rows = c.Len()
	}
	if i, ok := t.index[c.Name]; ok {
		t.cols[i] = c
		return nil
	}
	t.index[c.Name] = len(t.cols)
	t.cols = append(t.cols, c)
	return nil
}

// MustSet 同 Set；行数不一致属于编程错误。
func (t *Table) MustSet(cols ...*Column) {
	for _, c := range cols {
		if err := t.Set(c); err != nil {
			panic(err)
		}
	}
}

// Drop 删除列（不存在的列忽略）
func (t *Table) Drop(names ...string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	kept := t.cols[:0]
	for _, c := range t.cols {
		if !drop[c.Name] {
			kept = append(kept, c)
		}
	}
	t.cols = kept
	t.reindex()
}

// Select 按给定顺序返回新表（列共享底层数据）；缺失列返回错误。
func (t *Table) Select(names ...string) (*Table, error) {
	out := &Table{index: make(map[string]int, len(names)), rows: t.Len()}
	for _, n := range names {
		c, ok := t.Col(n)
		if !ok {
			return nil, core.NewDomainError(core.ModuleFrame, core.ErrorCodeMissingColumn,
				fmt.Sprintf("frame: column %q not found", n))
		}
		out.index[n] = len(out.cols)
		out.cols = append(out.cols, c)
	}
	return out, nil
}

// Slice 返回 [from, to) 行的新表（深拷贝）
func (t *Table) Slice(from, to int) (*Table, error) {
	if from < 0 || to > t.Len() || from > to {
		return nil, core.NewDomainError(core.ModuleFrame, core.ErrorCodeInvalidInput,
			fmt.Sprintf("frame: slice [%d,%d) out of range for %d rows", from, to, t.Len()))
	}
	out := &Table{index: make(map[string]int, len(t.cols)), rows: to - from}
	for _, c := range t.cols {
		s := &Column{Name: c.Name, Kind: c.Kind, Valid: append([]bool(nil), c.Valid[from:to]...)}
		if c.Kind == KindString {
			s.Strs = append([]string(nil), c.Strs[from:to]...)
		} else {
			s.Nums = append([]float64(nil), c.Nums[from:to]...)
		}
		out.index[c.Name] = len(out.cols)
		out.cols = append(out.cols, s)
	}
	return out, nil
}

// Clone 深拷贝整张表
func (t *Table) Clone() *Table {
	out := &Table{index: make(map[string]int, len(t.cols)), rows: t.rows}
	for _, c := range t.cols {
		out.index[c.Name] = len(out.cols)
		out.cols = append(out.cols, c.Clone())
	}
	return out
}

// Require 校验必需列存在，返回第一个缺失列的结构契约错误。
func (t *Table) Require(names ...string) error {
	for _, n := range names {
		if !t.Has(n) {
			return core.NewDomainError(core.ModuleFrame, core.ErrorCodeMissingColumn,
				fmt.Sprintf("frame: required column %q is missing", n))
		}
	}
	return nil
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.cols))
	for i, c := range t.cols {
		t.index[c.Name] = i
	}
}
