package frame

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/rushteam/flightrank/core"
)

// DefaultNullValues 是读取 CSV 时视为 null 的文本。
var DefaultNullValues = []string{"", "NA", "NaN", "null", "None"}

type readOptions struct {
	types      map[string]series.Type
	nullValues []string
	delimiter  rune
}

// ReadOption 配置 CSV 读取
type ReadOption func(*readOptions)

// WithStringColumns 强制指定列按字符串读取（代码、ID、时长原文、时间戳）。
func WithStringColumns(names ...string) ReadOption {
	return func(o *readOptions) {
		for _, n := range names {
			o.types[n] = series.String
		}
	}
}

// WithNullValues 覆盖 null 文本集合
func WithNullValues(values ...string) ReadOption {
	return func(o *readOptions) {
		o.nullValues = values
	}
}

// WithDelimiter 设置分隔符
func WithDelimiter(d rune) ReadOption {
	return func(o *readOptions) {
		o.delimiter = d
	}
}

// ReadCSV 通过 gota 读取带表头的 CSV，自动推断列类型。
func ReadCSV(r io.Reader, opts ...ReadOption) (*Table, error) {
	o := &readOptions{
		types:      make(map[string]series.Type),
		nullValues: DefaultNullValues,
		delimiter:  ',',
	}
	for _, opt := range opts {
		opt(o)
	}
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.WithTypes(o.types),
		dataframe.NaNValues(o.nullValues),
		dataframe.WithDelimiter(o.delimiter),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read csv: %w", df.Err)
	}
	return FromDataFrame(df)
}

// FromDataFrame 把 gota DataFrame 转换为 Table。Bool 列转为 0/1 整数列。
func FromDataFrame(df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	cols := make([]*Column, 0, df.Ncol())
	for _, name := range df.Names() {
		s := df.Col(name)
		nan := s.IsNaN()
		valid := make([]bool, len(nan))
		for i, isNaN := range nan {
			valid[i] = !isNaN
		}
		switch s.Type() {
		case series.String:
			cols = append(cols, NewString(name, s.Records(), valid))
		case series.Int:
			cols = append(cols, NewInt(name, zeroNulls(s.Float(), valid), valid))
		case series.Bool:
			vals := make([]float64, len(valid))
			for i, rec := range s.Records() {
				if valid[i] && strings.EqualFold(rec, "true") {
					vals[i] = 1
				}
			}
			cols = append(cols, NewInt(name, vals, valid))
		default:
			cols = append(cols, NewFloat(name, zeroNulls(s.Float(), valid), valid))
		}
	}
	return New(cols...)
}

// ToDataFrame 把 Table 转换为 gota DataFrame，null 以 NaN 表示。
func ToDataFrame(t *Table) dataframe.DataFrame {
	ss := make([]series.Series, 0, t.Width())
	for _, c := range t.Columns() {
		recs := make([]string, c.Len())
		for i := range recs {
			if s, ok := c.Str(i); ok {
				recs[i] = s
			} else {
				recs[i] = "NaN"
			}
		}
		ss = append(ss, series.New(recs, seriesType(c.Kind), c.Name))
	}
	return dataframe.New(ss...)
}

// WriteCSV 通过 gota 写出带表头的 CSV
func WriteCSV(w io.Writer, t *Table) error {
	df := ToDataFrame(t)
	if df.Err != nil {
		return core.NewDomainError(core.ModuleFrame, core.ErrorCodeInternalError, df.Err.Error())
	}
	return df.WriteCSV(w)
}

func seriesType(k Kind) series.Type {
	switch k {
	case KindInt:
		return series.Int
	case KindString:
		return series.String
	default:
		return series.Float
	}
}

// zeroNulls 把 null 位置的值置 0，保证 Nums 中不残留 NaN。
func zeroNulls(vals []float64, valid []bool) []float64 {
	for i := range vals {
		if !valid[i] {
			vals[i] = 0
		}
	}
	return vals
}
