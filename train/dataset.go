// Package train 是排序模型训练的边界：准备训练数据，调用外部 XGBoost 训练服务。
package train

import (
	"fmt"

	"github.com/rushteam/flightrank/core"
	"github.com/rushteam/flightrank/feature"
	"github.com/rushteam/flightrank/frame"
)

// EncodeCategorical 把类别列替换为稠密名次编码（从 0 开始，null 为 -1）。
// 编码在同一张表上拟合，训练集与验证集因此共享同一映射。
func EncodeCategorical(t *frame.Table, categorical []string) (*frame.Table, *feature.LabelEncoder, error) {
	enc, err := feature.FitLabelEncoder(t, categorical...)
	if err != nil {
		return nil, nil, err
	}
	out, err := enc.Transform(t)
	if err != nil {
		return nil, nil, err
	}
	return out, enc, nil
}

// ApplyEncoding 用训练时保存的映射编码类别列，训练时未见过的值与 null 编码为 -1。
// categorical 中没有映射的列返回 MISSING_COLUMN，避免悄悄在新数据上重新拟合。
func ApplyEncoding(t *frame.Table, categorical []string, encoding map[string]map[string]int) (*frame.Table, error) {
	enc := &feature.LabelEncoder{LabelMap: make(map[string]map[string]int, len(categorical))}
	for _, name := range categorical {
		m, ok := encoding[name]
		if !ok {
			return nil, core.NewDomainError(core.ModuleTrain, core.ErrorCodeMissingColumn,
				fmt.Sprintf("train: no saved encoding for categorical column %q", name))
		}
		enc.LabelMap[name] = m
	}
	return enc.Transform(t)
}

// LabeledRows 返回 label 列非 null 的行数；表中没有 label 列时为 0。
func LabeledRows(t *frame.Table, labelCol string) int {
	c := t.AnyCol(labelCol)
	return c.Len() - c.NullCount()
}

// SplitRows 按行位置切分：[0, boundary) 为训练集，[boundary, end) 为验证集。
// end <= 0 时取有标签的行数：featurize 保留原始 selected，待预测行排在最后且标签为 null。
func SplitRows(t *frame.Table, boundary, end int) (trainSet, validSet *frame.Table, err error) {
	if end <= 0 {
		end = LabeledRows(t, feature.ColSelected)
	}
	if boundary < 0 || boundary > end || end > t.Len() {
		return nil, nil, core.NewDomainError(core.ModuleTrain, core.ErrorCodeInvalidInput,
			fmt.Sprintf("train: split boundary=%d end=%d out of range for %d rows", boundary, end, t.Len()))
	}
	if trainSet, err = t.Slice(0, boundary); err != nil {
		return nil, nil, err
	}
	if validSet, err = t.Slice(boundary, end); err != nil {
		return nil, nil, err
	}
	return trainSet, validSet, nil
}

// GroupSizes 返回每个分组的行数，分组按首次出现顺序。
// XGBoost 的 group 参数要求同组行连续，输入需已按 ranker_id 排列。
func GroupSizes(groups *frame.Column) []int {
	return frame.GroupBy(groups).Sizes()
}

// Dataset 是一次训练调用的数据：按行的特征矩阵、标签与分组行数。
type Dataset struct {
	FeatureNames []string    `json:"feature_names"`
	Data         [][]float64 `json:"data"`
	Label        []float64   `json:"label"`
	Group        []int       `json:"group"`
}

// NewDataset 从已编码的表构建 Dataset；特征列必须全部为数值列。
func NewDataset(t *frame.Table, features []string, labelCol, groupCol string) (*Dataset, error) {
	if err := t.Require(append([]string{labelCol, groupCol}, features...)...); err != nil {
		return nil, err
	}
	cols := make([]*frame.Column, len(features))
	for j, name := range features {
		c, _ := t.Col(name)
		if !c.Kind.Numeric() {
			return nil, core.NewDomainError(core.ModuleTrain, core.ErrorCodeInvalidInput,
				fmt.Sprintf("train: feature %q is %s, encode categorical columns first", name, c.Kind))
		}
		cols[j] = c
	}

	n := t.Len()
	ds := &Dataset{
		FeatureNames: features,
		Data:         make([][]float64, n),
		Label:        make([]float64, n),
		Group:        GroupSizes(t.StringCol(groupCol)),
	}
	label := t.FloatCol(labelCol)
	for i := 0; i < n; i++ {
		row := make([]float64, len(cols))
		for j, c := range cols {
			row[j], _ = c.Float(i)
		}
		ds.Data[i] = row
		ds.Label[i], _ = label.Float(i)
	}
	return ds, nil
}

// Rows 返回行数
func (d *Dataset) Rows() int {
	return len(d.Data)
}
