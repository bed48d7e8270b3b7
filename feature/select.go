package feature

import (
	"strings"

	"github.com/rushteam/flightrank/frame"
)

// ExcludedColumns 是不进入模型的列：标识、原始标签、高基数时间戳与原始文本。
var ExcludedColumns = []string{
	ColID, ColRankerID, ColSelected, ColProfileID, ColRequestDate,
	"legs0_departureAt", "legs0_arrivalAt", "legs1_departureAt", "legs1_arrivalAt",
	ColFrequentFly, ColPassengers,
}

// nonCategoricalStrings 是字符串类型但不作为类别特征的列
var nonCategoricalStrings = []string{ColID, ColRankerID, ColFrequentFly}

// droppedSegmentPrefixes 是两段行程第 3、4 个航段（稀疏）的列前缀
var droppedSegmentPrefixes = []string{
	"legs0_segments2", "legs0_segments3",
	"legs1_segments2", "legs1_segments3",
}

// FeatureSelector 特征选择器：排除列集合 + 稀疏航段前缀。
type FeatureSelector struct {
	ExcludedFeatures []string
	ExcludedPrefixes []string
}

// NewFeatureSelector 创建默认特征选择器
func NewFeatureSelector() *FeatureSelector {
	return &FeatureSelector{
		ExcludedFeatures: ExcludedColumns,
		ExcludedPrefixes: droppedSegmentPrefixes,
	}
}

// Select 返回特征列与类别列（均保持表内列顺序）。
// 类别列 = 字符串列 - {Id, ranker_id, frequentFlyer}，再与特征列取交集。
func (s *FeatureSelector) Select(t *frame.Table) (features, categorical []string) {
	excluded := make(map[string]bool, len(s.ExcludedFeatures))
	for _, n := range s.ExcludedFeatures {
		excluded[n] = true
	}
	nonCat := make(map[string]bool, len(nonCategoricalStrings))
	for _, n := range nonCategoricalStrings {
		nonCat[n] = true
	}

	features = make([]string, 0, t.Width())
	categorical = make([]string, 0)
	for _, c := range t.Columns() {
		if excluded[c.Name] || s.hasExcludedPrefix(c.Name) {
			continue
		}
		features = append(features, c.Name)
		if c.Kind == frame.KindString && !nonCat[c.Name] {
			categorical = append(categorical, c.Name)
		}
	}
	return features, categorical
}

func (s *FeatureSelector) hasExcludedPrefix(name string) bool {
	for _, p := range s.ExcludedPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
