// Package report 把评估与训练结果写成 CSV。
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/rushteam/flightrank/core"
	"github.com/rushteam/flightrank/feature"
	"github.com/rushteam/flightrank/model"
)

// HitRatePoint HitRate 曲线上的一个点
type HitRatePoint struct {
	K       int     `csv:"k"`
	HitRate float64 `csv:"hitrate"`
}

// CurvePoints 把 metric.HitRate.Curve 的结果（下标 i 对应 k=i+1）转为点列表
func CurvePoints(curve []float64) []HitRatePoint {
	out := make([]HitRatePoint, len(curve))
	for i, v := range curve {
		out[i] = HitRatePoint{K: i + 1, HitRate: v}
	}
	return out
}

// Prediction 一个候选的打分结果
type Prediction struct {
	RankerID string  `csv:"ranker_id"`
	ID       string  `csv:"Id"`
	Score    float64 `csv:"score"`
	Rank     int     `csv:"rank"`
	Selected float64 `csv:"selected"`
}

// Predictions 把组内已排序的候选转为输出行，rank 从 1 开始
func Predictions(items []*core.Item) []Prediction {
	out := make([]Prediction, 0, len(items))
	pos := make(map[string]int)
	for _, it := range items {
		pos[it.Group]++
		out = append(out, Prediction{
			RankerID: it.Group,
			ID:       it.ID,
			Score:    it.Score,
			Rank:     pos[it.Group],
			Selected: it.Label,
		})
	}
	return out
}

// StatRow 特征分布统计的一行
type StatRow struct {
	Column    string  `csv:"column"`
	Count     int     `csv:"count"`
	NullCount int     `csv:"null_count"`
	Mean      float64 `csv:"mean"`
	Std       float64 `csv:"std"`
	Min       float64 `csv:"min"`
	P25       float64 `csv:"p25"`
	Median    float64 `csv:"median"`
	P75       float64 `csv:"p75"`
	P95       float64 `csv:"p95"`
	Max       float64 `csv:"max"`
}

// StatRows 转换 feature.Describe 的结果
func StatRows(stats []feature.FeatureStatistics) []StatRow {
	out := make([]StatRow, len(stats))
	for i, s := range stats {
		out[i] = StatRow{
			Column: s.Column, Count: s.Count, NullCount: s.NullCount,
			Mean: s.Mean, Std: s.Std, Min: s.Min, P25: s.P25,
			Median: s.Median, P75: s.P75, P95: s.P95, Max: s.Max,
		}
	}
	return out
}

// Write 以 CSV 写出，rows 必须是带 csv tag 的结构体切片指针，例如 &[]HitRatePoint{}
func Write(w io.Writer, rows interface{}) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("report: write csv: %w", err)
	}
	return nil
}

// WriteFile 写出到文件
func WriteFile(path string, rows interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	if err := Write(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadImportance 读取 WriteFile 写出的特征重要性
func ReadImportance(r io.Reader) ([]model.FeatureImportance, error) {
	var rows []model.FeatureImportance
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("report: read importance: %w", err)
	}
	return rows, nil
}
