package main

import (
	"context"
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rushteam/flightrank/config"
	"github.com/rushteam/flightrank/feature"
	"github.com/rushteam/flightrank/frame"
	"github.com/rushteam/flightrank/metric"
	"github.com/rushteam/flightrank/rank"
	"github.com/rushteam/flightrank/report"
	"github.com/rushteam/flightrank/rerank"
	"github.com/rushteam/flightrank/train"
)

var (
	evaluateFeatures    string
	evaluateMeta        string
	evaluateCurve       string
	evaluatePredictions string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a feature table and report HitRate@k",
	Long: `Score every candidate with the configured model, rank candidates within
each ranker_id session and report HitRate@k over sessions with more than
eval.min_group_size rows.`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&evaluateFeatures, "features", "features.csv", "feature CSV written by featurize")
	evaluateCmd.Flags().StringVar(&evaluateMeta, "meta", "model_meta.json", "metadata written by train (file or URL)")
	evaluateCmd.Flags().StringVar(&evaluateCurve, "curve", "hitrate_curve.csv", "HitRate curve CSV (empty to skip)")
	evaluateCmd.Flags().StringVar(&evaluatePredictions, "predictions", "", "optional top-k predictions CSV")

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	meta, t, fitted, err := loadFeatureTable(ctx, evaluateFeatures, evaluateMeta)
	if err != nil {
		return err
	}
	if fitted {
		logger.Warn("metadata has no categorical encoding, codes fitted on the evaluation table may not match the model",
			"meta", evaluateMeta, "categorical", len(meta.CategoricalColumns))
	}
	m, err := config.BuildModel(cfg.Model)
	if err != nil {
		return err
	}
	ranker := &rank.Ranker{Model: m, Features: meta.FeatureColumns, BatchSize: cfg.Model.BatchSize}

	hr, err := evaluateTable(ctx, ranker, t, evaluateCurve)
	if err != nil {
		return err
	}
	logger.Info("evaluation done", "model", m.Name(), "k", cfg.Eval.K, "hitrate", hr)

	if evaluatePredictions != "" {
		items, err := ranker.Rank(ctx, t, feature.ColID, feature.ColRankerID, feature.ColSelected)
		if err != nil {
			return err
		}
		rows := report.Predictions((&rerank.TopN{N: cfg.Eval.K}).Apply(items))
		if err := report.WriteFile(evaluatePredictions, &rows); err != nil {
			return err
		}
	}
	return nil
}

// loadFeatureTable 读取特征表并编码类别列。
// 元数据带有训练时的编码时沿用它；否则在本表上拟合，写回 meta.Encoding 并返回 fitted=true。
func loadFeatureTable(ctx context.Context, path, metaSource string) (meta *feature.FeatureMetadata, t *frame.Table, fitted bool, err error) {
	meta, err = feature.NewMetadataLoader(metaSource).Load(ctx, metaSource)
	if err != nil {
		return nil, nil, false, err
	}
	stringCols := append([]string{feature.ColID, feature.ColRankerID}, meta.CategoricalColumns...)
	raw, err := readTable(path, stringCols...)
	if err != nil {
		return nil, nil, false, err
	}
	if meta.Encoding != nil || len(meta.CategoricalColumns) == 0 {
		t, err = train.ApplyEncoding(raw, meta.CategoricalColumns, meta.Encoding)
		return meta, t, false, err
	}
	t, enc, err := train.EncodeCategorical(raw, meta.CategoricalColumns)
	if err != nil {
		return nil, nil, false, err
	}
	meta.Encoding = enc.LabelMap
	return meta, t, true, nil
}

// evaluateTable 打分并计算 HitRate@k（curvePath 非空时写出曲线），结果记入 Prometheus。
// 没有满足最小规模的分组时只告警，返回 0。
func evaluateTable(ctx context.Context, ranker *rank.Ranker, t *frame.Table, curvePath string) (float64, error) {
	if err := t.Require(feature.ColSelected, feature.ColRankerID); err != nil {
		return 0, err
	}
	scores, err := ranker.Score(ctx, t)
	if err != nil {
		return 0, err
	}
	labels := zeroFilled(t.FloatCol(feature.ColSelected))
	groups := t.StringCol(feature.ColRankerID).Strs

	h := &metric.HitRate{K: cfg.Eval.K, MinGroupSize: cfg.Eval.MinGroupSize}
	hr, err := h.Compute(labels, scores, groups)
	if errors.Is(err, metric.ErrNoEligibleGroups) {
		logger.Warn("no session is large enough for HitRate", "min_group_size", cfg.Eval.MinGroupSize)
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	monitor.RecordHitRate(strconv.Itoa(h.K), hr)

	if curvePath != "" && cfg.Eval.CurveMaxK > 0 {
		curve, err := h.Curve(labels, scores, groups, cfg.Eval.CurveMaxK)
		if err != nil {
			return 0, err
		}
		points := report.CurvePoints(curve)
		if err := report.WriteFile(curvePath, &points); err != nil {
			return 0, err
		}
	}
	return hr, nil
}

func zeroFilled(c *frame.Column) []float64 {
	out := make([]float64, c.Len())
	for i := range out {
		out[i], _ = c.Float(i)
	}
	return out
}
