package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rushteam/flightrank/config"
	"github.com/rushteam/flightrank/feature"
	"github.com/rushteam/flightrank/frame"
	"github.com/rushteam/flightrank/report"
	"github.com/rushteam/flightrank/store"
)

var (
	featurizeData      string
	featurizeTrain     string
	featurizeOut       string
	featurizeMeta      string
	featurizeStats     string
	featurizeFromStore bool
)

var featurizeCmd = &cobra.Command{
	Use:   "featurize",
	Short: "Build the feature table from raw search results",
	Long: `Build the model-ready feature table from a raw itinerary CSV.

Carrier popularity priors are computed from --train, or read from the
configured redis store with --priors-from-store (see "flightrank priors").

The output CSV holds Id, ranker_id, selected (when present, unfilled so that
unlabeled rows stay empty) and every feature column; feature_meta.json records the feature order and categorical columns.`,
	RunE: runFeaturize,
}

func init() {
	featurizeCmd.Flags().StringVar(&featurizeData, "data", "", "raw itinerary CSV (required)")
	featurizeCmd.Flags().StringVar(&featurizeTrain, "train", "", "reference population CSV for carrier priors")
	featurizeCmd.Flags().StringVarP(&featurizeOut, "out", "o", "features.csv", "output feature CSV")
	featurizeCmd.Flags().StringVar(&featurizeMeta, "meta", "feature_meta.json", "output feature metadata")
	featurizeCmd.Flags().StringVar(&featurizeStats, "stats", "", "optional feature statistics CSV")
	featurizeCmd.Flags().BoolVar(&featurizeFromStore, "priors-from-store", false, "load carrier priors from the store instead of --train")
	_ = featurizeCmd.MarkFlagRequired("data")

	rootCmd.AddCommand(featurizeCmd)
}

func runFeaturize(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	raw, err := readTable(featurizeData, feature.RawStringColumns()...)
	if err != nil {
		return err
	}

	extra, err := config.BuildSteps(cfg.Steps)
	if err != nil {
		return err
	}
	opts := []feature.Option{
		feature.WithPopularRoutes(cfg.Features.PopularRoutes),
		feature.WithTimeLayouts(cfg.Features.TimeLayouts),
		feature.WithExtraSteps(extra...),
		feature.WithLogger(logger),
		feature.WithMonitor(monitor),
	}

	var trainDF *frame.Table
	switch {
	case featurizeFromStore:
		kv, err := store.OpenShared(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer kv.Close()
		priors, err := feature.LoadPriors(ctx, kv, cfg.Features.PriorsPrefix)
		if err != nil {
			return err
		}
		opts = append(opts, feature.WithPriors(priors))
	case featurizeTrain != "":
		if trainDF, err = readTable(featurizeTrain, feature.RawStringColumns()...); err != nil {
			return err
		}
	default:
		return fmt.Errorf("either --train or --priors-from-store is required")
	}

	res, err := feature.Preprocess(ctx, raw, trainDF, opts...)
	if err != nil {
		return err
	}
	monitor.RecordRows(res.Table.Len())

	out, err := res.OutputTable()
	if err != nil {
		return err
	}
	if err := writeTable(featurizeOut, out); err != nil {
		return err
	}
	if err := feature.NewFeatureMetadata(res).Save(featurizeMeta); err != nil {
		return err
	}
	if featurizeStats != "" {
		rows := report.StatRows(feature.Describe(res.Table, res.FeatureColumns))
		if err := report.WriteFile(featurizeStats, &rows); err != nil {
			return err
		}
	}

	logger.Info("features written",
		"path", featurizeOut,
		"rows", out.Len(),
		"features", len(res.FeatureColumns),
		"categorical", len(res.CategoricalColumns),
	)
	return nil
}
