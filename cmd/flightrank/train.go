package main

import (
	"github.com/spf13/cobra"

	"github.com/rushteam/flightrank/feature"
	"github.com/rushteam/flightrank/model"
	"github.com/rushteam/flightrank/rank"
	"github.com/rushteam/flightrank/report"
	"github.com/rushteam/flightrank/train"
)

var (
	trainFeatures   string
	trainMeta       string
	trainImportance string
	trainMetaOut    string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the ranker through the XGBoost service",
	Long: `Encode categorical features, split rows at split.boundary and send both
parts to the training service configured under train.endpoint.

Rows [0, boundary) train the model and rows [boundary, end) validate it;
end defaults to the number of labeled rows (non-empty selected). The split
follows row order and assumes each ranker_id session is contiguous.
Gain importance is written to --importance and validation HitRate@k is logged.
The metadata, including the categorical encoding used for training, is written
to --meta-out for "flightrank evaluate".`,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&trainFeatures, "features", "features.csv", "feature CSV written by featurize")
	trainCmd.Flags().StringVar(&trainMeta, "meta", "feature_meta.json", "feature metadata file or URL")
	trainCmd.Flags().StringVar(&trainImportance, "importance", "importance.csv", "feature importance CSV")
	trainCmd.Flags().StringVar(&trainMetaOut, "meta-out", "model_meta.json", "metadata with the fitted categorical encoding")

	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	meta, t, _, err := loadFeatureTable(ctx, trainFeatures, trainMeta)
	if err != nil {
		return err
	}
	if err := meta.Save(trainMetaOut); err != nil {
		return err
	}
	trainSet, validSet, err := train.SplitRows(t, cfg.Split.Boundary, cfg.Split.End)
	if err != nil {
		return err
	}
	dsTrain, err := train.NewDataset(trainSet, meta.FeatureColumns, feature.ColSelected, feature.ColRankerID)
	if err != nil {
		return err
	}
	var dsValid *train.Dataset
	if validSet.Len() > 0 {
		if dsValid, err = train.NewDataset(validSet, meta.FeatureColumns, feature.ColSelected, feature.ColRankerID); err != nil {
			return err
		}
	}
	logger.Info("training",
		"endpoint", cfg.Train.Endpoint,
		"train_rows", dsTrain.Rows(),
		"train_groups", len(dsTrain.Group),
		"valid_rows", validSet.Len(),
		"features", len(meta.FeatureColumns),
	)

	booster, err := train.NewRPCTrainer(cfg.Train.Endpoint, cfg.Train.Timeout).
		Train(ctx, dsTrain, dsValid, cfg.Train.Params)
	if err != nil {
		return err
	}

	gain, err := booster.Importance(ctx, "gain")
	if err != nil {
		return err
	}
	rows := model.SortImportance(gain)
	if err := report.WriteFile(trainImportance, &rows); err != nil {
		return err
	}

	if validSet.Len() > 0 {
		ranker := &rank.Ranker{Model: booster, Features: meta.FeatureColumns, BatchSize: cfg.Model.BatchSize}
		hr, err := evaluateTable(ctx, ranker, validSet, "")
		if err != nil {
			return err
		}
		logger.Info("validation", "k", cfg.Eval.K, "hitrate", hr)
	}
	logger.Info("model trained", "model_id", booster.Name(), "importance", trainImportance)
	return nil
}
