package main

import (
	"github.com/spf13/cobra"

	"github.com/rushteam/flightrank/feature"
	"github.com/rushteam/flightrank/store"
)

var priorsTrain string

var priorsCmd = &cobra.Command{
	Use:   "priors",
	Short: "Compute carrier popularity priors and save them to the store",
	Long: `Compute the per-carrier mean selection rate over the reference population
and save it to the configured key-value store, so that "featurize
--priors-from-store" can run without the reference CSV.

The store must outlive this process: store.type must be redis.`,
	RunE: runPriors,
}

func init() {
	priorsCmd.Flags().StringVar(&priorsTrain, "train", "", "reference population CSV (required)")
	_ = priorsCmd.MarkFlagRequired("train")

	rootCmd.AddCommand(priorsCmd)
}

func runPriors(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	kv, err := store.OpenShared(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer kv.Close()

	ref, err := readTable(priorsTrain, feature.RawStringColumns()...)
	if err != nil {
		return err
	}
	priors, err := feature.FitCarrierPriors(ref)
	if err != nil {
		return err
	}

	if err := feature.SavePriors(ctx, kv, cfg.Features.PriorsPrefix, priors); err != nil {
		return err
	}
	for key, m := range priors.Encodings {
		logger.Info("priors saved", "store", kv.Name(), "key", key, "carriers", len(m))
	}
	return nil
}
