package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rushteam/flightrank/config"
	"github.com/rushteam/flightrank/feature"
	"github.com/rushteam/flightrank/frame"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger
	monitor *feature.PrometheusMonitor
)

var rootCmd = &cobra.Command{
	Use:   "flightrank",
	Short: "Flight itinerary ranking: features, training and HitRate evaluation",
	Long: `flightrank turns raw flight search results into a model-ready feature table,
trains a group-wise ranker through an external XGBoost service and evaluates
rankings with HitRate@k over ranker_id sessions.

Example usage:
  flightrank priors --train train.csv                     # cache carrier priors in the store
  flightrank featurize --data test.csv --train train.csv  # build features.csv + feature_meta.json
  flightrank train --features features.csv                # train and write importance.csv
  flightrank evaluate --features features.csv             # HitRate@k and hitrate_curve.csv`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return flushMetrics()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./flightrank.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().String("metrics-textfile", "", "write Prometheus metrics to this file on exit")

	_ = viper.BindPFlag("metrics.textfile", rootCmd.PersistentFlags().Lookup("metrics-textfile"))
}

func initConfig() error {
	var err error
	cfg, err = config.LoadViper(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}
	logger = newLogger(cfg.Log, verbose)
	monitor = feature.NewPrometheusMonitor(cfg.Metrics.Namespace)

	logger.Debug("configuration loaded",
		"config", viper.ConfigFileUsed(),
		"split_boundary", cfg.Split.Boundary,
		"k", cfg.Eval.K,
		"store", cfg.Store.Type,
		"model", cfg.Model.Type,
	)
	return nil
}

func newLogger(c config.LogConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(c.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func flushMetrics() error {
	if monitor == nil || cfg == nil || cfg.Metrics.Textfile == "" {
		return nil
	}
	if err := monitor.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	logger.Debug("metrics written", "path", cfg.Metrics.Textfile)
	return nil
}

// readTable 读取 CSV；stringCols 强制按字符串解析
func readTable(path string, stringCols ...string) (*frame.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := frame.ReadCSV(f, frame.WithStringColumns(stringCols...))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	logger.Debug("table loaded", "path", path, "rows", t.Len(), "columns", t.Width())
	return t, nil
}

func writeTable(path string, t *frame.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := frame.WriteCSV(f, t); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
