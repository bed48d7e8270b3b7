package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/flightrank/model"
	"github.com/rushteam/flightrank/pipeline"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flightrank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 16487352, cfg.Split.Boundary)
	assert.Equal(t, 3, cfg.Eval.K)
	assert.Equal(t, 10, cfg.Eval.MinGroupSize)
	assert.Len(t, cfg.Features.PopularRoutes, 5)
	assert.Equal(t, "rank:pairwise", cfg.Train.Params.Objective)
	assert.Equal(t, 1000, cfg.Train.Params.NumBoostRound)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
features:
  popular_routes: ["MOWLED/LEDMOW"]
split:
  boundary: 100
eval:
  k: 5
model:
  type: rpc
  endpoint: http://scorer:8080/predict
  timeout: 2s
steps:
  - type: expr
    config:
      column: price_per_minute
      expr: "row.totalPrice / (row.total_duration + 1.0)"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"MOWLED/LEDMOW"}, cfg.Features.PopularRoutes)
	assert.Equal(t, 100, cfg.Split.Boundary)
	assert.Equal(t, 5, cfg.Eval.K)
	assert.Equal(t, 10, cfg.Eval.MinGroupSize, "unset fields keep defaults")
	assert.Equal(t, 2*time.Second, cfg.Model.Timeout)
	require.Len(t, cfg.Steps, 1)

	steps, err := BuildSteps(cfg.Steps)
	require.NoError(t, err)
	assert.Equal(t, "expr.price_per_minute", steps[0].Name())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "negative boundary", mutate: func(c *Config) { c.Split.Boundary = -1 }},
		{name: "end before boundary", mutate: func(c *Config) { c.Split.End = 10 }},
		{name: "zero k", mutate: func(c *Config) { c.Eval.K = 0 }},
		{name: "unknown step", mutate: func(c *Config) {
			c.Steps = []pipeline.StepConfig{{Type: "nope"}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadViper_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "split:\n  boundary: 100\neval:\n  k: 5\n")
	t.Setenv("FLIGHTRANK_SPLIT_BOUNDARY", "200")

	cfg, err := LoadViper(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Split.Boundary)
	assert.Equal(t, 5, cfg.Eval.K)
	assert.Equal(t, "rank:pairwise", cfg.Train.Params.Objective)
}

type constModel struct{}

func (constModel) Name() string                                 { return "const" }
func (constModel) Predict(map[string]float64) (float64, error) { return 1, nil }

func TestBuildModel(t *testing.T) {
	Register("const", func(ModelConfig) (model.RankModel, error) { return constModel{}, nil })
	assert.Contains(t, SupportedTypes(), "const")

	m, err := BuildModel(ModelConfig{Type: "const"})
	require.NoError(t, err)
	assert.Equal(t, "const", m.Name())

	_, err = BuildModel(ModelConfig{Type: "missing"})
	assert.ErrorContains(t, err, "unsupported model type")
}
