// Package config 定义一次运行的全部配置，默认值与历史数据集的常量一致。
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/flightrank/feature"
	"github.com/rushteam/flightrank/metric"
	"github.com/rushteam/flightrank/pipeline"
	"github.com/rushteam/flightrank/store"
	"github.com/rushteam/flightrank/train"
)

// Config 是运行配置（YAML）。
type Config struct {
	Features FeaturesConfig `yaml:"features" mapstructure:"features"`
	Split    SplitConfig    `yaml:"split" mapstructure:"split"`
	Eval     EvalConfig     `yaml:"eval" mapstructure:"eval"`
	Store    store.Config   `yaml:"store" mapstructure:"store"`
	Train    TrainConfig    `yaml:"train" mapstructure:"train"`
	Model    ModelConfig    `yaml:"model" mapstructure:"model"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Metrics  MetricsConfig  `yaml:"metrics" mapstructure:"metrics"`

	// Steps 是追加在内置特征之后、null 填充之前的 Step（见 feature.DefaultFactory）
	Steps []pipeline.StepConfig `yaml:"steps" mapstructure:"steps"`
}

// FeaturesConfig 特征构建
type FeaturesConfig struct {
	PopularRoutes []string `yaml:"popular_routes" mapstructure:"popular_routes"`
	TimeLayouts   []string `yaml:"time_layouts" mapstructure:"time_layouts"`
	// PriorsPrefix 是航司先验在 KeyValueStore 中的 key 前缀
	PriorsPrefix string `yaml:"priors_prefix" mapstructure:"priors_prefix"`
}

// SplitConfig 按行位置切分训练/验证集；End 为 0 时取有标签的全部行
type SplitConfig struct {
	Boundary int `yaml:"boundary" mapstructure:"boundary"`
	End      int `yaml:"end" mapstructure:"end"`
}

// EvalConfig 评估
type EvalConfig struct {
	K            int `yaml:"k" mapstructure:"k"`
	MinGroupSize int `yaml:"min_group_size" mapstructure:"min_group_size"`
	CurveMaxK    int `yaml:"curve_max_k" mapstructure:"curve_max_k"`
}

// TrainConfig 外部训练服务
type TrainConfig struct {
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Params   train.Params  `yaml:"params" mapstructure:"params"`
}

// ModelConfig 打分模型，Type 对应 Register 注册的名称
type ModelConfig struct {
	Type        string        `yaml:"type" mapstructure:"type"`
	Name        string        `yaml:"name" mapstructure:"name"`
	Endpoint    string        `yaml:"endpoint" mapstructure:"endpoint"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	WeightsPath string        `yaml:"weights_path" mapstructure:"weights_path"`
	BatchSize   int           `yaml:"batch_size" mapstructure:"batch_size"`
}

// LogConfig 日志
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug / info / warn / error
	Format string `yaml:"format" mapstructure:"format"` // text / json
}

// MetricsConfig Prometheus 指标；Textfile 为空时不输出
type MetricsConfig struct {
	Namespace string `yaml:"namespace" mapstructure:"namespace"`
	Textfile  string `yaml:"textfile" mapstructure:"textfile"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Features: FeaturesConfig{
			PopularRoutes: append([]string(nil), feature.DefaultPopularRoutes...),
			PriorsPrefix:  "flightrank:prior",
		},
		Split: SplitConfig{Boundary: 16487352},
		Eval: EvalConfig{
			K:            metric.DefaultK,
			MinGroupSize: metric.DefaultMinGroupSize,
			CurveMaxK:    10,
		},
		Store: store.Config{Type: "memory"},
		Train: TrainConfig{
			Endpoint: "http://localhost:8500",
			Params:   train.DefaultParams(),
		},
		Model: ModelConfig{
			Type:      "cheapest_first",
			Name:      "xgb-ranker",
			Timeout:   30 * time.Second,
			BatchSize: 4096,
		},
		Log:     LogConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{Namespace: "flightrank"},
	}
}

// Load 读取 YAML，未出现的字段保留默认值
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验取值范围与扩展 Step 类型
func (c *Config) Validate() error {
	if c.Split.Boundary < 0 {
		return fmt.Errorf("split.boundary must be >= 0, got %d", c.Split.Boundary)
	}
	if c.Split.End != 0 && c.Split.End < c.Split.Boundary {
		return fmt.Errorf("split.end (%d) must be >= split.boundary (%d)", c.Split.End, c.Split.Boundary)
	}
	if c.Eval.K <= 0 {
		return fmt.Errorf("eval.k must be positive, got %d", c.Eval.K)
	}
	if c.Eval.MinGroupSize < 0 {
		return fmt.Errorf("eval.min_group_size must be >= 0, got %d", c.Eval.MinGroupSize)
	}
	return ValidateSteps(c.Steps)
}
