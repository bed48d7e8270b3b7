package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config 是 Pipeline 的配置结构（支持 YAML/JSON）。
type Config struct {
	Pipeline struct {
		Name  string       `yaml:"name" json:"name"`
		Steps []StepConfig `yaml:"steps" json:"steps"`
	} `yaml:"pipeline" json:"pipeline"`
}

// StepConfig 是单个 Step 的配置。
type StepConfig struct {
	Type   string                 `yaml:"type" json:"type"`     // pricing / time_of_day / expr 等
	Config map[string]interface{} `yaml:"config" json:"config"` // Step 特定配置
}

// LoadFromYAML 从 YAML 文件加载 Pipeline 配置。
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	return &cfg, nil
}

// LoadFromJSON 从 JSON 文件加载 Pipeline 配置。
func LoadFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	return &cfg, nil
}

// BuildSteps 根据配置构建 Step 列表（需要 StepFactory 注册构建器）。
func (c *Config) BuildSteps(factory *StepFactory) ([]Step, error) {
	return BuildSteps(c.Pipeline.Steps, factory)
}

// BuildSteps 按顺序构建 Step 列表
func BuildSteps(cfgs []StepConfig, factory *StepFactory) ([]Step, error) {
	steps := make([]Step, 0, len(cfgs))
	for _, sc := range cfgs {
		step, err := factory.Build(sc.Type, sc.Config)
		if err != nil {
			return nil, fmt.Errorf("build step %s: %w", sc.Type, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// StepBuilder 根据 config 构建 Step。
type StepBuilder func(map[string]interface{}) (Step, error)

// StepFactory 用于根据配置构建 Step 实例。
type StepFactory struct {
	mu       sync.RWMutex
	builders map[string]StepBuilder
}

func NewStepFactory() *StepFactory {
	return &StepFactory{
		builders: make(map[string]StepBuilder),
	}
}

// Register 注册 Step 构建器。
func (f *StepFactory) Register(stepType string, builder StepBuilder) {
	if stepType == "" || builder == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[stepType] = builder
}

// SupportedTypes 返回已注册的 Step 类型（排序），用于错误提示。
func (f *StepFactory) SupportedTypes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	types := make([]string, 0, len(f.builders))
	for t := range f.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Build 根据类型和配置构建 Step。
func (f *StepFactory) Build(stepType string, config map[string]interface{}) (Step, error) {
	f.mu.RLock()
	builder, ok := f.builders[stepType]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown step type %q (supported: %v)", stepType, f.SupportedTypes())
	}
	return builder(config)
}
