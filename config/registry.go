package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/flightrank/feature"
	"github.com/rushteam/flightrank/model"
	"github.com/rushteam/flightrank/pipeline"
)

// 使用配置驱动时，需在 main 或入口处 import _ "github.com/rushteam/flightrank/config/builders"
// 以触发内置模型（rpc、lr、cheapest_first）的 init 注册。

// ModelBuilder 根据配置构建打分模型
type ModelBuilder func(cfg ModelConfig) (model.RankModel, error)

var (
	defaultBuilders   = make(map[string]ModelBuilder)
	defaultBuildersMu sync.RWMutex
)

// Register 注册一种模型的构建逻辑。
// 建议在 init 中调用，例如：func init() { config.Register("rpc", BuildRPCModel) }
func Register(typeName string, builder ModelBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回当前已注册的模型类型列表（排序），用于错误提示与校验。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// BuildModel 按 cfg.Type 构建模型
func BuildModel(cfg ModelConfig) (model.RankModel, error) {
	defaultBuildersMu.RLock()
	builder, ok := defaultBuilders[cfg.Type]
	defaultBuildersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported model type %q (supported: %v)", cfg.Type, SupportedTypes())
	}
	return builder(cfg)
}

// ValidateSteps 校验扩展 Step 类型均已在 feature.DefaultFactory 中注册
func ValidateSteps(steps []pipeline.StepConfig) error {
	if len(steps) == 0 {
		return nil
	}
	f := feature.DefaultFactory()
	supported := f.SupportedTypes()
	known := make(map[string]bool, len(supported))
	for _, t := range supported {
		known[t] = true
	}
	for _, sc := range steps {
		if !known[sc.Type] {
			return fmt.Errorf("unsupported step type %q (supported: %v)", sc.Type, supported)
		}
	}
	return nil
}

// BuildSteps 构建扩展 Step
func BuildSteps(steps []pipeline.StepConfig) ([]pipeline.Step, error) {
	return pipeline.BuildSteps(steps, feature.DefaultFactory())
}
