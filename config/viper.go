package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 FLIGHTRANK_SPLIT_BOUNDARY=100
const EnvPrefix = "FLIGHTRANK"

// LoadViper 依次叠加：默认值 < 配置文件 < 环境变量 < 已绑定的命令行 flag。
// cfgFile 为空时在当前目录查找 flightrank.yaml，找不到则只用默认值。
func LoadViper(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("flightrank")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// setDefaults 注册标量默认值，使 AutomaticEnv 能覆盖这些 key
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("features.popular_routes", d.Features.PopularRoutes)
	v.SetDefault("features.priors_prefix", d.Features.PriorsPrefix)

	v.SetDefault("split.boundary", d.Split.Boundary)
	v.SetDefault("split.end", d.Split.End)

	v.SetDefault("eval.k", d.Eval.K)
	v.SetDefault("eval.min_group_size", d.Eval.MinGroupSize)
	v.SetDefault("eval.curve_max_k", d.Eval.CurveMaxK)

	v.SetDefault("store.type", d.Store.Type)
	v.SetDefault("store.addr", d.Store.Addr)
	v.SetDefault("store.password", d.Store.Password)
	v.SetDefault("store.db", d.Store.DB)

	v.SetDefault("train.endpoint", d.Train.Endpoint)
	v.SetDefault("train.timeout", d.Train.Timeout)

	v.SetDefault("model.type", d.Model.Type)
	v.SetDefault("model.name", d.Model.Name)
	v.SetDefault("model.endpoint", d.Model.Endpoint)
	v.SetDefault("model.timeout", d.Model.Timeout)
	v.SetDefault("model.weights_path", d.Model.WeightsPath)
	v.SetDefault("model.batch_size", d.Model.BatchSize)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
}
