package builders

import (
	"fmt"

	"github.com/rushteam/flightrank/config"
	"github.com/rushteam/flightrank/model"
)

func init() {
	config.Register("rpc", BuildRPCModel)
	config.Register("lr", BuildLRModel)
	config.Register("cheapest_first", BuildCheapestFirst)
}

// BuildRPCModel 远程 XGBoost 打分服务
func BuildRPCModel(cfg config.ModelConfig) (model.RankModel, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("model.endpoint is required for rpc model")
	}
	name := cfg.Name
	if name == "" {
		name = "rpc"
	}
	return model.NewRPCModel(name, cfg.Endpoint, cfg.Timeout), nil
}

// BuildLRModel 从权重文件加载逻辑回归
func BuildLRModel(cfg config.ModelConfig) (model.RankModel, error) {
	if cfg.WeightsPath == "" {
		return nil, fmt.Errorf("model.weights_path is required for lr model")
	}
	m, err := model.LoadLRModel(cfg.WeightsPath)
	if err != nil {
		return nil, fmt.Errorf("load lr weights: %w", err)
	}
	return m, nil
}

// BuildCheapestFirst 价格排名基线，不需要额外配置
func BuildCheapestFirst(config.ModelConfig) (model.RankModel, error) {
	return model.CheapestFirst(), nil
}
