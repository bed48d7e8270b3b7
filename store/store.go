package store

import (
	"context"
	"fmt"

	"github.com/rushteam/flightrank/core"
)

// 注意：此包只包含实现，接口定义在 core 包。
//
// 示例：
//
//	var kv core.KeyValueStore = store.NewMemoryStore()
//	kv, err := store.Open(ctx, store.Config{Type: "redis", Addr: "localhost:6379"})

// Config 存储后端配置
type Config struct {
	Type     string `yaml:"type" mapstructure:"type"` // memory / redis
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

// Open 按配置创建 KeyValueStore；Type 为空时使用内存实现。
func Open(ctx context.Context, cfg Config) (core.KeyValueStore, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(ctx, cfg.Addr, cfg.Password, cfg.DB)
	default:
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotSupported,
			fmt.Sprintf("store: unsupported type %q", cfg.Type))
	}
}

// Persistent 报告该后端写入的数据能否被另一个进程读到。
// 内存实现随进程退出而丢失，不能承载跨命令共享的数据。
func (c Config) Persistent() bool {
	return c.Type == "redis"
}

// OpenShared 打开用于跨进程共享数据的存储，非持久化后端返回 NOT_SUPPORTED。
func OpenShared(ctx context.Context, cfg Config) (core.KeyValueStore, error) {
	if !cfg.Persistent() {
		typ := cfg.Type
		if typ == "" {
			typ = "memory"
		}
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotSupported,
			fmt.Sprintf("store: type %q does not persist across processes, configure store.type: redis", typ))
	}
	return Open(ctx, cfg)
}
