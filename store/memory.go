package store

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/flightrank/core"
)

// MemoryStore 是内存实现的 KeyValueStore，用于测试/本地运行。
// 支持 TTL（过期时间），进程退出后数据丢失。
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]*entry
	hashes map[string]map[string][]byte
}

type entry struct {
	value  []byte
	expire time.Time // 零值表示不过期
}

func (e *entry) expired(now time.Time) bool {
	return !e.expire.IsZero() && now.After(e.expire)
}

var _ core.KeyValueStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:   make(map[string]*entry),
		hashes: make(map[string]map[string][]byte),
	}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok || e.expired(time.Now()) {
		return nil, core.ErrStoreNotFound
	}
	return e.value, nil
}

// Set 写入；ttl 单位为秒，<= 0 表示不过期
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &entry{value: value}
	if len(ttl) > 0 && ttl[0] > 0 {
		e.expire = time.Now().Add(time.Duration(ttl[0]) * time.Second)
	}
	m.data[key] = e
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	delete(m.hashes, key)
	return nil
}

func (m *MemoryStore) HSet(_ context.Context, key string, fields map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := m.hashes[key]
	if h == nil {
		h = make(map[string][]byte, len(fields))
		m.hashes[key] = h
	}
	for f, v := range fields {
		h[f] = append([]byte(nil), v...)
	}
	return nil
}

// HGetAll 读取整个 Hash；key 不存在时返回空 map（与 Redis 一致）
func (m *MemoryStore) HGetAll(_ context.Context, key string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]byte, len(m.hashes[key]))
	for f, v := range m.hashes[key] {
		out[f] = v
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
