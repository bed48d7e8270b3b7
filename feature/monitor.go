package feature

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Monitor 记录特征构建过程中的缺失率与各 Step 耗时。
type Monitor interface {
	ObserveStep(name string, d time.Duration)
	RecordMissing(column string, count int)
}

// ColumnStats 是单列的监控快照
type ColumnStats struct {
	Column       string
	Runs         int64
	MissingCount int64
}

// MemoryMonitor 是内存监控实现，用于测试和本地调试。
// 生产环境使用 PrometheusMonitor。
type MemoryMonitor struct {
	mu      sync.RWMutex
	columns map[string]*ColumnStats
	steps   map[string]time.Duration
}

// NewMemoryMonitor 创建内存监控
func NewMemoryMonitor() *MemoryMonitor {
	return &MemoryMonitor{
		columns: make(map[string]*ColumnStats),
		steps:   make(map[string]time.Duration),
	}
}

func (m *MemoryMonitor) ObserveStep(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps[name] += d
}

func (m *MemoryMonitor) RecordMissing(column string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := m.columns[column]
	if stats == nil {
		stats = &ColumnStats{Column: column}
		m.columns[column] = stats
	}
	stats.Runs++
	stats.MissingCount += int64(count)
}

// Stats 返回列统计副本，避免并发修改
func (m *MemoryMonitor) Stats(column string) (ColumnStats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats, ok := m.columns[column]
	if !ok {
		return ColumnStats{}, false
	}
	return *stats, true
}

// StepDuration 返回某个 Step 的累计耗时
func (m *MemoryMonitor) StepDuration(name string) (time.Duration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.steps[name]
	return d, ok
}

// PrometheusMonitor 把监控数据写入独立的 Prometheus Registry。
// 批处理任务没有抓取端点，用 WriteTextfile 输出给 node_exporter 的 textfile collector。
type PrometheusMonitor struct {
	registry *prometheus.Registry
	missing  *prometheus.CounterVec
	step     *prometheus.HistogramVec
	hitRate  *prometheus.GaugeVec
	rows     prometheus.Gauge
}

// NewPrometheusMonitor 创建 Prometheus 监控
func NewPrometheusMonitor(namespace string) *PrometheusMonitor {
	m := &PrometheusMonitor{
		registry: prometheus.NewRegistry(),
		missing: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "feature_missing_total",
				Help:      "Number of null values filled per feature column",
			},
			[]string{"column"},
		),
		step: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "feature_step_duration_seconds",
				Help:      "Duration of feature pipeline steps in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"step"},
		),
		hitRate: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "hitrate",
				Help:      "HitRate@k of the latest evaluation",
			},
			[]string{"k"},
		),
		rows: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "feature_rows",
				Help:      "Row count of the latest feature table",
			},
		),
	}
	m.registry.MustRegister(m.missing, m.step, m.hitRate, m.rows)
	return m
}

func (m *PrometheusMonitor) ObserveStep(name string, d time.Duration) {
	m.step.WithLabelValues(name).Observe(d.Seconds())
}

func (m *PrometheusMonitor) RecordMissing(column string, count int) {
	m.missing.WithLabelValues(column).Add(float64(count))
}

// RecordRows 记录特征表行数
func (m *PrometheusMonitor) RecordRows(n int) {
	m.rows.Set(float64(n))
}

// RecordHitRate 记录一次评估结果
func (m *PrometheusMonitor) RecordHitRate(k string, value float64) {
	m.hitRate.WithLabelValues(k).Set(value)
}

// Registry 返回底层 Registry（测试中用 testutil 读取）
func (m *PrometheusMonitor) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile 以 Prometheus 文本格式写出全部指标
func (m *PrometheusMonitor) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
