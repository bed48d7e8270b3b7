package feature

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// FeatureMetadata 特征元数据，对应 feature_meta.json。
// 训练与推理按同一份列顺序构建特征向量。
type FeatureMetadata struct {
	// FeatureColumns 特征列名列表（按顺序）
	FeatureColumns []string `json:"feature_columns"`
	// CategoricalColumns 类别特征列
	CategoricalColumns []string `json:"categorical_columns"`
	// FeatureCount 特征数量
	FeatureCount int `json:"feature_count"`
	// LabelColumn 标签列名
	LabelColumn string `json:"label_column"`
	// GroupColumn 分组列名
	GroupColumn string `json:"group_column"`
	// CreatedAt 创建时间
	CreatedAt string `json:"created_at"`
	// Encoding 训练时拟合的类别编码（列 -> 类别 -> 编码），评估与推理按它编码
	Encoding map[string]map[string]int `json:"encoding,omitempty"`
}

// NewFeatureMetadata 由一次特征构建结果生成元数据
func NewFeatureMetadata(res *Result) *FeatureMetadata {
	return &FeatureMetadata{
		FeatureColumns:     res.FeatureColumns,
		CategoricalColumns: res.CategoricalColumns,
		FeatureCount:       len(res.FeatureColumns),
		LabelColumn:        ColSelected,
		GroupColumn:        ColRankerID,
		CreatedAt:          time.Now().UTC().Format(time.RFC3339),
	}
}

// Save 写出 JSON 文件
func (m *FeatureMetadata) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("编码特征元数据失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入特征元数据文件失败: %w", err)
	}
	return nil
}

// GetMissingFeatures 返回缺失的特征列
func (m *FeatureMetadata) GetMissingFeatures(features map[string]float64) []string {
	var missing []string
	for _, col := range m.FeatureColumns {
		if _, ok := features[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// BuildFeatureVector 按 feature_columns 顺序构建特征向量，缺失特征填 0.0
func (m *FeatureMetadata) BuildFeatureVector(features map[string]float64) []float64 {
	vector := make([]float64, len(m.FeatureColumns))
	for i, col := range m.FeatureColumns {
		vector[i] = features[col]
	}
	return vector
}

// MetadataLoader 特征元数据加载器接口，source 是文件路径或 URL。
type MetadataLoader interface {
	Load(ctx context.Context, source string) (*FeatureMetadata, error)
}

// NewMetadataLoader 按 source 选择加载器：http(s):// 走 HTTP，其余按本地文件。
func NewMetadataLoader(source string) MetadataLoader {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return NewHTTPMetadataLoader(0)
	}
	return &FileMetadataLoader{}
}

// FileMetadataLoader 本地文件特征元数据加载器
type FileMetadataLoader struct{}

func (l *FileMetadataLoader) Load(_ context.Context, path string) (*FeatureMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取特征元数据文件失败: %w", err)
	}
	return decodeMetadata(data)
}

// HTTPMetadataLoader HTTP 接口特征元数据加载器
type HTTPMetadataLoader struct {
	client *http.Client
}

// NewHTTPMetadataLoader 创建 HTTP 加载器，timeout 为 0 时使用 10s
//
// 用法：
//
//	loader := feature.NewHTTPMetadataLoader(5 * time.Second)
//	meta, err := loader.Load(ctx, "http://models.internal/flightrank/v3/feature_meta.json")
func NewHTTPMetadataLoader(timeout time.Duration) *HTTPMetadataLoader {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPMetadataLoader{client: &http.Client{Timeout: timeout}}
}

func (l *HTTPMetadataLoader) Load(ctx context.Context, url string) (*FeatureMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP 请求失败: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP 请求失败: status=%d, body=%s", resp.StatusCode, string(data))
	}
	return decodeMetadata(data)
}

func decodeMetadata(data []byte) (*FeatureMetadata, error) {
	var meta FeatureMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("解析特征元数据失败: %w", err)
	}
	return &meta, nil
}
