// Package conv 从 YAML/JSON 解码出的 map[string]any 中读取 Step 配置项。
package conv

import "strconv"

// number 把解码器常见的数值类型统一为 float64。
// YAML 整数解为 int，JSON 数字解为 float64。
func number(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case uint:
		return float64(val), true
	}
	return 0, false
}

// SliceAnyToString 读取列名、航线一类的字符串列表。
// 接受 []any 与 []string；数值元素按最短十进制格式化，其余类型的元素被跳过。
func SliceAnyToString(v any) []string {
	switch raw := v.(type) {
	case []string:
		return append([]string(nil), raw...)
	case []any:
		out := make([]string, 0, len(raw))
		for _, e := range raw {
			if s, ok := e.(string); ok {
				out = append(out, s)
				continue
			}
			if f, ok := number(e); ok {
				out = append(out, strconv.FormatFloat(f, 'f', -1, 64))
			}
		}
		return out
	}
	return nil
}

// ConfigGet 按 key 取 T，缺失或类型不符时返回 defaultVal。
func ConfigGet[T any](m map[string]any, key string, defaultVal T) T {
	if t, ok := m[key].(T); ok {
		return t
	}
	return defaultVal
}

// ConfigGetInt64 按 key 取整数，兼容 int 与 float64 两种解码结果，小数部分截断。
func ConfigGetInt64(m map[string]any, key string, defaultVal int64) int64 {
	if f, ok := number(m[key]); ok {
		return int64(f)
	}
	return defaultVal
}
