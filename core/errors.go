package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - 结构契约错误：MISSING_COLUMN（必需列缺失，必须立即失败）
//   - 评估错误：NO_ELIGIBLE_GROUPS, LENGTH_MISMATCH
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
//   - 远程服务错误：UNAVAILABLE
type DomainError struct {
	Code    string // 错误代码（如 "MISSING_COLUMN", "NOT_FOUND"）
	Message string // 错误消息
	Module  string // 模块名称（如 "feature", "metric", "store"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is 按 Module + Code 比较，便于 errors.Is 匹配包装后的哨兵错误。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

// IsDomainError 检查错误链中是否存在 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的 DomainError，如果不存在则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound         = "NOT_FOUND"          // 资源不存在
	ErrorCodeNotSupported     = "NOT_SUPPORTED"      // 操作不支持
	ErrorCodeUnavailable      = "UNAVAILABLE"        // 服务不可用
	ErrorCodeInvalidInput     = "INVALID_INPUT"      // 输入无效
	ErrorCodeInternalError    = "INTERNAL_ERROR"     // 内部错误
	ErrorCodeMissingColumn    = "MISSING_COLUMN"     // 必需列缺失
	ErrorCodeLengthMismatch   = "LENGTH_MISMATCH"    // 并行数组长度不一致
	ErrorCodeNoEligibleGroups = "NO_ELIGIBLE_GROUPS" // 没有满足最小规模的分组
)

// 模块名称常量
const (
	ModuleFrame   = "frame"   // 列式数据表
	ModuleFeature = "feature" // 特征工程
	ModuleMetric  = "metric"  // 排序评估
	ModuleModel   = "model"   // 模型打分
	ModuleTrain   = "train"   // 训练边界
	ModuleStore   = "store"   // 存储模块
)

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	return hasCode(err, ErrorCodeNotSupported)
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	return hasCode(err, ErrorCodeUnavailable)
}

// IsMissingColumn 检查错误是否为必需列缺失
func IsMissingColumn(err error) bool {
	return hasCode(err, ErrorCodeMissingColumn)
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT 或 LENGTH_MISMATCH
func IsInvalidInput(err error) bool {
	return hasCode(err, ErrorCodeInvalidInput) || hasCode(err, ErrorCodeLengthMismatch)
}

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}
