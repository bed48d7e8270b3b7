package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// getCELEnv 获取或创建 CEL 环境；表达式通过 row 访问当前行的列值。
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("row", cel.MapType(cel.StringType, cel.DynType)),
		)
	})
	return celEnv, celEnvErr
}

// Expr 是编译后的行级表达式，使用 CEL (Common Expression Language) 实现。
// 编译一次，可并发对多行求值。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：row.totalPrice / (row.total_segments + 1.0)（数值列均为 double）
//   - 条件：row.is_one_way == 1.0 ? 0.0 : row.legs1_duration
//   - 存在性：has(row.taxes)（null 列值不会出现在 row 中）
//
// 示例：
//   - `row.totalPrice / (row.total_duration + 1.0)` → 每分钟价格
//   - `row.searchRoute.startsWith("MOW") ? 1.0 : 0.0` → 莫斯科出发
type Expr struct {
	source string
	prg    cel.Program
}

// Compile 编译表达式；语法或类型错误立即返回。
func Compile(expr string) (*Expr, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %v", err)
	}
	return &Expr{source: expr, prg: prg}, nil
}

// String 返回表达式原文
func (e *Expr) String() string {
	return e.source
}

// EvalFloat 对一行求值并转为 float64。
// 求值错误（如访问不存在的 key）或结果不是数值/布尔时返回 ok=false，调用方记为 null。
func (e *Expr) EvalFloat(row map[string]any) (float64, bool) {
	out, _, err := e.prg.Eval(map[string]any{"row": row})
	if err != nil {
		return 0, false
	}
	return toFloat(out)
}

func toFloat(v ref.Val) (float64, bool) {
	switch val := v.(type) {
	case types.Double:
		return float64(val), true
	case types.Int:
		return float64(val), true
	case types.Uint:
		return float64(val), true
	case types.Bool:
		if val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
