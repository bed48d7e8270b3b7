package feature

import (
	"strconv"

	"github.com/rushteam/flightrank/frame"
)

const (
	minutesPerDay  = 1440
	minutesPerHour = 60
)

// ParseDurationMinutes 把 "H:MM" / "HH:MM[:SS]" / "D.HH:MM[:SS]" 形式的时长转换为分钟数。
//
//   - 前导 "<digits>." 视为天数
//   - 余下部分前导 "<digits>:" 视为小时
//   - 第一个冒号之后、下一个冒号（或结尾）之前的数字视为分钟
//
// 各部分独立计算，不做进位归一化（"25:99" -> 1599）；缺失或无法解析的部分记 0。
func ParseDurationMinutes(s string) int64 {
	var days, hours, minutes int64

	rest := s
	if n := leadingDigits(rest); n > 0 && n < len(rest) && rest[n] == '.' {
		days = atoi(rest[:n])
		rest = rest[n+1:]
	}

	if n := leadingDigits(rest); n > 0 && n < len(rest) && rest[n] == ':' {
		hours = atoi(rest[:n])
	}

	for i := 0; i < len(rest); i++ {
		if rest[i] != ':' {
			continue
		}
		tail := rest[i+1:]
		if n := leadingDigits(tail); n > 0 && (n == len(tail) || tail[n] == ':') {
			minutes = atoi(tail[:n])
		}
		break
	}

	return days*minutesPerDay + hours*minutesPerHour + minutes
}

// DurationMinutes 逐行解析时长列，null 记 0，输出整数列。
func DurationMinutes(c *frame.Column) *frame.Column {
	n := c.Len()
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		if c.Kind.Numeric() {
			// 已经是分钟数（例如重复执行流水线）
			if v, ok := c.Float(i); ok {
				vals[i] = v
			}
			continue
		}
		if s, ok := c.Str(i); ok {
			vals[i] = float64(ParseDurationMinutes(s))
		}
	}
	return frame.NewInt(c.Name, vals, nil)
}

func leadingDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}

func atoi(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
