package feature

import (
	"context"
	"time"

	"github.com/rushteam/flightrank/frame"
	"github.com/rushteam/flightrank/pipeline"
)

const (
	defaultHour    = 12 // 时间戳无法解析时的小时
	defaultWeekday = 0  // 时间戳无法解析时的星期
)

// DefaultTimeLayouts 是非严格解析时依次尝试的时间格式。
var DefaultTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// TimeOfDayStep 对每个存在的时间戳列派生：
//   - {col}_hour: 小时，无法解析为 12
//   - {col}_weekday: ISO 星期（周一=1 ... 周日=7），无法解析为 0
//   - {col}_business_time: 小时落在 [6,9] 或 [17,20]
type TimeOfDayStep struct {
	Columns     []string
	Layouts     []string
	Parallelism int
}

func (s *TimeOfDayStep) Name() string { return "time_of_day" }

func (s *TimeOfDayStep) Apply(ctx context.Context, st *pipeline.State) error {
	cols := s.Columns
	if len(cols) == 0 {
		cols = TimestampColumns
	}
	layouts := s.Layouts
	if len(layouts) == 0 {
		layouts = DefaultTimeLayouts
	}

	present := make([]*frame.Column, 0, len(cols))
	for _, name := range cols {
		if c, ok := st.Table.Col(name); ok {
			present = append(present, c)
		}
	}

	derived := make([][]*frame.Column, len(present))
	err := forEachColumn(ctx, s.Parallelism, len(present), func(i int) {
		derived[i] = timeFeatures(present[i], layouts)
	})
	if err != nil {
		return err
	}
	for _, cols := range derived {
		st.Table.MustSet(cols...)
	}
	return nil
}

func timeFeatures(c *frame.Column, layouts []string) []*frame.Column {
	n := c.Len()
	hours := make([]float64, n)
	weekdays := make([]float64, n)
	business := make([]bool, n)
	for i := 0; i < n; i++ {
		h, wd := float64(defaultHour), float64(defaultWeekday)
		if s, ok := c.Str(i); ok {
			if t, ok := ParseTimestamp(s, layouts); ok {
				h = float64(t.Hour())
				wd = float64(isoWeekday(t.Weekday()))
			}
		}
		hours[i] = h
		weekdays[i] = wd
		business[i] = (h >= 6 && h <= 9) || (h >= 17 && h <= 20)
	}
	return []*frame.Column{
		intCol(c.Name+"_hour", hours),
		intCol(c.Name+"_weekday", weekdays),
		flag(c.Name+"_business_time", business),
	}
}

// ParseTimestamp 依次尝试 layouts，全部失败返回 false（不报错）。
func ParseTimestamp(s string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isoWeekday(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}
