package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ── 时刻与日期值类型 ──
//
// 课程的开始/结束时间只保留一天内的时刻，统一以 UTC 时钟表示。
// 无论输入是 "08:30" 还是带时区的完整时间戳，都先换算到 UTC 再取时分，
// SlotGrid、ConflictDetector、ScheduleView 均只比较 TimeOfDay。

// ErrInvalidTimeOfDay 时刻格式非法
var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// MinutesPerDay 一天的分钟数
const MinutesPerDay = 24 * 60

// TimeOfDay 一天内的时刻（UTC 时钟，自零点起的分钟数）
type TimeOfDay int

// NewTimeOfDay 由时、分构造 TimeOfDay
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// Hour 返回小时部分
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute 返回分钟部分
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// Valid 是否落在 [00:00, 24:00) 内
func (t TimeOfDay) Valid() bool { return t >= 0 && t < MinutesPerDay }

// String 格式化为 "HH:MM"
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On 将时刻落到指定日期上，返回 UTC 时间点
func (t TimeOfDay) On(date time.Time) time.Time {
	d := CivilDate(date)
	return d.Add(time.Duration(t) * time.Minute)
}

// TimeOfDayFromTime 取时间点在 UTC 时钟下的时分（秒以下截断）
func TimeOfDayFromTime(ts time.Time) TimeOfDay {
	u := ts.UTC()
	return NewTimeOfDay(u.Hour(), u.Minute())
}

// ParseTimeOfDay 解析 "HH:MM"、"HH:MM:SS" 或 RFC3339 时间戳
// 时间戳按 UTC 归一化后取时分；纯时刻字符串视为已经是 UTC 时钟。
// 精度为分钟：秒或小数秒不为零时返回 ErrInvalidTimeOfDay，不做截断。
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidTimeOfDay
	}
	if strings.Contains(s, "T") {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
		}
		if ts.Second() != 0 || ts.Nanosecond() != 0 {
			return 0, fmt.Errorf("%w: %q 含非零秒", ErrInvalidTimeOfDay, s)
		}
		return TimeOfDayFromTime(ts), nil
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			if ts.Second() != 0 {
				return 0, fmt.Errorf("%w: %q 含非零秒", ErrInvalidTimeOfDay, s)
			}
			return NewTimeOfDay(ts.Hour(), ts.Minute()), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
}

// MustParseTimeOfDay 解析失败时 panic，仅用于常量与测试
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Scan 实现 sql.Scanner：PostgreSQL TIME 列以 "08:30:00" 文本或 time.Time 返回
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = 0
		return nil
	case time.Time:
		*t = TimeOfDayFromTime(v)
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	default:
		return fmt.Errorf("TimeOfDay.Scan: unsupported type %T", src)
	}
}

func (t *TimeOfDay) scanString(s string) error {
	// 兼容 "08:30:00.000000" 这类带小数秒的返回
	if i := strings.IndexByte(s, '.'); i > 0 {
		s = s[:i]
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return fmt.Errorf("TimeOfDay.Scan: %w", err)
	}
	*t = parsed
	return nil
}

// Value 实现 driver.Valuer，写入 "HH:MM:00"
func (t TimeOfDay) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("TimeOfDay.Value: %w: %d", ErrInvalidTimeOfDay, int(t))
	}
	return t.String() + ":00", nil
}

// MarshalJSON 输出 "HH:MM"
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON 接受 ParseTimeOfDay 支持的任一格式
func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ── 日期 ──

// DateLayout 日期的线上格式
const DateLayout = "2006-01-02"

// CivilDate 取日期的年月日，返回 UTC 零点
// DATE 列的年月日本身就是业务含义，这里不做时区换算，避免跨日偏移
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate 解析 "YYYY-MM-DD"
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return CivilDate(d), nil
}

// DaysBetween 从 a 到 b 相隔的日历天数，b 早于 a 时为负
func DaysBetween(a, b time.Time) int {
	return int(CivilDate(b).Sub(CivilDate(a)).Hours() / 24)
}

// SameDate 两个时间是否为同一日历日
func SameDate(a, b time.Time) bool {
	return CivilDate(a).Equal(CivilDate(b))
}
