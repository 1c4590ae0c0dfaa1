package schedule

import (
	"testing"
	"time"
)

// ── Week 基本性质 ──

func TestWeek_Valid(t *testing.T) {
	for _, w := range []Week{WeekAll, WeekOdd, WeekEven} {
		if !w.Valid() {
			t.Errorf("%s 应为合法取值", w)
		}
	}
	if Week("ch").Valid() {
		t.Error("未映射的上游取值不应合法")
	}
}

func TestWeek_Match(t *testing.T) {
	cases := []struct {
		pair   Week
		actual Week
		want   bool
	}{
		{WeekAll, WeekOdd, true},
		{WeekAll, WeekEven, true},
		{WeekOdd, WeekOdd, true},
		{WeekOdd, WeekEven, false},
		{WeekEven, WeekEven, true},
		{WeekEven, WeekOdd, false},
	}
	for _, c := range cases {
		if got := c.pair.Match(c.actual); got != c.want {
			t.Errorf("%s.Match(%s) 期望 %v，实际 %v", c.pair, c.actual, c.want, got)
		}
	}
}

func TestWeek_Opposite(t *testing.T) {
	if WeekOdd.Opposite() != WeekEven {
		t.Error("odd 的相反应为 even")
	}
	if WeekEven.Opposite() != WeekOdd {
		t.Error("even 的相反应为 odd")
	}
	if WeekAll.Opposite() != WeekAll {
		t.Error("all 的相反仍应为 all")
	}
}

// ── ForDate 奇偶推导 ──

func TestWeek_ForDate_SameWeek(t *testing.T) {
	// now 与 date 同一 ISO 周 → 奇偶与本周一致
	now := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC) // 周三
	date := time.Date(2025, 9, 12, 0, 0, 0, 0, time.UTC) // 同周周五

	if got := WeekOdd.ForDate(date, now); got != WeekOdd {
		t.Errorf("同周应保持奇偶，期望 odd，实际 %s", got)
	}
}

func TestWeek_ForDate_ParityLaw(t *testing.T) {
	// 相邻周取反，隔周复原：date±7 天翻转，±14 天不变
	now := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
	date := time.Date(2025, 9, 12, 0, 0, 0, 0, time.UTC)

	if got := WeekOdd.ForDate(date.AddDate(0, 0, 7), now); got != WeekEven {
		t.Errorf("+7 天应翻转奇偶，期望 even，实际 %s", got)
	}
	if got := WeekOdd.ForDate(date.AddDate(0, 0, -7), now); got != WeekEven {
		t.Errorf("-7 天应翻转奇偶，期望 even，实际 %s", got)
	}
	if got := WeekOdd.ForDate(date.AddDate(0, 0, 14), now); got != WeekOdd {
		t.Errorf("+14 天应复原奇偶，期望 odd，实际 %s", got)
	}
	if got := WeekEven.ForDate(date.AddDate(0, 0, -14), now); got != WeekEven {
		t.Errorf("-14 天应复原奇偶，期望 even，实际 %s", got)
	}
}

func TestWeek_ForDate_AllStaysAll(t *testing.T) {
	now := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
	next := now.AddDate(0, 0, 7)
	if got := WeekAll.ForDate(next, now); got != WeekAll {
		t.Errorf("all 在任意周都应保持 all，实际 %s", got)
	}
}

// ── DayOfWeek ──

func TestDayOfWeekFromTime(t *testing.T) {
	// 2025-09-08 是周一，2025-09-14 是周日
	monday := time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC)

	if got := DayOfWeekFromTime(monday); got != Monday {
		t.Errorf("期望周一=1，实际 %d", got)
	}
	if got := DayOfWeekFromTime(sunday); got != Sunday {
		t.Errorf("期望周日=7，实际 %d", got)
	}
}

func TestDayOfWeek_Valid(t *testing.T) {
	if DayOfWeek(0).Valid() || DayOfWeek(8).Valid() {
		t.Error("0 和 8 不应为合法星期")
	}
	if !Monday.Valid() || !Sunday.Valid() {
		t.Error("1 和 7 应为合法星期")
	}
}
