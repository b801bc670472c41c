package progress

import (
	"testing"
	"time"
)

func TestActivityCalendar_EmptyHistory(t *testing.T) {
	days := CalendarDays(nil, testNow, 365)
	if len(days) != 365 {
		t.Fatalf("len = %d, want 365", len(days))
	}
	for i, d := range days {
		if d.Count != 0 {
			t.Fatalf("day %d count = %d, want 0", i, d.Count)
		}
		if i > 0 && !d.Date.After(days[i-1].Date) {
			t.Fatalf("day %d not after day %d", i, i-1)
		}
	}
	last := days[len(days)-1].Date
	if last.Format(time.DateOnly) != testNow.Format(time.DateOnly) {
		t.Errorf("last day = %v, want today", last)
	}
}

func TestActivityCalendar_DefaultLength(t *testing.T) {
	if got := len(CalendarDays(nil, testNow, 0)); got != DefaultCalendarDays {
		t.Errorf("len = %d, want %d", got, DefaultCalendarDays)
	}
}

func TestActivityCalendar_SameDayBucketed(t *testing.T) {
	day := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	history := []StudySession{
		{Date: day.Add(1 * time.Hour), Book: "A", Chapter: 1},
		{Date: day.Add(23 * time.Hour), Book: "A", Chapter: 2},
		{Date: day.AddDate(0, 0, 1).Add(time.Minute), Book: "A", Chapter: 3},
	}
	days := CalendarDays(history, testNow, 7)
	counts := map[string]int{}
	for _, d := range days {
		counts[d.Date.Format(time.DateOnly)] = d.Count
	}
	if counts["2025-06-08"] != 2 {
		t.Errorf("2025-06-08 count = %d, want 2", counts["2025-06-08"])
	}
	if counts["2025-06-09"] != 1 {
		t.Errorf("2025-06-09 count = %d, want 1", counts["2025-06-09"])
	}
	if DaysStudied(days) != 2 {
		t.Errorf("DaysStudied = %d, want 2", DaysStudied(days))
	}
}

func TestActivityCalendar_Restartable(t *testing.T) {
	history := []StudySession{{Date: testNow}}
	seq := ActivityCalendar(history, testNow, 10)
	for range 2 {
		n, total := 0, 0
		for d := range seq {
			n++
			total += d.Count
		}
		if n != 10 || total != 1 {
			t.Errorf("iteration yielded %d days, %d sessions; want 10, 1", n, total)
		}
	}
}

func TestActivityCalendar_EarlyStop(t *testing.T) {
	n := 0
	for range ActivityCalendar(nil, testNow, 365) {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("n = %d, want 3", n)
	}
}

func TestActivityCalendar_OutsideWindowIgnored(t *testing.T) {
	history := []StudySession{{Date: testNow.AddDate(0, 0, -30)}}
	if got := DaysStudied(CalendarDays(history, testNow, 7)); got != 0 {
		t.Errorf("DaysStudied = %d, want 0", got)
	}
}
