package spacedrep

import "time"

var labels = [...]string{
	"New",
	"1-Day Review",
	"3-Day Review",
	"Weekly Review",
	"Monthly Review",
	"Mastered",
}

// Label returns the display name for a mastery level.
func Label(level int) string {
	if level < MinLevel || level > MaxLevel {
		return "Unknown"
	}
	return labels[level]
}

// Column is one of the visible review buckets on the study schedule.
type Column struct {
	Level    int
	Title    string
	Subtitle string
}

// Columns maps levels 1-4 to the schedule columns. New (0) and mastered (5)
// chapters have no column.
var Columns = []Column{
	{Level: 1, Title: "2nd Day Review", Subtitle: "1 Day After Study"},
	{Level: 2, Title: "3rd Day Review", Subtitle: "3 Days After Study"},
	{Level: 3, Title: "Weekly Review", Subtitle: "7 Days After Study"},
	{Level: 4, Title: "Monthly Review", Subtitle: "30 Days After Study"},
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsDue reports whether a review scheduled at next falls on now's calendar
// day or earlier. A zero time is always due.
func IsDue(next, now time.Time) bool {
	if next.IsZero() {
		return true
	}
	return !StartOfDay(next.In(now.Location())).After(StartOfDay(now))
}

// DaysUntil returns the number of calendar days until next. Returns 0 when due.
func DaysUntil(next, now time.Time) int {
	if IsDue(next, now) {
		return 0
	}
	d := StartOfDay(next.In(now.Location())).Sub(StartOfDay(now))
	return int((d + 12*time.Hour) / (24 * time.Hour))
}
