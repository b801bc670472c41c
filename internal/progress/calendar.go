package progress

import (
	"iter"
	"time"

	"github.com/eastboundjoe/aviation-study-guide/internal/spacedrep"
)

// DefaultCalendarDays is the length of the activity window when none is given.
const DefaultCalendarDays = 365

// CalendarDay is the number of study sessions on one local calendar day.
type CalendarDay struct {
	Date  time.Time
	Count int
}

// ActivityCalendar yields daysBack consecutive days ending today, oldest
// first, with the number of sessions recorded on each. Sessions are
// bucketed by their calendar day in now's location. daysBack <= 0 means
// DefaultCalendarDays. The sequence is recomputed from history on every
// iteration.
func ActivityCalendar(history []StudySession, now time.Time, daysBack int) iter.Seq[CalendarDay] {
	if daysBack <= 0 {
		daysBack = DefaultCalendarDays
	}
	return func(yield func(CalendarDay) bool) {
		today := spacedrep.StartOfDay(now)
		counts := make(map[string]int, len(history))
		for _, s := range history {
			counts[s.Date.In(now.Location()).Format(time.DateOnly)]++
		}
		for i := daysBack - 1; i >= 0; i-- {
			d := today.AddDate(0, 0, -i)
			if !yield(CalendarDay{Date: d, Count: counts[d.Format(time.DateOnly)]}) {
				return
			}
		}
	}
}

// CalendarDays collects ActivityCalendar into a slice.
func CalendarDays(history []StudySession, now time.Time, daysBack int) []CalendarDay {
	if daysBack <= 0 {
		daysBack = DefaultCalendarDays
	}
	days := make([]CalendarDay, 0, daysBack)
	for d := range ActivityCalendar(history, now, daysBack) {
		days = append(days, d)
	}
	return days
}

// DaysStudied counts the days with at least one session.
func DaysStudied(days []CalendarDay) int {
	n := 0
	for _, d := range days {
		if d.Count > 0 {
			n++
		}
	}
	return n
}
