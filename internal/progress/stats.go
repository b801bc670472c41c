package progress

import (
	"slices"
	"time"

	"github.com/eastboundjoe/aviation-study-guide/internal/spacedrep"
)

// CountCompleted returns the number of attempted chapters.
func (p *LearnerProgress) CountCompleted() int {
	n := 0
	for _, r := range p.Records {
		if r.Completed {
			n++
		}
	}
	return n
}

// CountDueToday returns the number of attempted chapters whose review date
// is today or earlier. Overdue chapters count.
func (p *LearnerProgress) CountDueToday(now time.Time) int {
	n := 0
	for _, r := range p.Records {
		if r.Completed && spacedrep.IsDue(r.NextReview, now) {
			n++
		}
	}
	return n
}

// CountMastered returns the number of chapters at the top level.
func (p *LearnerProgress) CountMastered() int {
	n := 0
	for _, r := range p.Records {
		if r.Level == spacedrep.MaxLevel {
			n++
		}
	}
	return n
}

// DueAtLevel returns the due chapters sitting at exactly level, sorted by
// book then chapter.
func (p *LearnerProgress) DueAtLevel(level int, now time.Time) []Key {
	var keys []Key
	for k, r := range p.Records {
		if r.Completed && r.Level == level && spacedrep.IsDue(r.NextReview, now) {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, Key.Compare)
	return keys
}

// DueKeys returns every due chapter, whatever its level, sorted by book
// then chapter. Its length equals CountDueToday.
func (p *LearnerProgress) DueKeys(now time.Time) []Key {
	var keys []Key
	for k, r := range p.Records {
		if r.Completed && spacedrep.IsDue(r.NextReview, now) {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, Key.Compare)
	return keys
}

// ScheduleColumn is one bucket of the review schedule.
type ScheduleColumn struct {
	spacedrep.Column
	Due []Key
}

// Schedule partitions today's due reviews into the fixed level columns.
func (p *LearnerProgress) Schedule(now time.Time) []ScheduleColumn {
	cols := make([]ScheduleColumn, 0, len(spacedrep.Columns))
	for _, c := range spacedrep.Columns {
		cols = append(cols, ScheduleColumn{Column: c, Due: p.DueAtLevel(c.Level, now)})
	}
	return cols
}

// BookCompletion returns the fraction of chapters attempted for book, in
// [0, 1]. An empty chapter list yields 0.
func (p *LearnerProgress) BookCompletion(book string, chapters []int) float64 {
	if len(chapters) == 0 {
		return 0
	}
	done := 0
	for _, ch := range chapters {
		if p.Records[Key{Book: book, Chapter: ch}].Completed {
			done++
		}
	}
	return float64(done) / float64(len(chapters))
}

// Stats summarizes the dashboard counters.
type Stats struct {
	Completed  int `json:"completed"`
	DueToday   int `json:"dueToday"`
	Mastered   int `json:"mastered"`
	Sessions   int `json:"sessions"`
	DaysActive int `json:"daysActive"`
}

// Summarize computes Stats as of now.
func (p *LearnerProgress) Summarize(now time.Time) Stats {
	return Stats{
		Completed:  p.CountCompleted(),
		DueToday:   p.CountDueToday(now),
		Mastered:   p.CountMastered(),
		Sessions:   len(p.History),
		DaysActive: DaysStudied(CalendarDays(p.History, now, DefaultCalendarDays)),
	}
}
