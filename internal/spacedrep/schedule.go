package spacedrep

import "time"

// Intervals is the review interval in days for each mastery level.
// Level 0 is due the same day; a mastered chapter (level 5) still
// resurfaces quarterly.
var Intervals = [...]int{0, 1, 3, 7, 30, 90}

const (
	// MinLevel is the level of a new chapter, or one failed back to the start.
	MinLevel = 0

	// MaxLevel is the mastered ceiling.
	MaxLevel = len(Intervals) - 1
)

// Clamp forces level into [MinLevel, MaxLevel].
func Clamp(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// NextLevel walks one rung up on success and one rung down on failure.
// There is no "stay" outcome.
func NextLevel(level int, success bool) int {
	level = Clamp(level)
	if success {
		return Clamp(level + 1)
	}
	return Clamp(level - 1)
}

// IntervalDays returns the interval for level, clamping out-of-range input.
func IntervalDays(level int) int {
	return Intervals[Clamp(level)]
}

// NextReview returns now plus the interval for level, in calendar days.
func NextReview(now time.Time, level int) time.Time {
	return now.AddDate(0, 0, IntervalDays(level))
}
