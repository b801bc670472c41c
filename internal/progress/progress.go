package progress

import (
	"maps"
	"slices"
	"time"

	"github.com/eastboundjoe/aviation-study-guide/internal/spacedrep"
)

// MasteryRecord is the review state of one chapter.
type MasteryRecord struct {
	// Completed is true once the chapter has been attempted, pass or fail.
	Completed  bool
	Level      int
	NextReview time.Time
}

// StudySession is one recorded outcome. Sessions are append-only.
type StudySession struct {
	Date    time.Time
	Book    string
	Chapter int
	Success bool
}

// Key returns the chapter key of the session.
func (s StudySession) Key() Key {
	return Key{Book: s.Book, Chapter: s.Chapter}
}

// LearnerProgress is everything known about one learner: a mastery record
// per chapter, optional quiz scores, and the ordered study history.
type LearnerProgress struct {
	Records    map[Key]MasteryRecord
	QuizScores map[Key]int
	History    []StudySession
}

// New returns an empty LearnerProgress.
func New() *LearnerProgress {
	return &LearnerProgress{
		Records:    make(map[Key]MasteryRecord),
		QuizScores: make(map[Key]int),
	}
}

// Clone returns a deep copy of p.
func (p *LearnerProgress) Clone() *LearnerProgress {
	if p == nil {
		return New()
	}
	c := &LearnerProgress{
		Records:    maps.Clone(p.Records),
		QuizScores: maps.Clone(p.QuizScores),
		History:    slices.Clone(p.History),
	}
	if c.Records == nil {
		c.Records = make(map[Key]MasteryRecord)
	}
	if c.QuizScores == nil {
		c.QuizScores = make(map[Key]int)
	}
	return c
}

// Record returns the mastery record for key. Unknown chapters return the
// zero record (level 0, not completed).
func (p *LearnerProgress) Record(key Key) MasteryRecord {
	return p.Records[key]
}

// IsEmpty reports whether nothing has been recorded yet.
func (p *LearnerProgress) IsEmpty() bool {
	return p == nil || (len(p.Records) == 0 && len(p.QuizScores) == 0 && len(p.History) == 0)
}

// apply performs one outcome update in place and returns the appended session.
func (p *LearnerProgress) apply(key Key, success bool, now time.Time) StudySession {
	rec := p.Records[key]
	rec.Level = spacedrep.NextLevel(rec.Level, success)
	rec.NextReview = spacedrep.NextReview(now, rec.Level)
	rec.Completed = true
	p.Records[key] = rec

	s := StudySession{Date: now, Book: key.Book, Chapter: key.Chapter, Success: success}
	p.History = append(p.History, s)
	return s
}
