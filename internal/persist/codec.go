package persist

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
	"github.com/eastboundjoe/aviation-study-guide/internal/spacedrep"
)

// isoMillis matches JavaScript's Date.prototype.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// document is the serialized LearnerProgress. Map keys are Key.String().
type document struct {
	CompletedChapters map[string]bool   `json:"completedChapters"`
	ReviewDates       map[string]string `json:"reviewDates"`
	ReviewLevels      map[string]int    `json:"reviewLevels"`
	QuizScores        map[string]int    `json:"quizScores"`
	StudyHistory      []historyEntry    `json:"studyHistory"`
}

type historyEntry struct {
	Date      string `json:"date"`
	BookTitle string `json:"bookTitle"`
	ChapterID int    `json:"chapterId"`
	Success   bool   `json:"success"`
}

// Encode serializes p as the device-store JSON document.
func Encode(p *progress.LearnerProgress) ([]byte, error) {
	b, err := json.Marshal(toDocument(p))
	if err != nil {
		return nil, fmt.Errorf("encode progress: %w", err)
	}
	return b, nil
}

// Decode parses a device-store JSON document. Entries with malformed keys
// are skipped, unparseable dates become zero (always due), and levels are
// clamped into range. Only a payload that is not a JSON object fails.
func Decode(b []byte) (*progress.LearnerProgress, error) {
	var d document
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return fromDocument(d), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(isoMillis)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func toDocument(p *progress.LearnerProgress) document {
	d := document{
		CompletedChapters: make(map[string]bool),
		ReviewDates:       make(map[string]string),
		ReviewLevels:      make(map[string]int),
		QuizScores:        make(map[string]int),
		StudyHistory:      make([]historyEntry, 0),
	}
	if p == nil {
		return d
	}
	for k, r := range p.Records {
		ks := k.String()
		if r.Completed {
			d.CompletedChapters[ks] = true
		}
		if !r.NextReview.IsZero() {
			d.ReviewDates[ks] = formatTime(r.NextReview)
		}
		d.ReviewLevels[ks] = r.Level
	}
	for k, score := range p.QuizScores {
		d.QuizScores[k.String()] = score
	}
	for _, s := range p.History {
		d.StudyHistory = append(d.StudyHistory, historyEntry{
			Date:      formatTime(s.Date),
			BookTitle: s.Book,
			ChapterID: s.Chapter,
			Success:   s.Success,
		})
	}
	return d
}

func fromDocument(d document) *progress.LearnerProgress {
	p := progress.New()

	update := func(ks string, fn func(*progress.MasteryRecord)) {
		k, err := progress.ParseKey(ks)
		if err != nil {
			return
		}
		r := p.Records[k]
		fn(&r)
		p.Records[k] = r
	}
	for ks, done := range d.CompletedChapters {
		update(ks, func(r *progress.MasteryRecord) { r.Completed = done })
	}
	for ks, date := range d.ReviewDates {
		update(ks, func(r *progress.MasteryRecord) { r.NextReview = parseTime(date) })
	}
	for ks, level := range d.ReviewLevels {
		update(ks, func(r *progress.MasteryRecord) { r.Level = spacedrep.Clamp(level) })
	}
	for ks, score := range d.QuizScores {
		if k, err := progress.ParseKey(ks); err == nil {
			p.QuizScores[k] = score
		}
	}
	for _, h := range d.StudyHistory {
		p.History = append(p.History, progress.StudySession{
			Date:    parseTime(h.Date),
			Book:    h.BookTitle,
			Chapter: h.ChapterID,
			Success: h.Success,
		})
	}
	return p
}
