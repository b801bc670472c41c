package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/eastboundjoe/aviation-study-guide/internal/learner"
	"github.com/eastboundjoe/aviation-study-guide/internal/persist"
	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
	"github.com/eastboundjoe/aviation-study-guide/internal/spacedrep"
)

// maxCalendarDays bounds the ?days= query of the activity calendar.
const maxCalendarDays = 3 * progress.DefaultCalendarDays

type progressResponse struct {
	Identity   string             `json:"identity"`
	Progress   json.RawMessage    `json:"progress"`
	Stats      progress.Stats     `json:"stats"`
	SyncStatus persist.SyncStatus `json:"syncStatus"`
	Pending    int                `json:"pendingWrites"`
}

type outcomeRequest struct {
	BookTitle string `json:"bookTitle"`
	ChapterID *int   `json:"chapterId"`
	Success   bool   `json:"success"`
}

type chapterState struct {
	BookTitle    string     `json:"bookTitle"`
	ChapterID    int        `json:"chapterId"`
	ChapterTitle string     `json:"chapterTitle,omitempty"`
	Completed    bool       `json:"completed"`
	Level        int        `json:"level"`
	LevelLabel   string     `json:"levelLabel"`
	NextReview   *time.Time `json:"nextReview,omitempty"`
	Due          bool       `json:"due"`
	QuizScore    *int       `json:"quizScore,omitempty"`
}

type outcomeResponse struct {
	Chapter chapterState   `json:"chapter"`
	Stats   progress.Stats `json:"stats"`
}

type scheduleColumn struct {
	Level    int            `json:"level"`
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle"`
	Due      []chapterState `json:"due"`
}

type calendarDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type calendarResponse struct {
	Days        []calendarDay `json:"days"`
	DaysStudied int           `json:"daysStudied"`
}

// GetProgress returns the learner's full progress document with summary
// counters and the remote sync state.
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	l, ok := h.current(w, r)
	if !ok {
		return
	}
	snap := l.Tracker.Snapshot()
	doc, err := persist.Encode(snap)
	if err != nil {
		h.logger.Error("encode progress failed", zap.Error(err))
		Error(w, http.StatusInternalServerError, "could not encode progress")
		return
	}
	JSON(w, http.StatusOK, progressResponse{
		Identity:   l.Identity,
		Progress:   doc,
		Stats:      snap.Summarize(l.Tracker.Now()),
		SyncStatus: l.SyncStatus(),
		Pending:    l.Pending(),
	})
}

// RecordOutcome applies a pass or fail for one chapter.
func (h *Handler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	var req outcomeRequest
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ChapterID == nil {
		Error(w, http.StatusBadRequest, "chapterId is required")
		return
	}
	key := progress.Key{Book: req.BookTitle, Chapter: *req.ChapterID}
	if !key.Valid() {
		Error(w, http.StatusBadRequest, "bookTitle and a non-negative chapterId are required")
		return
	}

	l, ok := h.current(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, h.applyOutcome(r, l, key, req.Success, "manual"))
}

func (h *Handler) applyOutcome(r *http.Request, l *learner.Learner, key progress.Key, success bool, source string) outcomeResponse {
	return h.outcome(l, key, l.Tracker.RecordOutcome(r.Context(), key, success), success, source)
}

// outcome builds the response for an outcome already applied to snap.
func (h *Handler) outcome(l *learner.Learner, key progress.Key, snap *progress.LearnerProgress, success bool, source string) outcomeResponse {
	h.metrics.RecordOutcome(source, success)
	now := l.Tracker.Now()
	return outcomeResponse{
		Chapter: h.chapterState(snap, key, now),
		Stats:   snap.Summarize(now),
	}
}

// GetStats returns the dashboard counters.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	l, ok := h.current(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, l.Tracker.Snapshot().Summarize(l.Tracker.Now()))
}

// GetSchedule returns today's due reviews grouped into the level columns.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	l, ok := h.current(w, r)
	if !ok {
		return
	}
	snap := l.Tracker.Snapshot()
	now := l.Tracker.Now()

	cols := make([]scheduleColumn, 0, len(spacedrep.Columns))
	for _, c := range snap.Schedule(now) {
		due := make([]chapterState, 0, len(c.Due))
		for _, k := range c.Due {
			due = append(due, h.chapterState(snap, k, now))
		}
		cols = append(cols, scheduleColumn{
			Level:    c.Level,
			Title:    c.Title,
			Subtitle: c.Subtitle,
			Due:      due,
		})
	}
	JSON(w, http.StatusOK, cols)
}

// GetCalendar returns per-day session counts, oldest first. ?days defaults
// to a year.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	days := progress.DefaultCalendarDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxCalendarDays {
			Error(w, http.StatusBadRequest, "days must be between 1 and "+strconv.Itoa(maxCalendarDays))
			return
		}
		days = n
	}

	l, ok := h.current(w, r)
	if !ok {
		return
	}
	cal := progress.CalendarDays(l.Tracker.Snapshot().History, l.Tracker.Now(), days)
	out := calendarResponse{
		Days:        make([]calendarDay, 0, len(cal)),
		DaysStudied: progress.DaysStudied(cal),
	}
	for _, d := range cal {
		out.Days = append(out.Days, calendarDay{Date: d.Date.Format(time.DateOnly), Count: d.Count})
	}
	JSON(w, http.StatusOK, out)
}

func (h *Handler) chapterState(p *progress.LearnerProgress, key progress.Key, now time.Time) chapterState {
	rec := p.Record(key)
	s := chapterState{
		BookTitle:  key.Book,
		ChapterID:  key.Chapter,
		Completed:  rec.Completed,
		Level:      rec.Level,
		LevelLabel: spacedrep.Label(rec.Level),
		Due:        rec.Completed && spacedrep.IsDue(rec.NextReview, now),
	}
	if ch, ok := h.catalog.Chapter(key); ok {
		s.ChapterTitle = ch.Title
	}
	if !rec.NextReview.IsZero() {
		next := rec.NextReview
		s.NextReview = &next
	}
	if score, ok := p.QuizScores[key]; ok {
		s.QuizScore = &score
	}
	return s
}
