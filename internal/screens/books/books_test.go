package books

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/eastboundjoe/aviation-study-guide/internal/content"
	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
	"github.com/eastboundjoe/aviation-study-guide/internal/router"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/checkpoint"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/notice"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/quiz"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/shared"
)

const weather = "Weather Handbook"

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

type testEnv struct {
	shared.Env
	now time.Time
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	cat, err := content.New(
		[]content.Book{
			{Title: weather, Chapters: []content.Chapter{{ID: 1, Title: "Introduction"}, {ID: 2, Title: "Weather Systems"}, {ID: 3, Title: "Hazards"}}},
			{Title: "Airplane Flying Handbook", Chapters: []content.Chapter{{ID: 1, Title: "Introduction to Flight Training"}}},
		},
		[]content.Checkpoint{{BookTitle: weather, ChapterID: 2, KeyPoints: []content.KeyPoint{{ID: "kp1", Text: "Fronts", Keywords: []string{"front"}}}}},
		[]content.Quiz{{BookTitle: weather, ChapterID: 3, Questions: []content.Question{{ID: "q1", Question: "?", Options: []string{"a", "b"}}}}},
	)
	if err != nil {
		t.Fatal(err)
	}
	env := &testEnv{now: time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)}
	env.Env = shared.Env{
		Tracker: progress.NewTracker(nil, nil, progress.WithClock(func() time.Time { return env.now })),
		Catalog: cat,
	}
	return env
}

func pushed(t *testing.T, cmd tea.Cmd) any {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	return msg.Screen
}

func TestChapters_EnterPicksExercise(t *testing.T) {
	env := newEnv(t)
	book, _ := env.Catalog.Book(weather)
	s := NewBook(env.Env, book)

	if got := s.rows[s.cursor].key.Chapter; got != 1 {
		t.Fatalf("cursor on chapter %d, want 1", got)
	}
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if _, ok := pushed(t, cmd).(*notice.NoticeScreen); !ok {
		t.Error("a chapter without exercises should show a notice")
	}

	s.Update(specialKey(tea.KeyDown))
	_, cmd = s.Update(specialKey(tea.KeyEnter))
	if _, ok := pushed(t, cmd).(*checkpoint.CheckpointScreen); !ok {
		t.Error("enter on chapter 2 should open its checkpoint")
	}

	s.Update(specialKey(tea.KeyDown))
	_, cmd = s.Update(specialKey(tea.KeyEnter))
	if _, ok := pushed(t, cmd).(*quiz.QuizScreen); !ok {
		t.Error("enter on chapter 3 should open its quiz")
	}
}

func TestChapters_ManualOutcome(t *testing.T) {
	env := newEnv(t)
	book, _ := env.Catalog.Book(weather)
	s := NewBook(env.Env, book)

	s.Update(keyPress('p'))
	rec := env.Tracker.Snapshot().Record(progress.Key{Book: weather, Chapter: 1})
	if !rec.Completed || rec.Level != 1 {
		t.Errorf("record = %+v, want completed at level 1", rec)
	}
	if !strings.Contains(s.View(120, 20), "1-Day Review") {
		t.Error("row should show the new level")
	}

	s.Update(keyPress('f'))
	rec = env.Tracker.Snapshot().Record(progress.Key{Book: weather, Chapter: 1})
	if rec.Level != 0 {
		t.Errorf("level = %d, want 0 after a failure", rec.Level)
	}
}

func TestDue_RefreshDropsReviewed(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	env.Tracker.RecordOutcome(ctx, progress.Key{Book: weather, Chapter: 2}, true)
	env.Tracker.RecordOutcome(ctx, progress.Key{Book: "Airplane Flying Handbook", Chapter: 1}, true)
	env.now = env.now.AddDate(0, 0, 1)

	s := NewDue(env.Env)
	if len(s.rows) != 4 {
		t.Fatalf("rows = %d, want 2 headers and 2 chapters", len(s.rows))
	}
	if s.rows[s.cursor].kind != rowChapter {
		t.Fatal("cursor should start on a chapter")
	}
	if got := s.rows[s.cursor].key.Book; got != "Airplane Flying Handbook" {
		t.Errorf("first due book = %q, want sorted order", got)
	}

	s.Update(keyPress('p'))
	if len(s.rows) != 2 {
		t.Fatalf("rows = %d, want 1 header and 1 chapter", len(s.rows))
	}
	if got := s.rows[s.cursor].key; got != (progress.Key{Book: weather, Chapter: 2}) {
		t.Errorf("cursor on %v, want the remaining chapter", got)
	}

	s.Update(keyPress('p'))
	if s.cursor != -1 || !strings.Contains(s.View(100, 20), "All caught up") {
		t.Error("an empty due list should say so")
	}
	s.Update(keyPress('p'))
	if n := len(env.Tracker.Snapshot().History); n != 4 {
		t.Errorf("history = %d, want 4", n)
	}
}

func TestBooks_RefreshCompletion(t *testing.T) {
	env := newEnv(t)
	s := New(env.Env)
	if s.completion[0] != 0 {
		t.Fatalf("completion = %v, want 0", s.completion[0])
	}
	env.Tracker.RecordOutcome(context.Background(), progress.Key{Book: weather, Chapter: 1}, true)
	s.Refresh()
	if got := s.completion[0]; got < 0.33 || got > 0.34 {
		t.Errorf("completion = %v, want 1/3", got)
	}

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cs, ok := pushed(t, cmd).(*ChaptersScreen); !ok || cs.Title() != weather {
		t.Error("enter should open the book's chapters")
	}
}
