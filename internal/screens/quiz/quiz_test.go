package quiz

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/eastboundjoe/aviation-study-guide/internal/content"
	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
	"github.com/eastboundjoe/aviation-study-guide/internal/router"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/shared"
)

var testNow = time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)

var hazards = progress.Key{Book: "Weather Handbook", Chapter: 3}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testScreen(t *testing.T) (*QuizScreen, *progress.Tracker) {
	t.Helper()
	q := content.Quiz{
		BookTitle: hazards.Book,
		ChapterID: hazards.Chapter,
		Questions: []content.Question{
			{ID: "q1", Question: "Most dangerous?", Options: []string{"Thunderstorm", "Haze"}, CorrectAnswer: 0, Explanation: "Thunderstorms carry every hazard."},
			{ID: "q2", Question: "Icing needs?", Options: []string{"Dry air", "Visible moisture"}, CorrectAnswer: 1},
		},
	}
	cat, err := content.New(
		[]content.Book{{Title: hazards.Book, Chapters: []content.Chapter{{ID: 3, Title: "Hazards"}}}},
		nil, []content.Quiz{q})
	if err != nil {
		t.Fatal(err)
	}
	tr := progress.NewTracker(nil, nil, progress.WithClock(func() time.Time { return testNow }))
	return New(shared.Env{Tracker: tr, Catalog: cat}, q), tr
}

func TestQuiz_AllCorrectPasses(t *testing.T) {
	s, tr := testScreen(t)

	s.Update(keyPress('a'))
	if !s.mc.Submitted {
		t.Fatal("letter key should submit")
	}
	if !strings.Contains(s.View(100, 30), "Thunderstorms carry every hazard.") {
		t.Error("explanation should show after answering")
	}
	s.Update(keyPress(' '))
	if s.current != 1 {
		t.Fatalf("current = %d, want 1", s.current)
	}
	s.Update(keyPress('b'))
	s.Update(keyPress(' '))

	if !s.finished || !s.result.Passed {
		t.Fatalf("finished = %v passed = %v", s.finished, s.result.Passed)
	}
	snap := tr.Snapshot()
	if got := snap.QuizScores[hazards]; got != 100 {
		t.Errorf("quiz score = %d, want 100", got)
	}
	if got := snap.Record(hazards).Level; got != 1 {
		t.Errorf("level = %d, want 1", got)
	}
	if !strings.Contains(s.View(100, 30), "2 of 2 correct") {
		t.Error("summary should show the score")
	}

	_, cmd := s.Update(keyPress('x'))
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("any key on the summary should pop")
	}
}

func TestQuiz_HalfCorrectFails(t *testing.T) {
	s, tr := testScreen(t)

	s.Update(specialKey(tea.KeyEnter)) // A, correct
	s.Update(keyPress(' '))
	s.Update(specialKey(tea.KeyEnter)) // A, wrong
	s.Update(keyPress(' '))

	if s.result.Passed || s.result.Percent() != 50 {
		t.Errorf("result = %+v, want 50%% fail", s.result)
	}
	snap := tr.Snapshot()
	if snap.QuizScores[hazards] != 50 {
		t.Errorf("quiz score = %d, want 50", snap.QuizScores[hazards])
	}
	if len(snap.History) != 1 || snap.History[0].Success {
		t.Errorf("history = %+v, want one failed session", snap.History)
	}
}

func TestQuiz_EscapeRecordsNothing(t *testing.T) {
	s, tr := testScreen(t)
	_, cmd := s.Update(specialKey(tea.KeyEscape))
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("esc should pop")
	}
	if snap := tr.Snapshot(); len(snap.History) != 0 || len(snap.QuizScores) != 0 {
		t.Errorf("snapshot = %+v, want nothing recorded", snap)
	}
}
