package history

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/eastboundjoe/aviation-study-guide/internal/content"
	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/shared"
)

func TestHistory_NewestFirst(t *testing.T) {
	cat, err := content.New([]content.Book{{Title: "Weather Handbook", Chapters: []content.Chapter{{ID: 1, Title: "Introduction"}, {ID: 2, Title: "Weather Systems"}}}}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)
	tr := progress.NewTracker(nil, nil, progress.WithClock(func() time.Time { return now }))
	tr.RecordOutcome(context.Background(), progress.Key{Book: "Weather Handbook", Chapter: 1}, true)
	now = now.Add(time.Hour)
	tr.RecordOutcome(context.Background(), progress.Key{Book: "Weather Handbook", Chapter: 2}, false)

	s := New(shared.Env{Tracker: tr, Catalog: cat})
	if !strings.Contains(s.View(100, 20), "Loading") {
		t.Error("view should show loading before the snapshot arrives")
	}
	s.Update(s.Init()())

	if len(s.sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(s.sessions))
	}
	if s.sessions[0].Chapter != 2 {
		t.Errorf("first row is chapter %d, want the newest (2)", s.sessions[0].Chapter)
	}

	view := s.View(120, 20)
	if !strings.Contains(view, "Weather Systems") || !strings.Contains(view, "FAIL") {
		t.Errorf("view missing the latest session:\n%s", view)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !strings.Contains(s.View(120, 20), "now New") {
		t.Error("expanded row should show the chapter's level")
	}
}
