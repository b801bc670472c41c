package components

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestMenu_SkipsDisabled(t *testing.T) {
	called := ""
	m := NewMenu([]MenuItem{
		{Label: "Off", Disabled: true},
		{Label: "Books", Action: func() tea.Cmd { called = "books"; return nil }},
		{Label: "Off too", Disabled: true},
		{Label: "History", Action: func() tea.Cmd { called = "history"; return nil }},
	})
	if m.Selected != 1 {
		t.Fatalf("Selected = %d, want 1", m.Selected)
	}

	m, _ = m.Update(specialKey(tea.KeyDown))
	if m.Selected != 3 {
		t.Errorf("Selected = %d, want 3", m.Selected)
	}
	m, _ = m.Update(specialKey(tea.KeyDown))
	if m.Selected != 3 {
		t.Errorf("Selected moved past the last item: %d", m.Selected)
	}

	m.Update(specialKey(tea.KeyEnter))
	if called != "history" {
		t.Errorf("called = %q, want history", called)
	}
}

func TestMultiChoice_LetterKeySubmits(t *testing.T) {
	mc := NewMultiChoice("Icing needs?", []string{"Dry air", "Visible moisture", "Sunlight"}, 1)

	mc, _ = mc.Update(keyPress('b'))
	if !mc.Submitted || mc.ChosenIndex != 1 {
		t.Fatalf("Submitted = %v, ChosenIndex = %d", mc.Submitted, mc.ChosenIndex)
	}
	if !mc.IsCorrect() {
		t.Error("IsCorrect() = false, want true")
	}

	mc, _ = mc.Update(keyPress('a'))
	if mc.ChosenIndex != 1 {
		t.Error("input after submit must be ignored")
	}
}

func TestMultiChoice_OutOfRangeLetter(t *testing.T) {
	mc := NewMultiChoice("?", []string{"Yes", "No"}, 0)
	mc, _ = mc.Update(keyPress('d'))
	if mc.Submitted {
		t.Error("a letter past the options must not submit")
	}
	mc, _ = mc.Update(specialKey(tea.KeyDown))
	mc, _ = mc.Update(specialKey(tea.KeyEnter))
	if mc.ChosenIndex != 1 || mc.IsCorrect() {
		t.Errorf("ChosenIndex = %d, IsCorrect = %v", mc.ChosenIndex, mc.IsCorrect())
	}
}

func TestHeatmap_Shape(t *testing.T) {
	// 2025-06-01 is a Sunday.
	now := time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)
	days := progress.CalendarDays(nil, now, 14)

	rows := strings.Split(Heatmap(days), "\n")
	if len(rows) != 8 {
		t.Fatalf("rows = %d, want 7 weekdays plus legend", len(rows))
	}
	for i, row := range rows[:7] {
		if got := strings.Count(row, heatCell); got != 2 {
			t.Errorf("row %d has %d cells, want 2", i, got)
		}
	}
}

func TestHeatmap_Empty(t *testing.T) {
	if got := Heatmap(nil); got != "" {
		t.Errorf("Heatmap(nil) = %q, want empty", got)
	}
}

func TestProgressBar_Width(t *testing.T) {
	bar := NewProgressBar("Weather Handbook", 0.5, true, 50)
	bar.LabelWidth = 10
	if w := lipgloss.Width(bar.View()); w != 50 {
		t.Errorf("width = %d, want 50", w)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Aviation Weather", 8); got != "Aviatio…" {
		t.Errorf("truncate = %q, want Aviatio…", got)
	}
	if got := truncate("Short", 8); got != "Short" {
		t.Errorf("truncate = %q, want Short", got)
	}
}
