package history

import (
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
	"github.com/eastboundjoe/aviation-study-guide/internal/router"
	"github.com/eastboundjoe/aviation-study-guide/internal/screen"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/shared"
	"github.com/eastboundjoe/aviation-study-guide/internal/spacedrep"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/layout"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/theme"
)

type historyLoadedMsg struct {
	Snapshot *progress.LearnerProgress
}

// HistoryScreen lists recorded study sessions, newest first.
type HistoryScreen struct {
	env      shared.Env
	sessions []progress.StudySession
	snap     *progress.LearnerProgress
	selected int
	expanded map[int]bool
	loaded   bool
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(env shared.Env) *HistoryScreen {
	return &HistoryScreen{
		env:      env,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	tracker := s.env.Tracker
	return func() tea.Msg {
		return historyLoadedMsg{Snapshot: tracker.Snapshot()}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.snap = msg.Snapshot
		s.sessions = slices.Clone(msg.Snapshot.History)
		slices.Reverse(s.sessions)
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, router.Pop()
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No study sessions yet. Pick a book and start studying!")
	}

	var lines []string
	for i, sess := range s.sessions {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}

		result := theme.Correct.Render("PASS")
		if !sess.Success {
			result = theme.Incorrect.Render("FAIL")
		}
		line := style.Render(fmt.Sprintf("%s%s  %s  ",
			prefix, sess.Date.Local().Format("Jan 02, 2006 15:04"), s.env.Describe(sess.Key()))) + result
		lines = append(lines, line)

		if s.expanded[i] {
			rec := s.snap.Record(sess.Key())
			detail := fmt.Sprintf("    now %s", spacedrep.Label(rec.Level))
			if !rec.NextReview.IsZero() {
				detail += ", next review " + rec.NextReview.Local().Format("Mon Jan 2")
			}
			if score, ok := s.snap.QuizScores[sess.Key()]; ok {
				detail += fmt.Sprintf(", last quiz %d%%", score)
			}
			lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(detail))
		}
	}

	// Keep the selection visible.
	start := 0
	if height > 0 && s.selected >= height-1 {
		start = s.selected - height + 2
	}
	lines = lines[min(start, len(lines)):]
	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}
	return "\n" + strings.Join(lines, "\n")
}
