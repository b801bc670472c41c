// Package books lists the handbooks and their chapters and starts the study
// exercises.
package books

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/eastboundjoe/aviation-study-guide/internal/content"
	"github.com/eastboundjoe/aviation-study-guide/internal/router"
	"github.com/eastboundjoe/aviation-study-guide/internal/screen"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/shared"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/components"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/layout"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/theme"
)

// BooksScreen shows every book with its completion bar.
type BooksScreen struct {
	env        shared.Env
	books      []content.Book
	completion []float64
	cursor     int
}

var _ screen.Screen = (*BooksScreen)(nil)
var _ screen.KeyHintProvider = (*BooksScreen)(nil)
var _ screen.Refresher = (*BooksScreen)(nil)

// New creates a BooksScreen.
func New(env shared.Env) *BooksScreen {
	s := &BooksScreen{env: env, books: env.Catalog.Books()}
	s.Refresh()
	return s
}

func (s *BooksScreen) Init() tea.Cmd {
	return nil
}

// Refresh recomputes completion after a chapter screen closes.
func (s *BooksScreen) Refresh() tea.Cmd {
	snap := s.env.Tracker.Snapshot()
	s.completion = make([]float64, len(s.books))
	for i, b := range s.books {
		s.completion[i] = snap.BookCompletion(b.Title, b.ChapterIDs())
	}
	return nil
}

func (s *BooksScreen) Title() string {
	return "Books"
}

func (s *BooksScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Chapters"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *BooksScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.books)-1 {
			s.cursor++
		}
	case "enter":
		if len(s.books) > 0 {
			return s, router.Push(NewBook(s.env, s.books[s.cursor]))
		}
	case "esc":
		return s, router.Pop()
	}
	return s, nil
}

func (s *BooksScreen) View(width, height int) string {
	if len(s.books) == 0 {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\nNo books in the catalog.")
	}

	cw := min(width-4, 96)
	labelWidth := min(cw/2, 44)
	start := max(s.cursor-height+2, 0)

	var b strings.Builder
	b.WriteString("\n")
	for i := start; i < len(s.books) && i-start < height-1; i++ {
		book := s.books[i]
		cursor := "  "
		if i == s.cursor {
			cursor = theme.Selected.Render("▸ ")
		}
		bar := components.ProgressBar{
			Label:       book.Title,
			LabelWidth:  labelWidth,
			Percent:     s.completion[i],
			ShowPercent: true,
			Width:       cw - 14,
		}
		chapters := theme.Subtitle.Render(fmt.Sprintf("  %3d ch", len(book.Chapters)))
		b.WriteString(cursor + bar.View() + chapters + "\n")
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}
