package books

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/eastboundjoe/aviation-study-guide/internal/content"
	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
	"github.com/eastboundjoe/aviation-study-guide/internal/router"
	"github.com/eastboundjoe/aviation-study-guide/internal/screen"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/checkpoint"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/notice"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/quiz"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/shared"
	"github.com/eastboundjoe/aviation-study-guide/internal/spacedrep"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/layout"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/theme"
)

type rowKind int

const (
	rowBookHeader rowKind = iota
	rowChapter
)

type row struct {
	kind  rowKind
	key   progress.Key
	title string
}

// keySource lists the chapters to show. It is re-run on every refresh.
type keySource func(snap *progress.LearnerProgress, now time.Time) []progress.Key

// ChaptersScreen lists chapters grouped by book with their review state.
type ChaptersScreen struct {
	env          shared.Env
	title        string
	source       keySource
	rows         []row
	cursor       int
	scrollOffset int

	snap *progress.LearnerProgress
	now  time.Time
}

var _ screen.Screen = (*ChaptersScreen)(nil)
var _ screen.KeyHintProvider = (*ChaptersScreen)(nil)
var _ screen.Refresher = (*ChaptersScreen)(nil)

// NewBook lists every chapter of book.
func NewBook(env shared.Env, book content.Book) *ChaptersScreen {
	keys := make([]progress.Key, 0, len(book.Chapters))
	for _, id := range book.ChapterIDs() {
		keys = append(keys, progress.Key{Book: book.Title, Chapter: id})
	}
	return newChapters(env, book.Title, func(*progress.LearnerProgress, time.Time) []progress.Key { return keys })
}

// NewDue lists the chapters due for review today, across all books.
func NewDue(env shared.Env) *ChaptersScreen {
	return newChapters(env, "Due Today", (*progress.LearnerProgress).DueKeys)
}

func newChapters(env shared.Env, title string, source keySource) *ChaptersScreen {
	s := &ChaptersScreen{env: env, title: title, source: source}
	s.Refresh()
	return s
}

func (s *ChaptersScreen) Init() tea.Cmd {
	return nil
}

// Refresh reloads progress and rebuilds the rows, keeping the cursor near
// where it was.
func (s *ChaptersScreen) Refresh() tea.Cmd {
	s.snap = s.env.Tracker.Snapshot()
	s.now = s.env.Tracker.Now()

	s.rows = s.rows[:0]
	book := ""
	for _, k := range s.source(s.snap, s.now) {
		if k.Book != book {
			book = k.Book
			s.rows = append(s.rows, row{kind: rowBookHeader, key: progress.Key{Book: book}})
		}
		s.rows = append(s.rows, row{kind: rowChapter, key: k, title: s.env.ChapterTitle(k)})
	}

	if len(s.rows) == 0 {
		s.cursor = -1
		return nil
	}
	// A header is always followed by one of its chapters.
	s.cursor = min(max(s.cursor, 0), len(s.rows)-1)
	if s.rows[s.cursor].kind != rowChapter {
		s.moveCursor(1)
	}
	return nil
}

func (s *ChaptersScreen) Title() string {
	return s.title
}

func (s *ChaptersScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Study"},
		{Key: "R", Description: "Recall"},
		{Key: "Q", Description: "Quiz"},
		{Key: "P/F", Description: "Mark pass/fail"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ChaptersScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "up", "k":
		s.moveCursor(-1)
	case "down", "j":
		s.moveCursor(1)
	case "esc":
		return s, router.Pop()
	case "enter":
		return s, s.study()
	case "r":
		return s, s.recall()
	case "q":
		return s, s.quiz()
	case "p":
		s.record(true)
	case "f":
		s.record(false)
	}
	return s, nil
}

// moveCursor moves by delta, skipping book headers. With no rows the cursor
// stays at -1.
func (s *ChaptersScreen) moveCursor(delta int) {
	next := s.cursor + delta
	for next >= 0 && next < len(s.rows) {
		if s.rows[next].kind == rowChapter {
			s.cursor = next
			return
		}
		next += delta
	}
	if s.cursor < 0 || s.cursor >= len(s.rows) || s.rows[s.cursor].kind != rowChapter {
		s.cursor = -1
	}
}

func (s *ChaptersScreen) selected() (progress.Key, bool) {
	if s.cursor < 0 || s.cursor >= len(s.rows) || s.rows[s.cursor].kind != rowChapter {
		return progress.Key{}, false
	}
	return s.rows[s.cursor].key, true
}

// study opens the chapter's checkpoint, or its quiz when it has none.
func (s *ChaptersScreen) study() tea.Cmd {
	key, ok := s.selected()
	if !ok {
		return nil
	}
	if _, ok := s.env.Catalog.Checkpoint(key); ok {
		return s.recall()
	}
	if _, ok := s.env.Catalog.Quiz(key); ok {
		return s.quiz()
	}
	return router.Push(notice.New("No Exercise",
		"This chapter has no checkpoint or quiz yet.\nStudy it from the handbook, then press P or F to record how it went."))
}

func (s *ChaptersScreen) recall() tea.Cmd {
	key, ok := s.selected()
	if !ok {
		return nil
	}
	cp, ok := s.env.Catalog.Checkpoint(key)
	if !ok {
		return router.Push(notice.New("No Checkpoint", "This chapter has no recall checkpoint."))
	}
	return router.Push(checkpoint.New(s.env, cp))
}

func (s *ChaptersScreen) quiz() tea.Cmd {
	key, ok := s.selected()
	if !ok {
		return nil
	}
	q, ok := s.env.Catalog.Quiz(key)
	if !ok {
		return router.Push(notice.New("No Quiz", "This chapter has no quiz."))
	}
	return router.Push(quiz.New(s.env, q))
}

// record applies a manual outcome to the selected chapter.
func (s *ChaptersScreen) record(success bool) {
	key, ok := s.selected()
	if !ok {
		return
	}
	s.env.Tracker.RecordOutcome(context.Background(), key, success)
	s.Refresh()
}

func (s *ChaptersScreen) View(width, height int) string {
	if len(s.rows) == 0 {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\nNothing here. All caught up!")
	}
	s.adjustScroll(height)

	var lines []string
	for i := s.scrollOffset; i < len(s.rows) && len(lines) < height; i++ {
		r := s.rows[i]
		switch r.kind {
		case rowBookHeader:
			lines = append(lines, lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
				Padding(0, 0, 0, 2).Render(strings.ToUpper(r.key.Book)))
		case rowChapter:
			lines = append(lines, s.renderChapterRow(r, i == s.cursor, width))
		}
	}
	return strings.Join(lines, "\n")
}

// adjustScroll keeps the cursor and its book header in view.
func (s *ChaptersScreen) adjustScroll(height int) {
	if height <= 0 || s.cursor < 0 {
		return
	}
	top := s.cursor
	if top > 0 && s.rows[top-1].kind == rowBookHeader {
		top--
	}
	if top < s.scrollOffset {
		s.scrollOffset = top
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

func (s *ChaptersScreen) renderChapterRow(r row, selected bool, width int) string {
	rec := s.snap.Record(r.key)

	nameWidth := max(width-62, 12)
	name := r.title
	if len([]rune(name)) > nameWidth {
		name = string([]rune(name)[:nameWidth-1]) + "…"
	}

	nameStyle := theme.Unselected
	cursor := "  "
	if selected {
		nameStyle = theme.Selected
		cursor = "▸ "
	}

	level := "—"
	status, statusStyle := "", theme.Subtitle
	if rec.Completed {
		level = spacedrep.Label(rec.Level)
		switch days := spacedrep.DaysUntil(rec.NextReview, s.now); days {
		case 0:
			status, statusStyle = "due", lipgloss.NewStyle().Foreground(theme.Accent)
		case 1:
			status = "tomorrow"
		default:
			status = fmt.Sprintf("in %d days", days)
		}
	}

	var marks []string
	if _, ok := s.env.Catalog.Checkpoint(r.key); ok {
		marks = append(marks, "R")
	}
	if _, ok := s.env.Catalog.Quiz(r.key); ok {
		mark := "Q"
		if score, ok := s.snap.QuizScores[r.key]; ok {
			mark = fmt.Sprintf("Q %d%%", score)
		}
		marks = append(marks, mark)
	}

	return fmt.Sprintf("  %sCh %2d  %s  %s  %s  %s",
		cursor,
		r.key.Chapter,
		nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, name)),
		lipgloss.NewStyle().Foreground(theme.LevelColor(rec.Level)).Render(fmt.Sprintf("%-14s", level)),
		statusStyle.Render(fmt.Sprintf("%-10s", status)),
		theme.Subtitle.Render(strings.Join(marks, " ")),
	)
}
