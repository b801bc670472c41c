// Package dashboard is the root screen: counters, the review schedule, the
// activity calendar and per-book progress.
package dashboard

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
	"github.com/eastboundjoe/aviation-study-guide/internal/router"
	"github.com/eastboundjoe/aviation-study-guide/internal/screen"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/books"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/checkpoint"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/history"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/notice"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/shared"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/components"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/layout"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/theme"
)

// calendarWeeks is how much activity the heatmap shows.
const calendarWeeks = 12

const (
	itemBooks = iota
	itemDue
	itemRandom
	itemHistory
	itemQuit
)

// DashboardScreen is the home screen.
type DashboardScreen struct {
	env  shared.Env
	menu components.Menu

	stats    progress.Stats
	schedule []progress.ScheduleColumn
	calendar []progress.CalendarDay
	bookPct  []float64
}

var _ screen.Screen = (*DashboardScreen)(nil)
var _ screen.KeyHintProvider = (*DashboardScreen)(nil)
var _ screen.Refresher = (*DashboardScreen)(nil)

// New creates the dashboard.
func New(env shared.Env) *DashboardScreen {
	d := &DashboardScreen{env: env}
	d.menu = components.NewMenu([]components.MenuItem{
		itemBooks: {Label: "Study Books", Action: func() tea.Cmd {
			return router.Push(books.New(env))
		}},
		itemDue: {Label: "Review Due", Action: func() tea.Cmd {
			return router.Push(books.NewDue(env))
		}},
		itemRandom: {Label: "Random Review", Action: d.randomReview},
		itemHistory: {Label: "History", Action: func() tea.Cmd {
			return router.Push(history.New(env))
		}},
		itemQuit: {Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	})
	d.Refresh()
	return d
}

func (d *DashboardScreen) Init() tea.Cmd {
	return nil
}

// Refresh recomputes every panel from a fresh snapshot.
func (d *DashboardScreen) Refresh() tea.Cmd {
	snap := d.env.Tracker.Snapshot()
	now := d.env.Tracker.Now()

	d.stats = snap.Summarize(now)
	d.schedule = snap.Schedule(now)
	d.calendar = progress.CalendarDays(snap.History, now, calendarDays(now))

	all := d.env.Catalog.Books()
	d.bookPct = make([]float64, len(all))
	for i, b := range all {
		d.bookPct[i] = snap.BookCompletion(b.Title, b.ChapterIDs())
	}

	d.menu.Items[itemDue].Detail = fmt.Sprintf("(%d)", d.stats.DueToday)
	d.menu.Items[itemDue].Disabled = d.stats.DueToday == 0
	if d.menu.Selected == itemDue && d.stats.DueToday == 0 {
		d.menu.Selected = itemBooks
	}
	return nil
}

// calendarDays covers whole weeks ending with the week containing now.
func calendarDays(now time.Time) int {
	return (calendarWeeks-1)*7 + int(now.Weekday()) + 1
}

func (d *DashboardScreen) randomReview() tea.Cmd {
	cp, ok := d.env.RandomCheckpoint()
	if !ok {
		return router.Push(notice.New("Random Review", "There are no checkpoints to review yet."))
	}
	return router.Push(checkpoint.New(d.env, cp))
}

func (d *DashboardScreen) Title() string {
	return "Dashboard"
}

func (d *DashboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (d *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	d.menu, cmd = d.menu.Update(msg)
	return d, cmd
}

func (d *DashboardScreen) View(width, height int) string {
	cw := width - 2
	compact := layout.IsCompactWidth(width)

	sections := []string{
		d.renderStats(cw),
		d.renderSchedule(cw, compact),
	}

	lower := d.renderBooks(cw / 2)
	if !compact && height >= 34 {
		lower = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(cw/2).Render(d.renderCalendar()),
			lower)
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(28).Render(d.menu.View()),
		lower))

	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(sections, "\n"))
}

func (d *DashboardScreen) renderStats(width int) string {
	card := func(value int, caption string, accent color.Color) func(int) string {
		return func(w int) string {
			return components.StatCard(fmt.Sprint(value), caption, accent, w)
		}
	}
	due := theme.Success
	if d.stats.DueToday > 0 {
		due = theme.Accent
	}
	return components.StatRow(width,
		card(d.stats.Completed, "Chapters Studied", theme.Primary),
		card(d.stats.DueToday, "Due Today", due),
		card(d.stats.Mastered, "Mastered", theme.Success),
		card(d.stats.DaysActive, "Days Active", theme.Primary),
	)
}

// renderSchedule draws one column per review level with the chapters due
// in it today.
func (d *DashboardScreen) renderSchedule(width int, compact bool) string {
	colWidth := max(width/len(d.schedule)-1, 16)
	maxRows := 4
	if compact {
		maxRows = 2
	}

	cols := make([]string, 0, len(d.schedule))
	for _, c := range d.schedule {
		var b strings.Builder
		b.WriteString(lipgloss.NewStyle().Foreground(theme.LevelColor(c.Level)).Bold(true).Render(c.Title))
		b.WriteString("\n")
		b.WriteString(theme.Subtitle.Render(c.Subtitle))
		b.WriteString("\n")
		if len(c.Due) == 0 {
			b.WriteString(theme.Hint.Render("nothing due"))
		}
		for i, k := range c.Due {
			if i == maxRows {
				b.WriteString(theme.Subtitle.Render(fmt.Sprintf("+%d more", len(c.Due)-maxRows)))
				break
			}
			label := fmt.Sprintf("%s %d", abbreviate(k.Book), k.Chapter)
			b.WriteString(theme.Body.Render(label))
			b.WriteString("\n")
		}
		cols = append(cols, theme.Card.Width(colWidth).Render(strings.TrimRight(b.String(), "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (d *DashboardScreen) renderCalendar() string {
	return theme.Subtitle.Render(fmt.Sprintf("Last %d weeks", calendarWeeks)) + "\n" +
		components.Heatmap(d.calendar)
}

func (d *DashboardScreen) renderBooks(width int) string {
	all := d.env.Catalog.Books()
	width = max(width, 40)
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render("Book progress"))
	b.WriteString("\n")
	for i, book := range all {
		bar := components.ProgressBar{
			Label:       abbreviate(book.Title),
			LabelWidth:  6,
			Percent:     d.bookPct[i],
			ShowPercent: true,
			Width:       width - 2,
		}
		b.WriteString(bar.View())
		b.WriteString("\n")
	}
	return b.String()
}

// abbreviate shortens a handbook title to its initials, "Aviation Weather
// Handbook" becoming "AWH".
func abbreviate(title string) string {
	var b strings.Builder
	for _, w := range strings.Fields(title) {
		r := []rune(w)[0]
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return title
	}
	return b.String()
}
