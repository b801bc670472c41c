package welcome

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/eastboundjoe/aviation-study-guide/internal/router"
	"github.com/eastboundjoe/aviation-study-guide/internal/screen"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	taxiEnd      = 500 * time.Millisecond
	takeoffEnd   = 1500 * time.Millisecond
	totalDur     = 3000 * time.Millisecond
)

const aircraftArt = `        __|__
 --@--@--(_)--@--@--
          |
         /_\`

// runwayWidth is the number of dashes the aircraft rolls along.
const runwayWidth = 24

type tickMsg time.Time

// WelcomeScreen plays a short takeoff animation, then greets the learner
// with today's review count before handing over to the dashboard.
type WelcomeScreen struct {
	dashboardFactory func() screen.Screen
	dueToday         int

	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that replaces itself with the screen produced
// by dashboardFactory on the first key press.
func New(dashboardFactory func() screen.Screen, dueToday int) *WelcomeScreen {
	return &WelcomeScreen{
		dashboardFactory: dashboardFactory,
		dueToday:         dueToday,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.transitioned {
			return w, nil
		}
		if w.elapsed < totalDur {
			w.elapsed += tickInterval
		}
		w.tickCount++
		return w, tick()

	case tea.KeyPressMsg:
		return w, w.transition()
	}
	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	return router.Replace(w.dashboardFactory())
}

// runway draws the aircraft's position while it taxis and rolls.
func (w *WelcomeScreen) runway() string {
	pos := 0
	if w.elapsed >= taxiEnd {
		pos = int(w.elapsed-taxiEnd) * runwayWidth / int(takeoffEnd-taxiEnd)
	}
	pos = min(pos, runwayWidth)
	return strings.Repeat("═", pos) + "✈" + strings.Repeat("─", runwayWidth-pos)
}

func (w *WelcomeScreen) greeting() string {
	switch w.dueToday {
	case 0:
		return "No reviews due. Clear skies."
	case 1:
		return "1 chapter is due for review today."
	default:
		return fmt.Sprintf("%d chapters are due for review today.", w.dueToday)
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, lipgloss.NewStyle().Foreground(theme.Primary).Render(aircraftArt))
	sections = append(sections, "")
	sections = append(sections, lipgloss.NewStyle().Foreground(theme.TextDim).Render(w.runway()))

	if w.elapsed >= takeoffEnd {
		sections = append(sections, "")
		sections = append(sections, RenderBanner(width))
		sections = append(sections, "")
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render(w.greeting()))
		sections = append(sections, "")
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Italic(true).
			Render("press any key to continue"))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}
