// Package app is the terminal dashboard: a router of screens inside a
// header and footer frame.
package app

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/eastboundjoe/aviation-study-guide/internal/learner"
	"github.com/eastboundjoe/aviation-study-guide/internal/router"
	"github.com/eastboundjoe/aviation-study-guide/internal/screen"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/dashboard"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/shared"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/welcome"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/layout"
)

// Options configures the dashboard.
type Options struct {
	Learner *learner.Learner
	Env     shared.Env
	// ShowSync puts the learner's sync status in the header.
	ShowSync bool
	// Splash opens on the welcome animation instead of the dashboard.
	Splash bool
	Logger   *zap.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	opts   Options
	width  int
	height int
}

// newAppModel creates a new AppModel rooted at the dashboard.
func newAppModel(opts Options) AppModel {
	if opts.Env.Tracker == nil && opts.Learner != nil {
		opts.Env.Tracker = opts.Learner.Tracker
	}
	env := opts.Env
	var root screen.Screen = dashboard.New(env)
	if opts.Splash {
		due := env.Tracker.Snapshot().CountDueToday(env.Tracker.Now())
		root = welcome.New(func() screen.Screen { return dashboard.New(env) }, due)
	}
	return AppModel{
		router: router.New(root),
		opts:   opts,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the full frame as a string.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.headerStatus(), m.width)
	footer := layout.RenderFooter(m.keyHints(active), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) headerStatus() layout.HeaderStatus {
	tr := m.opts.Env.Tracker
	st := layout.HeaderStatus{DueToday: tr.Snapshot().CountDueToday(tr.Now())}
	if m.opts.ShowSync && m.opts.Learner != nil {
		st.Sync = string(m.opts.Learner.SyncStatus())
	}
	return st
}

func (m AppModel) keyHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return p.KeyHints()
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the dashboard and blocks until the learner quits or ctx is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Env.Tracker == nil && opts.Learner == nil {
		return errors.New("app: a learner or tracker is required")
	}
	p := tea.NewProgram(newAppModel(opts), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		opts.Logger.Error("dashboard exited", zap.Error(err))
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
