// Package checkpoint is the recall exercise: the learner summarizes a
// chapter in their own words until every key point has been covered.
package checkpoint

import (
	"context"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/eastboundjoe/aviation-study-guide/internal/content"
	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
	"github.com/eastboundjoe/aviation-study-guide/internal/recall"
	"github.com/eastboundjoe/aviation-study-guide/internal/router"
	"github.com/eastboundjoe/aviation-study-guide/internal/screen"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/shared"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/components"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/layout"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/theme"
)

// summaryLimit caps one typed attempt.
const summaryLimit = 2000

type phase int

const (
	phaseAnswering phase = iota
	phaseGrading
	phaseFinished
)

// CheckpointScreen implements screen.Screen for one chapter checkpoint.
type CheckpointScreen struct {
	env     shared.Env
	cp      content.Checkpoint
	title   string
	input   components.TextInput
	spinner spinner.Model

	phase    phase
	attempts int
	covered  []string
	last     *recall.Result

	// Set once the outcome is recorded.
	success bool
	record  progress.MasteryRecord
}

var _ screen.Screen = (*CheckpointScreen)(nil)
var _ screen.KeyHintProvider = (*CheckpointScreen)(nil)

// New creates a checkpoint screen for cp.
func New(env shared.Env, cp content.Checkpoint) *CheckpointScreen {
	return &CheckpointScreen{
		env:   env,
		cp:    cp,
		title: env.ChapterTitle(cp.Key()),
		input: components.NewTextInput("Summarize the chapter in your own words...", summaryLimit, 60),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary)),
		),
		covered: []string{},
	}
}

func (s *CheckpointScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *CheckpointScreen) Title() string {
	return "Checkpoint"
}

func (s *CheckpointScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseGrading:
		return []layout.KeyHint{{Key: "…", Description: "Listening"}}
	case phaseFinished:
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	}
	if s.attempts == 0 {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Try again"},
		{Key: "Esc", Description: "Finish"},
	}
}

func (s *CheckpointScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case gradedMsg:
		return s.handleGraded(msg)

	case spinner.TickMsg:
		if s.phase != phaseGrading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.phase == phaseAnswering {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *CheckpointScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch s.phase {
	case phaseGrading:
		return s, nil
	case phaseFinished:
		return s, router.Pop()
	}

	switch msg.String() {
	case "esc":
		if s.attempts == 0 {
			return s, router.Pop()
		}
		s.finish()
		return s, nil
	case "enter":
		transcript := s.input.Value()
		if transcript == "" {
			return s, nil
		}
		s.phase = phaseGrading
		s.attempts++
		return s, tea.Batch(s.spinner.Tick, s.grade(transcript))
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *CheckpointScreen) grade(transcript string) tea.Cmd {
	grader := s.env.Grader
	req := recall.Request{
		BookTitle:    s.cp.BookTitle,
		ChapterTitle: s.title,
		KeyPoints:    s.cp.KeyPoints,
		Transcript:   transcript,
	}
	return func() tea.Msg {
		return gradedMsg{Result: grader.Grade(context.Background(), req)}
	}
}

func (s *CheckpointScreen) handleGraded(msg gradedMsg) (screen.Screen, tea.Cmd) {
	res := msg.Result
	s.last = &res
	s.covered = recall.MergeCovered(s.cp.KeyPoints, s.covered, res.CoveredPointIDs)
	s.input.Reset()

	if content.CheckpointPassed(s.cp.KeyPoints, s.covered) {
		s.finish()
		return s, nil
	}
	s.phase = phaseAnswering
	return s, s.input.Init()
}

// finish records the outcome: a pass only when every key point was covered.
func (s *CheckpointScreen) finish() {
	s.success = content.CheckpointPassed(s.cp.KeyPoints, s.covered)
	snap := s.env.Tracker.RecordOutcome(context.Background(), s.cp.Key(), s.success)
	s.record = snap.Record(s.cp.Key())
	s.phase = phaseFinished
}
