// Package quiz runs a chapter's multiple-choice quiz and records the result.
package quiz

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/eastboundjoe/aviation-study-guide/internal/content"
	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
	"github.com/eastboundjoe/aviation-study-guide/internal/router"
	"github.com/eastboundjoe/aviation-study-guide/internal/screen"
	"github.com/eastboundjoe/aviation-study-guide/internal/screens/shared"
	"github.com/eastboundjoe/aviation-study-guide/internal/spacedrep"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/components"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/layout"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/theme"
)

// QuizScreen implements screen.Screen for one chapter quiz.
type QuizScreen struct {
	env     shared.Env
	quiz    content.Quiz
	current int
	mc      components.MultiChoice
	answers []int

	finished bool
	result   content.QuizResult
	record   progress.MasteryRecord
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// New creates a quiz screen for q.
func New(env shared.Env, q content.Quiz) *QuizScreen {
	s := &QuizScreen{env: env, quiz: q, answers: make([]int, 0, len(q.Questions))}
	s.load(0)
	return s
}

func (s *QuizScreen) load(i int) {
	s.current = i
	q := s.quiz.Questions[i]
	s.mc = components.NewMultiChoice(q.Question, q.Options, q.CorrectAnswer)
}

func (s *QuizScreen) Init() tea.Cmd {
	return nil
}

func (s *QuizScreen) Title() string {
	return "Quiz"
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.finished:
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.mc.Submitted:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	}
	return []layout.KeyHint{
		{Key: "A-D", Description: "Answer"},
		{Key: "↑↓", Description: "Choose"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Quit"},
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	if s.finished {
		return s, router.Pop()
	}
	if s.mc.Submitted {
		if s.current+1 < len(s.quiz.Questions) {
			s.load(s.current + 1)
		} else {
			s.finish()
		}
		return s, nil
	}
	if kmsg.String() == "esc" {
		return s, router.Pop()
	}

	s.mc, _ = s.mc.Update(msg)
	if s.mc.Submitted {
		s.answers = append(s.answers, s.mc.ChosenIndex)
	}
	return s, nil
}

// finish scores the quiz, keeps the percentage and records the pass or
// fail as a study outcome.
func (s *QuizScreen) finish() {
	ctx := context.Background()
	key := s.quiz.Key()
	s.result = s.quiz.Score(s.answers)
	snap := s.env.Tracker.RecordQuiz(ctx, key, s.result.Percent(), s.result.Passed)
	s.record = snap.Record(key)
	s.finished = true
}

func (s *QuizScreen) View(width, height int) string {
	cw := min(width-4, 76)

	var b strings.Builder
	b.WriteString(theme.Title.Render(s.env.Describe(s.quiz.Key())))
	b.WriteString("\n\n")

	if s.finished {
		b.WriteString(s.renderSummary(cw))
	} else {
		bar := components.NewProgressBar(
			fmt.Sprintf("Question %d/%d", s.current+1, len(s.quiz.Questions)),
			float64(s.current)/float64(len(s.quiz.Questions)), false, cw-4)
		b.WriteString(bar.View())
		b.WriteString("\n\n")
		b.WriteString(s.mc.View())
		if s.mc.Submitted {
			b.WriteString("\n")
			b.WriteString(s.renderExplanation(cw))
		}
	}

	card := theme.Card.Width(cw).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (s *QuizScreen) renderExplanation(width int) string {
	verdict := theme.Incorrect.Render("Not quite.")
	if s.mc.IsCorrect() {
		verdict = theme.Correct.Render("Correct!")
	}
	expl := s.quiz.Questions[s.current].Explanation
	if expl == "" {
		return verdict
	}
	return verdict + "\n" + lipgloss.NewStyle().Width(width-4).Foreground(theme.TextDim).Render(expl)
}

func (s *QuizScreen) renderSummary(width int) string {
	var b strings.Builder
	score := fmt.Sprintf("%d of %d correct (%d%%)", s.result.Correct, s.result.Total, s.result.Percent())
	if s.result.Passed {
		b.WriteString(theme.Correct.Render("Quiz passed! ") + theme.Body.Render(score))
	} else {
		b.WriteString(theme.Incorrect.Render("Quiz not passed. ") + theme.Body.Render(score))
		b.WriteString("\n")
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("You need %d%% to pass.", int(content.PassThreshold*100))))
	}
	b.WriteString("\n\n")
	b.WriteString(components.NewProgressBar("Score", float64(s.result.Percent())/100, true, width-4).View())
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.LevelColor(s.record.Level)).Render(spacedrep.Label(s.record.Level)))
	if !s.record.NextReview.IsZero() {
		b.WriteString(theme.Subtitle.Render("  next review " + s.record.NextReview.Format("Mon Jan 2")))
	}
	return b.String()
}
