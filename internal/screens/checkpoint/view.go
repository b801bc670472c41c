package checkpoint

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/eastboundjoe/aviation-study-guide/internal/recall"
	"github.com/eastboundjoe/aviation-study-guide/internal/spacedrep"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/theme"
)

func (s *CheckpointScreen) View(width, height int) string {
	cw := min(width-4, 76)

	var b strings.Builder
	b.WriteString(theme.Title.Render(fmt.Sprintf("%s · Chapter %d", s.cp.BookTitle, s.cp.ChapterID)))
	b.WriteString("\n")
	if s.title != "" {
		b.WriteString(theme.Subtitle.Render(s.title))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if s.phase == phaseFinished {
		b.WriteString(s.renderResult())
	} else {
		if s.attempts == 0 && s.cp.Summary != "" {
			b.WriteString(lipgloss.NewStyle().Width(cw).Foreground(theme.TextDim).Render(s.cp.Summary))
			b.WriteString("\n\n")
		}
		b.WriteString(s.renderChecklist())
		b.WriteString("\n")
		if s.last != nil {
			b.WriteString(renderFeedback(*s.last, cw))
			b.WriteString("\n")
		}
		if s.phase == phaseGrading {
			b.WriteString(s.spinner.View() + " " + theme.Hint.Render("Grading your summary..."))
		} else {
			b.WriteString(s.input.View())
		}
	}

	card := theme.Card.Width(cw).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

// renderChecklist shows how many key points remain without revealing them
// until they are covered.
func (s *CheckpointScreen) renderChecklist() string {
	var b strings.Builder
	b.WriteString(theme.Body.Render(fmt.Sprintf("Key points covered: %d of %d", len(s.covered), len(s.cp.KeyPoints))))
	b.WriteString("\n")
	for _, kp := range s.cp.KeyPoints {
		if slices.Contains(s.covered, kp.ID) {
			b.WriteString(theme.Correct.Render("  ✓ ") + theme.Body.Render(kp.Text))
		} else {
			b.WriteString(theme.Subtitle.Render("  ○ ???"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderFeedback(res recall.Result, width int) string {
	style := lipgloss.NewStyle().Width(width).Foreground(theme.Text)
	out := style.Render(res.Feedback)
	if res.Clue != "" {
		out += "\n" + style.Foreground(theme.Accent).Render("Clue: "+res.Clue)
	}
	if res.Source == recall.SourceKeywords {
		out += "\n" + theme.Hint.Render("(graded by keyword match)")
	}
	return out + "\n"
}

func (s *CheckpointScreen) renderResult() string {
	var b strings.Builder
	if s.success {
		b.WriteString(theme.Correct.Render("Checkpoint passed!"))
	} else {
		b.WriteString(theme.Incorrect.Render("Checkpoint not passed."))
		b.WriteString("\n")
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d of %d key points covered.", len(s.covered), len(s.cp.KeyPoints))))
	}
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.LevelColor(s.record.Level)).Render(spacedrep.Label(s.record.Level)))
	if !s.record.NextReview.IsZero() {
		b.WriteString(theme.Subtitle.Render("  next review " + s.record.NextReview.Format("Mon Jan 2")))
	}
	return b.String()
}
