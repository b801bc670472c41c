package components

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/eastboundjoe/aviation-study-guide/internal/ui/theme"
)

// StatCard renders a boxed counter: a large value over a dim caption.
func StatCard(value, caption string, accent color.Color, width int) string {
	body := lipgloss.NewStyle().Foreground(accent).Bold(true).Render(value) + "\n" +
		theme.Subtitle.Render(caption)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(width).
		Align(lipgloss.Center).
		Render(body)
}

// StatRow lays cards out side by side, sizing each to share totalWidth.
func StatRow(totalWidth int, cards ...func(width int) string) string {
	if len(cards) == 0 {
		return ""
	}
	w := max(totalWidth/len(cards)-1, 12)
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		parts = append(parts, c(w))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
