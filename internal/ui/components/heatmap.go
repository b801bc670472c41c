package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
	"github.com/eastboundjoe/aviation-study-guide/internal/ui/theme"
)

const heatCell = "■"

// Heatmap renders calendar days as a week-per-column grid, Sunday at the
// top. Days must be consecutive and oldest first.
func Heatmap(days []progress.CalendarDay) string {
	if len(days) == 0 {
		return ""
	}
	offset := int(days[0].Date.Weekday())
	weeks := (offset + len(days) + 6) / 7

	grid := make([][]string, 7)
	for row := range grid {
		grid[row] = make([]string, weeks)
		for col := range grid[row] {
			grid[row][col] = " "
		}
	}
	for i, d := range days {
		pos := offset + i
		grid[pos%7][pos/7] = lipgloss.NewStyle().Foreground(theme.HeatColor(d.Count)).Render(heatCell)
	}

	dayLabels := [7]string{"   ", "Mon", "   ", "Wed", "   ", "Fri", "   "}
	var b strings.Builder
	for row, cells := range grid {
		b.WriteString(theme.Subtitle.Render(dayLabels[row]) + " ")
		b.WriteString(strings.Join(cells, " "))
		b.WriteByte('\n')
	}
	b.WriteString(HeatLegend())
	return b.String()
}

// HeatLegend renders the "Less ... More" scale under the calendar.
func HeatLegend() string {
	cells := make([]string, 0, 5)
	for n := range 5 {
		cells = append(cells, lipgloss.NewStyle().Foreground(theme.HeatColor(n)).Render(heatCell))
	}
	return theme.Subtitle.Render("    Less ") + strings.Join(cells, " ") + theme.Subtitle.Render(" More")
}
