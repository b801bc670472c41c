package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Color palette, cockpit style: dark panel with instrument accents.
var (
	Primary   = lipgloss.Color("#38BDF8") // Sky
	Secondary = lipgloss.Color("#22D3EE") // Cyan
	Accent    = lipgloss.Color("#FBBF24") // Amber
	Success   = lipgloss.Color("#4ADE80") // Green
	Error     = lipgloss.Color("#F87171") // Red
	Text      = lipgloss.Color("#F1F5F9")
	TextDim   = lipgloss.Color("#94A3B8")
	BgDark    = lipgloss.Color("#0B1120")
	BgCard    = lipgloss.Color("#172033")
	Border    = lipgloss.Color("#334155")
)

// levelColors index by mastery level 0..5.
var levelColors = []color.Color{
	TextDim,
	lipgloss.Color("#F87171"),
	lipgloss.Color("#FB923C"),
	lipgloss.Color("#FBBF24"),
	lipgloss.Color("#38BDF8"),
	lipgloss.Color("#4ADE80"),
}

// LevelColor returns the color for a mastery level.
func LevelColor(level int) color.Color {
	if level < 0 || level >= len(levelColors) {
		return TextDim
	}
	return levelColors[level]
}

// heatColors are the activity calendar shades, empty to busiest.
var heatColors = []color.Color{
	lipgloss.Color("#1E293B"),
	lipgloss.Color("#0E4429"),
	lipgloss.Color("#006D32"),
	lipgloss.Color("#26A641"),
	lipgloss.Color("#39D353"),
}

// HeatColor returns the calendar shade for a day with count sessions.
func HeatColor(count int) color.Color {
	switch {
	case count <= 0:
		return heatColors[0]
	case count >= len(heatColors)-1:
		return heatColors[len(heatColors)-1]
	default:
		return heatColors[count]
	}
}

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)
