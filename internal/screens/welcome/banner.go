package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/eastboundjoe/aviation-study-guide/internal/ui/theme"
)

const bannerArt = `
  ╔═╗╦  ╦╦╔═╗╔╦╗╦╔═╗╔╗╔
  ╠═╣╚╗╔╝║╠═╣ ║ ║║ ║║║║
  ╩ ╩ ╚╝ ╩╩ ╩ ╩ ╩╚═╝╝╚╝
   S T U D Y   G U I D E`

const bannerCompact = "AVIATION STUDY GUIDE"

// RenderBanner returns the banner styled in the primary color. Terminals
// narrower than 30 columns get the one-line form.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 30 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
