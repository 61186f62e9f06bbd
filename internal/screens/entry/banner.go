package entry

import (
	"charm.land/lipgloss/v2"

	"github.com/codelio/codelio/internal/ui/layout"
	"github.com/codelio/codelio/internal/ui/theme"
)

const bannerArt = `
 ██████╗ ██████╗ ██████╗ ███████╗██╗     ██╗ ██████╗
██╔════╝██╔═══██╗██╔══██╗██╔════╝██║     ██║██╔═══██╗
██║     ██║   ██║██║  ██║█████╗  ██║     ██║██║   ██║
██║     ██║   ██║██║  ██║██╔══╝  ██║     ██║██║   ██║
╚██████╗╚██████╔╝██████╔╝███████╗███████╗██║╚██████╔╝
 ╚═════╝ ╚═════╝ ╚═════╝ ╚══════╝╚══════╝╚═╝ ╚═════╝`

const bannerCompact = "C O D E L I O"

// RenderBanner returns the banner in the primary color, or a compact
// fallback below 56 columns or in a short content area.
func RenderBanner(width, height int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 56 || layout.IsCompactHeight(height) {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
