package components

import (
	"charm.land/lipgloss/v2"

	"github.com/codelio/codelio/internal/ui/theme"
)

// CardWidth returns the inner width for centered cards, clamped so forms
// stay readable on wide terminals.
func CardWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 64 {
		w = 64
	}
	if w < 24 {
		w = 24
	}
	return w
}

// Card wraps content in a rounded border at width cw.
func Card(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Padding(1, 2).
		Render(content)
}

// Centered places content in the middle of a width x height box.
func Centered(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
