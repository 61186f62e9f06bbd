package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette, tuned for dark terminals
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate

	EasyColor   = lipgloss.Color("#22C55E")
	MediumColor = lipgloss.Color("#F59E0B")
	HardColor   = lipgloss.Color("#EF4444")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Layout
var (
	Header = lipgloss.NewStyle().
		Background(BgCard).
		Padding(0, 2)

	Footer = lipgloss.NewStyle().
		Background(BgCard).
		Padding(0, 2)

	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	SolvedMark = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	UnsolvedMark = lipgloss.NewStyle().
			Foreground(TextDim)

	TopicHeader = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	SubTopicHeader = lipgloss.NewStyle().
			Foreground(Accent)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)
)

// Difficulty returns the style for a difficulty label. Unrecognised labels
// render dim.
func Difficulty(label string) lipgloss.Style {
	switch label {
	case "Easy":
		return lipgloss.NewStyle().Foreground(EasyColor)
	case "Medium":
		return lipgloss.NewStyle().Foreground(MediumColor)
	case "Hard":
		return lipgloss.NewStyle().Foreground(HardColor)
	default:
		return lipgloss.NewStyle().Foreground(TextDim)
	}
}
