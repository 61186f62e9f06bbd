package stats

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/codelio/codelio/internal/catalog"
	"github.com/codelio/codelio/internal/router"
	"github.com/codelio/codelio/internal/screen"
	"github.com/codelio/codelio/internal/solved"
	"github.com/codelio/codelio/internal/ui/components"
	"github.com/codelio/codelio/internal/ui/layout"
	"github.com/codelio/codelio/internal/ui/theme"
	"github.com/codelio/codelio/internal/view"
	"github.com/codelio/codelio/internal/workspace"
)

// StatsScreen shows the per-difficulty breakdown and the solved questions.
// A solved question can be unmarked from here.
type StatsScreen struct {
	ws      *workspace.Workspace
	tracker *solved.Tracker
	cursor  int
	offset  int
	status  string
	isError bool
}

var _ screen.Screen = (*StatsScreen)(nil)

// New creates a StatsScreen for the workspace's active session.
func New(ws *workspace.Workspace) *StatsScreen {
	return &StatsScreen{ws: ws, tracker: ws.Tracker()}
}

// live reports whether the screen's tracker is still the active one.
func (s *StatsScreen) live() bool {
	return s.tracker != nil && s.ws.Tracker() == s.tracker
}

func (s *StatsScreen) solvedQuestions() []catalog.Question {
	var mapping solved.Mapping
	if s.tracker != nil {
		mapping = s.tracker.Snapshot()
	}
	return view.Solved(s.ws.Catalog.Snapshot(), mapping)
}

func (s *StatsScreen) Init() tea.Cmd {
	return nil
}

func (s *StatsScreen) Title() string {
	return "Solved"
}

func (s *StatsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.solvedQuestions())-1 {
			s.cursor++
		}
	case "space", "x":
		s.unmark()
	case "enter", "esc", "q", "v":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

// unmark toggles the selected question back to unsolved.
func (s *StatsScreen) unmark() {
	qs := s.solvedQuestions()
	if s.cursor >= len(qs) {
		return
	}
	if !s.live() {
		s.status, s.isError = "Session has ended.", true
		return
	}
	q := qs[s.cursor]
	s.tracker.Toggle(q.ID)
	s.status, s.isError = "Marked "+q.Name()+" as not solved.", false
	if s.cursor >= len(qs)-1 {
		s.cursor = max(len(qs)-2, 0)
	}
}

// Breakdown is one difficulty's solved and total counts.
type Breakdown struct {
	Difficulty catalog.Difficulty
	Solved     int
	Total      int
}

// Breakdowns returns the per-difficulty counts in display order. Unknown
// is included only when present in the catalog.
func Breakdowns(all, solvedQs []catalog.Question) []Breakdown {
	totals := view.ByDifficulty(all)
	done := view.ByDifficulty(solvedQs)

	order := append([]catalog.Difficulty{}, catalog.Difficulties...)
	if totals[catalog.Unknown] > 0 {
		order = append(order, catalog.Unknown)
	}

	out := make([]Breakdown, 0, len(order))
	for _, d := range order {
		out = append(out, Breakdown{Difficulty: d, Solved: done[d], Total: totals[d]})
	}
	return out
}

func (s *StatsScreen) View(width, height int) string {
	all := s.ws.Catalog.Snapshot()
	var mapping solved.Mapping
	if s.tracker != nil {
		mapping = s.tracker.Snapshot()
	}
	solvedQs := view.Solved(all, mapping)
	progress := view.ComputeProgress(all, mapping)

	lines := []string{
		"  " + components.NewProgressBar("Overall", progress.Percent, width-4).View(),
		"",
	}
	for _, b := range Breakdowns(all, solvedQs) {
		label := fmt.Sprintf("%-8s", b.Difficulty)
		lines = append(lines, "  "+theme.Difficulty(string(b.Difficulty)).Render(label)+
			theme.Body.Render(fmt.Sprintf("%3d / %-3d", b.Solved, b.Total)))
	}
	lines = append(lines, "")

	var statusLine string
	if s.status != "" {
		style := theme.Hint
		if s.isError {
			style = theme.ErrorText
		}
		statusLine = "  " + style.Render(s.status)
	}

	if len(solvedQs) == 0 {
		lines = append(lines, "  "+theme.Hint.Render("Nothing solved yet."))
		if statusLine != "" {
			lines = append(lines, "", statusLine)
		}
		return strings.Join(lines, "\n")
	}
	if s.cursor >= len(solvedQs) {
		s.cursor = len(solvedQs) - 1
	}

	topicWidth := 20
	diffWidth := 8
	nameWidth := width - 4 - topicWidth - diffWidth - 4
	if nameWidth < 12 {
		nameWidth = 12
	}
	header := fmt.Sprintf("  %-*s  %-*s  %s", nameWidth, "Question", topicWidth, "Topic", "Level")
	lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextDim).Bold(true).Render(header))

	room := height - len(lines) - 1
	if room < 1 {
		room = 1
	}
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+room {
		s.offset = s.cursor - room + 1
	}
	if maxOffset := max(len(solvedQs)-room, 0); s.offset > maxOffset {
		s.offset = maxOffset
	}

	for i := s.offset; i < min(s.offset+room, len(solvedQs)); i++ {
		q := solvedQs[i]
		cursor := "  "
		nameStyle := theme.Body
		if i == s.cursor {
			cursor = theme.Selected.Render("▸ ")
			nameStyle = theme.Selected
		}
		name := layout.Truncate(q.Name(), nameWidth)
		topic := layout.Truncate(q.Topic+" / "+q.SubTopic, topicWidth)
		diff := q.DifficultyLabel()
		lines = append(lines, fmt.Sprintf("%s%s  %s  %s",
			cursor,
			nameStyle.Render(pad(name, nameWidth)),
			theme.Hint.Render(pad(topic, topicWidth)),
			theme.Difficulty(diff).Render(diff),
		))
	}
	lines = append(lines, statusLine)
	return strings.Join(lines, "\n")
}

func pad(s string, width int) string {
	return s + strings.Repeat(" ", max(width-lipgloss.Width(s), 0))
}

// KeyHints returns the key binding hints for the footer.
func (s *StatsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Move"},
		{Key: "Space", Description: "Unmark"},
		{Key: "Esc", Description: "Back"},
	}
}
