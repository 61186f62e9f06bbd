package questions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/codelio/codelio/internal/catalog"
	"github.com/codelio/codelio/internal/router"
	"github.com/codelio/codelio/internal/screen"
	"github.com/codelio/codelio/internal/screens/stats"
	"github.com/codelio/codelio/internal/solved"
	"github.com/codelio/codelio/internal/ui/components"
	"github.com/codelio/codelio/internal/ui/layout"
	"github.com/codelio/codelio/internal/ui/theme"
	"github.com/codelio/codelio/internal/view"
	"github.com/codelio/codelio/internal/workspace"
)

const signOutTimeout = 15 * time.Second

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeAddTopic
	modeAddSubTopic
	modeAddQuestion
	modeConfirmDelete
	modeLeaving
)

// signedOutMsg reports that the session has ended.
type signedOutMsg struct {
	err error
}

// QuestionsScreen lists the catalog grouped by topic with solved marks.
type QuestionsScreen struct {
	ws        *workspace.Workspace
	tracker   *solved.Tracker
	onSignOut func() screen.Screen

	rows         []row
	cursor       int
	scrollOffset int
	collapsed    map[string]bool

	mode    mode
	query   string
	search  components.TextInput
	input   components.TextInput
	form    questionForm
	target  row // row the pending add or delete applies to
	status  string
	isError bool
}

var _ screen.Screen = (*QuestionsScreen)(nil)

// New creates the screen for the workspace's active session. onSignOut
// builds the screen shown after signing out.
func New(ws *workspace.Workspace, onSignOut func() screen.Screen) *QuestionsScreen {
	s := &QuestionsScreen{
		ws:        ws,
		tracker:   ws.Tracker(),
		onSignOut: onSignOut,
		collapsed: make(map[string]bool),
	}
	s.refresh()
	return s
}

func (s *QuestionsScreen) Init() tea.Cmd {
	return nil
}

func (s *QuestionsScreen) Title() string {
	return "Questions"
}

// Capturing reports whether keys belong to a prompt.
func (s *QuestionsScreen) Capturing() bool {
	return s.mode != modeBrowse
}

// live reports whether the screen's tracker is still the active one.
func (s *QuestionsScreen) live() bool {
	return s.tracker != nil && s.ws.Tracker() == s.tracker
}

func (s *QuestionsScreen) mapping() solved.Mapping {
	if s.tracker == nil {
		return solved.Mapping{}
	}
	return s.tracker.Snapshot()
}

// refresh rebuilds rows from the catalog, keeping the cursor on the same
// row when it still exists.
func (s *QuestionsScreen) refresh() {
	var current string
	if s.cursor >= 0 && s.cursor < len(s.rows) {
		current = s.rows[s.cursor].key()
	}

	filtered := view.Filter(s.ws.Catalog.Snapshot(), s.query)
	s.rows = buildRows(view.Group(filtered), s.mapping(), s.collapsed, s.query != "")

	s.cursor = 0
	for i, r := range s.rows {
		if r.key() == current {
			s.cursor = i
			break
		}
	}
}

func (s *QuestionsScreen) focusQuestion(id string) {
	for i, r := range s.rows {
		if r.kind == rowQuestion && r.question.ID == id {
			s.cursor = i
			return
		}
	}
}

func (s *QuestionsScreen) selected() (row, bool) {
	if s.cursor < 0 || s.cursor >= len(s.rows) {
		return row{}, false
	}
	return s.rows[s.cursor], true
}

func (s *QuestionsScreen) setStatus(msg string, isErr bool) {
	s.status = msg
	s.isError = isErr
}

func (s *QuestionsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(signedOutMsg); ok {
		next := s.onSignOut()
		return s, func() tea.Msg { return router.ResetMsg{Screen: next} }
	}
	if s.mode == modeLeaving {
		return s, nil
	}

	kmsg, isKey := msg.(tea.KeyMsg)
	switch s.mode {
	case modeSearch:
		return s.updateSearch(msg, kmsg, isKey)
	case modeAddTopic, modeAddSubTopic:
		return s.updateNamePrompt(msg, kmsg, isKey)
	case modeAddQuestion:
		return s.updateForm(msg, kmsg, isKey)
	case modeConfirmDelete:
		if isKey {
			s.confirmDelete(kmsg.String())
		}
		return s, nil
	}

	if !isKey {
		// Catalog loads and window resizes land here.
		s.refresh()
		return s, nil
	}
	return s.updateBrowse(kmsg)
}

func (s *QuestionsScreen) updateBrowse(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.rows)-1 {
			s.cursor++
		}
	case "home", "g":
		s.cursor = 0
	case "end", "G":
		s.cursor = max(len(s.rows)-1, 0)
	case "space", "enter", "x":
		s.activate()
	case "/":
		s.mode = modeSearch
		s.search = components.NewTextInput("search title, topic or name", 80, false)
		s.search.SetValue(s.query)
		return s, s.search.Init()
	case "t":
		return s, s.openNamePrompt(modeAddTopic, "topic name")
	case "s":
		r, ok := s.selected()
		if !ok {
			s.setStatus("Add a topic first.", true)
			return s, nil
		}
		s.target = r
		return s, s.openNamePrompt(modeAddSubTopic, "sub-topic name")
	case "a":
		r, ok := s.selected()
		if !ok {
			s.setStatus("Add a topic first.", true)
			return s, nil
		}
		s.target = r
		sub := r.subTopic
		if sub == "" {
			sub = catalog.DefaultSubTopic
		}
		s.mode = modeAddQuestion
		s.form = newQuestionForm(r.topic, sub)
		return s, s.form.Init()
	case "d", "delete":
		r, ok := s.selected()
		if !ok || r.kind != rowQuestion {
			s.setStatus("Select a question to delete.", true)
			return s, nil
		}
		s.target = r
		s.mode = modeConfirmDelete
	case "v":
		return s, func() tea.Msg {
			return router.PushScreenMsg{Screen: stats.New(s.ws)}
		}
	case "o":
		return s, s.signOut()
	case "q":
		return s, tea.Quit
	}
	return s, nil
}

// activate toggles the solved state of a question row or collapses a
// header row.
func (s *QuestionsScreen) activate() {
	r, ok := s.selected()
	if !ok {
		return
	}
	if r.kind != rowQuestion {
		s.collapsed[r.key()] = !s.collapsed[r.key()]
		s.refresh()
		return
	}
	if !s.live() {
		s.setStatus("Session has ended.", true)
		return
	}
	if s.tracker.Toggle(r.question.ID) {
		s.setStatus("Marked "+r.question.Name()+" as solved.", false)
	} else {
		s.setStatus("Marked "+r.question.Name()+" as not solved.", false)
	}
	s.refresh()
}

func (s *QuestionsScreen) signOut() tea.Cmd {
	s.mode = modeLeaving
	s.setStatus("Signing out...", false)
	ws := s.ws
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), signOutTimeout)
		defer cancel()
		return signedOutMsg{err: ws.End(ctx)}
	}
}

func (s *QuestionsScreen) updateSearch(msg tea.Msg, kmsg tea.KeyMsg, isKey bool) (screen.Screen, tea.Cmd) {
	if isKey {
		switch kmsg.String() {
		case "esc":
			s.mode = modeBrowse
			s.query = ""
			s.refresh()
			return s, nil
		case "enter":
			s.mode = modeBrowse
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.search, cmd = s.search.Update(msg)
	if q := s.search.Value(); q != s.query {
		s.query = q
		s.refresh()
	}
	return s, cmd
}

func (s *QuestionsScreen) openNamePrompt(m mode, placeholder string) tea.Cmd {
	s.mode = m
	s.input = components.NewTextInput(placeholder, 60, false)
	s.setStatus("", false)
	return s.input.Init()
}

func (s *QuestionsScreen) updateNamePrompt(msg tea.Msg, kmsg tea.KeyMsg, isKey bool) (screen.Screen, tea.Cmd) {
	if isKey {
		switch kmsg.String() {
		case "esc":
			s.mode = modeBrowse
			return s, nil
		case "enter":
			s.submitName()
			return s, nil
		}
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *QuestionsScreen) submitName() {
	name := strings.TrimSpace(s.input.Value())

	var (
		id  string
		err error
	)
	if s.mode == modeAddTopic {
		id, err = s.ws.Catalog.AddTopic(name)
	} else {
		id, err = s.ws.Catalog.AddSubTopic(s.target.topic, name)
	}
	if errors.Is(err, catalog.ErrEmptyName) {
		s.setStatus("Name must not be empty.", true)
		return
	}
	if err != nil {
		s.setStatus(err.Error(), true)
		return
	}

	if s.mode == modeAddTopic {
		s.setStatus("Added topic "+name+".", false)
	} else {
		s.setStatus("Added sub-topic "+name+" to "+s.target.topic+".", false)
	}
	s.mode = modeBrowse
	s.refresh()
	s.focusQuestion(id)
}

func (s *QuestionsScreen) updateForm(msg tea.Msg, kmsg tea.KeyMsg, isKey bool) (screen.Screen, tea.Cmd) {
	if isKey {
		switch kmsg.String() {
		case "esc":
			s.mode = modeBrowse
			return s, nil
		case "enter":
			in := s.form.value()
			id, err := s.ws.Catalog.AddQuestion(s.form.topic, s.form.subTopic, in)
			if err != nil {
				s.setStatus(err.Error(), true)
				return s, nil
			}
			s.mode = modeBrowse
			s.setStatus("Added "+in.Title+".", false)
			s.refresh()
			s.focusQuestion(id)
			return s, nil
		}
	}
	var cmd tea.Cmd
	s.form, cmd = s.form.Update(msg)
	return s, cmd
}

func (s *QuestionsScreen) confirmDelete(key string) {
	s.mode = modeBrowse
	if key != "y" && key != "Y" {
		s.setStatus("Delete cancelled.", false)
		return
	}
	if s.ws.Catalog.Delete(s.target.question.ID) {
		s.setStatus("Deleted "+s.target.question.Name()+".", false)
	}
	s.refresh()
	if s.cursor >= len(s.rows) {
		s.cursor = max(len(s.rows)-1, 0)
	}
}

// adjustScroll keeps the cursor inside a window of height rows.
func (s *QuestionsScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	if s.cursor < s.scrollOffset {
		s.scrollOffset = s.cursor
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
	if maxOffset := max(len(s.rows)-height, 0); s.scrollOffset > maxOffset {
		s.scrollOffset = maxOffset
	}
}

func (s *QuestionsScreen) View(width, height int) string {
	mapping := s.mapping()
	progress := view.ComputeProgress(s.ws.Catalog.Snapshot(), mapping)

	top := []string{
		"  " + components.NewProgressBar("Progress", progress.Percent, width-4).View(),
		"  " + theme.Hint.Render(fmt.Sprintf("%d of %d solved", progress.Solved, progress.Total)),
		"  " + s.searchLine(),
		"",
	}
	bottom := s.bottomLines()

	listHeight := height - len(top) - len(bottom)
	s.adjustScroll(listHeight)

	var list []string
	switch {
	case len(s.rows) == 0 && s.query != "":
		list = append(list, "  "+theme.Hint.Render("No questions match \""+s.query+"\"."))
	case len(s.rows) == 0:
		list = append(list, "  "+theme.Hint.Render("No questions yet. Press t to add a topic."))
	default:
		for i := s.scrollOffset; i < len(s.rows) && len(list) < listHeight; i++ {
			list = append(list, s.renderRow(s.rows[i], i == s.cursor, mapping, width))
		}
	}
	for len(list) < listHeight {
		list = append(list, "")
	}

	return strings.Join(append(append(top, list...), bottom...), "\n")
}

func (s *QuestionsScreen) searchLine() string {
	switch {
	case s.mode == modeSearch:
		return theme.Selected.Render("/ ") + s.search.View()
	case s.query != "":
		return theme.Body.Render("Filter: "+s.query) + "  " + theme.Hint.Render("(/ to edit)")
	default:
		return theme.Hint.Render("Press / to search")
	}
}

// linkLine shows where to solve the selected question, when it has a link.
func (s *QuestionsScreen) linkLine() string {
	r, ok := s.selected()
	if !ok || r.kind != rowQuestion || r.question.ProblemURL() == "" {
		return ""
	}
	return "  " + theme.Hint.Render("Solve: ") + theme.Body.Render(r.question.ProblemURL())
}

func (s *QuestionsScreen) bottomLines() []string {
	var lines []string
	switch s.mode {
	case modeBrowse, modeSearch:
		lines = append(lines, s.linkLine())
	case modeAddTopic:
		lines = append(lines, "  "+theme.Body.Render("New topic: ")+s.input.View())
	case modeAddSubTopic:
		lines = append(lines, "  "+theme.Body.Render("New sub-topic in "+s.target.topic+": ")+s.input.View())
	case modeAddQuestion:
		for _, l := range strings.Split(s.form.View(), "\n") {
			lines = append(lines, "  "+l)
		}
	case modeConfirmDelete:
		lines = append(lines, "  "+theme.ErrorText.Render("Delete \""+s.target.question.Name()+"\"? ")+theme.Hint.Render("y/n"))
	}

	if s.status != "" {
		style := theme.Hint
		if s.isError {
			style = theme.ErrorText
		}
		lines = append(lines, "  "+style.Render(s.status))
	} else {
		lines = append(lines, "")
	}
	return lines
}

func (s *QuestionsScreen) renderRow(r row, selected bool, mapping solved.Mapping, width int) string {
	cursor := "  "
	if selected {
		cursor = theme.Selected.Render("▸ ")
	}

	switch r.kind {
	case rowTopic:
		arrow := "▾"
		if s.collapsed[r.key()] && s.query == "" {
			arrow = "▸"
		}
		return cursor + theme.TopicHeader.Render(arrow+" "+r.topic) +
			"  " + theme.Hint.Render(fmt.Sprintf("%d/%d", r.solved, r.total))

	case rowSubTopic:
		arrow := "▾"
		if s.collapsed[r.key()] && s.query == "" {
			arrow = "▸"
		}
		return cursor + "  " + theme.SubTopicHeader.Render(arrow+" "+r.subTopic) +
			"  " + theme.Hint.Render(fmt.Sprintf("%d/%d", r.solved, r.total))
	}

	q := r.question
	mark := theme.UnsolvedMark.Render("[ ]")
	if mapping[q.ID] {
		mark = theme.SolvedMark.Render("[✔]")
	}

	diff := q.DifficultyLabel()
	const diffWidth = 8
	tag := ""
	if catalog.IsTemporaryID(q.ID) {
		tag = " (local)"
	}
	nameWidth := width - 2 - 4 - 4 - diffWidth - len(tag) - 2
	if nameWidth < 10 {
		nameWidth = 10
	}

	name := layout.Truncate(q.Name(), nameWidth)
	nameStyle := theme.Unselected
	if selected {
		nameStyle = theme.Selected
	}
	padded := name + strings.Repeat(" ", max(nameWidth-lipgloss.Width(name), 0))

	return cursor + "    " + mark + " " + nameStyle.Render(padded) +
		theme.Hint.Render(tag) + " " +
		theme.Difficulty(diff).Render(fmt.Sprintf("%*s", diffWidth, diff))
}

// KeyHints returns the footer hints for the current mode.
func (s *QuestionsScreen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case modeSearch:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Keep filter"},
			{Key: "Esc", Description: "Clear"},
		}
	case modeAddTopic, modeAddSubTopic:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Add"},
			{Key: "Esc", Description: "Cancel"},
		}
	case modeAddQuestion:
		return []layout.KeyHint{
			{Key: "Tab", Description: "Next field"},
			{Key: "←→", Description: "Difficulty"},
			{Key: "Enter", Description: "Add"},
			{Key: "Esc", Description: "Cancel"},
		}
	case modeConfirmDelete:
		return []layout.KeyHint{
			{Key: "y", Description: "Delete"},
			{Key: "n", Description: "Keep"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Move"},
		{Key: "Space", Description: "Toggle"},
		{Key: "/", Description: "Search"},
		{Key: "t/s/a", Description: "Add"},
		{Key: "d", Description: "Delete"},
		{Key: "v", Description: "Solved"},
		{Key: "o", Description: "Sign out"},
		{Key: "q", Description: "Quit"},
	}
}
