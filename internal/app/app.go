package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codelio/codelio/internal/catalog"
	"github.com/codelio/codelio/internal/identity"
	"github.com/codelio/codelio/internal/router"
	"github.com/codelio/codelio/internal/screen"
	"github.com/codelio/codelio/internal/screens/entry"
	"github.com/codelio/codelio/internal/screens/questions"
	"github.com/codelio/codelio/internal/ui/layout"
	"github.com/codelio/codelio/internal/ui/theme"
	"github.com/codelio/codelio/internal/workspace"
)

const startupTimeout = 30 * time.Second

// Options holds the dependencies the TUI runs on.
type Options struct {
	Workspace   *workspace.Workspace
	Feed        catalog.Feed
	AuthEnabled bool
	Logger      *zap.Logger
}

// readyMsg ends the loading gate.
type readyMsg struct {
	status identity.Status
	err    error
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	ws     *workspace.Workspace
	feed   catalog.Feed
	logger *zap.Logger

	entryScreen     func() screen.Screen
	workspaceScreen func() screen.Screen

	router *router.Router
	width  int
	height int
}

// newAppModel creates an AppModel that stays behind the loading gate until
// the catalog is fetched and the saved session is resolved.
func newAppModel(opts Options) AppModel {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	m := AppModel{
		ws:     opts.Workspace,
		feed:   opts.Feed,
		logger: opts.Logger,
	}

	starter := workspaceStarter{ws: opts.Workspace}
	var entryFn, workspaceFn func() screen.Screen
	entryFn = func() screen.Screen {
		return entry.New(starter, opts.AuthEnabled, workspaceFn)
	}
	workspaceFn = func() screen.Screen {
		return questions.New(opts.Workspace, entryFn)
	}
	m.entryScreen = entryFn
	m.workspaceScreen = workspaceFn
	return m
}

// Init loads the catalog and resolves the saved session concurrently.
func (m AppModel) Init() tea.Cmd {
	ws, feed := m.ws, m.feed
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()

		var g errgroup.Group
		var status identity.Status
		if feed != nil {
			g.Go(func() error {
				// Failure leaves an empty catalog and is already logged.
				_ = ws.LoadCatalog(ctx, feed)
				return nil
			})
		}
		g.Go(func() error {
			var err error
			status, err = ws.Resume(ctx)
			return err
		})
		err := g.Wait()
		return readyMsg{status: status, err: err}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case readyMsg:
		first := m.entryScreen
		if msg.err != nil {
			m.logger.Warn("resume session failed", zap.Error(msg.err))
		} else if msg.status == identity.StatusActive {
			first = m.workspaceScreen
		}
		s := first()
		m.router = router.New(s)
		return m, s.Init()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router != nil && m.router.Depth() > 1 && !m.capturing() {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	if m.router == nil {
		return m, nil
	}
	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) capturing() bool {
	c, ok := m.router.Active().(screen.InputCapturer)
	return ok && c.Capturing()
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	if m.router == nil {
		v.SetContent(renderLoading(m.width, m.height))
		return v
	}

	active := m.router.Active()
	header := layout.RenderHeader(active.Title(), m.headerStatus(), m.width)

	var hints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		hints = p.KeyHints()
	}
	hints = append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

func (m AppModel) headerStatus() string {
	sess, ok := m.ws.Session()
	if !ok {
		return ""
	}
	label := sess.Label()
	if layout.IsCompactWidth(m.width) {
		label = layout.Truncate(label, 16)
	}
	p := m.ws.Progress()
	return layout.HeaderStatus(label, p.Solved, p.Total, p.Percent)
}

func renderLoading(width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Hint.Render("Please wait..."))
}

// workspaceStarter adapts the workspace to the entry screen.
type workspaceStarter struct {
	ws *workspace.Workspace
}

func (s workspaceStarter) StartGuest(ctx context.Context, name string) error {
	_, err := s.ws.StartGuest(ctx, name)
	return err
}

func (s workspaceStarter) SignIn(ctx context.Context, credential string) error {
	_, err := s.ws.SignIn(ctx, credential)
	return err
}

// Run starts the Bubble Tea program and flushes pending writes on exit.
func Run(opts Options) error {
	defer opts.Workspace.Close()

	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
