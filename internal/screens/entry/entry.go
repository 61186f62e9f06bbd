package entry

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/codelio/codelio/internal/identity"
	"github.com/codelio/codelio/internal/router"
	"github.com/codelio/codelio/internal/screen"
	"github.com/codelio/codelio/internal/ui/components"
	"github.com/codelio/codelio/internal/ui/layout"
	"github.com/codelio/codelio/internal/ui/theme"
)

const startTimeout = 30 * time.Second

// Starter begins sessions.
type Starter interface {
	StartGuest(ctx context.Context, name string) error
	SignIn(ctx context.Context, credential string) error
}

type mode int

const (
	modeMenu mode = iota
	modeGuestName
	modeToken
	modeBusy
)

// startedMsg reports the outcome of a guest start or sign-in.
type startedMsg struct {
	from mode
	err  error
}

// EntryScreen lets the user continue as a guest or sign in.
type EntryScreen struct {
	starter      Starter
	next         func() screen.Screen
	authEnabled  bool
	menu         components.Menu
	input        components.TextInput
	mode         mode
	errMsg       string
	transitioned bool
}

var _ screen.Screen = (*EntryScreen)(nil)

// New creates an EntryScreen that replaces itself with next() once a
// session has started.
func New(starter Starter, authEnabled bool, next func() screen.Screen) *EntryScreen {
	e := &EntryScreen{
		starter:     starter,
		next:        next,
		authEnabled: authEnabled,
	}

	signInHint := ""
	if !authEnabled {
		signInHint = "set CODELIO_AUTH_SECRET to enable"
	}
	e.menu = components.NewMenu([]components.MenuItem{
		{Label: "Continue as guest", Hint: "progress stays on this machine", Action: func() tea.Cmd {
			return e.prompt(modeGuestName)
		}},
		{Label: "Sign in with token", Hint: signInHint, Disabled: !authEnabled, Action: func() tea.Cmd {
			return e.prompt(modeToken)
		}},
		{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	})
	return e
}

func (e *EntryScreen) Title() string {
	return "Welcome"
}

func (e *EntryScreen) Init() tea.Cmd {
	return nil
}

// Capturing reports whether a text prompt is open.
func (e *EntryScreen) Capturing() bool {
	return e.mode == modeGuestName || e.mode == modeToken
}

func (e *EntryScreen) prompt(m mode) tea.Cmd {
	e.mode = m
	e.errMsg = ""
	if m == modeToken {
		e.input = components.NewTextInput("paste your token", 0, true)
	} else {
		e.input = components.NewTextInput("your name", 40, false)
	}
	return e.input.Init()
}

func (e *EntryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		if msg.err != nil {
			e.mode = msg.from
			e.errMsg = describe(msg.err)
			return e, nil
		}
		return e, e.transition()

	case tea.KeyMsg:
		switch e.mode {
		case modeMenu:
			var cmd tea.Cmd
			e.menu, cmd = e.menu.Update(msg)
			return e, cmd
		case modeBusy:
			return e, nil
		}

		switch msg.String() {
		case "esc":
			e.mode = modeMenu
			e.errMsg = ""
			return e, nil
		case "enter":
			return e, e.submit()
		}
	}

	if e.Capturing() {
		var cmd tea.Cmd
		e.input, cmd = e.input.Update(msg)
		return e, cmd
	}
	return e, nil
}

func (e *EntryScreen) submit() tea.Cmd {
	from := e.mode
	value := strings.TrimSpace(e.input.Value())
	if value == "" {
		if from == modeGuestName {
			e.errMsg = "Please enter your name."
		} else {
			e.errMsg = "Please paste a token."
		}
		return nil
	}

	e.mode = modeBusy
	e.errMsg = ""
	starter := e.starter
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()

		var err error
		if from == modeToken {
			err = starter.SignIn(ctx, value)
		} else {
			err = starter.StartGuest(ctx, value)
		}
		return startedMsg{from: from, err: err}
	}
}

func (e *EntryScreen) transition() tea.Cmd {
	if e.transitioned {
		return nil
	}
	e.transitioned = true
	next := e.next()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func describe(err error) string {
	switch {
	case errors.Is(err, identity.ErrEmptyName):
		return "Please enter your name."
	case errors.Is(err, identity.ErrAuthenticationFailed):
		return identity.FailedLoginMessage
	default:
		return "Could not start the session: " + err.Error()
	}
}

func (e *EntryScreen) View(width, height int) string {
	cw := components.CardWidth(width)

	var body strings.Builder
	switch e.mode {
	case modeMenu:
		body.WriteString(theme.Body.Render("How would you like to continue?"))
		body.WriteString("\n\n")
		body.WriteString(e.menu.View())
	case modeGuestName:
		body.WriteString(theme.Body.Render("What should we call you?"))
		body.WriteString("\n\n")
		body.WriteString(e.input.View())
	case modeToken:
		body.WriteString(theme.Body.Render("Sign in with your access token"))
		body.WriteString("\n\n")
		body.WriteString(e.input.View())
	case modeBusy:
		body.WriteString(theme.Hint.Render("Please wait..."))
	}
	if e.errMsg != "" {
		body.WriteString("\n\n")
		body.WriteString(theme.ErrorText.Render(e.errMsg))
	}

	tagline := lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true).
		Render("Track the problems you have solved.")

	content := strings.Join([]string{
		RenderBanner(width, height),
		"",
		tagline,
		"",
		components.Card(body.String(), cw),
	}, "\n")

	return components.Centered(content, width, height)
}

// KeyHints returns the footer hints for the current mode.
func (e *EntryScreen) KeyHints() []layout.KeyHint {
	if e.Capturing() {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Continue"},
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}
