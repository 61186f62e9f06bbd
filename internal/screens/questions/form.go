package questions

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/codelio/codelio/internal/catalog"
	"github.com/codelio/codelio/internal/ui/components"
	"github.com/codelio/codelio/internal/ui/theme"
)

const (
	fieldTitle = iota
	fieldDifficulty
	fieldURL
	fieldCount
)

// questionForm collects a new question for one topic/sub-topic.
type questionForm struct {
	topic      string
	subTopic   string
	title      components.TextInput
	difficulty components.Choice
	url        components.TextInput
	focus      int
}

func newQuestionForm(topic, subTopic string) questionForm {
	opts := make([]string, 0, len(catalog.Difficulties))
	for _, d := range catalog.Difficulties {
		opts = append(opts, string(d))
	}
	f := questionForm{
		topic:      topic,
		subTopic:   subTopic,
		title:      components.NewTextInput("problem title", 120, false),
		difficulty: components.NewChoice("", opts),
		url:        components.NewTextInput("https://… (optional)", 300, false),
	}
	f.url.Blur()
	return f
}

func (f questionForm) Init() tea.Cmd {
	return f.title.Init()
}

// value returns the form contents as a catalog input.
func (f questionForm) value() catalog.NewQuestion {
	title := strings.TrimSpace(f.title.Value())
	return catalog.NewQuestion{
		Title:      title,
		Name:       title,
		Difficulty: f.difficulty.Value(),
		ProblemURL: strings.TrimSpace(f.url.Value()),
	}
}

// move shifts focus by delta, wrapping.
func (f questionForm) move(delta int) (questionForm, tea.Cmd) {
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	f.title.Blur()
	f.url.Blur()
	f.difficulty.Focused = false

	switch f.focus {
	case fieldTitle:
		return f, f.title.Focus()
	case fieldURL:
		return f, f.url.Focus()
	default:
		f.difficulty.Focused = true
		return f, nil
	}
}

func (f questionForm) Update(msg tea.Msg) (questionForm, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "tab", "down":
			return f.move(1)
		case "shift+tab", "up":
			return f.move(-1)
		}
	}

	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDifficulty:
		f.difficulty, cmd = f.difficulty.Update(msg)
	case fieldURL:
		f.url, cmd = f.url.Update(msg)
	}
	return f, cmd
}

func (f questionForm) View() string {
	label := func(i int, s string) string {
		if i == f.focus {
			return theme.Selected.Render(s)
		}
		return theme.Body.Render(s)
	}
	lines := []string{
		theme.Hint.Render("New question in " + f.topic + " / " + f.subTopic),
		label(fieldTitle, "Title       ") + f.title.View(),
		label(fieldDifficulty, "Difficulty  ") + f.difficulty.View(),
		label(fieldURL, "URL         ") + f.url.View(),
	}
	return strings.Join(lines, "\n")
}
