package stats

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelio/codelio/internal/catalog"
	"github.com/codelio/codelio/internal/identity"
	"github.com/codelio/codelio/internal/router"
	"github.com/codelio/codelio/internal/solved"
	"github.com/codelio/codelio/internal/store"
	"github.com/codelio/codelio/internal/view"
	"github.com/codelio/codelio/internal/workspace"
)

type nopProvider struct{}

func (nopProvider) Current(context.Context) (*identity.Identity, error) { return nil, nil }
func (nopProvider) SignIn(context.Context, string) (*identity.Identity, error) {
	return nil, errors.New("unsupported")
}
func (nopProvider) SignOut(context.Context) error                   { return nil }
func (nopProvider) Subscribe(func(*identity.Identity)) (cancel func()) { return func() {} }

func question(id, title string, d catalog.Difficulty) catalog.Question {
	return catalog.Question{
		ID:        id,
		Title:     title,
		Topic:     "Arrays",
		SubTopic:  "Basics",
		Reference: &catalog.Reference{Name: title, Difficulty: d},
	}
}

func newWorkspace(t *testing.T, questions []catalog.Question) *workspace.Workspace {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "codelio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ws := workspace.New(st.LocalStorage(), identity.NewResolver(nopProvider{}, st.LocalStorage(), nil), workspace.Options{})
	t.Cleanup(ws.Close)

	ctx := context.Background()
	require.NoError(t, ws.LoadCatalog(ctx, catalog.FeedFunc(func(context.Context) ([]catalog.Question, error) {
		return questions, nil
	})))
	_, err = ws.StartGuest(ctx, "Alice")
	require.NoError(t, err)
	return ws
}

func TestBreakdowns(t *testing.T) {
	all := []catalog.Question{
		question("q1", "Two Sum", catalog.Easy),
		question("q2", "Three Sum", catalog.Medium),
		question("q3", "Trapping Rain Water", catalog.Hard),
		question("q4", "Valid Anagram", catalog.Easy),
	}

	got := Breakdowns(all, all[:1])
	assert.Equal(t, []Breakdown{
		{Difficulty: catalog.Easy, Solved: 1, Total: 2},
		{Difficulty: catalog.Medium, Solved: 0, Total: 1},
		{Difficulty: catalog.Hard, Solved: 0, Total: 1},
	}, got)
}

func TestBreakdownsIncludesUnknownWhenPresent(t *testing.T) {
	all := []catalog.Question{
		question("q1", "Two Sum", catalog.Easy),
		{ID: "q2", Title: "Untitled", Topic: "Arrays", SubTopic: "Basics"},
	}

	got := Breakdowns(all, nil)
	require.Len(t, got, 4)
	assert.Equal(t, catalog.Unknown, got[3].Difficulty)
	assert.Equal(t, 1, got[3].Total)
}

func TestViewShowsSolvedQuestions(t *testing.T) {
	ws := newWorkspace(t, []catalog.Question{
		question("q1", "Two Sum", catalog.Easy),
		question("q2", "Three Sum", catalog.Medium),
	})
	_, err := ws.Toggle("q2")
	require.NoError(t, err)

	v := New(ws).View(100, 30)
	for _, want := range []string{"Overall", "50%", "Three Sum", "Arrays / Basics"} {
		assert.Contains(t, v, want)
	}
	assert.NotContains(t, v, "Two Sum")
}

func TestViewWithNothingSolved(t *testing.T) {
	ws := newWorkspace(t, []catalog.Question{question("q1", "Two Sum", catalog.Easy)})

	v := New(ws).View(100, 30)
	assert.True(t, strings.Contains(v, "Nothing solved yet."))
}

func TestBackKeysPop(t *testing.T) {
	ws := newWorkspace(t, nil)
	s := New(ws)

	for _, key := range []tea.KeyPressMsg{
		{Code: tea.KeyEscape},
		{Code: tea.KeyEnter},
		{Code: 'q', Text: "q"},
	} {
		_, cmd := s.Update(key)
		require.NotNil(t, cmd, "key %q", key.String())
		_, ok := cmd().(router.PopScreenMsg)
		assert.True(t, ok, "key %q should pop", key.String())
	}
}

func TestScrollClampsAtTop(t *testing.T) {
	ws := newWorkspace(t, nil)
	s := New(ws)
	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.Equal(t, 0, s.offset)
}

func TestUnmarkFromSolvedView(t *testing.T) {
	all := []catalog.Question{
		question("q1", "Two Sum", catalog.Easy),
		question("q2", "Three Sum", catalog.Medium),
		question("q3", "Valid Anagram", catalog.Easy),
	}
	ws := newWorkspace(t, all)
	for _, id := range []string{"q1", "q2", "q3"} {
		_, err := ws.Toggle(id)
		require.NoError(t, err)
	}

	s := New(ws)
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeySpace})

	assert.Equal(t, solved.Mapping{"q1": true, "q3": true}, ws.Mapping())
	snapshot := ws.Catalog.Snapshot()
	got := Breakdowns(snapshot, view.Solved(snapshot, ws.Mapping()))
	assert.Equal(t, Breakdown{Difficulty: catalog.Easy, Solved: 2, Total: 2}, got[0])
	assert.Equal(t, Breakdown{Difficulty: catalog.Medium, Solved: 0, Total: 1}, got[1])

	assert.Len(t, s.solvedQuestions(), 2)
	v := s.View(100, 30)
	assert.Contains(t, v, "Valid Anagram")
	assert.Contains(t, v, "Marked Three Sum as not solved.")

	// The cursor stays inside the shorter list.
	s.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	assert.Len(t, ws.Mapping(), 1)
}

func TestUnmarkAfterSessionEndIsIgnored(t *testing.T) {
	ws := newWorkspace(t, []catalog.Question{question("q1", "Two Sum", catalog.Easy)})
	_, err := ws.Toggle("q1")
	require.NoError(t, err)

	s := New(ws)
	tracker := ws.Tracker()
	ws.Close()

	s.Update(tea.KeyPressMsg{Code: tea.KeySpace})
	assert.True(t, tracker.IsSolved("q1"))
	assert.True(t, s.isError)
}
