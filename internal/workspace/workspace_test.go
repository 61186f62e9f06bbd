package workspace

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelio/codelio/internal/catalog"
	"github.com/codelio/codelio/internal/identity"
	"github.com/codelio/codelio/internal/solved"
	"github.com/codelio/codelio/internal/store"
	"github.com/codelio/codelio/internal/view"
)

type stubProvider struct {
	user *identity.Identity
}

func (p *stubProvider) Current(context.Context) (*identity.Identity, error) { return nil, nil }

func (p *stubProvider) SignIn(_ context.Context, cred string) (*identity.Identity, error) {
	if cred != "good" {
		return nil, errors.New("rejected")
	}
	return p.user, nil
}

func (p *stubProvider) SignOut(context.Context) error { return nil }

func (p *stubProvider) Subscribe(func(*identity.Identity)) func() { return func() {} }

type memDocs struct {
	mu   sync.Mutex
	docs map[string]map[string]bool
}

func (d *memDocs) Get(_ context.Context, id string) (map[string]bool, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.docs[id]
	if !ok {
		return map[string]bool{}, false, nil
	}
	return solved.Mapping(m).Clone(), true, nil
}

func (d *memDocs) Put(_ context.Context, id string, m map[string]bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.docs[id] = solved.Mapping(m).Clone()
	return nil
}

type fixture struct {
	ws      *Workspace
	storage store.LocalStorage
	docs    *memDocs
	opens   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "codelio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	f := &fixture{storage: s.LocalStorage(), docs: &memDocs{docs: map[string]map[string]bool{}}}
	provider := &stubProvider{user: &identity.Identity{ID: "42", DisplayName: "Ada"}}
	resolver := identity.NewResolver(provider, f.storage, nil)
	t.Cleanup(resolver.Close)

	f.ws = New(f.storage, resolver, Options{
		Remote: func(context.Context) (solved.Documents, error) {
			f.opens++
			return f.docs, nil
		},
	})
	t.Cleanup(f.ws.Close)
	return f
}

func oneArraysQuestion() catalog.Feed {
	return catalog.FeedFunc(func(context.Context) ([]catalog.Question, error) {
		return []catalog.Question{{
			ID: "q1", Title: "Two Sum", Topic: "Arrays", SubTopic: "General",
			Reference: &catalog.Reference{Name: "Two Sum", Difficulty: catalog.Easy},
		}}, nil
	})
}

func TestToggleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ws.LoadCatalog(ctx, oneArraysQuestion()))

	_, err := f.ws.StartGuest(ctx, "Alice")
	require.NoError(t, err)

	on, err := f.ws.Toggle("q1")
	require.NoError(t, err)
	assert.True(t, on)
	assert.Equal(t, solved.Mapping{"q1": true}, f.ws.Mapping())
	assert.Equal(t, view.Progress{Solved: 1, Total: 1, Percent: 100}, f.ws.Progress())

	on, err = f.ws.Toggle("q1")
	require.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, solved.Mapping{}, f.ws.Mapping())
	assert.Equal(t, 0, f.ws.Progress().Percent)
}

func TestStartGuestSurfacesStoredMapping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.storage.Set(ctx, store.KeySolvedQuestions, `{"q1":true}`))

	tr, err := f.ws.StartGuest(ctx, "Bob")
	require.NoError(t, err)
	assert.True(t, tr.IsSolved("q1"))
	assert.Equal(t, solved.StatusReady, tr.Status())
}

func TestGuestAuthGuestKeepsMappingsDisjoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ws.StartGuest(ctx, "Alice")
	require.NoError(t, err)
	_, err = f.ws.Toggle("g1")
	require.NoError(t, err)

	tr, err := f.ws.SignIn(ctx, "good")
	require.NoError(t, err)
	assert.False(t, tr.IsSolved("g1"), "guest progress must not leak into the account")
	_, err = f.ws.Toggle("a1")
	require.NoError(t, err)

	tr, err = f.ws.StartGuest(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, solved.Mapping{"g1": true}, tr.Snapshot())

	got, _, err := f.docs.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a1": true}, got)
	assert.Equal(t, 1, f.opens)
}

func TestSignInFailureKeepsNoSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.ws.SignIn(context.Background(), "bad")
	assert.ErrorIs(t, err, identity.ErrAuthenticationFailed)
	assert.Nil(t, f.ws.Tracker())

	_, err = f.ws.Toggle("q1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestResumeGuest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.storage.Set(ctx, store.KeyGuestName, "Alice"))

	status, err := f.ws.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, identity.StatusActive, status)

	sess, ok := f.ws.Session()
	require.True(t, ok)
	assert.Equal(t, "Alice", sess.DisplayName)
}

func TestResumeNothing(t *testing.T) {
	f := newFixture(t)
	status, err := f.ws.Resume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, identity.StatusUnauthenticated, status)
	assert.Nil(t, f.ws.Tracker())
}

func TestEndClearsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ws.StartGuest(ctx, "Alice")
	require.NoError(t, err)
	_, err = f.ws.Toggle("q1")
	require.NoError(t, err)

	require.NoError(t, f.ws.End(ctx))
	assert.Nil(t, f.ws.Tracker())
	assert.Equal(t, identity.StatusUnauthenticated, f.ws.Resolver.Status())

	raw, ok, err := f.storage.Get(ctx, store.KeySolvedQuestions)
	require.NoError(t, err)
	require.True(t, ok, "pending write is flushed on end")
	assert.JSONEq(t, `{"q1":true}`, raw)
}

func TestLoadCatalogFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ws.LoadCatalog(ctx, oneArraysQuestion()))

	err := f.ws.LoadCatalog(ctx, catalog.FeedFunc(func(context.Context) ([]catalog.Question, error) {
		return nil, errors.New("offline")
	}))
	assert.Error(t, err)
	assert.Zero(t, f.ws.Catalog.Len())
}

func TestAddTopicOnEmptyCatalog(t *testing.T) {
	f := newFixture(t)
	_, err := f.ws.Catalog.AddTopic("Graphs")
	require.NoError(t, err)

	groups := view.Group(f.ws.Catalog.Snapshot())
	require.Len(t, groups, 1)
	assert.Equal(t, "Graphs", groups[0].Name)
	require.Len(t, groups[0].SubTopics, 1)
	assert.Equal(t, catalog.DefaultSubTopic, groups[0].SubTopics[0].Name)
	assert.Len(t, groups[0].SubTopics[0].Questions, 1)
}

func TestRemoteNotConfigured(t *testing.T) {
	f := newFixture(t)
	f.ws.remoteFn = nil

	_, err := f.ws.SignIn(context.Background(), "good")
	assert.Error(t, err)
}
