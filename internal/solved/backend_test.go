package solved

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelio/codelio/internal/store"
)

func openLocal(t *testing.T) store.LocalStorage {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "codelio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s.LocalStorage()
}

func TestMappingCloneDropsFalse(t *testing.T) {
	m := Mapping{"a": true, "b": false}
	c := m.Clone()
	assert.Equal(t, Mapping{"a": true}, c)

	c["z"] = true
	assert.NotContains(t, m, "z")
}

func TestLocalBackendRoundTrip(t *testing.T) {
	ls := openLocal(t)
	b := NewLocalBackend(ls)
	ctx := context.Background()

	m, err := b.Load(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, m)

	require.NoError(t, b.Save(ctx, "", Mapping{"q1": true}))

	raw, ok, err := ls.Get(ctx, store.KeySolvedQuestions)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"q1":true}`, raw)

	m, err = b.Load(ctx, "ignored")
	require.NoError(t, err)
	assert.Equal(t, Mapping{"q1": true}, m)
}

func TestLocalBackendCorruptValue(t *testing.T) {
	ls := openLocal(t)
	require.NoError(t, ls.Set(context.Background(), store.KeySolvedQuestions, "not json"))

	m, err := NewLocalBackend(ls).Load(context.Background(), "")
	assert.Error(t, err)
	assert.Empty(t, m)
}

// fakeDocs is an in-memory Documents.
type fakeDocs struct {
	docs map[string]map[string]bool
	err  error
}

func (f *fakeDocs) Get(_ context.Context, id string) (map[string]bool, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	d, ok := f.docs[id]
	if !ok {
		return map[string]bool{}, false, nil
	}
	return d, true, nil
}

func (f *fakeDocs) Put(_ context.Context, id string, solved map[string]bool) error {
	if f.err != nil {
		return f.err
	}
	f.docs[id] = solved
	return nil
}

func TestRemoteBackendScopesByKey(t *testing.T) {
	docs := &fakeDocs{docs: map[string]map[string]bool{}}
	b := NewRemoteBackend(docs)
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, "alice", Mapping{"q1": true}))

	m, err := b.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, Mapping{"q1": true}, m)

	m, err = b.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestRemoteBackendError(t *testing.T) {
	boom := errors.New("denied")
	b := NewRemoteBackend(&fakeDocs{docs: map[string]map[string]bool{}, err: boom})

	_, err := b.Load(context.Background(), "alice")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, b.Save(context.Background(), "alice", Mapping{}), boom)
}
