package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelio/codelio/internal/store"
)

// fakeProvider is a scriptable Provider.
type fakeProvider struct {
	current    *Identity
	currentErr error
	signIn     *Identity
	signInErr  error
	signOuts   int
	subs       []func(*Identity)
}

func (f *fakeProvider) Current(context.Context) (*Identity, error) {
	return f.current, f.currentErr
}

func (f *fakeProvider) SignIn(context.Context, string) (*Identity, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.current = f.signIn
	for _, fn := range f.subs {
		fn(f.signIn)
	}
	return f.signIn, nil
}

func (f *fakeProvider) SignOut(context.Context) error {
	f.signOuts++
	f.current = nil
	for _, fn := range f.subs {
		fn(nil)
	}
	return nil
}

func (f *fakeProvider) Subscribe(fn func(*Identity)) func() {
	f.subs = append(f.subs, fn)
	return func() { f.subs = nil }
}

func TestResolveNothingStored(t *testing.T) {
	r := NewResolver(&fakeProvider{}, openLocal(t), nil)
	defer r.Close()

	assert.Equal(t, StatusUninitialized, r.Status())
	assert.Equal(t, StatusUnauthenticated, r.Resolve(context.Background()))
	_, ok := r.Current()
	assert.False(t, ok)
}

func TestResolveGuest(t *testing.T) {
	ls := openLocal(t)
	require.NoError(t, ls.Set(context.Background(), store.KeyGuestName, "Alice"))

	r := NewResolver(&fakeProvider{}, ls, nil)
	defer r.Close()

	assert.Equal(t, StatusActive, r.Resolve(context.Background()))
	s, ok := r.Current()
	require.True(t, ok)
	assert.True(t, s.IsGuest())
	assert.Equal(t, "Alice", s.DisplayName)
}

func TestResolveAuthenticatedShadowsGuest(t *testing.T) {
	ls := openLocal(t)
	ctx := context.Background()
	require.NoError(t, ls.Set(ctx, store.KeyGuestName, "Alice"))

	r := NewResolver(&fakeProvider{current: &Identity{ID: "42", DisplayName: "Ada"}}, ls, nil)
	defer r.Close()

	assert.Equal(t, StatusActive, r.Resolve(ctx))
	s, _ := r.Current()
	assert.False(t, s.IsGuest())
	assert.Equal(t, "42", s.StorageKey())

	name, ok, err := ls.Get(ctx, store.KeyGuestName)
	require.NoError(t, err)
	assert.True(t, ok, "guest name is shadowed, not cleared")
	assert.Equal(t, "Alice", name)
}

func TestResolveProviderFailureIsNoIdentity(t *testing.T) {
	r := NewResolver(&fakeProvider{currentErr: errors.New("offline")}, openLocal(t), nil)
	defer r.Close()
	assert.Equal(t, StatusUnauthenticated, r.Resolve(context.Background()))
}

func TestStartGuest(t *testing.T) {
	ls := openLocal(t)
	ctx := context.Background()
	r := NewResolver(&fakeProvider{}, ls, nil)
	defer r.Close()
	r.Resolve(ctx)

	_, err := r.StartGuest(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.Equal(t, StatusUnauthenticated, r.Status())

	s, err := r.StartGuest(ctx, " Bob ")
	require.NoError(t, err)
	assert.Equal(t, "Bob", s.DisplayName)
	assert.Equal(t, StatusActive, r.Status())

	name, _, err := ls.Get(ctx, store.KeyGuestName)
	require.NoError(t, err)
	assert.Equal(t, "Bob", name)
}

func TestSignInClearsGuestName(t *testing.T) {
	ls := openLocal(t)
	ctx := context.Background()
	p := &fakeProvider{signIn: &Identity{ID: "42", DisplayName: "Ada"}}
	r := NewResolver(p, ls, nil)
	defer r.Close()

	_, err := r.StartGuest(ctx, "Alice")
	require.NoError(t, err)

	s, err := r.SignIn(ctx, "credential")
	require.NoError(t, err)
	assert.Equal(t, KindAuthenticated, s.Kind)

	_, ok, err := ls.Get(ctx, store.KeyGuestName)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSignInFailure(t *testing.T) {
	p := &fakeProvider{signInErr: errors.New("popup closed")}
	r := NewResolver(p, openLocal(t), nil)
	defer r.Close()
	r.Resolve(context.Background())

	_, err := r.SignIn(context.Background(), "credential")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.Equal(t, StatusUnauthenticated, r.Status())
}

func TestEndSessionAuthenticated(t *testing.T) {
	p := &fakeProvider{current: &Identity{ID: "42"}}
	r := NewResolver(p, openLocal(t), nil)
	defer r.Close()
	ctx := context.Background()
	r.Resolve(ctx)

	require.NoError(t, r.EndSession(ctx))
	assert.Equal(t, 1, p.signOuts)
	assert.Equal(t, StatusUnauthenticated, r.Status())
}

func TestEndSessionGuest(t *testing.T) {
	ls := openLocal(t)
	p := &fakeProvider{}
	r := NewResolver(p, ls, nil)
	defer r.Close()
	ctx := context.Background()

	_, err := r.StartGuest(ctx, "Alice")
	require.NoError(t, err)
	require.NoError(t, r.EndSession(ctx))

	assert.Zero(t, p.signOuts)
	assert.Equal(t, StatusUnauthenticated, r.Status())
	_, ok, err := ls.Get(ctx, store.KeyGuestName)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProviderSignOutEndsSession(t *testing.T) {
	p := &fakeProvider{current: &Identity{ID: "42"}}
	r := NewResolver(p, openLocal(t), nil)
	defer r.Close()
	ctx := context.Background()
	r.Resolve(ctx)

	require.NoError(t, p.SignOut(ctx))
	assert.Equal(t, StatusUnauthenticated, r.Status())
}

func TestSessionLabel(t *testing.T) {
	assert.Equal(t, "Alice (guest)", GuestSession("Alice").Label())
	assert.Equal(t, "Ada", AuthenticatedSession(Identity{ID: "42", DisplayName: "Ada"}).Label())
	assert.Equal(t, "42", AuthenticatedSession(Identity{ID: "42"}).Label())
}
