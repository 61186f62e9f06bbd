package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codelio/codelio/internal/store"
)

// Status is the resolver's state.
type Status int

const (
	StatusUninitialized   Status = iota // startup resolution not finished
	StatusUnauthenticated               // no session, the entry screen shows
	StatusActive                        // a guest or authenticated session is active
)

func (s Status) String() string {
	switch s {
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusActive:
		return "active"
	default:
		return "uninitialized"
	}
}

// Resolver decides which session is active and keeps the saved guest name
// in sync with it.
type Resolver struct {
	provider Provider
	storage  store.LocalStorage
	logger   *zap.Logger

	mu      sync.Mutex
	status  Status
	session Session
	cancel  func()
}

// NewResolver creates a resolver and subscribes it to provider sign-outs.
func NewResolver(provider Provider, storage store.LocalStorage, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{provider: provider, storage: storage, logger: logger}
	r.cancel = provider.Subscribe(r.onIdentity)
	return r
}

// Close stops listening to the provider.
func (r *Resolver) Close() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Status returns the current state.
func (r *Resolver) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Current returns the active session. ok is false unless Status is Active.
func (r *Resolver) Current() (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session, r.status == StatusActive
}

// Resolve reads the provider's identity and the saved guest name
// concurrently. An authenticated identity wins over the guest name, which
// stays stored. Read failures are logged and treated as absent.
func (r *Resolver) Resolve(ctx context.Context) Status {
	var (
		authed    *Identity
		guestName string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		id, err := r.provider.Current(gctx)
		if err != nil {
			r.logger.Warn("resolve identity failed", zap.Error(err))
			return nil
		}
		authed = id
		return nil
	})
	g.Go(func() error {
		name, ok, err := r.storage.Get(gctx, store.KeyGuestName)
		if err != nil {
			r.logger.Warn("read guest name failed", zap.Error(err))
			return nil
		}
		if ok {
			guestName = name
		}
		return nil
	})
	_ = g.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case authed != nil:
		r.session = AuthenticatedSession(*authed)
		r.status = StatusActive
	case guestName != "":
		r.session = GuestSession(guestName)
		r.status = StatusActive
	default:
		r.session = Session{}
		r.status = StatusUnauthenticated
	}
	r.logger.Debug("session resolved",
		zap.Stringer("status", r.status),
		zap.Stringer("kind", r.session.Kind),
	)
	return r.status
}

// StartGuest saves name and activates a guest session. Any held
// authenticated identity is dropped without signing out remotely.
func (r *Resolver) StartGuest(ctx context.Context, name string) (Session, error) {
	name, err := normalizeName(name)
	if err != nil {
		return Session{}, err
	}
	if err := r.storage.Set(ctx, store.KeyGuestName, name); err != nil {
		return Session{}, fmt.Errorf("save guest name: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = GuestSession(name)
	r.status = StatusActive
	return r.session, nil
}

// CompleteAuthentication activates an authenticated session for id and
// removes the saved guest name.
func (r *Resolver) CompleteAuthentication(ctx context.Context, id Identity) (Session, error) {
	if err := r.storage.Remove(ctx, store.KeyGuestName); err != nil {
		return Session{}, fmt.Errorf("remove guest name: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = AuthenticatedSession(id)
	r.status = StatusActive
	return r.session, nil
}

// SignIn runs the provider sign-in. Failures are reported as
// ErrAuthenticationFailed and leave the current state untouched.
func (r *Resolver) SignIn(ctx context.Context, credential string) (Session, error) {
	id, err := r.provider.SignIn(ctx, credential)
	if err != nil {
		r.logger.Warn("sign in failed", zap.Error(err))
		return Session{}, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	if id == nil {
		return Session{}, fmt.Errorf("%w: %w", ErrAuthenticationFailed, errors.New("no identity returned"))
	}
	return r.CompleteAuthentication(ctx, *id)
}

// EndSession signs an authenticated user out of the provider, clears the
// saved guest name and returns to the unauthenticated state.
func (r *Resolver) EndSession(ctx context.Context) error {
	r.mu.Lock()
	authenticated := r.status == StatusActive && !r.session.IsGuest()
	r.mu.Unlock()

	var errs []error
	if authenticated {
		if err := r.provider.SignOut(ctx); err != nil {
			errs = append(errs, fmt.Errorf("sign out: %w", err))
		}
	}
	if err := r.storage.Remove(ctx, store.KeyGuestName); err != nil {
		errs = append(errs, fmt.Errorf("remove guest name: %w", err))
	}

	r.mu.Lock()
	r.session = Session{}
	r.status = StatusUnauthenticated
	r.mu.Unlock()
	return errors.Join(errs...)
}

// onIdentity ends an authenticated session when the provider reports a
// sign-out.
func (r *Resolver) onIdentity(id *Identity) {
	if id != nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusActive && !r.session.IsGuest() {
		r.logger.Info("provider signed out, ending session")
		r.session = Session{}
		r.status = StatusUnauthenticated
	}
}
