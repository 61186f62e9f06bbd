// Package workspace ties the catalog, the session resolver and the active
// solved-state tracker together. The UI and the commands share one
// Workspace instead of reaching for package-level state.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/codelio/codelio/internal/catalog"
	"github.com/codelio/codelio/internal/identity"
	"github.com/codelio/codelio/internal/solved"
	"github.com/codelio/codelio/internal/store"
	"github.com/codelio/codelio/internal/view"
)

// ErrNoSession is returned when an operation needs an active session.
var ErrNoSession = errors.New("no active session")

// RemoteFunc opens the remote document store. It is called at most once,
// on the first authenticated session.
type RemoteFunc func(ctx context.Context) (solved.Documents, error)

// Options configures a Workspace.
type Options struct {
	Logger       *zap.Logger
	WriteTimeout time.Duration
	Remote       RemoteFunc
}

// Workspace is the application context.
type Workspace struct {
	Catalog  *catalog.Store
	Resolver *identity.Resolver

	local        solved.Backend
	remoteFn     RemoteFunc
	writeTimeout time.Duration
	logger       *zap.Logger

	mu      sync.Mutex
	remote  solved.Backend
	tracker *solved.Tracker
	session identity.Session
}

// New creates a workspace with an empty catalog.
func New(storage store.LocalStorage, resolver *identity.Resolver, opts Options) *Workspace {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Workspace{
		Catalog:      catalog.NewStore(),
		Resolver:     resolver,
		local:        solved.NewLocalBackend(storage),
		remoteFn:     opts.Remote,
		writeTimeout: opts.WriteTimeout,
		logger:       opts.Logger,
	}
}

// LoadCatalog fetches feed into the catalog. On failure the catalog is left
// empty, the error is logged and returned.
func (w *Workspace) LoadCatalog(ctx context.Context, feed catalog.Feed) error {
	questions, err := feed.Fetch(ctx)
	if err != nil {
		w.logger.Warn("fetch catalog failed", zap.Error(err))
		w.Catalog.Load(nil)
		return fmt.Errorf("load catalog: %w", err)
	}
	w.Catalog.Load(questions)
	w.logger.Info("catalog loaded", zap.Int("questions", len(questions)))
	return nil
}

// Resume resolves the saved session and begins it when there is one.
func (w *Workspace) Resume(ctx context.Context) (identity.Status, error) {
	status := w.Resolver.Resolve(ctx)
	if status != identity.StatusActive {
		return status, nil
	}
	sess, _ := w.Resolver.Current()
	if _, err := w.Begin(ctx, sess); err != nil {
		return status, err
	}
	return status, nil
}

// StartGuest starts and begins a guest session.
func (w *Workspace) StartGuest(ctx context.Context, name string) (*solved.Tracker, error) {
	sess, err := w.Resolver.StartGuest(ctx, name)
	if err != nil {
		return nil, err
	}
	return w.Begin(ctx, sess)
}

// SignIn authenticates with credential and begins the session.
func (w *Workspace) SignIn(ctx context.Context, credential string) (*solved.Tracker, error) {
	sess, err := w.Resolver.SignIn(ctx, credential)
	if err != nil {
		return nil, err
	}
	return w.Begin(ctx, sess)
}

// Begin closes the previous tracker, picks the backend for sess and loads
// a new tracker from it.
func (w *Workspace) Begin(ctx context.Context, sess identity.Session) (*solved.Tracker, error) {
	backend, err := w.backendFor(ctx, sess)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	prev := w.tracker
	t := solved.NewTracker(backend, sess.StorageKey(), solved.Options{
		WriteTimeout: w.writeTimeout,
		Logger:       w.logger.With(zap.Stringer("kind", sess.Kind)),
	})
	w.tracker = t
	w.session = sess
	w.mu.Unlock()

	if prev != nil {
		prev.Close()
	}

	t.Load(ctx)
	w.logger.Debug("session begun",
		zap.Stringer("kind", sess.Kind),
		zap.Int("solved", t.Count()),
	)
	return t, nil
}

func (w *Workspace) backendFor(ctx context.Context, sess identity.Session) (solved.Backend, error) {
	if sess.IsGuest() {
		return w.local, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.remote != nil {
		return w.remote, nil
	}
	if w.remoteFn == nil {
		return nil, fmt.Errorf("open remote store: %w", errors.New("remote store is not configured"))
	}
	docs, err := w.remoteFn(ctx)
	if err != nil {
		return nil, fmt.Errorf("open remote store: %w", err)
	}
	w.remote = solved.NewRemoteBackend(docs)
	return w.remote, nil
}

// Tracker returns the active tracker, or nil.
func (w *Workspace) Tracker() *solved.Tracker {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tracker
}

// Session returns the session the active tracker belongs to.
func (w *Workspace) Session() (identity.Session, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session, w.tracker != nil
}

// Toggle flips id in the active session.
func (w *Workspace) Toggle(id string) (bool, error) {
	t := w.Tracker()
	if t == nil {
		return false, ErrNoSession
	}
	if t.Status() != solved.StatusReady {
		return false, solved.ErrNotReady
	}
	return t.Toggle(id), nil
}

// Mapping returns a copy of the active solved mapping, empty without a
// session.
func (w *Workspace) Mapping() solved.Mapping {
	if t := w.Tracker(); t != nil {
		return t.Snapshot()
	}
	return solved.Mapping{}
}

// Progress reports catalog progress for the active session.
func (w *Workspace) Progress() view.Progress {
	return view.ComputeProgress(w.Catalog.Snapshot(), w.Mapping())
}

// End flushes and drops the tracker and ends the resolver session.
func (w *Workspace) End(ctx context.Context) error {
	w.closeTracker()
	if err := w.Resolver.EndSession(ctx); err != nil {
		w.logger.Warn("end session failed", zap.Error(err))
		return err
	}
	return nil
}

// Close flushes pending writes. The session stays saved.
func (w *Workspace) Close() {
	w.closeTracker()
}

func (w *Workspace) closeTracker() {
	w.mu.Lock()
	t := w.tracker
	w.tracker = nil
	w.session = identity.Session{}
	w.mu.Unlock()
	if t != nil {
		t.Close()
	}
}
