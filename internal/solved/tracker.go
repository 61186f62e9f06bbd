package solved

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status is the tracker's lifecycle state.
type Status int

const (
	StatusUninitialized Status = iota // backend chosen, nothing read yet
	StatusLoading                     // backend read in flight
	StatusReady                       // mapping populated (possibly empty)
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// ErrNotReady is returned when a toggle arrives before the mapping is
// loaded.
var ErrNotReady = errors.New("solved questions not loaded yet")

// DefaultWriteTimeout bounds a single backend write.
const DefaultWriteTimeout = 5 * time.Second

// Options configures a Tracker.
type Options struct {
	WriteTimeout time.Duration
	Logger       *zap.Logger
}

// Tracker holds the solved mapping for one session. Toggles update memory
// immediately; the whole mapping is then written to the backend by a single
// writer goroutine, in order, at most once per scheduled snapshot. Write
// failures are logged and neither retried nor rolled back.
type Tracker struct {
	backend      Backend
	key          string
	writeTimeout time.Duration
	logger       *zap.Logger

	mu      sync.Mutex
	status  Status
	solved  Mapping
	pending Mapping // latest snapshot waiting for the writer
	dirty   bool
	closed  bool

	wake chan struct{}
	done chan struct{}
}

// NewTracker creates a tracker persisting under key in backend and starts
// its writer. Call Close to flush and stop it.
func NewTracker(backend Backend, key string, opts Options) *Tracker {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	t := &Tracker{
		backend:      backend,
		key:          key,
		writeTimeout: opts.WriteTimeout,
		logger:       opts.Logger,
		solved:       Mapping{},
		wake:         make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
	go t.run()
	return t
}

// Status returns the lifecycle state.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Load reads the mapping from the backend and returns a copy of it. A
// failed read is logged and leaves the mapping empty; the tracker is Ready
// afterwards either way. A result arriving after Close is discarded.
func (t *Tracker) Load(ctx context.Context) Mapping {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return Mapping{}
	}
	t.status = StatusLoading
	t.mu.Unlock()

	m, err := t.backend.Load(ctx, t.key)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return Mapping{}
	}
	if err != nil {
		t.logger.Warn("load solved questions failed",
			zap.String("key", t.key),
			zap.Error(err),
		)
		m = Mapping{}
	}
	t.solved = m.Clone()
	t.status = StatusReady
	return t.solved.Clone()
}

// Toggle flips the solved state of id and schedules a write of the whole
// mapping. It returns the new state. Before the tracker is Ready the toggle
// is ignored, so a partial mapping never overwrites the stored one.
func (t *Tracker) Toggle(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status != StatusReady {
		t.logger.Debug("toggle ignored before load",
			zap.String("id", id),
			zap.Stringer("status", t.status),
		)
		return t.solved[id]
	}

	now := !t.solved[id]
	if now {
		t.solved[id] = true
	} else {
		delete(t.solved, id)
	}

	if !t.closed {
		t.pending = t.solved.Clone()
		t.dirty = true
		select {
		case t.wake <- struct{}{}:
		default:
		}
	}
	return now
}

// IsSolved reports whether id is solved.
func (t *Tracker) IsSolved(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.solved[id]
}

// Snapshot returns a copy of the mapping.
func (t *Tracker) Snapshot() Mapping {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.solved.Clone()
}

// Count returns the number of solved ids.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.solved)
}

// Close flushes the pending write and stops the writer. Toggles after
// Close only change memory. Close is idempotent.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		<-t.done
		return
	}
	t.closed = true
	close(t.wake)
	t.mu.Unlock()
	<-t.done
}

func (t *Tracker) run() {
	defer close(t.done)
	for range t.wake {
		t.flush()
	}
	t.flush()
}

func (t *Tracker) flush() {
	t.mu.Lock()
	if !t.dirty {
		t.mu.Unlock()
		return
	}
	m := t.pending
	t.pending, t.dirty = nil, false
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), t.writeTimeout)
	defer cancel()
	if err := t.backend.Save(ctx, t.key, m); err != nil {
		t.logger.Error("save solved questions failed",
			zap.String("key", t.key),
			zap.Int("solved", len(m)),
			zap.Error(err),
		)
	}
}
