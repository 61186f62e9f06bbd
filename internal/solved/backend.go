package solved

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/codelio/codelio/internal/store"
)

// Mapping records which question ids are solved. Presence means solved.
type Mapping map[string]bool

// Clone returns an independent copy holding only solved entries.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for id, ok := range m {
		if ok {
			out[id] = true
		}
	}
	return out
}

// Backend loads and saves a whole mapping under a key.
type Backend interface {
	// Load returns the stored mapping, or an empty one when nothing is
	// stored under key.
	Load(ctx context.Context, key string) (Mapping, error)

	// Save overwrites the mapping stored under key.
	Save(ctx context.Context, key string, m Mapping) error
}

// LocalBackend keeps the guest mapping as JSON in local storage. There is
// one guest mapping per machine, so the key argument is ignored.
type LocalBackend struct {
	storage store.LocalStorage
}

// NewLocalBackend creates a LocalBackend over storage.
func NewLocalBackend(storage store.LocalStorage) *LocalBackend {
	return &LocalBackend{storage: storage}
}

func (b *LocalBackend) Load(ctx context.Context, _ string) (Mapping, error) {
	raw, ok, err := b.storage.Get(ctx, store.KeySolvedQuestions)
	if err != nil {
		return Mapping{}, err
	}
	if !ok || raw == "" {
		return Mapping{}, nil
	}

	var m Mapping
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return Mapping{}, fmt.Errorf("decode solved mapping: %w", err)
	}
	return m.Clone(), nil
}

func (b *LocalBackend) Save(ctx context.Context, _ string, m Mapping) error {
	data, err := json.Marshal(m.Clone())
	if err != nil {
		return fmt.Errorf("encode solved mapping: %w", err)
	}
	return b.storage.Set(ctx, store.KeySolvedQuestions, string(data))
}

// Documents is the remote per-identity document store.
type Documents interface {
	Get(ctx context.Context, id string) (map[string]bool, bool, error)
	Put(ctx context.Context, id string, solved map[string]bool) error
}

// RemoteBackend keeps each identity's mapping in its own remote document.
type RemoteBackend struct {
	docs Documents
}

// NewRemoteBackend creates a RemoteBackend over docs.
func NewRemoteBackend(docs Documents) *RemoteBackend {
	return &RemoteBackend{docs: docs}
}

func (b *RemoteBackend) Load(ctx context.Context, key string) (Mapping, error) {
	solved, _, err := b.docs.Get(ctx, key)
	if err != nil {
		return Mapping{}, err
	}
	return Mapping(solved).Clone(), nil
}

func (b *RemoteBackend) Save(ctx context.Context, key string, m Mapping) error {
	return b.docs.Put(ctx, key, m.Clone())
}
