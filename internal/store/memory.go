// internal/store/memory.go
//
// In-memory registry of live game sessions.
// Sessions are ephemeral by nature: each one is a running game.Runner and
// disappears when the process restarts.
//
// Characteristics:
//   - Stores *game.Runner values keyed by session id in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Delete and Close stop the runners they remove.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dmitryfil/da-word-rain/internal/game"
)

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = errors.New("session not found")

// Store tracks live sessions.
type Store interface {
	// Save registers or replaces a runner under its session id.
	Save(ctx context.Context, r *game.Runner) error

	// Get retrieves a runner by session id.
	Get(ctx context.Context, id string) (*game.Runner, error)

	// Delete stops and forgets a runner.
	Delete(ctx context.Context, id string) error

	// Len is the number of live sessions.
	Len() int

	// Close stops every runner.
	Close()
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex
	sessions map[string]*game.Runner
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*game.Runner)}
}

func (m *memory) Save(ctx context.Context, r *game.Runner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.sessions[r.ID()]; ok && old != r {
		old.Stop()
	}
	m.sessions[r.ID()] = r
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*game.Runner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.sessions[id]; ok {
		return r, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	r, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	r.Stop()
	log.Info().Str("session", id).Msg("session deleted")
	return nil
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.sessions {
		r.Stop()
		delete(m.sessions, id)
	}
}
