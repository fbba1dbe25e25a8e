// internal/store/memory.go
//
// In-memory registry of live game sessions.
//
// Characteristics:
//   - Stores *play.Runner values keyed by session ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Sweep closes and drops sessions idle longer than a TTL.
//   - State is lost when the process restarts; leaderboards are not, they
//     live in storage.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/basfurolhi/unscramble/internal/play"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("store: session not found")

// Store holds live sessions.
type Store interface {
	// Save registers or replaces the session under id.
	Save(ctx context.Context, id string, r *play.Runner) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*play.Runner, error)

	// Delete closes and removes a session. Unknown IDs are ignored.
	Delete(ctx context.Context, id string) error

	// Sweep closes sessions whose last activity is before cutoff and
	// returns how many were removed.
	Sweep(ctx context.Context, cutoff time.Time) int

	// Len reports the number of live sessions.
	Len() int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex           // guards sessions map
	sessions map[string]*play.Runner // keyed by session ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*play.Runner)}
}

// Save adds or replaces the session; a replaced runner is closed.
func (m *memory) Save(ctx context.Context, id string, r *play.Runner) error {
	m.mu.Lock()
	old := m.sessions[id]
	m.sessions[id] = r
	m.mu.Unlock()
	if old != nil && old != r {
		old.Close()
	}
	return nil
}

// Get looks up a session by ID.
func (m *memory) Get(ctx context.Context, id string) (*play.Runner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.sessions[id]; ok {
		return r, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	r := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if r != nil {
		r.Close()
	}
	return nil
}

func (m *memory) Sweep(ctx context.Context, cutoff time.Time) int {
	m.mu.Lock()
	var idle []*play.Runner
	for id, r := range m.sessions {
		if r.LastActive().Before(cutoff) {
			idle = append(idle, r)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	// Close outside the lock; each waits for its loop to exit.
	for _, r := range idle {
		r.Close()
	}
	if len(idle) > 0 {
		log.Debug().Int("closed", len(idle)).Msg("idle sessions swept")
	}
	return len(idle)
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
