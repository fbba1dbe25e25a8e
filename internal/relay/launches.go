package relay

import (
	"context"
	"sync"
)

// Launches remembers which inline game message each user launched last, so
// a later score can be written to that message's score board.
type Launches interface {
	Remember(ctx context.Context, userID int64, inlineMessageID string) error
	Lookup(ctx context.Context, userID int64) (string, bool, error)
}

// MemoryLaunches is an in-process Launches; entries are lost on restart.
type MemoryLaunches struct {
	mu  sync.RWMutex
	ids map[int64]string
}

// NewMemoryLaunches returns an empty MemoryLaunches.
func NewMemoryLaunches() *MemoryLaunches {
	return &MemoryLaunches{ids: make(map[int64]string)}
}

func (m *MemoryLaunches) Remember(_ context.Context, userID int64, inlineMessageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[userID] = inlineMessageID
	return nil
}

func (m *MemoryLaunches) Lookup(_ context.Context, userID int64) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.ids[userID]
	return id, ok, nil
}
