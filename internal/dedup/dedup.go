package dedup

import (
	"context"
	"sync"
)

// Tracker records which dedup keys have already been processed. MarkSeen
// on an already-seen key is a no-op; implementations must keep the
// check-then-mark sequence safe under concurrent use.
type Tracker interface {
	Seen(ctx context.Context, key string) bool
	MarkSeen(ctx context.Context, key string) error
}

// MemoryTracker is the in-process fallback used when neither redis nor a
// ledger file is configured. Entries live for the process lifetime.
type MemoryTracker struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{keys: make(map[string]struct{})}
}

func (m *MemoryTracker) Seen(_ context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.keys[key]
	return ok
}

func (m *MemoryTracker) MarkSeen(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = struct{}{}
	return nil
}
