// internal/lifecycle/cooldown.go
package lifecycle

import (
	"context"
	"sync"
	"time"
)

// MemoryLedger is the in-process CooldownLedger. Expired entries are
// evicted lazily, on the read that observes them.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		entries: make(map[string]time.Time),
	}
}

func (l *MemoryLedger) IsBlocked(_ context.Context, identity string, now time.Time) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	blockedUntil, ok := l.entries[identity]
	if !ok {
		return false, 0, nil
	}
	if !blockedUntil.After(now) {
		delete(l.entries, identity)
		return false, 0, nil
	}
	return true, blockedUntil.Sub(now), nil
}

func (l *MemoryLedger) Block(_ context.Context, identity string, now time.Time, duration time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[identity] = now.Add(duration)
	return nil
}
