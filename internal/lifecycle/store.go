// internal/lifecycle/store.go
package lifecycle

import (
	"context"
	"sync"

	"application-gateway/internal/common/metrics"
)

// MemoryStore is the in-process ApplicationStore. Each Put replaces the
// full record atomically.
type MemoryStore struct {
	mu   sync.Mutex
	apps map[string]Application
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		apps: make(map[string]Application),
	}
}

func (s *MemoryStore) Put(_ context.Context, app Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.apps[app.Identity] = app
	metrics.PendingApplications.Set(float64(len(s.apps)))
	return nil
}

func (s *MemoryStore) Get(_ context.Context, identity string) (Application, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[identity]
	return app, ok, nil
}

func (s *MemoryStore) Remove(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.apps, identity)
	metrics.PendingApplications.Set(float64(len(s.apps)))
	return nil
}
