package memory

import (
	"context"
	"sync"

	audit "ledger/pkg/platform/audit"
)

// InMemoryStore is a Sink that keeps delivered notifications per audience.
// It backs the in-memory deployment and service tests.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[audit.Audience][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[audit.Audience][]audit.Event)}
}

func (s *InMemoryStore) Deliver(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.Audience] = append(s.events[event.Audience], event)
	return nil
}

// ListByAudience returns notifications delivered to audience in delivery order.
func (s *InMemoryStore) ListByAudience(_ context.Context, audience audit.Audience) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[audience]...), nil
}

// ListByKind returns every delivered notification of kind.
func (s *InMemoryStore) ListByKind(_ context.Context, kind audit.Kind) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.Event
	for _, events := range s.events {
		for _, e := range events {
			if e.Kind == kind {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[audit.Audience][]audit.Event)
}
