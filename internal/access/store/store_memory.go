// Package store persists access events in memory or in Postgres. Events are
// append-only: there is no update or delete.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"ledger/internal/access/models"
	id "ledger/pkg/domain"
	"ledger/pkg/platform/sentinel"
)

type InMemory struct {
	mu     sync.RWMutex
	events map[id.AccessEventID]*models.AccessEvent
}

func NewInMemory() *InMemory {
	return &InMemory{events: make(map[id.AccessEventID]*models.AccessEvent)}
}

func (s *InMemory) Save(_ context.Context, e *models.AccessEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.events[e.ID]; exists {
		return sentinel.ErrConflict
	}
	s.events[e.ID] = e.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, eventID id.AccessEventID) (*models.AccessEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return e.Clone(), nil
}

func (s *InMemory) ListByUser(_ context.Context, userID id.UserID, r models.Range, page id.Page) ([]*models.AccessEvent, int, error) {
	all := s.collect(func(e *models.AccessEvent) bool {
		return e.UserID == userID && r.Contains(e.OccurredAt)
	})
	return id.Paginate(all, page), len(all), nil
}

func (s *InMemory) ListByOrganization(_ context.Context, orgID id.OrganizationID, r models.Range, page id.Page) ([]*models.AccessEvent, int, error) {
	all := s.collect(func(e *models.AccessEvent) bool {
		return e.OrganizationID == orgID && r.Contains(e.OccurredAt)
	})
	return id.Paginate(all, page), len(all), nil
}

func (s *InMemory) ListUnauthorized(_ context.Context, filter models.UnauthorizedFilter, limit int) ([]*models.AccessEvent, error) {
	all := s.collect(filter.Matches)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *InMemory) ListByOrganizationSince(_ context.Context, orgID id.OrganizationID, since time.Time) ([]*models.AccessEvent, error) {
	return s.collect(func(e *models.AccessEvent) bool {
		return e.OrganizationID == orgID && !e.OccurredAt.Before(since)
	}), nil
}

func (s *InMemory) CountByOrganization(_ context.Context, orgID id.OrganizationID) (int, error) {
	return s.count(func(e *models.AccessEvent) bool { return e.OrganizationID == orgID }), nil
}

func (s *InMemory) CountAuthorizedByOrganization(_ context.Context, orgID id.OrganizationID) (int, error) {
	return s.count(func(e *models.AccessEvent) bool {
		return e.OrganizationID == orgID && e.Authorized
	}), nil
}

func (s *InMemory) count(match func(*models.AccessEvent) bool) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.events {
		if match(e) {
			n++
		}
	}
	return n
}

// collect returns matching clones, newest first.
func (s *InMemory) collect(match func(*models.AccessEvent) bool) []*models.AccessEvent {
	s.mu.RLock()
	out := make([]*models.AccessEvent, 0)
	for _, e := range s.events {
		if match(e) {
			out = append(out, e.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	return out
}
