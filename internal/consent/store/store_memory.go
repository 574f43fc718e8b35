// Package store persists consents in memory or in Postgres.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"ledger/internal/consent/models"
	id "ledger/pkg/domain"
	"ledger/pkg/platform/sentinel"
)

// InMemory stores consents behind one RWMutex. Every read returns clones so
// callers never observe a half-applied mutation.
type InMemory struct {
	mu       sync.RWMutex
	consents map[id.ConsentID]*models.Consent
}

func NewInMemory() *InMemory {
	return &InMemory{consents: make(map[id.ConsentID]*models.Consent)}
}

func (s *InMemory) Save(_ context.Context, c *models.Consent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.consents[c.ID]; exists {
		return sentinel.ErrConflict
	}
	s.consents[c.ID] = c.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, consentID id.ConsentID) (*models.Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.consents[consentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *InMemory) ListByUserAndOrganization(_ context.Context, userID id.UserID, orgID id.OrganizationID) ([]*models.Consent, error) {
	return s.collect(func(c *models.Consent) bool {
		return c.UserID == userID && c.OrganizationID == orgID
	}), nil
}

func (s *InMemory) ListByUser(_ context.Context, userID id.UserID, filter models.ListFilter, page id.Page) ([]*models.Consent, int, error) {
	all := s.collect(func(c *models.Consent) bool {
		return c.UserID == userID && filter.Matches(c)
	})
	return id.Paginate(all, page), len(all), nil
}

func (s *InMemory) ListByOrganization(_ context.Context, orgID id.OrganizationID, filter models.ListFilter, page id.Page) ([]*models.Consent, int, error) {
	all := s.collect(func(c *models.Consent) bool {
		return c.OrganizationID == orgID && filter.Matches(c)
	})
	return id.Paginate(all, page), len(all), nil
}

// Execute runs validate then mutate under the write lock, so no other writer
// can interleave between the check and the change.
func (s *InMemory) Execute(_ context.Context, consentID id.ConsentID, validate func(*models.Consent) error, mutate func(*models.Consent)) (*models.Consent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.consents[consentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := stored.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.consents[consentID] = working
	return working.Clone(), nil
}

// ExpireDue marks every active consent whose expiry is at or before asOf.
func (s *InMemory) ExpireDue(_ context.Context, asOf time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.consents {
		if c.CanExpire(asOf) {
			c.ApplyExpiry()
			n++
		}
	}
	return n, nil
}

// collect returns matching clones, newest grant first.
func (s *InMemory) collect(match func(*models.Consent) bool) []*models.Consent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Consent
	for _, c := range s.consents {
		if match(c) {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GrantedAt.Equal(out[j].GrantedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].GrantedAt.After(out[j].GrantedAt)
	})
	return out
}
