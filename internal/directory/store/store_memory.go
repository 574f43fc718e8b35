// Package store persists users and organizations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"ledger/internal/directory/models"
	id "ledger/pkg/domain"
	"ledger/pkg/platform/sentinel"
)

type InMemory struct {
	mu    sync.RWMutex
	users map[id.UserID]*models.User
	orgs  map[id.OrganizationID]*models.Organization
}

func NewInMemory() *InMemory {
	return &InMemory{
		users: make(map[id.UserID]*models.User),
		orgs:  make(map[id.OrganizationID]*models.Organization),
	}
}

func (s *InMemory) SaveUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *InMemory) SaveOrganization(_ context.Context, o *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs[o.ID] = cloneOrg(o)
	return nil
}

func (s *InMemory) FindUser(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *InMemory) FindOrganization(_ context.Context, orgID id.OrganizationID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orgs[orgID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneOrg(o), nil
}

// ListOrganizationIDs returns every organization ID in creation order.
func (s *InMemory) ListOrganizationIDs(_ context.Context) ([]id.OrganizationID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orgs := make([]*models.Organization, 0, len(s.orgs))
	for _, o := range s.orgs {
		orgs = append(orgs, o)
	}
	sort.Slice(orgs, func(i, j int) bool {
		if orgs[i].CreatedAt.Equal(orgs[j].CreatedAt) {
			return orgs[i].ID.String() < orgs[j].ID.String()
		}
		return orgs[i].CreatedAt.Before(orgs[j].CreatedAt)
	})
	out := make([]id.OrganizationID, len(orgs))
	for i, o := range orgs {
		out[i] = o.ID
	}
	return out, nil
}

func (s *InMemory) SetComplianceScore(_ context.Context, orgID id.OrganizationID, score float64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orgs[orgID]
	if !ok {
		return sentinel.ErrNotFound
	}
	o.ComplianceScore = score
	o.ScoreUpdatedAt = &at
	return nil
}

func cloneOrg(o *models.Organization) *models.Organization {
	cp := *o
	if o.ScoreUpdatedAt != nil {
		t := *o.ScoreUpdatedAt
		cp.ScoreUpdatedAt = &t
	}
	return &cp
}
