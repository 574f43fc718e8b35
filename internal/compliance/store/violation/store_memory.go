// Package violation persists compliance violations. A violation is unique per
// (rule, access event) pair.
package violation

import (
	"context"
	"sort"
	"sync"

	"ledger/internal/compliance/models"
	id "ledger/pkg/domain"
	"ledger/pkg/platform/sentinel"
)

type pairKey struct {
	rule  id.RuleID
	event id.AccessEventID
}

type InMemory struct {
	mu         sync.RWMutex
	violations map[id.ViolationID]*models.Violation
	pairs      map[pairKey]id.ViolationID
}

func NewInMemory() *InMemory {
	return &InMemory{
		violations: make(map[id.ViolationID]*models.Violation),
		pairs:      make(map[pairKey]id.ViolationID),
	}
}

// Create stores v and reports true, or reports false when the rule already
// flagged the same access event.
func (s *InMemory) Create(_ context.Context, v *models.Violation) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.violations[v.ID]; exists {
		return false, sentinel.ErrConflict
	}
	if v.AccessEventID != nil {
		key := pairKey{rule: v.RuleID, event: *v.AccessEventID}
		if _, flagged := s.pairs[key]; flagged {
			return false, nil
		}
		s.pairs[key] = v.ID
	}
	s.violations[v.ID] = v.Clone()
	return true, nil
}

func (s *InMemory) FindByID(_ context.Context, violationID id.ViolationID) (*models.Violation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.violations[violationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return v.Clone(), nil
}

func (s *InMemory) List(_ context.Context, orgID id.OrganizationID, filter models.ViolationFilter, page id.Page) ([]*models.Violation, int, error) {
	all := s.collect(func(v *models.Violation) bool {
		return v.OrganizationID == orgID && filter.Matches(v)
	})
	return id.Paginate(all, page), len(all), nil
}

func (s *InMemory) ListUnresolved(_ context.Context, orgID id.OrganizationID) ([]*models.Violation, error) {
	return s.collect(func(v *models.Violation) bool {
		return v.OrganizationID == orgID && v.IsUnresolved()
	}), nil
}

func (s *InMemory) Count(_ context.Context, orgID id.OrganizationID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, v := range s.violations {
		if v.OrganizationID == orgID {
			n++
		}
	}
	return n, nil
}

// Execute applies mutate to a copy under the write lock and stores it only if
// validate passes.
func (s *InMemory) Execute(_ context.Context, violationID id.ViolationID, validate func(*models.Violation) error, mutate func(*models.Violation)) (*models.Violation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.violations[violationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	v := current.Clone()
	if err := validate(v); err != nil {
		return nil, err
	}
	mutate(v)
	s.violations[violationID] = v
	return v.Clone(), nil
}

// collect returns matching clones, most recently detected first.
func (s *InMemory) collect(match func(*models.Violation) bool) []*models.Violation {
	s.mu.RLock()
	out := make([]*models.Violation, 0)
	for _, v := range s.violations {
		if match(v) {
			out = append(out, v.Clone())
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].DetectedAt.Equal(out[j].DetectedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].DetectedAt.After(out[j].DetectedAt)
	})
	return out
}
