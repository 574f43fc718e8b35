// Package rule persists the compliance rule catalog.
package rule

import (
	"context"
	"sort"
	"sync"

	"ledger/internal/compliance/models"
	id "ledger/pkg/domain"
	"ledger/pkg/platform/sentinel"
)

type InMemory struct {
	mu     sync.RWMutex
	byID   map[id.RuleID]*models.Rule
	byName map[string]id.RuleID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:   make(map[id.RuleID]*models.Rule),
		byName: make(map[string]id.RuleID),
	}
}

// Ensure stores r unless a rule with the same name exists, and returns the
// stored rule either way.
func (s *InMemory) Ensure(_ context.Context, r *models.Rule) (*models.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byName[r.Name]; ok {
		c := *s.byID[existing]
		return &c, nil
	}
	c := *r
	s.byID[r.ID] = &c
	s.byName[r.Name] = r.ID
	out := c
	return &out, nil
}

func (s *InMemory) FindByID(_ context.Context, ruleID id.RuleID) (*models.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[ruleID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *r
	return &c, nil
}

func (s *InMemory) ListActive(_ context.Context) ([]*models.Rule, error) {
	s.mu.RLock()
	out := make([]*models.Rule, 0, len(s.byID))
	for _, r := range s.byID {
		if r.Active {
			c := *r
			out = append(out, &c)
		}
	}
	s.mu.RUnlock()
	sortRules(out)
	return out, nil
}

func sortRules(rules []*models.Rule) {
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].CreatedAt.Equal(rules[j].CreatedAt) {
			return rules[i].Name < rules[j].Name
		}
		return rules[i].CreatedAt.Before(rules[j].CreatedAt)
	})
}
