// Package rules maps compliance rule types to the checks that evaluate them
// and loads the rule catalog.
package rules

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	accessmodels "ledger/internal/access/models"
	"ledger/internal/compliance/models"
	id "ledger/pkg/domain"
)

// Input is what a check sees for one rule and one organization's window.
type Input struct {
	Rule           *models.Rule
	OrganizationID id.OrganizationID
	Events         []*accessmodels.AccessEvent
	WindowStart    time.Time
	AsOf           time.Time
}

// Finding is one breach a check detected. AccessEventID is nil for findings
// not tied to a single access.
type Finding struct {
	AccessEventID *id.AccessEventID
	Description   string
}

// Check evaluates one rule against a window of access events.
type Check func(ctx context.Context, in Input) ([]Finding, error)

// Registry holds the check for each rule type. A type with no check
// yields no findings.
type Registry struct {
	mu     sync.RWMutex
	checks map[models.RuleType]Check
}

func NewRegistry() *Registry {
	return &Registry{checks: map[models.RuleType]Check{}}
}

// Default registers the checks that need no collaborators.
func Default() *Registry {
	r := NewRegistry()
	r.MustRegister(models.RuleConsentRequired, ConsentRequired)
	return r
}

// Register installs check for t. Registering the same type twice is an error.
func (r *Registry) Register(t models.RuleType, check Check) error {
	if !t.IsValid() {
		return fmt.Errorf("rules: unknown rule type %q", t)
	}
	if check == nil {
		return fmt.Errorf("rules: check is required for %s", t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.checks[t]; exists {
		return fmt.Errorf("rules: %s already registered", t)
	}
	r.checks[t] = check
	return nil
}

func (r *Registry) MustRegister(t models.RuleType, check Check) {
	if err := r.Register(t, check); err != nil {
		panic(err)
	}
}

func (r *Registry) Lookup(t models.RuleType) (Check, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	check, ok := r.checks[t]
	return check, ok
}

// Types returns the registered rule types, sorted.
func (r *Registry) Types() []models.RuleType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.RuleType, 0, len(r.checks))
	for t := range r.checks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
