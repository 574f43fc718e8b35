// Package scanlock hands out per-organization scan leases so two workers
// never scan the same organization at once.
package scanlock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	id "ledger/pkg/domain"
	"ledger/pkg/platform/sentinel"
)

// Lease is a held scan lease. Release is safe to call more than once and
// never releases a lease someone else has since acquired.
type Lease interface {
	Release(ctx context.Context) error
}

type memoryLease struct {
	store *InMemory
	orgID id.OrganizationID
	token string
	once  sync.Once
}

func (l *memoryLease) Release(context.Context) error {
	l.once.Do(func() {
		l.store.release(l.orgID, l.token)
	})
	return nil
}

type heldLease struct {
	token     string
	expiresAt time.Time
}

// InMemory is a single-process lease table.
type InMemory struct {
	mu     sync.Mutex
	leases map[id.OrganizationID]heldLease
	now    func() time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{leases: make(map[id.OrganizationID]heldLease), now: time.Now}
}

// Acquire returns sentinel.ErrLeaseHeld while an unexpired lease exists.
func (s *InMemory) Acquire(_ context.Context, orgID id.OrganizationID, ttl time.Duration) (Lease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if held, ok := s.leases[orgID]; ok && now.Before(held.expiresAt) {
		return nil, sentinel.ErrLeaseHeld
	}
	token := uuid.NewString()
	s.leases[orgID] = heldLease{token: token, expiresAt: now.Add(ttl)}
	return &memoryLease{store: s, orgID: orgID, token: token}, nil
}

func (s *InMemory) release(orgID id.OrganizationID, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if held, ok := s.leases[orgID]; ok && held.token == token {
		delete(s.leases, orgID)
	}
}
