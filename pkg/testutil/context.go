package testutil

import (
	"context"
	"sync"
	"time"

	id "ledger/pkg/domain"
	"ledger/pkg/requestcontext"
)

// Epoch is the fixed instant most tests start from.
var Epoch = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// Clock is a manually advanced clock for tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Ctx returns a context pinned to the clock's current instant.
func (c *Clock) Ctx() context.Context {
	return requestcontext.WithTime(context.Background(), c.Now())
}

// AsPrincipal returns ctx carrying p.
func AsPrincipal(ctx context.Context, p id.Principal) context.Context {
	return requestcontext.WithPrincipal(ctx, p)
}
