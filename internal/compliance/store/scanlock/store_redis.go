package scanlock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	id "ledger/pkg/domain"
	"ledger/pkg/platform/sentinel"
)

const leaseKeyPrefix = "ledger:scan:"

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a lease table shared by every ledger instance.
type Redis struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

// Acquire uses SET NX PX so the lease lapses on its own if the holder dies.
func (s *Redis) Acquire(ctx context.Context, orgID id.OrganizationID, ttl time.Duration) (Lease, error) {
	key := leaseKeyPrefix + orgID.String()
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire scan lease: %w", err)
	}
	if !ok {
		return nil, sentinel.ErrLeaseHeld
	}
	return &redisLease{client: s.client, key: key, token: token}, nil
}

type redisLease struct {
	client redis.UniversalClient
	key    string
	token  string
	once   sync.Once
	err    error
}

func (l *redisLease) Release(ctx context.Context) error {
	l.once.Do(func() {
		if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			l.err = fmt.Errorf("release scan lease: %w", err)
		}
	})
	return l.err
}
