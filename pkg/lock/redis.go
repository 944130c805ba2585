package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/critpath/pkg/observability"
)

// Redis defaults.
const (
	DefaultLeaseTTL     = 2 * time.Minute
	DefaultPollInterval = 50 * time.Millisecond
	keyPrefix           = "critpath:lock:"
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lease never releases a lock another run has since taken.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Redis is a Locker shared by every process using the same Redis server.
// A lease is a key holding a random token with a TTL, so a crashed holder
// cannot block a project for longer than the TTL.
type Redis struct {
	client   redis.UniversalClient
	ttl      time.Duration
	interval time.Duration
}

// RedisOption configures a Redis locker.
type RedisOption func(*Redis)

// WithTTL sets the lease lifetime.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) { r.ttl = ttl }
}

// WithPollInterval sets how often a waiting Acquire retries.
func WithPollInterval(d time.Duration) RedisOption {
	return func(r *Redis) { r.interval = d }
}

// NewRedis creates a locker on an existing client.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{client: client, ttl: DefaultLeaseTTL, interval: DefaultPollInterval}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) Acquire(ctx context.Context, projectID string) (Lease, error) {
	ctx, cancel := withDefaultWait(ctx)
	defer cancel()

	key := keyPrefix + projectID
	token := uuid.NewString()
	start := time.Now()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("redis lock %s: %w", projectID, err)
		}
		if ok {
			observability.Lock().OnAcquire(ctx, projectID, time.Since(start))
			return &redisLease{client: r.client, key: key, token: token}, nil
		}

		select {
		case <-ctx.Done():
			observability.Lock().OnContention(ctx, projectID)
			return nil, fmt.Errorf("project %s: %w", projectID, ErrLocked)
		case <-ticker.C:
		}
	}
}

type redisLease struct {
	client   redis.UniversalClient
	key      string
	token    string
	released bool
}

func (l *redisLease) Release(ctx context.Context) error {
	if l.released {
		return nil
	}
	l.released = true
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("redis unlock: %w", err)
	}
	return nil
}

var _ Locker = (*Redis)(nil)
