package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/staffhub/staffhub/internal/shared/logger"
)

const (
	lockKeyPrefix      = "staffhub:lock:"
	defaultLockTTL     = 30 * time.Second
	defaultRetryPeriod = 50 * time.Millisecond
)

// ErrLockTimeout is returned when the lock stays held past the wait budget.
var ErrLockTimeout = errors.New("timed out waiting for lock")

// Compare-and-delete so a holder whose TTL lapsed cannot free a successor's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a single-instance SET NX lock shared by every API and worker
// process. Holders in the same process also queue on a local KeyedMutex so
// they do not poll redis against each other.
type RedisLocker struct {
	client  redis.UniversalClient
	local   *KeyedMutex
	ttl     time.Duration
	maxWait time.Duration
	logger  logger.Interface
}

func NewRedisLocker(client redis.UniversalClient, ttl, maxWait time.Duration, logger logger.Interface) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if maxWait <= 0 {
		maxWait = ttl
	}
	return &RedisLocker{
		client:  client,
		local:   NewKeyedMutex(),
		ttl:     ttl,
		maxWait: maxWait,
		logger:  logger,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	releaseLocal, err := l.local.Acquire(ctx, key)
	if err != nil {
		return nil, l.timeout(key, err)
	}

	redisKey := lockKeyPrefix + key
	token := uuid.NewString()
	ticker := time.NewTicker(defaultRetryPeriod)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			releaseLocal()
			l.logger.Errorw("failed to acquire redis lock", "key", key, "error", err)
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return l.releaser(redisKey, token, releaseLocal), nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			releaseLocal()
			return nil, l.timeout(key, ctx.Err())
		}
	}
}

func (l *RedisLocker) releaser(redisKey, token string, releaseLocal func()) func() {
	return func() {
		defer releaseLocal()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
			l.logger.Warnw("failed to release redis lock", "key", redisKey, "error", err)
		}
	}
}

func (l *RedisLocker) timeout(key string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		l.logger.Warnw("lock wait exceeded", "key", key, "max_wait", l.maxWait)
		return fmt.Errorf("%w: %s", ErrLockTimeout, key)
	}
	return err
}
