// Package lock guards background jobs so that only one worker replica runs a
// given job at a time.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotConfigured is returned when the locker has no Redis client.
var ErrNotConfigured = errors.New("lock: redis client not configured")

const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`

// Locker holds short-lived job leases in Redis.
type Locker struct {
	R      *redis.Client
	Prefix string
}

// RunOnce runs fn only if no other holder owns the lease for job. It reports
// whether fn ran. The lease expires after ttl even if the holder crashes.
func (l Locker) RunOnce(ctx context.Context, job string, ttl time.Duration, fn func(context.Context) error) (bool, error) {
	if l.R == nil {
		return false, ErrNotConfigured
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	key := l.Prefix + job
	token := uuid.NewString()

	ok, err := l.R.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	defer l.R.Eval(context.WithoutCancel(ctx), releaseScript, []string{key}, token)
	return true, fn(ctx)
}
