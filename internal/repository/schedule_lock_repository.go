package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/edu-schedule-api/pkg/errors"
)

// lockClient is the subset of go-redis used for advisory locks.
type lockClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// releaseScript deletes the key only while it still holds our token.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// ScheduleLockRepository implements all-or-nothing advisory locks on Redis.
type ScheduleLockRepository struct {
	client lockClient
	logger *zap.Logger
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewScheduleLockRepository constructs a lock repository. ttl is the lease of
// each key, wait bounds how long Acquire retries before giving up.
func NewScheduleLockRepository(client lockClient, logger *zap.Logger, ttl, wait time.Duration) *ScheduleLockRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if wait <= 0 {
		wait = 5 * time.Second
	}
	return &ScheduleLockRepository{client: client, logger: logger, ttl: ttl, wait: wait, retry: 50 * time.Millisecond}
}

// Acquire takes every key in sorted order or none of them.
func (r *ScheduleLockRepository) Acquire(ctx context.Context, keys []string) (func(), error) {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	token := uuid.NewString()
	deadline := time.Now().Add(r.wait)
	held := make([]string, 0, len(sorted))

	for _, key := range sorted {
		for {
			ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
			if err != nil {
				r.release(held, token)
				return nil, fmt.Errorf("redis setnx %s: %w", key, err)
			}
			if ok {
				held = append(held, key)
				break
			}
			if time.Now().After(deadline) {
				r.release(held, token)
				return nil, appErrors.Clone(appErrors.ErrLockTimeout, "timed out waiting for "+key)
			}
			select {
			case <-ctx.Done():
				r.release(held, token)
				return nil, ctx.Err()
			case <-time.After(r.retry):
			}
		}
	}

	return func() { r.release(held, token) }, nil
}

func (r *ScheduleLockRepository) release(keys []string, token string) {
	// Release must run even when the request context is already cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for i := len(keys) - 1; i >= 0; i-- {
		if err := r.client.Eval(ctx, releaseScript, []string{keys[i]}, token).Err(); err != nil {
			r.logger.Warn("failed to release schedule lock", zap.String("key", keys[i]), zap.Error(err))
		}
	}
}
