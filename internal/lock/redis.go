package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds the caller's token, so an
// expired lease taken over by another instance is never released by the old holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOptions tunes a Redis locker.
type RedisOptions struct {
	// TTL bounds how long a crashed holder can keep a room locked.
	TTL time.Duration
	// Wait bounds how long Lock retries when ctx carries no deadline.
	Wait time.Duration
	// RetryInterval is the pause between acquisition attempts.
	RetryInterval time.Duration
	Prefix        string
	Logger        *slog.Logger
}

// Redis is a lease lock taken with SET NX PX.
type Redis struct {
	rdb   *redis.Client
	opts  RedisOptions
	token func() string
}

// NewRedis constructs a Redis locker.
func NewRedis(rdb *redis.Client, opts RedisOptions) *Redis {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.Wait <= 0 {
		opts.Wait = opts.TTL
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 25 * time.Millisecond
	}
	opts.Prefix = strings.TrimSpace(opts.Prefix)
	if opts.Prefix == "" {
		opts.Prefix = "roombooking:lock"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Redis{rdb: rdb, opts: opts, token: uuid.NewString}
}

func (r *Redis) key(name string) string {
	return r.opts.Prefix + ":" + name
}

// Lock acquires the lease for key, retrying until ctx is done or the wait bound passes.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Wait)
		defer cancel()
	}

	redisKey := r.key(key)
	token := r.token()

	ticker := time.NewTicker(r.opts.RetryInterval)
	defer ticker.Stop()

	for {
		ok, err := r.rdb.SetNX(ctx, redisKey, token, r.opts.TTL).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("lock %s: %w", redisKey, err)
		}
		if ok {
			return r.releaser(redisKey, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrLockTimeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (r *Redis) releaser(redisKey, token string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, r.rdb, []string{redisKey}, token).Err(); err != nil {
			r.opts.Logger.Warn("release room lock failed", "key", redisKey, "error", err)
		}
	}
}
