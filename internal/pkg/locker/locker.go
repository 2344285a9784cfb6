// Package locker provides short-lived distributed mutual exclusion on Redis.
//
// A lock is a key set with NX and a TTL whose value is a random token. Only
// the holder of the token can release it, so a lock that expired and was
// taken by another caller is never released by the first one.
package locker

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when the lock is held elsewhere and the wait ran out.
var ErrNotAcquired = errors.New("lock not acquired")

const (
	defaultTTL   = 5 * time.Second
	defaultRetry = 50 * time.Millisecond
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker runs functions while holding a named lock.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(context.Context) error) error
}

// Redis is a Locker backed by a single Redis instance.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

// Option configures Redis.
type Option func(*Redis)

// WithTTL sets the lock expiry. It bounds how long a crashed holder blocks others.
func WithTTL(ttl time.Duration) Option {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithRetryInterval sets the pause between acquisition attempts.
func WithRetryInterval(d time.Duration) Option {
	return func(r *Redis) {
		if d > 0 {
			r.retry = d
		}
	}
}

// WithPrefix namespaces lock keys.
func WithPrefix(prefix string) Option {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// New returns a Redis locker.
func New(client redis.UniversalClient, opts ...Option) *Redis {
	r := &Redis{
		client: client,
		prefix: "lock:",
		ttl:    defaultTTL,
		retry:  defaultRetry,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Acquire waits until the lock is free or the ttl elapses and returns the
// token that releases it.
func (r *Redis) Acquire(ctx context.Context, key string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	deadline := time.NewTimer(r.ttl)
	defer deadline.Stop()

	for {
		ok, err := r.client.SetNX(ctx, r.prefix+key, token, r.ttl).Result()
		if err != nil {
			return "", err
		}
		if ok {
			return token, nil
		}

		wait := time.NewTimer(r.retry)
		select {
		case <-ctx.Done():
			wait.Stop()
			return "", ctx.Err()
		case <-deadline.C:
			wait.Stop()
			return "", ErrNotAcquired
		case <-wait.C:
		}
	}
}

// Release frees the lock if token still owns it. It reports whether a key was deleted.
func (r *Redis) Release(ctx context.Context, key, token string) (bool, error) {
	n, err := releaseScript.Run(ctx, r.client, []string{r.prefix + key}, token).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// WithLock acquires key, runs fn and releases the lock. The release uses a
// context detached from ctx cancellation so a timed out request still frees it.
func (r *Redis) WithLock(ctx context.Context, key string, fn func(context.Context) error) (err error) {
	token, err := r.Acquire(ctx, key)
	if err != nil {
		return err
	}

	defer func() {
		_, relErr := r.Release(context.WithoutCancel(ctx), key, token)
		if err == nil {
			err = relErr
		}
	}()

	return fn(ctx)
}

func newToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
