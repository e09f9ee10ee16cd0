// Package guard serializes concurrent writers that want the same unique value.
// A claim is held from the uniqueness check until the write completes, which
// narrows the check-then-act window; the store's unique index still has the
// final word.
package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"municipal/internal/records/models"
	"municipal/pkg/platform/sentinel"
)

// ErrHeld is returned when another writer holds the claim.
var ErrHeld = fmt.Errorf("claim held: %w", sentinel.ErrAlreadyUsed)

// DefaultTTL bounds how long an abandoned claim blocks other writers.
const DefaultTTL = 5 * time.Second

// Claims hands out exclusive, short-lived claims on unique values.
type Claims interface {
	Claim(ctx context.Context, kind models.Kind, field, value string) (Claim, error)
}

// Claim is released once the guarded write has completed.
type Claim interface {
	Release(ctx context.Context) error
}

// Nop grants every claim. It is used when no Redis is configured.
type Nop struct{}

func (Nop) Claim(context.Context, models.Kind, string, string) (Claim, error) {
	return nopClaim{}, nil
}

type nopClaim struct{}

func (nopClaim) Release(context.Context) error { return nil }

// releaseScript deletes the key only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis implements Claims with SET NX PX on a shared Redis.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

// Option configures a Redis guard.
type Option func(*Redis)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithPrefix namespaces claim keys.
func WithPrefix(prefix string) Option {
	return func(r *Redis) { r.prefix = prefix }
}

func NewRedis(client redis.UniversalClient, opts ...Option) *Redis {
	r := &Redis{client: client, ttl: DefaultTTL, prefix: "municipal:claim"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Key returns the Redis key guarding value. Values are compared exactly, the
// same way the integrity rules and the stores' unique indexes compare them.
func (r *Redis) Key(kind models.Kind, field, value string) string {
	return fmt.Sprintf("%s:%s:%s:%s", r.prefix, kind, field, value)
}

func (r *Redis) Claim(ctx context.Context, kind models.Kind, field, value string) (Claim, error) {
	key := r.Key(kind, field, value)
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("claim %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	if !ok {
		return nil, ErrHeld
	}
	return &redisClaim{client: r.client, key: key, token: token}, nil
}

type redisClaim struct {
	client redis.UniversalClient
	key    string
	token  string
}

func (c *redisClaim) Release(ctx context.Context) error {
	err := releaseScript.Run(ctx, c.client, []string{c.key}, c.token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release %s: %w", c.key, err)
	}
	return nil
}
