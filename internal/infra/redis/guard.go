// Package redis implements the duplicate-submission guard over Redis.
//
// The guard holds a SetNX lock on an intent fingerprint for the lifetime
// of a flow, so two concurrent submissions of the byte-identical request
// cannot both reach the ledger. It is advisory: if Redis is unreachable
// the flow proceeds unguarded.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// Guard wraps Redis intent-lock operations.
type Guard struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewGuard creates a guard client. The TTL caps how long a crashed flow
// can block its fingerprint.
func NewGuard(cfg Config, ttl time.Duration) (*Guard, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Guard{rdb: rdb, ttl: ttl}, nil
}

func intentKey(fingerprint string) string {
	return fmt.Sprintf("inflight_intent:%s", fingerprint)
}

// Acquire attempts to take the lock for a fingerprint. It returns false
// when an identical intent is already in flight.
func (g *Guard) Acquire(ctx context.Context, fingerprint string) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, intentKey(fingerprint), "locked", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx failed: %w", err)
	}
	return ok, nil
}

// Release frees the lock. Errors are ignored: the TTL reclaims the key.
func (g *Guard) Release(ctx context.Context, fingerprint string) {
	_ = g.rdb.Del(ctx, intentKey(fingerprint)).Err()
}

// Close closes the Redis connection.
func (g *Guard) Close() error {
	return g.rdb.Close()
}
