package cache

import (
	"context"
	"errors"
	"time"

	"github.com/hearthguild/server/cache/local"
	cacheredis "github.com/hearthguild/server/cache/redis"
)

// ErrNotFound is returned by Get and ZScore for missing keys or members.
var ErrNotFound = errors.New("cache: key not found")

// ScoredMember is one sorted-set entry.
type ScoredMember struct {
	Member string
	Score  float64
}

// Cache defines the KV and sorted-set operations the server relies on.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error

	ZAdd(ctx context.Context, key string, score float64, member string) error
	// ZRevRange returns members ordered by score descending, inclusive bounds.
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]ScoredMember, error)
	ZScore(ctx context.Context, key, member string) (float64, error)
}

// CacheConfig holds configuration for both Redis and LocalCache.
type CacheConfig struct {
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	LocalGCInterval time.Duration
}

// NewCache returns a Cache backed by Redis if RedisAddr is set,
// otherwise returns an in-process LocalCache.
func NewCache(cfg CacheConfig) (Cache, error) {
	if cfg.RedisAddr != "" {
		rc, err := cacheredis.NewCache(cacheredis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return &redisAdapter{c: rc}, nil
	}
	lc, err := local.NewCache(local.Config{GCInterval: cfg.LocalGCInterval})
	if err != nil {
		return nil, err
	}
	return &localAdapter{c: lc}, nil
}

// ---- adapters bridging sub-package errors and entry types ----

type localAdapter struct {
	c *local.LocalCache
}

func (a *localAdapter) Get(ctx context.Context, key string) (string, error) {
	v, err := a.c.Get(ctx, key)
	if errors.Is(err, local.ErrNotFound) {
		return "", ErrNotFound
	}
	return v, err
}

func (a *localAdapter) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return a.c.Set(ctx, key, value, ttl)
}

func (a *localAdapter) Del(ctx context.Context, keys ...string) error {
	return a.c.Del(ctx, keys...)
}

func (a *localAdapter) ZAdd(ctx context.Context, key string, score float64, member string) error {
	return a.c.ZAdd(ctx, key, score, member)
}

func (a *localAdapter) ZRevRange(ctx context.Context, key string, start, stop int64) ([]ScoredMember, error) {
	entries, err := a.c.ZRevRange(ctx, key, start, stop)
	if err != nil {
		return nil, err
	}
	out := make([]ScoredMember, len(entries))
	for i, e := range entries {
		out[i] = ScoredMember{Member: e.Member, Score: e.Score}
	}
	return out, nil
}

func (a *localAdapter) ZScore(ctx context.Context, key, member string) (float64, error) {
	v, err := a.c.ZScore(ctx, key, member)
	if errors.Is(err, local.ErrNotFound) {
		return 0, ErrNotFound
	}
	return v, err
}

type redisAdapter struct {
	c *cacheredis.RedisCache
}

func (a *redisAdapter) Get(ctx context.Context, key string) (string, error) {
	v, err := a.c.Get(ctx, key)
	if errors.Is(err, cacheredis.ErrNotFound) {
		return "", ErrNotFound
	}
	return v, err
}

func (a *redisAdapter) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return a.c.Set(ctx, key, value, ttl)
}

func (a *redisAdapter) Del(ctx context.Context, keys ...string) error {
	return a.c.Del(ctx, keys...)
}

func (a *redisAdapter) ZAdd(ctx context.Context, key string, score float64, member string) error {
	return a.c.ZAdd(ctx, key, score, member)
}

func (a *redisAdapter) ZRevRange(ctx context.Context, key string, start, stop int64) ([]ScoredMember, error) {
	entries, err := a.c.ZRevRangeWithScores(ctx, key, start, stop)
	if err != nil {
		return nil, err
	}
	out := make([]ScoredMember, len(entries))
	for i, e := range entries {
		out[i] = ScoredMember{Member: e.Member, Score: e.Score}
	}
	return out, nil
}

func (a *redisAdapter) ZScore(ctx context.Context, key, member string) (float64, error) {
	v, err := a.c.ZScore(ctx, key, member)
	if errors.Is(err, cacheredis.ErrNotFound) {
		return 0, ErrNotFound
	}
	return v, err
}
