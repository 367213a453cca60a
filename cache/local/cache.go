package local

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when a key or member does not exist.
var ErrNotFound = errors.New("cache: key not found")

// Config holds LocalCache settings.
type Config struct {
	GCInterval time.Duration
}

// entry holds a cached string value with an optional expiry.
type entry struct {
	data     string
	expireAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && now.After(e.expireAt)
}

// ZEntry is one sorted-set member with its score.
type ZEntry struct {
	Member string
	Score  float64
}

// zset keeps entries sorted by score descending, member ascending on ties.
type zset struct {
	mu      sync.Mutex
	entries []ZEntry
}

func (z *zset) sort() {
	sort.Slice(z.entries, func(a, b int) bool {
		if z.entries[a].Score == z.entries[b].Score {
			return z.entries[a].Member < z.entries[b].Member
		}
		return z.entries[a].Score > z.entries[b].Score
	})
}

// LocalCache is an in-process stand-in for Redis.
type LocalCache struct {
	kv         sync.Map // key -> *entry
	zsets      sync.Map // key -> *zset
	gcInterval time.Duration
	stopGC     chan struct{}
	closeOnce  sync.Once
}

// NewCache creates a LocalCache and starts the background GC goroutine.
func NewCache(cfg Config) (*LocalCache, error) {
	interval := cfg.GCInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	c := &LocalCache{
		gcInterval: interval,
		stopGC:     make(chan struct{}),
	}
	go c.runGC()
	return c, nil
}

// Close stops the background GC goroutine.
func (c *LocalCache) Close() {
	c.closeOnce.Do(func() { close(c.stopGC) })
}

func (c *LocalCache) runGC() {
	ticker := time.NewTicker(c.gcInterval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			c.kv.Range(func(k, v interface{}) bool {
				if v.(*entry).expired(now) {
					c.kv.Delete(k)
				}
				return true
			})
		case <-c.stopGC:
			return
		}
	}
}

func (c *LocalCache) Get(_ context.Context, key string) (string, error) {
	v, ok := c.kv.Load(key)
	if !ok {
		return "", ErrNotFound
	}
	e := v.(*entry)
	if e.expired(time.Now()) {
		c.kv.Delete(key)
		return "", ErrNotFound
	}
	return e.data, nil
}

// Set stores value under key; ttl <= 0 means no expiry.
func (c *LocalCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	e := &entry{data: value}
	if ttl > 0 {
		e.expireAt = time.Now().Add(ttl)
	}
	c.kv.Store(key, e)
	return nil
}

// Del removes KV keys and sorted sets with the given names.
func (c *LocalCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.kv.Delete(k)
		c.zsets.Delete(k)
	}
	return nil
}

func (c *LocalCache) zset(key string) *zset {
	v, _ := c.zsets.LoadOrStore(key, &zset{})
	return v.(*zset)
}

func (c *LocalCache) ZAdd(_ context.Context, key string, score float64, member string) error {
	z := c.zset(key)
	z.mu.Lock()
	defer z.mu.Unlock()
	for i, e := range z.entries {
		if e.Member == member {
			z.entries[i].Score = score
			z.sort()
			return nil
		}
	}
	z.entries = append(z.entries, ZEntry{Member: member, Score: score})
	z.sort()
	return nil
}

// ZRevRange returns entries in [start, stop] by descending score.
// A negative or out-of-range stop means "to the end".
func (c *LocalCache) ZRevRange(_ context.Context, key string, start, stop int64) ([]ZEntry, error) {
	z := c.zset(key)
	z.mu.Lock()
	defer z.mu.Unlock()
	n := int64(len(z.entries))
	if start < 0 {
		start = 0
	}
	if start >= n {
		return nil, nil
	}
	if stop < 0 || stop >= n {
		stop = n - 1
	}
	out := make([]ZEntry, stop-start+1)
	copy(out, z.entries[start:stop+1])
	return out, nil
}

func (c *LocalCache) ZScore(_ context.Context, key, member string) (float64, error) {
	z := c.zset(key)
	z.mu.Lock()
	defer z.mu.Unlock()
	for _, e := range z.entries {
		if e.Member == member {
			return e.Score, nil
		}
	}
	return 0, ErrNotFound
}
