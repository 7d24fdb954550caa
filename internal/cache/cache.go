package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache holds values for a fixed TTL. Concurrent misses on one key share a single load.
type Cache[V any] struct {
	mu    sync.RWMutex
	ttl   time.Duration
	m     map[string]entry[V]
	group singleflight.Group
	now   func() time.Time
}

type entry[V any] struct {
	val V
	exp time.Time
}

func New[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache[V]{
		ttl: ttl,
		m:   make(map[string]entry[V]),
		now: time.Now,
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()

	if !ok || !now.Before(e.exp) {
		var zero V
		return zero, false
	}

	return e.val, true
}

func (c *Cache[V]) Set(key string, val V) {
	c.mu.Lock()
	c.m[key] = entry[V]{val: val, exp: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// GetOrLoad returns the cached value or runs load once for all waiting callers.
// Errors are returned to every waiter and never cached.
func (c *Cache[V]) GetOrLoad(key string, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}

		v, err := load()
		if err != nil {
			return v, err
		}

		c.Set(key, v)
		return v, nil
	})

	out, _ := v.(V)
	return out, err
}
