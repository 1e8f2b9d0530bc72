package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value V
	built time.Time
}

// Cache is a read-through cache with a fixed TTL. Concurrent loads of the same
// key are collapsed into one call.
type Cache[V any] struct {
	mu    sync.RWMutex
	items map[string]entry[V]
	gens  map[string]uint64
	ttl   time.Duration
	sf    singleflight.Group
	now   func() time.Time
}

// New creates a cache whose entries expire after ttl. A zero ttl disables
// storage: every Get calls the loader, though concurrent calls still share it.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		items: make(map[string]entry[V]),
		gens:  make(map[string]uint64),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns the cached value for key, or calls load and stores its result.
// Errors are never cached.
//
// The shared load runs detached from any single caller's cancellation; each
// caller stops waiting when its own ctx is done. A load that was in flight when
// Invalidate ran is returned to its waiters but not stored.
func (c *Cache[V]) Get(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	var zero V
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(key, func() (interface{}, error) {
		// Double-check after winning the singleflight slot
		if v, ok := c.lookup(key); ok {
			return v, nil
		}

		gen := c.generation(key)
		v, err := load(loadCtx)
		if err != nil {
			return nil, err
		}

		if c.ttl > 0 {
			c.mu.Lock()
			if c.gens[key] == gen {
				c.items[key] = entry[V]{value: v, built: c.now()}
			}
			c.mu.Unlock()
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// Invalidate drops key so the next Get reloads it. Loads already in flight
// for key will not store their result.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.gens[key]++
	c.mu.Unlock()
	c.sf.Forget(key)
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache[V]) generation(key string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[key]
}

func (c *Cache[V]) lookup(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.built) > c.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}
