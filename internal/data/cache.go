package data

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// ResponseCache memoizes feed responses for a fixed TTL. Concurrent callers for
// the same key share one fetch, and failed fetches are never stored.
// Expired entries are dropped lazily on write.
type ResponseCache[T any] struct {
	mu    sync.Mutex
	store map[string]cacheEntry[T]
	ttl   time.Duration
	group singleflight.Group

	now func() time.Time
}

func NewResponseCache[T any](ttl time.Duration) *ResponseCache[T] {
	return &ResponseCache[T]{
		store: make(map[string]cacheEntry[T]),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves a cached value if present and not expired.
func (c *ResponseCache[T]) Get(key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.store[key]
	if !ok || !c.now().Before(entry.expiresAt) {
		return zero, false
	}
	return entry.value, true
}

// Set stores a value under key.
func (c *ResponseCache[T]) Set(key string, v T) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.store {
		if !now.Before(e.expiresAt) {
			delete(c.store, k)
		}
	}
	c.store[key] = cacheEntry[T]{value: v, expiresAt: now.Add(c.ttl)}
}

// Clear removes all entries.
func (c *ResponseCache[T]) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]cacheEntry[T])
}

func (c *ResponseCache[T]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

// Do returns the cached value for key, or calls fetch once for all concurrent
// callers and caches a successful result. hit reports whether the value came
// from the cache. A nil cache always fetches.
func (c *ResponseCache[T]) Do(key string, fetch func() (T, error)) (v T, hit bool, err error) {
	if c == nil {
		v, err = fetch()
		return v, false, err
	}
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}
	res, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := fetch()
		if err != nil {
			return v, err
		}
		c.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return res.(T), false, nil
}

// CacheKey builds the (dataset, area, start, end) key.
func CacheKey(dataset, area string, start, end time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s", dataset, area, start.Format(time.DateOnly), end.Format(time.DateOnly))
}
