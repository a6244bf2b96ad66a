package dashboard

import (
	"container/list"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Cache holds encoded figure responses, evicting the least recently used
// entry when full and dropping entries older than its TTL on read. Rendering
// is deterministic, so a cached body equals a fresh render for the same key.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]*list.Element
	lru        *list.List // front = most recently used
	maxEntries int
	ttl        time.Duration
	now        func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheEntry struct {
	key    string
	body   []byte
	stored time.Time
}

// CacheStats is the body of GET /api/cache/stats.
type CacheStats struct {
	Entries    int     `json:"entries" yaml:"entries"`
	MaxEntries int     `json:"max_entries" yaml:"max_entries"`
	Hits       int64   `json:"hits" yaml:"hits"`
	Misses     int64   `json:"misses" yaml:"misses"`
	HitRate    float64 `json:"hit_rate" yaml:"hit_rate"`
}

// NewCache creates a Cache holding at most maxEntries bodies for ttl. A
// maxEntries of zero or less disables caching; a ttl of zero never expires.
func NewCache(maxEntries int, ttl time.Duration) *Cache {
	return &Cache{
		entries:    make(map[string]*list.Element),
		lru:        list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// cacheKey joins a scope and the request parts, e.g. "map/Obese/2014".
func cacheKey(scope string, parts ...string) string {
	return scope + "/" + strings.Join(parts, "/")
}

// Get returns the body stored under key, or nil.
func (c *Cache) Get(key string) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil
	}
	e := el.Value.(*cacheEntry)
	if c.ttl > 0 && c.now().Sub(e.stored) > c.ttl {
		c.remove(el)
		c.misses.Add(1)
		return nil
	}

	c.lru.MoveToFront(el)
	c.hits.Add(1)
	return e.body
}

// Put stores body under key.
func (c *Cache) Put(key string, body []byte) {
	if c.maxEntries <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value = &cacheEntry{key: key, body: body, stored: c.now()}
		c.lru.MoveToFront(el)
		return
	}

	for c.lru.Len() >= c.maxEntries {
		c.remove(c.lru.Back())
	}
	c.entries[key] = c.lru.PushFront(&cacheEntry{key: key, body: body, stored: c.now()})
}

// Invalidate drops every entry in scope ("map", "chart" or "render"), or
// everything when scope is empty, and returns how many were dropped.
func (c *Cache) Invalidate(scope string) int {
	prefix := scope + "/"

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for el := c.lru.Front(); el != nil; {
		next := el.Next()
		if scope == "" || strings.HasPrefix(el.Value.(*cacheEntry).key, prefix) {
			c.remove(el)
			removed++
		}
		el = next
	}
	return removed
}

// Stats reports size and hit rate.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	s := CacheStats{Entries: len(c.entries), MaxEntries: c.maxEntries}
	c.mu.RUnlock()

	s.Hits, s.Misses = c.hits.Load(), c.misses.Load()
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}

// remove unlinks el. Callers hold mu.
func (c *Cache) remove(el *list.Element) {
	c.lru.Remove(el)
	delete(c.entries, el.Value.(*cacheEntry).key)
}
