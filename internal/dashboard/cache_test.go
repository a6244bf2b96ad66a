package dashboard

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_GetPut(t *testing.T) {
	c := NewCache(10, time.Hour)

	key := cacheKey("map", "Obese", "2014")
	assert.Equal(t, "map/Obese/2014", key)
	assert.Nil(t, c.Get(key))

	c.Put(key, []byte(`{"title":"x"}`))
	assert.Equal(t, []byte(`{"title":"x"}`), c.Get(key))
	assert.Nil(t, c.Get(cacheKey("map", "Obese", "2019")))
}

func TestCache_TTLExpiration(t *testing.T) {
	now := time.Date(2021, 6, 13, 12, 0, 0, 0, time.UTC)
	c := NewCache(10, time.Minute)
	c.now = func() time.Time { return now }

	c.Put("chart/1", []byte("a"))
	assert.NotNil(t, c.Get("chart/1"))

	now = now.Add(2 * time.Minute)
	assert.Nil(t, c.Get("chart/1"))

	c.mu.RLock()
	_, exists := c.entries["chart/1"]
	c.mu.RUnlock()
	assert.False(t, exists)
}

func TestCache_LRUEviction(t *testing.T) {
	c := NewCache(3, time.Hour)
	c.Put("map/a", []byte("1"))
	c.Put("map/b", []byte("2"))
	c.Put("map/c", []byte("3"))

	// Touch a so b becomes the oldest.
	c.Get("map/a")
	c.Put("map/d", []byte("4"))

	assert.NotNil(t, c.Get("map/a"))
	assert.Nil(t, c.Get("map/b"))
	assert.NotNil(t, c.Get("map/c"))
	assert.NotNil(t, c.Get("map/d"))
}

func TestCache_PutOverwrites(t *testing.T) {
	c := NewCache(2, time.Hour)
	c.Put("k/1", []byte("old"))
	c.Put("k/1", []byte("new"))
	assert.Equal(t, []byte("new"), c.Get("k/1"))
	assert.Equal(t, 1, c.Stats().Entries)
}

func TestCache_Disabled(t *testing.T) {
	c := NewCache(0, time.Hour)
	c.Put("map/a", []byte("1"))
	assert.Nil(t, c.Get("map/a"))
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestCache_Invalidate(t *testing.T) {
	c := NewCache(10, time.Hour)
	c.Put(cacheKey("map", "a"), []byte("1"))
	c.Put(cacheKey("map", "b"), []byte("2"))
	c.Put(cacheKey("chart", "a"), []byte("3"))

	assert.Equal(t, 2, c.Invalidate("map"))
	assert.Nil(t, c.Get("map/a"))
	assert.NotNil(t, c.Get("chart/a"))

	assert.Equal(t, 1, c.Invalidate(""))
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestCache_Stats(t *testing.T) {
	c := NewCache(10, time.Hour)
	c.Put("map/a", []byte("1"))
	c.Get("map/a")
	c.Get("map/a")
	c.Get("map/b")

	s := c.Stats()
	assert.Equal(t, 1, s.Entries)
	assert.Equal(t, 10, s.MaxEntries)
	assert.Equal(t, int64(2), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.InDelta(t, 2.0/3.0, s.HitRate, 0.0001)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := NewCache(50, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("chart/%d/%d", i, j%10)
				c.Put(key, []byte("x"))
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Stats().Entries, 50)
}
