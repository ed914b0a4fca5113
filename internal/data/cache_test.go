package data

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCache(ttl time.Duration) (*ResponseCache[int], *time.Time) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewResponseCache[int](ttl)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCacheHitWithinTTL(t *testing.T) {
	c, now := testCache(time.Hour)
	calls := 0
	fetch := func() (int, error) { calls++; return 42, nil }

	v, hit, err := c.Do("k", fetch)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 42, v)

	*now = now.Add(59 * time.Minute)
	v, hit, err = c.Do("k", fetch)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)

	*now = now.Add(time.Minute)
	_, hit, _ = c.Do("k", fetch)
	assert.False(t, hit)
	assert.Equal(t, 2, calls)
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	c, _ := testCache(time.Hour)
	boom := errors.New("boom")

	_, _, err := c.Do("k", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, c.Len())

	v, hit, err := c.Do("k", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 7, v)
}

func TestCacheSharesConcurrentFetch(t *testing.T) {
	c := NewResponseCache[int](time.Hour)
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _, err := c.Do("k", func() (int, error) {
				calls.Add(1)
				<-release
				return 5, nil
			})
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 5, v)
	}
}

func TestCacheExpiredEntriesPurgedOnWrite(t *testing.T) {
	c, now := testCache(time.Minute)
	c.Set("a", 1)
	*now = now.Add(2 * time.Minute)
	c.Set("b", 2)

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	assert.Zero(t, c.Len())
}

func TestNilCacheAlwaysFetches(t *testing.T) {
	var c *ResponseCache[int]
	calls := 0
	for i := 0; i < 2; i++ {
		v, hit, err := c.Do("k", func() (int, error) { calls++; return 1, nil })
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, 1, v)
	}
	assert.Equal(t, 2, calls)
}

func TestCacheKey(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Elspotprices:DK1:2025-01-01:2025-01-31", CacheKey(DatasetSpot, "DK1", start, end))
}
