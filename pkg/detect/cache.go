package detect

import (
	"context"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// resultCache stores detection results per absolute path. Concurrent misses
// for the same path share a single detection.
type resultCache struct {
	lru   *expirable.LRU[string, []Result]
	group singleflight.Group
}

func newResultCache(size int, ttl time.Duration) *resultCache {
	return &resultCache{
		lru: expirable.NewLRU[string, []Result](size, nil, ttl),
	}
}

func (c *resultCache) get(
	ctx context.Context,
	path string,
	detect func(context.Context, string) ([]Result, error),
) ([]Result, bool, error) {
	if results, ok := c.lru.Get(path); ok {
		return slices.Clone(results), true, nil
	}

	v, err, _ := c.group.Do(path, func() (any, error) {
		results, err := detect(ctx, path)
		if err != nil {
			return nil, err
		}

		c.lru.Add(path, results)

		return results, nil
	})
	if err != nil {
		return nil, false, err
	}

	results, _ := v.([]Result)

	return slices.Clone(results), false, nil
}

func (c *resultCache) invalidate(path string) {
	c.lru.Remove(path)
}

func (c *resultCache) purge() {
	c.lru.Purge()
}

func (c *resultCache) len() int {
	return c.lru.Len()
}
