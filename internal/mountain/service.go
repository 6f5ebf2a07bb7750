package mountain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/valleyviewvt/snowline/internal/cache"
)

// ErrUnknownResort is returned for slugs with no registered adapter. This is
// the one fatal error in the pipeline: there is no sensible default for a
// resort that does not exist.
var ErrUnknownResort = errors.New("unknown resort")

const cacheKeyPrefix = "mountain_data_"

// CacheKey returns the cache key for a resort slug.
func CacheKey(slug string) string {
	return cacheKeyPrefix + slug
}

// Service orchestrates the per-resort adapters behind the two-tier cache.
type Service struct {
	cache    *cache.Cache
	ttl      time.Duration
	adapters map[string]Adapter
	order    []string
}

// NewService creates a Service over the given adapters. ttl bounds how long
// an assembled MountainData is served before upstream is consulted again.
func NewService(c *cache.Cache, ttl time.Duration, adapters ...Adapter) *Service {
	s := &Service{
		cache:    c,
		ttl:      ttl,
		adapters: make(map[string]Adapter, len(adapters)),
	}
	for _, a := range adapters {
		s.adapters[a.Slug()] = a
		s.order = append(s.order, a.Slug())
	}
	return s
}

// Slugs returns the registered resort slugs in registration order.
func (s *Service) Slugs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Has reports whether a resort slug is registered.
func (s *Service) Has(slug string) bool {
	_, ok := s.adapters[slug]
	return ok
}

// GetMountainData returns the cached MountainData for a resort slug,
// invoking the adapter on a cache miss.
func (s *Service) GetMountainData(ctx context.Context, slug string) (*MountainData, error) {
	adapter, ok := s.adapters[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResort, slug)
	}

	return cache.GetCachedData(s.cache, CacheKey(slug), s.ttl, func() (*MountainData, error) {
		return adapter.Fetch(ctx)
	})
}

// GetAllMountainData fetches every registered resort concurrently, each
// through its own cache entry. A resort whose fetch fails is logged and
// omitted; one slow or broken upstream never blocks the rest.
func (s *Service) GetAllMountainData(ctx context.Context) map[string]*MountainData {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	results := make(map[string]*MountainData, len(s.order))

	for _, slug := range s.order {
		slug := slug
		wg.Add(1)
		go func() {
			defer wg.Done()

			data, err := s.GetMountainData(ctx, slug)
			if err != nil {
				log.Printf("mountain: fetch failed for %s: %v", slug, err)
				return
			}

			mu.Lock()
			results[slug] = data
			mu.Unlock()
		}()
	}

	wg.Wait()
	return results
}
