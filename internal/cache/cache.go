package cache

import (
	"context"
	"sync"
	"time"

	"stokcast/backend/internal/domain"
)

// RecommendationCache memoizes computed recommendations. Keys must be
// derived from every input of the computation so a hit is never stale.
type RecommendationCache interface {
	Get(ctx context.Context, key string) (*domain.Recommendation, bool, error)
	Set(ctx context.Context, key string, value *domain.Recommendation, ttl time.Duration) error
}

type NoopRecommendationCache struct{}

func (NoopRecommendationCache) Get(_ context.Context, _ string) (*domain.Recommendation, bool, error) {
	return nil, false, nil
}

func (NoopRecommendationCache) Set(_ context.Context, _ string, _ *domain.Recommendation, _ time.Duration) error {
	return nil
}

type memoryEntry struct {
	value     domain.Recommendation
	expiresAt time.Time
}

// MemoryRecommendationCache is an in-process cache used when Redis is not
// configured.
type MemoryRecommendationCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryRecommendationCache() *MemoryRecommendationCache {
	return &MemoryRecommendationCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryRecommendationCache) Get(_ context.Context, key string) (*domain.Recommendation, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	value := entry.value
	return &value, true, nil
}

func (c *MemoryRecommendationCache) Set(_ context.Context, key string, value *domain.Recommendation, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := memoryEntry{value: *value}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = entry
	return nil
}

func (c *MemoryRecommendationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
