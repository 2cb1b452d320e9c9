package recommendation

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"stokcast/backend/internal/cache"
	"stokcast/backend/internal/domain"
	"stokcast/backend/internal/forecast"
	"stokcast/backend/internal/logging"
)

// Engine runs the replenishment pipeline with a memo cache in front of it.
type Engine struct {
	cache    cache.RecommendationCache
	cacheTTL time.Duration
	params   forecast.Params
}

func NewEngine(cacheStore cache.RecommendationCache, cacheTTL time.Duration, params forecast.Params) *Engine {
	if cacheStore == nil {
		cacheStore = cache.NoopRecommendationCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &Engine{
		cache:    cacheStore,
		cacheTTL: cacheTTL,
		params:   params.Normalize(),
	}
}

func (e *Engine) Params() forecast.Params {
	return e.params
}

// Recommend builds the gap-filled series for in and returns the order
// recommendation. The cache key covers the series itself, so new or deleted
// sales always miss.
func (e *Engine) Recommend(ctx context.Context, transactions []domain.Transaction, in forecast.OrderInput) (domain.Recommendation, error) {
	series, err := forecast.BuildSeries(transactions, in, e.params.Location)
	if err != nil {
		return domain.Recommendation{}, err
	}

	key := buildCacheKey(in, series, e.params)
	if cached, ok, err := e.cache.Get(ctx, key); err != nil {
		logging.Component(ctx, "recommendation").WithError(err).Warn("cache read failed")
	} else if ok {
		return *cached, nil
	}

	rec := forecast.Recommend(series, in, e.params)
	if err := e.cache.Set(ctx, key, &rec, e.cacheTTL); err != nil {
		logging.Component(ctx, "recommendation").WithError(err).Warn("cache write failed")
	}
	return rec, nil
}

func buildCacheKey(in forecast.OrderInput, series []domain.MonthlyDemand, params forecast.Params) string {
	parts := make([]string, 0, len(series)+4)
	parts = append(parts, in.ProductID, in.Target.String(), string(in.Policy))
	parts = append(parts, fmt.Sprintf("s:%d|w:%d", in.CurrentStock, in.PreferredWindow))
	parts = append(parts, fmt.Sprintf("p:%d,%d,%d,%d,%v",
		params.LeadTimeMaxDays, params.LeadTimeAvgDays, params.PeriodDays, params.DefaultWindow, params.CandidateWindows))
	for _, row := range series {
		parts = append(parts, row.Period.String()+"="+strconv.Itoa(row.Demand))
	}

	hash := sha1.Sum([]byte(strings.Join(parts, "|")))
	return "stokcast:recommendation:" + hex.EncodeToString(hash[:])
}
