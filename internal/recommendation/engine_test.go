package recommendation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stokcast/backend/internal/cache"
	"stokcast/backend/internal/domain"
	"stokcast/backend/internal/forecast"
)

func sales(qtyByMonth map[time.Month]int) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(qtyByMonth))
	for month, qty := range qtyByMonth {
		out = append(out, domain.Transaction{
			ID:    "trx_" + month.String(),
			Date:  time.Date(2024, month, 10, 12, 0, 0, 0, time.UTC),
			Items: []domain.TransactionLine{{ProductID: "prd_kopi", Quantity: qty}},
		})
	}
	return out
}

func TestEngineMatchesCoreAndCaches(t *testing.T) {
	ctx := context.Background()
	memo := cache.NewMemoryRecommendationCache()
	engine := NewEngine(memo, time.Minute, forecast.Params{Location: time.UTC})

	txs := sales(map[time.Month]int{time.January: 12, time.May: 30})
	in := forecast.OrderInput{
		ProductID:       "prd_kopi",
		CurrentStock:    3,
		PreferredWindow: 2,
		Target:          domain.Period{Year: 2024, Month: time.July},
		Policy:          domain.WindowPolicyFixed,
	}

	got, err := engine.Recommend(ctx, txs, in)
	require.NoError(t, err)
	want, err := forecast.RecommendOrder(txs, in, engine.Params())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, memo.Len())

	again, err := engine.Recommend(ctx, txs, in)
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, 1, memo.Len())
}

func TestEngineCacheKeyTracksHistory(t *testing.T) {
	ctx := context.Background()
	memo := cache.NewMemoryRecommendationCache()
	engine := NewEngine(memo, time.Minute, forecast.Params{Location: time.UTC})
	in := forecast.OrderInput{
		ProductID:       "prd_kopi",
		PreferredWindow: 2,
		Target:          domain.Period{Year: 2024, Month: time.April},
		Policy:          domain.WindowPolicyFixed,
	}

	first, err := engine.Recommend(ctx, sales(map[time.Month]int{time.January: 10, time.March: 10}), in)
	require.NoError(t, err)
	second, err := engine.Recommend(ctx, sales(map[time.Month]int{time.January: 10, time.March: 50}), in)
	require.NoError(t, err)

	assert.NotEqual(t, first.OrderQuantity, second.OrderQuantity)
	assert.Equal(t, 2, memo.Len())
}

func TestBuildCacheKeyStable(t *testing.T) {
	series := []domain.MonthlyDemand{{Period: domain.Period{Year: 2024, Month: time.March}, Demand: 7}}
	in := forecast.OrderInput{ProductID: "prd_teh", Target: domain.Period{Year: 2024, Month: time.April}}
	params := forecast.DefaultParams()

	a := buildCacheKey(in, series, params)
	assert.Equal(t, a, buildCacheKey(in, series, params))
	assert.Contains(t, a, "stokcast:recommendation:")

	in.CurrentStock = 1
	assert.NotEqual(t, a, buildCacheKey(in, series, params))
}
