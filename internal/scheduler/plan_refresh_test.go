package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stokcast/backend/internal/cache"
	"stokcast/backend/internal/config"
	"stokcast/backend/internal/domain"
	"stokcast/backend/internal/forecast"
	"stokcast/backend/internal/recommendation"
	"stokcast/backend/internal/service"
	"stokcast/backend/internal/store/memory"
)

var refreshNow = time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)

type pagedPlanner struct {
	mu      sync.Mutex
	items   []domain.PurchasePlanItem
	queries []service.PlanQuery
	block   chan struct{}
}

func (p *pagedPlanner) PurchasePlan(_ context.Context, query service.PlanQuery) (domain.PurchasePlanResponse, error) {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	p.queries = append(p.queries, query)
	p.mu.Unlock()

	start := (query.Page - 1) * query.PageSize
	end := min(start+query.PageSize, len(p.items))
	page := []domain.PurchasePlanItem{}
	if start < len(p.items) {
		page = p.items[start:end]
	}
	return domain.PurchasePlanResponse{
		TargetPeriod: *query.Target,
		Total:        len(p.items),
		Page:         query.Page,
		PageSize:     query.PageSize,
		Items:        page,
	}, nil
}

func planItems(orders ...int) []domain.PurchasePlanItem {
	items := make([]domain.PurchasePlanItem, 0, len(orders))
	for i, qty := range orders {
		items = append(items, domain.PurchasePlanItem{
			Product:        domain.Product{ID: "prd_" + string(rune('a'+i%26))},
			Recommendation: domain.Recommendation{OrderQuantity: qty},
		})
	}
	return items
}

func TestRunOnceWalksEveryPage(t *testing.T) {
	orders := make([]int, 0, 250)
	for i := range 250 {
		orders = append(orders, i%2)
	}
	planner := &pagedPlanner{items: planItems(orders...)}
	refresher := NewPlanRefresher(planner, config.PlanRefresh{}, time.UTC)
	refresher.now = func() time.Time { return refreshNow }

	reorders, err := refresher.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 125, reorders)
	require.Len(t, planner.queries, 3)
	for _, q := range planner.queries {
		assert.Equal(t, domain.NewPeriod(2026, time.March), *q.Target)
	}

	started, completed := refresher.LastRun()
	assert.Equal(t, refreshNow, started)
	assert.Equal(t, refreshNow, completed)
}

func TestRunOnceAtMonthStartUsesLastFullMonth(t *testing.T) {
	planner := &pagedPlanner{items: planItems(1)}
	refresher := NewPlanRefresher(planner, config.PlanRefresh{}, time.UTC)
	refresher.now = func() time.Time { return time.Date(2026, time.March, 1, 5, 0, 0, 0, time.UTC) }

	_, err := refresher.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, planner.queries, 1)
	target := *planner.queries[0].Target
	assert.Equal(t, domain.NewPeriod(2026, time.March), target)
	assert.Equal(t, domain.NewPeriod(2026, time.February), forecast.Cutoff(target))
}

func TestRunOnceAtMonthStartKeepsForecastSteady(t *testing.T) {
	params := forecast.DefaultParams()
	params.Location = time.UTC
	repo := memory.New()
	ctx := context.Background()
	_, err := repo.CreateProduct(ctx, domain.Product{ID: "prd_kopi", Name: "Kopi", Unit: "Pcs", PreferredWindow: 2})
	require.NoError(t, err)
	for p := domain.NewPeriod(2025, time.January); p.Before(domain.NewPeriod(2026, time.March)); p = p.Next() {
		_, err := repo.CreateTransaction(ctx, domain.Transaction{
			ID:    "trx_" + p.String(),
			Date:  p.Start(time.UTC).AddDate(0, 0, 9),
			Items: []domain.TransactionLine{{ProductID: "prd_kopi", Quantity: 30}},
		})
		require.NoError(t, err)
	}
	svc := service.New(repo, recommendation.NewEngine(cache.NoopRecommendationCache{}, time.Minute, params), domain.WindowPolicyFixed)

	runAt := time.Date(2026, time.March, 1, 5, 0, 0, 0, time.UTC)
	refresher := NewPlanRefresher(svc, config.PlanRefresh{}, time.UTC)
	refresher.now = func() time.Time { return runAt }
	reorders, err := refresher.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, reorders)

	plan, err := svc.PurchasePlan(service.WithActor(ctx, domain.Actor{Username: "admin", Role: domain.RoleAdmin}),
		service.PlanQuery{Target: ptrPeriod(forecast.PeriodOf(runAt, time.UTC))})
	require.NoError(t, err)
	require.Len(t, plan.Items, 1)
	rec := plan.Items[0].Recommendation
	assert.Equal(t, 14, rec.DataMonths)
	assert.Equal(t, 30, rec.Forecast)
	assert.Equal(t, 32, rec.OrderQuantity)
}

func ptrPeriod(p domain.Period) *domain.Period {
	return &p
}

func TestRunOnceSkipsOverlappingRun(t *testing.T) {
	planner := &pagedPlanner{items: planItems(3), block: make(chan struct{})}
	refresher := NewPlanRefresher(planner, config.PlanRefresh{}, time.UTC)

	done := make(chan int)
	go func() {
		reorders, _ := refresher.RunOnce(context.Background())
		done <- reorders
	}()

	require.Eventually(t, func() bool {
		refresher.mu.Lock()
		defer refresher.mu.Unlock()
		return refresher.running
	}, time.Second, 5*time.Millisecond)

	skipped, err := refresher.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, skipped)

	close(planner.block)
	assert.Equal(t, 1, <-done)
}

func TestRunOnceWarmsRecommendationCache(t *testing.T) {
	params := forecast.DefaultParams()
	params.Location = time.UTC
	memo := cache.NewMemoryRecommendationCache()
	svc := service.New(memory.NewSeededAt(refreshNow), recommendation.NewEngine(memo, time.Minute, params), domain.WindowPolicyAuto)

	refresher := NewPlanRefresher(svc, config.PlanRefresh{}, time.UTC)
	refresher.now = func() time.Time { return refreshNow }

	reorders, err := refresher.RunOnce(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, reorders, 1)
	assert.Equal(t, 7, memo.Len())
}

func TestStartDisabledIsNoop(t *testing.T) {
	refresher := NewPlanRefresher(&pagedPlanner{}, config.PlanRefresh{CronSchedule: "0 5 1 * *"}, time.UTC)
	assert.NoError(t, refresher.Start(context.Background()))
}

func TestStartRejectsBadCron(t *testing.T) {
	refresher := NewPlanRefresher(&pagedPlanner{}, config.PlanRefresh{CronSchedule: "not a cron", Enabled: true}, time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.Error(t, refresher.Start(ctx))
}
