package service

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"stokcast/backend/internal/domain"
	"stokcast/backend/internal/forecast"
)

const (
	defaultPlanPageSize = 10
	maxPlanPageSize     = 100
)

// PlanQuery selects and pages a purchase plan. A nil Target means the month
// after the latest sale; an empty Policy uses the service default.
type PlanQuery struct {
	Target   *domain.Period
	Search   string
	Policy   domain.WindowPolicy
	Page     int
	PageSize int
}

// PurchasePlan recommends an order quantity for every matching product.
// Every series is anchored at the store's first sale so products are scored
// over the same months.
func (s *Service) PurchasePlan(ctx context.Context, query PlanQuery) (domain.PurchasePlanResponse, error) {
	target, err := s.resolveTarget(ctx, query.Target)
	if err != nil {
		return domain.PurchasePlanResponse{}, err
	}
	page, pageSize := query.Page, query.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPlanPageSize
	}
	if pageSize > maxPlanPageSize {
		pageSize = maxPlanPageSize
	}
	policy := s.resolvePolicy(query.Policy)

	resp := domain.PurchasePlanResponse{
		TargetPeriod:   target,
		TargetLabel:    target.Label(),
		DataUntilLabel: forecast.Cutoff(target).Label(),
		WindowPolicy:   policy,
		Page:           page,
		PageSize:       pageSize,
		Items:          []domain.PurchasePlanItem{},
		GeneratedAt:    s.now().UTC(),
	}

	transactions, err := s.transactionsUntil(ctx, "", &target)
	if err != nil {
		return domain.PurchasePlanResponse{}, err
	}
	anchor, ok := s.earliestPeriod(transactions)
	if !ok {
		return resp, nil
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.PurchasePlanResponse{}, err
	}
	suppliers, err := s.supplierNames(ctx)
	if err != nil {
		return domain.PurchasePlanResponse{}, err
	}

	search := strings.ToLower(strings.TrimSpace(query.Search))
	items := make([]domain.PurchasePlanItem, 0, len(products))
	for _, product := range products {
		supplierName := suppliers[product.SupplierID]
		if search != "" && !matchesSearch(search, product.Name, product.Unit, supplierName) {
			continue
		}

		rec, err := s.recommender.Recommend(ctx, transactions, forecast.OrderInput{
			ProductID:       product.ID,
			CurrentStock:    product.CurrentStock,
			PreferredWindow: product.PreferredWindow,
			Target:          target,
			Policy:          policy,
			SeriesStart:     &anchor,
		})
		if err != nil {
			return domain.PurchasePlanResponse{}, err
		}
		items = append(items, domain.PurchasePlanItem{
			Product:        product,
			SupplierName:   supplierName,
			Recommendation: rec,
		})
	}

	slices.SortStableFunc(items, func(a, b domain.PurchasePlanItem) int {
		if c := cmp.Compare(b.Recommendation.OrderQuantity, a.Recommendation.OrderQuantity); c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(a.Product.Name), strings.ToLower(b.Product.Name))
	})

	resp.Total = len(items)
	start := (page - 1) * pageSize
	if start < len(items) {
		end := min(start+pageSize, len(items))
		resp.Items = items[start:end]
	}
	return resp, nil
}

// earliestPeriod returns the month of the oldest dated transaction.
// transactions must be ordered oldest first.
func (s *Service) earliestPeriod(transactions []domain.Transaction) (domain.Period, bool) {
	for _, tx := range transactions {
		if !tx.Date.IsZero() {
			return forecast.PeriodOf(tx.Date, s.location()), true
		}
	}
	return domain.Period{}, false
}

func matchesSearch(needle string, fields ...string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
