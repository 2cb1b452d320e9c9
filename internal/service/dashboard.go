package service

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stokcast/backend/internal/domain"
	"stokcast/backend/internal/forecast"
	"stokcast/backend/internal/store"
)

const dashboardTopProducts = 5

// Dashboard summarizes the calendar month containing now and lists products
// whose stock is at or below their safety baseline.
func (s *Service) Dashboard(ctx context.Context, now time.Time) (domain.DashboardResponse, error) {
	loc := s.location()
	period := forecast.PeriodOf(now, loc)

	transactions, err := s.repo.ListTransactions(ctx, store.TransactionFilter{
		From: monthStart(now, loc),
		To:   period.Next().Start(loc),
	})
	if err != nil {
		return domain.DashboardResponse{}, err
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.DashboardResponse{}, err
	}

	byID := make(map[string]domain.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	revenue := decimal.Zero
	units := 0
	sold := make(map[string]int)
	for _, tx := range transactions {
		for _, item := range tx.Items {
			revenue = revenue.Add(item.Subtotal)
			units += item.Quantity
			sold[item.ProductID] += item.Quantity
		}
	}

	top := make([]domain.ProductSales, 0, len(sold))
	for productID, qty := range sold {
		product := byID[productID]
		top = append(top, domain.ProductSales{
			ProductID: productID,
			Name:      product.Name,
			Unit:      product.Unit,
			Quantity:  qty,
		})
	}
	sortTopProducts(top)
	if len(top) > dashboardTopProducts {
		top = top[:dashboardTopProducts]
	}

	lowStock := make([]domain.Product, 0)
	for _, product := range products {
		if product.CurrentStock <= product.SafetyStock {
			lowStock = append(lowStock, product)
		}
	}

	return domain.DashboardResponse{
		MonthLabel:       period.LongLabel(),
		Revenue:          revenue,
		UnitsSold:        units,
		TransactionCount: len(transactions),
		ProductCount:     len(products),
		TopProducts:      top,
		LowStock:         lowStock,
	}, nil
}

// sortTopProducts orders by quantity sold, then name, then product id.
// Sales of deleted products carry no name.
func sortTopProducts(top []domain.ProductSales) {
	slices.SortFunc(top, func(a, b domain.ProductSales) int {
		if c := cmp.Compare(b.Quantity, a.Quantity); c != 0 {
			return c
		}
		if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
}
