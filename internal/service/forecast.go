package service

import (
	"context"
	"fmt"

	"stokcast/backend/internal/domain"
	"stokcast/backend/internal/forecast"
	"stokcast/backend/internal/store"
)

// MonthlyHistory returns the product's raw monthly totals, optionally with
// per-day detail. Months without sales are omitted.
func (s *Service) MonthlyHistory(ctx context.Context, productID string, withDaily bool, from, to *domain.Period) (domain.MonthlyHistoryResponse, error) {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return domain.MonthlyHistoryResponse{}, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return domain.MonthlyHistoryResponse{}, fmt.Errorf("%w: range end is before its start", store.ErrInvalidInput)
	}

	transactions, err := s.repo.ListTransactions(ctx, store.TransactionFilter{ProductID: product.ID})
	if err != nil {
		return domain.MonthlyHistoryResponse{}, err
	}
	byProduct, err := forecast.AggregateByProduct(transactions, forecast.AggregateOptions{
		ProductID: product.ID,
		From:      from,
		To:        to,
		Daily:     withDaily,
		Location:  s.location(),
	})
	if err != nil {
		return domain.MonthlyHistoryResponse{}, err
	}

	months := byProduct[product.ID]
	if months == nil {
		months = []domain.MonthlyDemand{}
	}
	return domain.MonthlyHistoryResponse{ProductID: product.ID, Months: months}, nil
}

// ProductForecast back-tests an SMA of the given window over the product's
// gap-filled history and appends the forecast for the following month.
// A window below 1 falls back to the product's preferred window, then to the
// default window.
func (s *Service) ProductForecast(ctx context.Context, productID string, window int) (domain.ProductForecastResponse, error) {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return domain.ProductForecastResponse{}, err
	}
	params := s.params()
	if window < 1 {
		window = product.PreferredWindow
	}
	if window < 1 {
		window = params.DefaultWindow
	}

	transactions, err := s.repo.ListTransactions(ctx, store.TransactionFilter{ProductID: product.ID})
	if err != nil {
		return domain.ProductForecastResponse{}, err
	}
	series, err := forecast.AggregateMonthly(transactions, product.ID, params.Location)
	if err != nil {
		return domain.ProductForecastResponse{}, err
	}

	resp := domain.ProductForecastResponse{
		Product:     *product,
		Window:      window,
		Result:      domain.ForecastResult{Window: window, Points: []domain.ForecastPoint{}},
		Evaluations: []domain.WindowScore{},
	}
	if len(series) == 0 {
		return resp, nil
	}

	first, last := series[0].Period, series[len(series)-1].Period
	filled := forecast.FillGaps(series, product.ID, first, last)
	result := forecast.ForecastMonthly(filled, window)

	target := last.Next()
	row := domain.ForecastPoint{Period: target, PeriodLabel: target.Label()}
	if len(filled) >= window {
		next := result.NextForecast
		row.Forecast = &next
	}
	result.Points = append(result.Points, row)

	evaluations := forecast.EvaluateWindows(forecast.Demands(filled), params.CandidateWindows)
	resp.Result = result
	resp.TargetLabel = target.Label()
	resp.Evaluations = evaluations
	resp.BestWindow = forecast.BestWindow(evaluations).Window
	return resp, nil
}

// Recommendation computes the order quantity for one product for target.
// A nil target means the month after the latest recorded sale.
func (s *Service) Recommendation(ctx context.Context, productID string, target *domain.Period, policy domain.WindowPolicy) (domain.Recommendation, error) {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return domain.Recommendation{}, err
	}

	period, err := s.resolveTarget(ctx, target)
	if err != nil {
		return domain.Recommendation{}, err
	}
	transactions, err := s.transactionsUntil(ctx, product.ID, &period)
	if err != nil {
		return domain.Recommendation{}, err
	}

	return s.recommender.Recommend(ctx, transactions, forecast.OrderInput{
		ProductID:       product.ID,
		CurrentStock:    product.CurrentStock,
		PreferredWindow: product.PreferredWindow,
		Target:          period,
		Policy:          s.resolvePolicy(policy),
	})
}

// resolveTarget defaults to the month after the latest sale, or next month
// when nothing has been sold yet.
func (s *Service) resolveTarget(ctx context.Context, target *domain.Period) (domain.Period, error) {
	if target != nil && !target.IsZero() {
		return *target, nil
	}

	latest, err := s.repo.ListTransactions(ctx, store.TransactionFilter{Limit: 1})
	if err != nil {
		return domain.Period{}, err
	}
	if len(latest) == 0 || latest[0].Date.IsZero() {
		return forecast.PeriodOf(s.now(), s.location()).Next(), nil
	}
	return forecast.PeriodOf(latest[0].Date, s.location()).Next(), nil
}
