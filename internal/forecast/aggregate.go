package forecast

import (
	"cmp"
	"slices"
	"time"

	"stokcast/backend/internal/domain"
)

// AggregateOptions narrows an aggregation. An empty ProductID selects every
// product; nil From/To leave that side of the month range open.
type AggregateOptions struct {
	ProductID string
	From      *domain.Period
	To        *domain.Period
	Daily     bool
	Location  *time.Location
}

type monthBucket struct {
	total int
	days  map[string]int
}

// AggregateMonthly sums one product's sold quantities per calendar month.
// Months without sales are not represented.
func AggregateMonthly(transactions []domain.Transaction, productID string, loc *time.Location) ([]domain.MonthlyDemand, error) {
	byProduct, err := AggregateByProduct(transactions, AggregateOptions{ProductID: productID, Location: loc})
	if err != nil {
		return nil, err
	}
	return byProduct[productID], nil
}

// AggregateMonthlyWithDailyDetail is AggregateMonthly plus the per-day
// breakdown of each month, for drill-down display.
func AggregateMonthlyWithDailyDetail(transactions []domain.Transaction, productID string, loc *time.Location) ([]domain.MonthlyDemand, error) {
	byProduct, err := AggregateByProduct(transactions, AggregateOptions{ProductID: productID, Daily: true, Location: loc})
	if err != nil {
		return nil, err
	}
	return byProduct[productID], nil
}

// AggregateByProduct buckets line quantities by (product, year, month). Each
// product's series is ordered by period. A transaction with a zero timestamp
// that contributes a line fails the whole aggregation with *TimestampError.
func AggregateByProduct(transactions []domain.Transaction, opts AggregateOptions) (map[string][]domain.MonthlyDemand, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	buckets := make(map[string]map[domain.Period]*monthBucket)
	for _, tx := range transactions {
		var period domain.Period
		resolved := false
		for _, item := range tx.Items {
			if opts.ProductID != "" && item.ProductID != opts.ProductID {
				continue
			}
			if item.Quantity < 1 {
				continue
			}
			if !resolved {
				if tx.Date.IsZero() {
					return nil, &TimestampError{TransactionID: tx.ID}
				}
				period = PeriodOf(tx.Date, loc)
				resolved = true
			}
			if opts.From != nil && period.Before(*opts.From) {
				break
			}
			if opts.To != nil && period.After(*opts.To) {
				break
			}

			perProduct, ok := buckets[item.ProductID]
			if !ok {
				perProduct = make(map[domain.Period]*monthBucket)
				buckets[item.ProductID] = perProduct
			}
			bucket, ok := perProduct[period]
			if !ok {
				bucket = &monthBucket{}
				if opts.Daily {
					bucket.days = make(map[string]int)
				}
				perProduct[period] = bucket
			}
			bucket.total += item.Quantity
			if opts.Daily {
				bucket.days[tx.Date.In(loc).Format(time.DateOnly)] += item.Quantity
			}
		}
	}

	out := make(map[string][]domain.MonthlyDemand, len(buckets))
	for productID, perProduct := range buckets {
		series := make([]domain.MonthlyDemand, 0, len(perProduct))
		for period, bucket := range perProduct {
			row := domain.MonthlyDemand{
				ProductID:   productID,
				Period:      period,
				PeriodLabel: period.Label(),
				Demand:      bucket.total,
			}
			if opts.Daily {
				row.Days = dailySlices(bucket.days)
			}
			series = append(series, row)
		}
		slices.SortFunc(series, func(a, b domain.MonthlyDemand) int {
			return a.Period.Compare(b.Period)
		})
		out[productID] = series
	}
	return out, nil
}

func dailySlices(days map[string]int) []domain.DailySlice {
	out := make([]domain.DailySlice, 0, len(days))
	for date, qty := range days {
		out = append(out, domain.DailySlice{Date: date, Quantity: qty})
	}
	// ISO dates order chronologically as strings.
	slices.SortFunc(out, func(a, b domain.DailySlice) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return out
}

// FillGaps returns a contiguous series from..to inclusive, taking demand from
// series where present and zero elsewhere. Rows outside the range are dropped.
func FillGaps(series []domain.MonthlyDemand, productID string, from, to domain.Period) []domain.MonthlyDemand {
	months := MonthRange(from, to)
	if len(months) == 0 {
		return []domain.MonthlyDemand{}
	}
	known := make(map[domain.Period]int, len(series))
	for _, row := range series {
		known[row.Period] += row.Demand
	}
	out := make([]domain.MonthlyDemand, 0, len(months))
	for _, period := range months {
		out = append(out, domain.MonthlyDemand{
			ProductID:   productID,
			Period:      period,
			PeriodLabel: period.Label(),
			Demand:      known[period],
		})
	}
	return out
}

// Demands extracts the numeric series the forecaster consumes.
func Demands(series []domain.MonthlyDemand) []int {
	out := make([]int, len(series))
	for i, row := range series {
		out[i] = row.Demand
	}
	return out
}
