package forecast

import (
	"math"
	"time"

	"stokcast/backend/internal/domain"
)

// OrderInput describes one product for a replenishment recommendation.
type OrderInput struct {
	ProductID       string
	CurrentStock    int
	PreferredWindow int
	Target          domain.Period
	Policy          domain.WindowPolicy
	// SeriesStart anchors the gap-filled series. When nil the product's own
	// first sale before the target is used.
	SeriesStart *domain.Period
}

// Cutoff is the last full month whose sales feed a forecast for target.
func Cutoff(target domain.Period) domain.Period {
	return target.Prev()
}

// BuildSeries aggregates the product's sales up to the cutoff of target and
// zero-fills every month from the anchor through the cutoff.
func BuildSeries(transactions []domain.Transaction, in OrderInput, loc *time.Location) ([]domain.MonthlyDemand, error) {
	cutoff := Cutoff(in.Target)
	byProduct, err := AggregateByProduct(transactions, AggregateOptions{
		ProductID: in.ProductID,
		To:        &cutoff,
		Location:  loc,
	})
	if err != nil {
		return nil, err
	}
	series := byProduct[in.ProductID]

	var anchor domain.Period
	switch {
	case in.SeriesStart != nil:
		anchor = *in.SeriesStart
	case len(series) > 0:
		anchor = series[0].Period
	default:
		return []domain.MonthlyDemand{}, nil
	}
	return FillGaps(series, in.ProductID, anchor, cutoff), nil
}

// ResolveWindow applies the window policy to a contiguous demand series and
// returns the chosen window with its back-test metrics.
func ResolveWindow(demand []int, in OrderInput, params Params) (int, domain.ErrorMetrics) {
	params = params.Normalize()
	if in.Policy == domain.WindowPolicyFixed {
		window := in.PreferredWindow
		if window <= 0 {
			window = params.DefaultWindow
		}
		return window, MovingAverage(demand, window).Metrics
	}
	best := BestWindow(EvaluateWindows(demand, params.CandidateWindows))
	return best.Window, best.Metrics
}

// Recommend turns a contiguous monthly series ending at the cutoff into an
// order quantity: ceil(next forecast) + safety stock - stock, floored at 0.
func Recommend(series []domain.MonthlyDemand, in OrderInput, params Params) domain.Recommendation {
	params = params.Normalize()
	policy := in.Policy
	if policy != domain.WindowPolicyFixed {
		policy = domain.WindowPolicyAuto
	}
	in.Policy = policy

	demand := Demands(series)
	window, metrics := ResolveWindow(demand, in, params)
	raw := MovingAverage(demand, window).NextForecast
	forecast := int(math.Ceil(raw))
	safety := SafetyStockWith(demand, params)

	order := forecast + safety - in.CurrentStock
	if order < 0 {
		order = 0
	}

	return domain.Recommendation{
		ProductID:     in.ProductID,
		TargetPeriod:  in.Target,
		TargetLabel:   in.Target.Label(),
		CutoffLabel:   Cutoff(in.Target).Label(),
		DataMonths:    len(series),
		WindowPolicy:  policy,
		WindowUsed:    window,
		MAPE:          metrics.MAPE,
		RawForecast:   raw,
		Forecast:      forecast,
		SafetyStock:   safety,
		CurrentStock:  in.CurrentStock,
		OrderQuantity: order,
	}
}

// RecommendOrder runs the whole replenishment pipeline for one product.
func RecommendOrder(transactions []domain.Transaction, in OrderInput, params Params) (domain.Recommendation, error) {
	params = params.Normalize()
	series, err := BuildSeries(transactions, in, params.Location)
	if err != nil {
		return domain.Recommendation{}, err
	}
	return Recommend(series, in, params), nil
}
