package forecast

import (
	"math"

	"stokcast/backend/internal/domain"
)

// MovingAverage back-tests a simple moving average of width window over
// demand. Point i carries a forecast only when i >= window, and that forecast
// reads demand[i-window:i] alone. NextForecast is the mean of the last window
// values, or 0 when fewer than window values exist. A window below 1 yields
// no forecasts at all.
func MovingAverage(demand []int, window int) domain.ForecastResult {
	result := domain.ForecastResult{
		Window: window,
		Points: make([]domain.ForecastPoint, len(demand)),
	}

	var sumAbs, sumSq, sumAPE float64
	for i, actual := range demand {
		actualValue := actual
		point := domain.ForecastPoint{Actual: &actualValue}
		if window >= 1 && i >= window {
			forecast := mean(demand[i-window : i])
			errValue := float64(actual) - forecast
			absErr := math.Abs(errValue)
			point.Forecast = &forecast
			point.Error = &errValue

			sumAbs += absErr
			sumSq += errValue * errValue
			result.Metrics.Evaluated++
			if actual > 0 {
				ape := absErr / float64(actual) * 100
				point.APE = &ape
				sumAPE += ape
				result.Metrics.MAPEPoints++
			}
		}
		result.Points[i] = point
	}

	if n := result.Metrics.Evaluated; n > 0 {
		result.Metrics.MAD = sumAbs / float64(n)
		result.Metrics.MSE = sumSq / float64(n)
	}
	if n := result.Metrics.MAPEPoints; n > 0 {
		result.Metrics.MAPE = sumAPE / float64(n)
	}
	if window >= 1 && len(demand) >= window {
		result.NextForecast = mean(demand[len(demand)-window:])
	}
	return result
}

// ForecastMonthly runs MovingAverage over a monthly series and labels each
// point with its period.
func ForecastMonthly(series []domain.MonthlyDemand, window int) domain.ForecastResult {
	result := MovingAverage(Demands(series), window)
	for i := range result.Points {
		result.Points[i].Period = series[i].Period
		result.Points[i].PeriodLabel = series[i].PeriodLabel
		if result.Points[i].PeriodLabel == "" {
			result.Points[i].PeriodLabel = series[i].Period.Label()
		}
	}
	return result
}

// mean sums in integers and divides once so equal inputs give equal bits.
func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
