package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverageConcreteScenario(t *testing.T) {
	result := MovingAverage([]int{100, 110, 90, 105}, 2)

	require.Len(t, result.Points, 4)
	assert.Nil(t, result.Points[0].Forecast)
	assert.Nil(t, result.Points[1].Forecast)
	assert.Nil(t, result.Points[1].APE)

	p2 := result.Points[2]
	require.NotNil(t, p2.Forecast)
	assert.Equal(t, 105.0, *p2.Forecast)
	assert.Equal(t, -15.0, *p2.Error)
	assert.InDelta(t, 16.6667, *p2.APE, 0.001)

	p3 := result.Points[3]
	require.NotNil(t, p3.Forecast)
	assert.Equal(t, 100.0, *p3.Forecast)
	assert.Equal(t, 5.0, *p3.Error)
	assert.InDelta(t, 4.7619, *p3.APE, 0.001)

	assert.Equal(t, 97.5, result.NextForecast)
	assert.Equal(t, 2, result.Metrics.Evaluated)
	assert.Equal(t, 10.0, result.Metrics.MAD)
	assert.Equal(t, 125.0, result.Metrics.MSE)
	assert.InDelta(t, (15.0/90*100+5.0/105*100)/2, result.Metrics.MAPE, 1e-9)
}

func TestMovingAverageInsufficientHistory(t *testing.T) {
	tests := []struct {
		name   string
		demand []int
		window int
	}{
		{name: "shorter than window", demand: []int{5, 7}, window: 4},
		{name: "empty", demand: nil, window: 2},
		{name: "zero window", demand: []int{1, 2, 3}, window: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := MovingAverage(tc.demand, tc.window)
			assert.Len(t, result.Points, len(tc.demand))
			assert.Zero(t, result.NextForecast)
			assert.Zero(t, result.Metrics.Evaluated)
			assert.Zero(t, result.Metrics.MAPE)
			for _, p := range result.Points {
				assert.Nil(t, p.Forecast)
				assert.NotNil(t, p.Actual)
			}
		})
	}
}

func TestMovingAverageWindowEqualsLength(t *testing.T) {
	result := MovingAverage([]int{3, 6, 9}, 3)
	assert.Zero(t, result.Metrics.Evaluated)
	assert.Equal(t, 6.0, result.NextForecast)
}

func TestMovingAverageExcludesZeroActualFromMAPE(t *testing.T) {
	// index 2 has zero demand: it is evaluated for MAD/MSE but has no APE.
	result := MovingAverage([]int{10, 10, 0, 10}, 2)

	zero := result.Points[2]
	require.NotNil(t, zero.Forecast)
	assert.Equal(t, -10.0, *zero.Error)
	assert.Nil(t, zero.APE)

	assert.Equal(t, 2, result.Metrics.Evaluated)
	assert.Equal(t, 1, result.Metrics.MAPEPoints)
	// point 3 forecasts mean(10, 0) = 5 against 10: |5|/10 = 50%.
	assert.Equal(t, 50.0, result.Metrics.MAPE)
	assert.Equal(t, (10.0+5.0)/2, result.Metrics.MAD)
	assert.Equal(t, (100.0+25.0)/2, result.Metrics.MSE)
}

func TestMovingAverageDeterministic(t *testing.T) {
	demand := []int{13, 7, 22, 9, 0, 41, 17, 3, 11}
	first := MovingAverage(demand, 3)
	second := MovingAverage(demand, 3)
	assert.Equal(t, first, second)
}

func TestMovingAverageNoLookAhead(t *testing.T) {
	const window = 3
	base := []int{12, 15, 9, 20, 11, 14, 18, 7, 10, 16}
	original := MovingAverage(base, window)

	for j := window; j < len(base); j++ {
		mutated := append([]int(nil), base...)
		mutated[j] += 1000
		changed := MovingAverage(mutated, window)
		for i := 0; i <= j && i < len(base); i++ {
			if original.Points[i].Forecast == nil {
				assert.Nil(t, changed.Points[i].Forecast)
				continue
			}
			assert.Equal(t, *original.Points[i].Forecast, *changed.Points[i].Forecast,
				"forecast[%d] moved after changing demand[%d]", i, j)
		}
	}
}

func TestMovingAverageDoesNotMutateInput(t *testing.T) {
	demand := []int{4, 8, 15, 16, 23, 42}
	snapshot := append([]int(nil), demand...)
	_ = MovingAverage(demand, 2)
	assert.Equal(t, snapshot, demand)
}
