package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectWindowLowestMAPE(t *testing.T) {
	// A single spike punishes the wider window for longer.
	demand := []int{10, 10, 10, 10, 50, 10, 10, 10, 10, 10}

	scores := EvaluateWindows(demand, []int{2, 4})
	require.Len(t, scores, 2)
	assert.InDelta(t, 60.0, scores[0].Metrics.MAPE, 1e-9)
	assert.InDelta(t, 80.0, scores[1].Metrics.MAPE, 1e-9)
	assert.Equal(t, 2, SelectWindow(demand, []int{2, 4}))
	assert.Equal(t, 2, SelectWindow(demand, []int{4, 2}))
}

func TestSelectWindowTiesGoToFirstCandidate(t *testing.T) {
	flat := []int{7, 7, 7, 7, 7, 7, 7, 7, 7, 7}
	assert.Equal(t, 2, SelectWindow(flat, []int{2, 4, 6, 8}))
	assert.Equal(t, 6, SelectWindow(flat, []int{6, 2, 4}))
}

func TestSelectWindowUnscoredCandidateWins(t *testing.T) {
	// With four months only N=2 back-tests; larger windows score 0 and the
	// first of them is picked.
	assert.Equal(t, 4, SelectWindow([]int{100, 110, 90, 105}, DefaultCandidateWindows()))
}

func TestEvaluateWindowsCandidateHandling(t *testing.T) {
	demand := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}

	scores := EvaluateWindows(demand, []int{0, 3, -2})
	require.Len(t, scores, 1)
	assert.Equal(t, 3, scores[0].Window)

	fallback := EvaluateWindows(demand, nil)
	windows := make([]int, 0, len(fallback))
	for _, s := range fallback {
		windows = append(windows, s.Window)
	}
	assert.Equal(t, []int{2, 4, 6, 8}, windows)
}

func TestBestWindowEmpty(t *testing.T) {
	assert.Zero(t, BestWindow(nil).Window)
}
