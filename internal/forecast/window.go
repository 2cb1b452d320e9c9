package forecast

import "stokcast/backend/internal/domain"

// EvaluateWindows scores every positive candidate window against demand, in
// candidate order. An empty or all-invalid candidate list falls back to
// DefaultCandidateWindows.
func EvaluateWindows(demand []int, candidates []int) []domain.WindowScore {
	valid := make([]int, 0, len(candidates))
	for _, n := range candidates {
		if n > 0 {
			valid = append(valid, n)
		}
	}
	if len(valid) == 0 {
		valid = DefaultCandidateWindows()
	}

	scores := make([]domain.WindowScore, 0, len(valid))
	for _, n := range valid {
		scores = append(scores, domain.WindowScore{
			Window:  n,
			Metrics: MovingAverage(demand, n).Metrics,
		})
	}
	return scores
}

// SelectWindow returns the candidate with the lowest MAPE. Ties go to the
// earlier candidate. A candidate that never back-tests scores a MAPE of 0.
func SelectWindow(demand []int, candidates []int) int {
	return BestWindow(EvaluateWindows(demand, candidates)).Window
}

// BestWindow picks the lowest-MAPE score, first one winning ties. It returns
// the zero value for an empty slice.
func BestWindow(scores []domain.WindowScore) domain.WindowScore {
	var best domain.WindowScore
	for i, score := range scores {
		if i == 0 || score.Metrics.MAPE < best.Metrics.MAPE {
			best = score
		}
	}
	return best
}
