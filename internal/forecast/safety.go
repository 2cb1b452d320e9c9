package forecast

// SafetyStock sizes the lead-time buffer with the default parameters.
func SafetyStock(demand []int) int {
	return SafetyStockWith(demand, DefaultParams())
}

// SafetyStockWith computes
//
//	ceil(maxLead * max/periodDays - avgLead * mean/periodDays)
//
// over the monthly demand list, clamped at zero. An empty list gives 0.
// The arithmetic is exact: both terms share the denominator
// periodDays*len(demand).
func SafetyStockWith(demand []int, params Params) int {
	if len(demand) == 0 {
		return 0
	}
	params = params.Normalize()

	maxDemand, sum := demand[0], 0
	for _, v := range demand {
		if v > maxDemand {
			maxDemand = v
		}
		sum += v
	}
	count := int64(len(demand))
	numerator := int64(params.LeadTimeMaxDays)*int64(maxDemand)*count - int64(params.LeadTimeAvgDays)*int64(sum)
	denominator := int64(params.PeriodDays) * count
	if numerator <= 0 {
		return 0
	}
	return int((numerator + denominator - 1) / denominator)
}
