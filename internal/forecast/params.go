package forecast

import "time"

const (
	DefaultLeadTimeMaxDays = 4
	DefaultLeadTimeAvgDays = 2
	DefaultPeriodDays      = 30
	DefaultWindow          = 4
)

// DefaultCandidateWindows returns the canonical window candidate set.
func DefaultCandidateWindows() []int {
	return []int{2, 4, 6, 8}
}

// Params is the single parameterization of the forecasting core. Zero or
// negative fields are replaced with the package defaults by Normalize.
type Params struct {
	LeadTimeMaxDays  int
	LeadTimeAvgDays  int
	PeriodDays       int
	CandidateWindows []int
	DefaultWindow    int
	// Location is the calendar used to assign timestamps to months.
	Location *time.Location
}

func DefaultParams() Params {
	return Params{}.Normalize()
}

func (p Params) Normalize() Params {
	if p.LeadTimeMaxDays <= 0 {
		p.LeadTimeMaxDays = DefaultLeadTimeMaxDays
	}
	if p.LeadTimeAvgDays <= 0 {
		p.LeadTimeAvgDays = DefaultLeadTimeAvgDays
	}
	if p.PeriodDays <= 0 {
		p.PeriodDays = DefaultPeriodDays
	}
	if p.DefaultWindow <= 0 {
		p.DefaultWindow = DefaultWindow
	}
	candidates := make([]int, 0, len(p.CandidateWindows))
	for _, n := range p.CandidateWindows {
		if n > 0 {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		candidates = DefaultCandidateWindows()
	}
	p.CandidateWindows = candidates
	if p.Location == nil {
		p.Location = time.Local
	}
	return p
}
