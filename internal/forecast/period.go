package forecast

import (
	"time"

	"stokcast/backend/internal/domain"
)

// PeriodOf returns the calendar month containing t as seen from loc.
func PeriodOf(t time.Time, loc *time.Location) domain.Period {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	return domain.Period{Year: local.Year(), Month: local.Month()}
}

// MonthRange lists every month from..to inclusive in chronological order.
// It returns nil when to precedes from.
func MonthRange(from, to domain.Period) []domain.Period {
	span := from.MonthsUntil(to)
	if span < 0 {
		return nil
	}
	out := make([]domain.Period, 0, span+1)
	for p := from; !p.After(to); p = p.Next() {
		out = append(out, p)
	}
	return out
}
