package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var monthAbbrev = [12]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agt", "Sep", "Okt", "Nov", "Des"}

var monthNames = [12]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// Period identifies one calendar month. It is the sort key for every
// monthly series; the formatted label is display only.
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func NewPeriod(year int, month time.Month) Period {
	return Period{Year: year, Month: month}.normalize()
}

func (p Period) normalize() Period {
	t := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	return Period{Year: t.Year(), Month: t.Month()}
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

func (p Period) Next() Period {
	return Period{Year: p.Year, Month: p.Month + 1}.normalize()
}

func (p Period) Prev() Period {
	return Period{Year: p.Year, Month: p.Month - 1}.normalize()
}

// Compare returns -1, 0 or +1 ordering by (year, month).
func (p Period) Compare(other Period) int {
	switch {
	case p.Year < other.Year:
		return -1
	case p.Year > other.Year:
		return 1
	case p.Month < other.Month:
		return -1
	case p.Month > other.Month:
		return 1
	default:
		return 0
	}
}

func (p Period) Before(other Period) bool {
	return p.Compare(other) < 0
}

func (p Period) After(other Period) bool {
	return p.Compare(other) > 0
}

// MonthsUntil counts whole months from p to other; negative when other precedes p.
func (p Period) MonthsUntil(other Period) int {
	return (other.Year-p.Year)*12 + int(other.Month) - int(p.Month)
}

func (p Period) Abbrev() string {
	if p.Month < time.January || p.Month > time.December {
		return "?"
	}
	return monthAbbrev[p.Month-1]
}

func (p Period) MonthName() string {
	if p.Month < time.January || p.Month > time.December {
		return "?"
	}
	return monthNames[p.Month-1]
}

// Label renders the short display form, e.g. "Jan-24".
func (p Period) Label() string {
	return fmt.Sprintf("%s-%02d", p.Abbrev(), ((p.Year%100)+100)%100)
}

// LongLabel renders e.g. "Maret 2026".
func (p Period) LongLabel() string {
	return fmt.Sprintf("%s %d", p.MonthName(), p.Year)
}

// String renders the machine form "2024-01", accepted by ParsePeriod.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start returns the first instant of the month in loc.
func (p Period) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, loc)
}

// ParsePeriod parses "YYYY-MM".
func ParsePeriod(raw string) (Period, error) {
	trimmed := strings.TrimSpace(raw)
	parts := strings.Split(trimmed, "-")
	if len(parts) != 2 || len(parts[0]) != 4 {
		return Period{}, fmt.Errorf("period %q must be formatted as YYYY-MM", raw)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Period{}, fmt.Errorf("period %q has an invalid year", raw)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return Period{}, fmt.Errorf("period %q has an invalid month", raw)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}
