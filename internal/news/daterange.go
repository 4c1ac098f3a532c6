package news

import (
	"time"

	"sjsage522/newsextractor/config"
)

// DateRange is the inclusive window [Start, End] of accepted publication times
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange computes the window for a run happening at now.
//
// SpecificDates always starts at the first day of the current month. For
// RollingMonths, months 0 and 1 both mean the current month only and every
// further month reaches one calendar month back.
func NewDateRange(dateType config.DateType, months int, now time.Time) DateRange {
	return DateRange{Start: Cutoff(dateType, months, now), End: now}
}

// Cutoff returns the earliest publication instant still in range
func Cutoff(dateType config.DateType, months int, now time.Time) time.Time {
	back := 0
	if dateType == config.RollingMonths && months > 1 {
		back = months - 1
	}
	// time.Date normalises a zero or negative month into the previous years.
	return time.Date(now.Year(), now.Month()-time.Month(back), 1, 0, 0, 0, 0, now.Location())
}

// Contains reports whether t falls inside the window; nil never does.
func (d DateRange) Contains(t *time.Time) bool {
	if t == nil {
		return false
	}
	return !t.Before(d.Start) && !t.After(d.End)
}

// InRange reports whether the record's publication date is inside the window
func (d DateRange) InRange(r Record) bool {
	return d.Contains(r.PublishedAt)
}

// Filter keeps the records inside the window, preserving order
func (d DateRange) Filter(records []Record) []Record {
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if d.InRange(r) {
			kept = append(kept, r)
		}
	}
	return kept
}
