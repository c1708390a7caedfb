package payment

import "time"

// Window is a half-open date range [Start, End). A zero bound is unbounded.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && !t.Before(w.End) {
		return false
	}
	return true
}

func (w Window) IsOpen() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// LastDays covers everything submitted in the trailing number of days.
func LastDays(now time.Time, days int) Window {
	if days <= 0 {
		return Window{}
	}
	return Window{Start: now.AddDate(0, 0, -days)}
}

// WeekOf returns the Monday-to-Monday week holding t, in t's location.
func WeekOf(t time.Time) Window {
	offset := (int(t.Weekday()) + 6) % 7
	start := time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, t.Location())
	return Window{Start: start, End: start.AddDate(0, 0, 7)}
}

// PreviousWeek is the full week before the one holding t.
func PreviousWeek(t time.Time) Window {
	current := WeekOf(t)
	return Window{Start: current.Start.AddDate(0, 0, -7), End: current.Start}
}

// Filter returns the records dated inside w, preserving order.
func Filter(records []WorkRecord, w Window) []WorkRecord {
	out := make([]WorkRecord, 0, len(records))
	for _, record := range records {
		if w.Contains(record.Date) {
			out = append(out, record)
		}
	}
	return out
}

// WeeklyBuckets computes one breakdown per week for the last weeks weeks,
// the week holding now first.
func WeeklyBuckets(records []WorkRecord, weeks int, now time.Time, ratePerMinute float64) []WeeklyBreakdown {
	if weeks <= 0 {
		return nil
	}
	current := WeekOf(now)
	out := make([]WeeklyBreakdown, 0, weeks)
	for i := 0; i < weeks; i++ {
		window := Window{
			Start: current.Start.AddDate(0, 0, -7*i),
			End:   current.End.AddDate(0, 0, -7*i),
		}
		bucket := Filter(records, window)
		out = append(out, WeeklyBreakdown{
			Window:      window,
			RecordCount: len(bucket),
			Breakdown:   Compute(bucket, ratePerMinute),
		})
	}
	return out
}
