package shared

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"mentordash/internal/domain/payment"
)

const maxWindowDays = 3650

// ParseWindow reads from/to (inclusive dates) or days from the query string.
// Without either it falls back to the trailing defaultDays; days=0 means all
// time. Problems are added to v.
func ParseWindow(r *http.Request, now time.Time, defaultDays int, v *Validator) payment.Window {
	q := r.URL.Query()
	from := strings.TrimSpace(q.Get("from"))
	to := strings.TrimSpace(q.Get("to"))
	if from != "" || to != "" {
		var window payment.Window
		if from != "" {
			if start, ok := v.Date("from", from); ok {
				window.Start = start
			}
		}
		if to != "" {
			if end, ok := v.Date("to", to); ok {
				window.End = end.AddDate(0, 0, 1)
			}
		}
		v.DateOrder("from", window.Start, "to", window.End)
		return window
	}

	days := defaultDays
	if raw := strings.TrimSpace(q.Get("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > maxWindowDays {
			v.Add("days", "must be a whole number between 0 and "+strconv.Itoa(maxWindowDays))
			return payment.Window{}
		}
		days = parsed
	}
	return payment.LastDays(now, days)
}

// ParseBoundedInt reads an optional positive integer query parameter.
func ParseBoundedInt(r *http.Request, name string, fallback, max int, v *Validator) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 || parsed > max {
		v.Add(name, "must be a whole number between 1 and "+strconv.Itoa(max))
		return fallback
	}
	return parsed
}
