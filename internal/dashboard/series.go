// Package dashboard derives the read-only views shown on the dashboard from a
// slice of entries. Every function is pure and leaves its input untouched.
package dashboard

import (
	"sort"
	"time"

	"workboard/internal/core"
)

const (
	// DailyWindow is the number of most recent distinct days in DailySeries.
	DailyWindow = 7
	// MonthlyWindow is the number of most recent months in MonthlySeries.
	MonthlyWindow = 6

	dayLabelLayout   = "02 Jan"
	monthLabelLayout = "Jan 2006"
)

// DayCount is the number of entries dated on one calendar day.
type DayCount struct {
	Day   core.Date `json:"day"`
	Label string    `json:"label"`
	Count int       `json:"count"`
}

// MonthTotal is the sum of payments dated in one calendar month.
type MonthTotal struct {
	Month string     `json:"month"`
	Label string     `json:"label"`
	Total core.Money `json:"total"`
}

// TotalPayment sums all payments. An empty slice totals zero.
func TotalPayment(entries []core.WorkEntry) core.Money {
	var sum int64
	for _, e := range entries {
		sum += e.Payment.Cents
	}
	return core.Money{Cents: sum}
}

// DailySeries counts entries per day, oldest first, keeping the last
// DailyWindow days that have at least one entry.
func DailySeries(entries []core.WorkEntry) []DayCount {
	counts := make(map[string]*DayCount)
	for _, e := range entries {
		key := e.Date.Key()
		dc, ok := counts[key]
		if !ok {
			dc = &DayCount{Day: e.Date, Label: e.Date.Format(dayLabelLayout)}
			counts[key] = dc
		}
		dc.Count++
	}

	keys := sortedKeys(counts)
	out := make([]DayCount, 0, len(keys))
	for _, k := range lastN(keys, DailyWindow) {
		out = append(out, *counts[k])
	}
	return out
}

// MonthlySeries sums payments per month, oldest first, keeping the last
// MonthlyWindow months that have at least one entry.
func MonthlySeries(entries []core.WorkEntry) []MonthTotal {
	totals := make(map[string]*MonthTotal)
	for _, e := range entries {
		key := e.Date.MonthKey()
		mt, ok := totals[key]
		if !ok {
			first := time.Date(e.Date.Year(), e.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
			mt = &MonthTotal{Month: key, Label: first.Format(monthLabelLayout)}
			totals[key] = mt
		}
		mt.Total.Cents += e.Payment.Cents
	}

	keys := sortedKeys(totals)
	out := make([]MonthTotal, 0, len(keys))
	for _, k := range lastN(keys, MonthlyWindow) {
		out = append(out, *totals[k])
	}
	return out
}

// Keys are zero-padded dates, so lexical order is chronological.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func lastN(keys []string, n int) []string {
	if len(keys) > n {
		return keys[len(keys)-n:]
	}
	return keys
}
