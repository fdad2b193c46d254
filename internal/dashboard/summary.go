package dashboard

import "workboard/internal/core"

// Summary bundles every derived view for one store version.
type Summary struct {
	Version uint64       `json:"version"`
	Count   int          `json:"count"`
	Total   core.Money   `json:"total"`
	Daily   []DayCount   `json:"daily"`
	Monthly []MonthTotal `json:"monthly"`
}

// Summarize computes all derived views of entries.
func Summarize(version uint64, entries []core.WorkEntry) Summary {
	return Summary{
		Version: version,
		Count:   len(entries),
		Total:   TotalPayment(entries),
		Daily:   DailySeries(entries),
		Monthly: MonthlySeries(entries),
	}
}
