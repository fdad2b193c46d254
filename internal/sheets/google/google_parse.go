package google

import (
	"fmt"
	"strings"

	"workboard/internal/core"
	ports "workboard/internal/sheets"
)

// RowError records a sheet row (1-based, as shown in the Sheets UI) that was skipped.
type RowError struct {
	Row int
	Err error
}

var headerAliases = map[int][]string{
	ports.ColDesigner: {"designer name", "designer"},
	ports.ColTopic:    {"work topic", "topic"},
	ports.ColDate:     {"date"},
	ports.ColCompany:  {"company", "client"},
	ports.ColPayment:  {"payment amount", "payment", "amount"},
	ports.ColStatus:   {"status"},
	ports.ColID:       {"id"},
}

// parseValues converts a values matrix (as returned by the Sheets API) into
// entries. When the first row is a header its column names decide the layout,
// otherwise the default column order applies.
func parseValues(values [][]interface{}) ([]core.WorkEntry, []RowError) {
	if len(values) == 0 {
		return nil, nil
	}

	layout := defaultLayout()
	start := 0
	if first := toStrings(values[0]); ports.IsHeaderRow(first) {
		layout = headerLayout(first)
		start = 1
	}

	var (
		out     []core.WorkEntry
		skipped []RowError
	)
	for i := start; i < len(values); i++ {
		row := toStrings(values[i])
		if blank(row) {
			continue
		}
		cells := make([]string, len(layout))
		for col, idx := range layout {
			cells[col] = safeGet(row, idx)
		}
		if cells[ports.ColID] == "" {
			cells = cells[:ports.ColID]
		}
		e, err := ports.ParseEntryRow(cells)
		if err == nil {
			err = e.Fields().Validate()
		}
		if err != nil {
			skipped = append(skipped, RowError{Row: i + 1, Err: err})
			continue
		}
		out = append(out, e)
	}
	return out, skipped
}

func defaultLayout() []int {
	l := make([]int, ports.ColID+1)
	for i := range l {
		l[i] = i
	}
	return l
}

// headerLayout maps each logical column to its index in the header, or -1.
func headerLayout(headers []string) []int {
	l := make([]int, ports.ColID+1)
	for col := range l {
		l[col] = -1
		for _, alias := range headerAliases[col] {
			if idx := indexOf(headers, alias); idx >= 0 {
				l[col] = idx
				break
			}
		}
	}
	return l
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch n := v.(type) {
		case float64:
			// Whole numbers come back as floats from UNFORMATTED_VALUE.
			out[i] = strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", n), "0"), ".")
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
