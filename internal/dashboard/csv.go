package dashboard

import (
	"fmt"
	"io"
	"os"
	"strings"

	"workboard/internal/core"
)

// DefaultFilename is used when an export is requested without a name.
const DefaultFilename = "dashboard-data.csv"

var csvHeader = []string{"Designer Name", "Work Topic", "Date", "Company", "Payment Amount", "Status"}

// ToCSV renders entries in collection order below a fixed header. Lines are
// separated by "\n" and there is no trailing newline.
func ToCSV(entries []core.WorkEntry) string {
	var b strings.Builder
	writeLine(&b, csvHeader)
	for _, e := range entries {
		b.WriteByte('\n')
		writeLine(&b, []string{
			e.DesignerName,
			e.WorkTopic,
			e.Date.Long(),
			e.Company,
			e.Payment.Decimal(),
			e.Status.String(),
		})
	}
	return b.String()
}

// WriteCSV streams ToCSV output to w.
func WriteCSV(w io.Writer, entries []core.WorkEntry) error {
	_, err := io.WriteString(w, ToCSV(entries))
	return err
}

// WriteCSVFile writes the export to path, replacing any existing file.
func WriteCSVFile(path string, entries []core.WorkEntry) error {
	if strings.TrimSpace(path) == "" {
		path = DefaultFilename
	}
	if err := os.WriteFile(path, []byte(ToCSV(entries)), 0o644); err != nil {
		return fmt.Errorf("write csv %s: %w", path, err)
	}
	return nil
}

func writeLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(csvEscape(f))
	}
}

// csvEscape quotes a field only when it contains a comma, quote or line break.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
