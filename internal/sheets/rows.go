package sheets

import (
	"errors"
	"fmt"
	"strings"

	"workboard/internal/core"
)

// Column order shared by spreadsheet ranges and seed files:
// Designer, Topic, Date, Company, Payment, Status, optional ID.
const (
	ColDesigner = iota
	ColTopic
	ColDate
	ColCompany
	ColPayment
	ColStatus
	ColID

	minColumns = ColStatus + 1
)

var ErrShortRow = errors.New("row has too few columns")

// ParseEntryRow converts one row of cells into an entry. A missing or blank
// ID column leaves the ID empty so the store assigns one.
func ParseEntryRow(cells []string) (core.WorkEntry, error) {
	if len(cells) < minColumns {
		return core.WorkEntry{}, fmt.Errorf("%w: got %d, want %d", ErrShortRow, len(cells), minColumns)
	}
	cells = trimCells(cells)

	date, err := core.ParseDate(cells[ColDate])
	if err != nil {
		return core.WorkEntry{}, err
	}
	cents, err := core.ParseINR(cells[ColPayment])
	if err != nil {
		return core.WorkEntry{}, fmt.Errorf("payment %q: %w", cells[ColPayment], err)
	}
	status, err := core.ParseStatus(cells[ColStatus])
	if err != nil {
		return core.WorkEntry{}, err
	}

	e := core.WorkEntry{
		DesignerName: cells[ColDesigner],
		WorkTopic:    cells[ColTopic],
		Date:         date,
		Company:      cells[ColCompany],
		Payment:      core.Money{Cents: cents},
		Status:       status,
	}
	if len(cells) > ColID {
		e.ID = core.EntryID(cells[ColID])
	}
	return e, nil
}

// trimCells returns trimmed copies, leaving the caller's row untouched.
func trimCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

// IsHeaderRow reports whether cells look like a column header line.
func IsHeaderRow(cells []string) bool {
	return len(cells) > 0 && strings.EqualFold(strings.TrimSpace(cells[0]), "designer name")
}
