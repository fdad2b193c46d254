package sheets

import (
	"errors"
	"testing"

	"workboard/internal/core"
)

func TestParseEntryRow(t *testing.T) {
	e, err := ParseEntryRow([]string{" Amit Kumar ", "Product Brochure", "2025-04-04", "Audi", "₹7500", "In Progress"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if e.DesignerName != "Amit Kumar" || e.Payment.Cents != 750000 || e.Status != core.StatusInProgress || e.ID != "" {
		t.Fatalf("unexpected entry %+v", e)
	}
	if e.Date.Key() != "2025-04-04" {
		t.Fatalf("date = %s", e.Date.Key())
	}

	withID, err := ParseEntryRow([]string{"A", "B", "2025-04-04", "Kia", "10.5", "pending", "abc"})
	if err != nil || withID.ID != "abc" || withID.Payment.Cents != 1050 {
		t.Fatalf("unexpected %+v %v", withID, err)
	}
}

func TestParseEntryRowGroupedAmounts(t *testing.T) {
	cases := map[string]int64{
		"5,000":        500000,
		"₹1,23,456.00": 12345600,
		"₹4,500":       450000,
	}
	for in, want := range cases {
		e, err := ParseEntryRow([]string{"A", "B", "2025-04-04", "Kia", in, "pending"})
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if e.Payment.Cents != want {
			t.Errorf("%q: cents=%d want %d", in, e.Payment.Cents, want)
		}
	}
}

func TestParseEntryRowLeavesCellsUntouched(t *testing.T) {
	cells := []string{" Amit Kumar ", "Brochure ", "2025-04-04", " Audi", "7500", "pending"}
	before := append([]string(nil), cells...)
	if _, err := ParseEntryRow(cells); err != nil {
		t.Fatalf("parse: %v", err)
	}
	for i := range cells {
		if cells[i] != before[i] {
			t.Fatalf("cell %d changed: %q -> %q", i, before[i], cells[i])
		}
	}
}

func TestParseEntryRowErrors(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  error
	}{
		{"short", []string{"a", "b"}, ErrShortRow},
		{"bad date", []string{"a", "b", "yesterday", "c", "1", "pending"}, core.ErrInvalidDate},
		{"bad amount", []string{"a", "b", "2025-01-01", "c", "lots", "pending"}, core.ErrInvalidAmount},
		{"negative", []string{"a", "b", "2025-01-01", "c", "-5", "pending"}, core.ErrNegativePayment},
		{"bad status", []string{"a", "b", "2025-01-01", "c", "1", "done"}, core.ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseEntryRow(tt.cells); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestIsHeaderRow(t *testing.T) {
	if !IsHeaderRow([]string{"Designer Name", "Work Topic"}) {
		t.Fatal("expected header")
	}
	if IsHeaderRow([]string{"Rahul Sharma"}) || IsHeaderRow(nil) {
		t.Fatal("unexpected header")
	}
}
