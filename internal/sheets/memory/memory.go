// Package memory provides the built-in seed data.
package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"workboard/internal/core"
	"workboard/internal/sheets"
)

// SeedFile is the optional file, relative to the data directory, whose rows
// extend the sample entries.
const SeedFile = "seed_entries.csv"

// Source serves a fixed list of entries.
type Source struct {
	entries []core.WorkEntry
}

func New(entries []core.WorkEntry) *Source {
	return &Source{entries: cloneAll(entries)}
}

// NewFromFiles returns the sample entries followed by the rows of
// base/seed_entries.csv. A missing file is not an error.
func NewFromFiles(base string) (*Source, error) {
	entries := SampleEntries()
	extra, err := readSeedFile(filepath.Join(base, SeedFile))
	if err != nil {
		return nil, err
	}
	return &Source{entries: append(entries, extra...)}, nil
}

// LoadEntries returns a copy of the configured entries.
func (s *Source) LoadEntries(ctx context.Context) ([]core.WorkEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cloneAll(s.entries), nil
}

// SampleEntries is the demo dataset shown on first start.
func SampleEntries() []core.WorkEntry {
	return []core.WorkEntry{
		{
			ID:           "1",
			DesignerName: "Rahul Sharma",
			WorkTopic:    "Festival Poster",
			Date:         core.NewDate(2025, 4, 2),
			Company:      "Hyundai",
			Payment:      core.Money{Cents: 500000},
			Status:       core.StatusCompleted,
		},
		{
			ID:           "2",
			DesignerName: "Priya Patel",
			WorkTopic:    "Social Media Banner",
			Date:         core.NewDate(2025, 4, 3),
			Company:      "Mahindra",
			Payment:      core.Money{Cents: 350000},
			Status:       core.StatusCompleted,
		},
		{
			ID:           "3",
			DesignerName: "Amit Kumar",
			WorkTopic:    "Product Brochure",
			Date:         core.NewDate(2025, 4, 4),
			Company:      "Audi",
			Payment:      core.Money{Cents: 750000},
			Status:       core.StatusInProgress,
		},
		{
			ID:           "4",
			DesignerName: "Neha Singh",
			WorkTopic:    "Website Banners",
			Date:         core.NewDate(2025, 4, 5),
			Company:      "Kia",
			Payment:      core.Money{Cents: 450000},
			Status:       core.StatusPending,
		},
	}
}

func readSeedFile(path string) ([]core.WorkEntry, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var out []core.WorkEntry
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		line, _ := r.FieldPos(0)
		if blank(rec) || (line == 1 && sheets.IsHeaderRow(rec)) {
			continue
		}
		e, err := sheets.ParseEntryRow(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cloneAll(in []core.WorkEntry) []core.WorkEntry {
	out := make([]core.WorkEntry, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}
