package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"workboard/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "workboard.db"), nil)
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testEntry(id, designer string, cents int64) core.WorkEntry {
	return core.WorkEntry{
		ID:           core.EntryID(id),
		DesignerName: designer,
		WorkTopic:    "Festival Poster",
		Date:         core.NewDate(2025, 4, 2),
		Company:      "Hyundai",
		Payment:      core.Money{Cents: cents},
		Status:       core.StatusCompleted,
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	v1, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	v2, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if v1 != 2 || v2 != 2 {
		t.Fatalf("expected schema version 2, got %d and %d", v1, v2)
	}
}

func TestUpsertAndLoadKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	now := time.Now()

	for i, id := range []string{"b", "a", "c"} {
		if err := repo.UpsertEntry(ctx, testEntry(id, "D"+id, int64(i)*100), now); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}
	// Updating "b" must not move it.
	updated := testEntry("b", "Rahul Sharma", 500000)
	updated.ProjectImage = &core.Image{ContentType: "image/png", Data: []byte{0x89, 'P'}}
	if err := repo.UpsertEntry(ctx, updated, now.Add(time.Second)); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.LoadEntries(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 3 || got[0].ID != "b" || got[1].ID != "a" || got[2].ID != "c" {
		t.Fatalf("unexpected order %+v", got)
	}
	if got[0].DesignerName != "Rahul Sharma" || got[0].Payment.Cents != 500000 {
		t.Fatalf("update not applied: %+v", got[0])
	}
	if got[0].ProjectImage == nil || got[0].ProjectImage.ContentType != "image/png" || len(got[0].ProjectImage.Data) != 2 {
		t.Fatalf("image not stored: %+v", got[0].ProjectImage)
	}
	if got[0].Date.Key() != "2025-04-02" || got[0].Status != core.StatusCompleted {
		t.Fatalf("fields not round-tripped: %+v", got[0])
	}
}

func TestStaleChangesAreIgnored(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	t0 := time.Now()

	if err := repo.UpsertEntry(ctx, testEntry("x", "new", 100), t0); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.UpsertEntry(ctx, testEntry("x", "old", 100), t0.Add(-time.Minute)); err != nil {
		t.Fatalf("stale upsert: %v", err)
	}
	e, err := repo.GetEntry(ctx, "x")
	if err != nil || e.DesignerName != "new" {
		t.Fatalf("stale upsert applied: %+v %v", e, err)
	}

	if err := repo.DeleteEntry(ctx, "x", t0.Add(-time.Minute)); err != nil {
		t.Fatalf("stale delete: %v", err)
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Fatalf("stale delete removed the row")
	}
	if err := repo.DeleteEntry(ctx, "x", t0.Add(time.Minute)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetEntry(ctx, "x"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteEntry(ctx, "missing", time.Now()); err != nil {
		t.Fatalf("delete of unknown id: %v", err)
	}

	// An update older than the delete arrives late.
	if err := repo.UpsertEntry(ctx, testEntry("x", "late", 100), t0.Add(30*time.Second)); err != nil {
		t.Fatalf("late upsert: %v", err)
	}
	if _, err := repo.GetEntry(ctx, "x"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("late upsert resurrected the entry: %v", err)
	}
	if got, _ := repo.LoadEntries(ctx); len(got) != 0 {
		t.Fatalf("deleted entry listed: %+v", got)
	}
	if n, _ := repo.Count(ctx); n != 0 {
		t.Fatalf("count=%d after delete", n)
	}
}

func TestDeleteBeforeCreateWins(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	t0 := time.Now()

	// Delete delivered before the create it follows.
	if err := repo.DeleteEntry(ctx, "y", t0.Add(2*time.Second)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.UpsertEntry(ctx, testEntry("y", "created", 100), t0); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.UpsertEntry(ctx, testEntry("y", "updated", 100), t0.Add(time.Second)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := repo.GetEntry(ctx, "y"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// A change newer than the delete is applied.
	if err := repo.UpsertEntry(ctx, testEntry("y", "recreated", 100), t0.Add(3*time.Second)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	e, err := repo.GetEntry(ctx, "y")
	if err != nil || e.DesignerName != "recreated" {
		t.Fatalf("newer change not applied: %+v %v", e, err)
	}
}

func TestUpsertRejectsInvalidEntry(t *testing.T) {
	repo := newTestRepo(t)
	bad := testEntry("x", "", 100)
	if err := repo.UpsertEntry(context.Background(), bad, time.Now()); !errors.Is(err, core.ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry, got %v", err)
	}
}

func TestSeedAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")

	repo, err := NewSQLiteRepository(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.UpsertEntry(ctx, testEntry("k", "Kept", 4200), time.Now()); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	repo.Close()

	repo, err = NewSQLiteRepository(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	got, err := repo.LoadEntries(ctx)
	if err != nil || len(got) != 1 || got[0].DesignerName != "Kept" {
		t.Fatalf("unexpected %+v %v", got, err)
	}
}
