// Package storage mirrors work entries into SQLite so a later start can seed
// from them.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"workboard/internal/core"
	applog "workboard/internal/log"
	"workboard/internal/sheets"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *applog.Logger
}

var (
	_ sheets.EntrySource = (*SQLiteRepository)(nil)
	_ sheets.EntryMirror = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentStorage)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("SQLite ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{db: db, queries: New(db), logger: logger}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadEntries implements sheets.EntrySource, returning rows in insertion order.
func (r *SQLiteRepository) LoadEntries(ctx context.Context) ([]core.WorkEntry, error) {
	rows, err := r.queries.ListWorkEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list work entries: %w", err)
	}
	out := make([]core.WorkEntry, 0, len(rows))
	for _, row := range rows {
		e, err := rowToEntry(row)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", row.ID, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// GetEntry returns one mirrored entry or core.ErrNotFound.
func (r *SQLiteRepository) GetEntry(ctx context.Context, id core.EntryID) (core.WorkEntry, error) {
	row, err := r.queries.GetWorkEntry(ctx, string(id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.WorkEntry{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	if err != nil {
		return core.WorkEntry{}, fmt.Errorf("get work entry: %w", err)
	}
	return rowToEntry(row)
}

// UpsertEntry implements sheets.EntryMirror.
func (r *SQLiteRepository) UpsertEntry(ctx context.Context, e core.WorkEntry, changedAt time.Time) error {
	if err := e.Validate(); err != nil {
		return err
	}
	params := UpsertWorkEntryParams{
		ID:           string(e.ID),
		DesignerName: e.DesignerName,
		WorkTopic:    e.WorkTopic,
		EntryDate:    e.Date.Key(),
		Company:      e.Company,
		PaymentCents: e.Payment.Cents,
		Status:       e.Status.String(),
		ChangedAtNs:  changedAt.UnixNano(),
	}
	if e.ProjectImage != nil {
		params.ImageContentType = sql.NullString{String: e.ProjectImage.ContentType, Valid: true}
		params.ImageData = e.ProjectImage.Data
	}

	n, err := r.queries.UpsertWorkEntry(ctx, params)
	if err != nil {
		return fmt.Errorf("upsert work entry: %w", err)
	}
	if n == 0 {
		r.logger.DebugContext(ctx, "Ignored stale entry change", applog.FieldEntryID, e.ID)
	}
	return nil
}

// DeleteEntry implements sheets.EntryMirror. The delete leaves a tombstone so
// older changes delivered later cannot bring the entry back. Unknown ids
// still get one.
func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id core.EntryID, changedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if _, err := q.DeleteWorkEntry(ctx, string(id), changedAt.UnixNano()); err != nil {
		return fmt.Errorf("delete work entry: %w", err)
	}
	if err := q.UpsertTombstone(ctx, string(id), changedAt.UnixNano()); err != nil {
		return fmt.Errorf("record tombstone: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	return r.queries.CountWorkEntries(ctx)
}

func rowToEntry(row WorkEntryRow) (core.WorkEntry, error) {
	date, err := core.ParseDate(row.EntryDate)
	if err != nil {
		return core.WorkEntry{}, err
	}
	e := core.WorkEntry{
		ID:           core.EntryID(row.ID),
		DesignerName: row.DesignerName,
		WorkTopic:    row.WorkTopic,
		Date:         date,
		Company:      row.Company,
		Payment:      core.Money{Cents: row.PaymentCents},
		Status:       core.Status(row.Status),
	}
	if row.ImageContentType.Valid {
		e.ProjectImage = &core.Image{ContentType: row.ImageContentType.String, Data: row.ImageData}
	}
	return e, nil
}
