package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// WorkEntryRow is one row of the work_entries table.
type WorkEntryRow struct {
	ID               string
	Position         int64
	DesignerName     string
	WorkTopic        string
	EntryDate        string
	Company          string
	PaymentCents     int64
	Status           string
	ImageContentType sql.NullString
	ImageData        []byte
	ChangedAtNs      int64
}

const listWorkEntries = `
SELECT id, position, designer_name, work_topic, entry_date, company, payment_cents, status,
       image_content_type, image_data, changed_at_ns
FROM work_entries
WHERE NOT EXISTS (
    SELECT 1 FROM work_entry_tombstones t
    WHERE t.id = work_entries.id AND t.deleted_at_ns >= work_entries.changed_at_ns
)
ORDER BY position ASC
`

func (q *Queries) ListWorkEntries(ctx context.Context) ([]WorkEntryRow, error) {
	rows, err := q.db.QueryContext(ctx, listWorkEntries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []WorkEntryRow
	for rows.Next() {
		var i WorkEntryRow
		if err := scanWorkEntry(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getWorkEntry = `
SELECT id, position, designer_name, work_topic, entry_date, company, payment_cents, status,
       image_content_type, image_data, changed_at_ns
FROM work_entries
WHERE id = ? AND NOT EXISTS (
    SELECT 1 FROM work_entry_tombstones t
    WHERE t.id = work_entries.id AND t.deleted_at_ns >= work_entries.changed_at_ns
)
`

func (q *Queries) GetWorkEntry(ctx context.Context, id string) (WorkEntryRow, error) {
	var i WorkEntryRow
	err := scanWorkEntry(q.db.QueryRowContext(ctx, getWorkEntry, id), &i)
	return i, err
}

// New rows go to the end of the ordering; updates keep their position.
// Changes not newer than a recorded delete of the same id are dropped.
const upsertWorkEntry = `
INSERT INTO work_entries (
    id, position, designer_name, work_topic, entry_date, company, payment_cents, status,
    image_content_type, image_data, changed_at_ns, updated_at
)
SELECT
    ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM work_entries), ?, ?, ?, ?, ?, ?,
    ?, ?, ?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
WHERE NOT EXISTS (
    SELECT 1 FROM work_entry_tombstones WHERE id = ? AND deleted_at_ns >= ?
)
ON CONFLICT (id) DO UPDATE SET
    designer_name      = excluded.designer_name,
    work_topic         = excluded.work_topic,
    entry_date         = excluded.entry_date,
    company            = excluded.company,
    payment_cents      = excluded.payment_cents,
    status             = excluded.status,
    image_content_type = excluded.image_content_type,
    image_data         = excluded.image_data,
    changed_at_ns      = excluded.changed_at_ns,
    updated_at         = excluded.updated_at
WHERE excluded.changed_at_ns >= work_entries.changed_at_ns
`

type UpsertWorkEntryParams struct {
	ID               string
	DesignerName     string
	WorkTopic        string
	EntryDate        string
	Company          string
	PaymentCents     int64
	Status           string
	ImageContentType sql.NullString
	ImageData        []byte
	ChangedAtNs      int64
}

// UpsertWorkEntry returns the number of rows written; 0 means the stored row
// or a tombstone is newer.
func (q *Queries) UpsertWorkEntry(ctx context.Context, arg UpsertWorkEntryParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, upsertWorkEntry,
		arg.ID,
		arg.DesignerName,
		arg.WorkTopic,
		arg.EntryDate,
		arg.Company,
		arg.PaymentCents,
		arg.Status,
		arg.ImageContentType,
		arg.ImageData,
		arg.ChangedAtNs,
		arg.ID,
		arg.ChangedAtNs,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteWorkEntry = `
DELETE FROM work_entries
WHERE id = ? AND changed_at_ns <= ?
`

func (q *Queries) DeleteWorkEntry(ctx context.Context, id string, changedAtNs int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteWorkEntry, id, changedAtNs)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const upsertTombstone = `
INSERT INTO work_entry_tombstones (id, deleted_at_ns) VALUES (?, ?)
ON CONFLICT (id) DO UPDATE SET
    deleted_at_ns = max(deleted_at_ns, excluded.deleted_at_ns)
`

// UpsertTombstone records that id was deleted at changedAtNs, keeping the
// newest delete time.
func (q *Queries) UpsertTombstone(ctx context.Context, id string, changedAtNs int64) error {
	_, err := q.db.ExecContext(ctx, upsertTombstone, id, changedAtNs)
	return err
}

const countWorkEntries = `
SELECT COUNT(*) FROM work_entries
WHERE NOT EXISTS (
    SELECT 1 FROM work_entry_tombstones t
    WHERE t.id = work_entries.id AND t.deleted_at_ns >= work_entries.changed_at_ns
)
`

func (q *Queries) CountWorkEntries(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countWorkEntries).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanWorkEntry(s scanner, i *WorkEntryRow) error {
	return s.Scan(
		&i.ID,
		&i.Position,
		&i.DesignerName,
		&i.WorkTopic,
		&i.EntryDate,
		&i.Company,
		&i.PaymentCents,
		&i.Status,
		&i.ImageContentType,
		&i.ImageData,
		&i.ChangedAtNs,
	)
}
