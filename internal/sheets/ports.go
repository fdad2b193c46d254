package sheets

import (
	"context"
	"time"

	"workboard/internal/core"
)

// Ports for outbound adapters.
type (
	// EntrySource provides the entries a store is seeded with at startup.
	EntrySource interface {
		LoadEntries(ctx context.Context) ([]core.WorkEntry, error)
	}

	// EntryMirror keeps a durable copy of the entries in sync with change
	// events. Changes older than the one already mirrored for an entry are
	// ignored.
	EntryMirror interface {
		UpsertEntry(ctx context.Context, e core.WorkEntry, changedAt time.Time) error
		DeleteEntry(ctx context.Context, id core.EntryID, changedAt time.Time) error
	}
)
