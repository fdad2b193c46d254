package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"workboard/internal/amqp"
	"workboard/internal/cache"
	"workboard/internal/core"
	"workboard/internal/dashboard"
	applog "workboard/internal/log"
	"workboard/internal/sheets"
	"workboard/internal/store"
)

// EventPublisher forwards committed changes to other processes.
type EventPublisher interface {
	PublishEntryEvent(ctx context.Context, ev *amqp.EntryEvent) error
}

// EntryService orchestrates entry operations across the store, the derived
// view cache and the optional event publisher.
type EntryService struct {
	store     *store.Store
	views     cache.Cache[dashboard.Summary]
	publisher EventPublisher
	logger    *applog.Logger
	notes     *applog.StructuredLogger
}

// NewEntryService wires the service. views and publisher may be nil.
func NewEntryService(st *store.Store, views cache.Cache[dashboard.Summary], publisher EventPublisher, logger *applog.Logger) *EntryService {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentEntries)
	return &EntryService{
		store:     st,
		views:     views,
		publisher: publisher,
		logger:    logger,
		notes:     applog.NewStructuredLogger(logger),
	}
}

func (s *EntryService) Store() *store.Store {
	return s.store
}

// Seed waits for delay, reads the initial entries from src and moves the
// store to Ready.
func (s *EntryService) Seed(ctx context.Context, src sheets.EntrySource, delay time.Duration) error {
	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}

	entries, err := src.LoadEntries(ctx)
	if err != nil {
		return fmt.Errorf("load seed entries: %w", err)
	}
	if err := s.store.Load(entries); err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	s.logger.InfoContext(ctx, "Entry store ready",
		applog.FieldOperation, applog.OpLoad,
		applog.FieldCount, len(entries))
	return nil
}

// Add stores a new entry and announces it.
func (s *EntryService) Add(ctx context.Context, n core.NewEntry) (core.EntryID, error) {
	id, err := s.store.Add(n)
	if err != nil {
		return "", fmt.Errorf("add entry: %w", err)
	}
	e := n.WithID(id)
	t := AddedToast(n)
	s.notes.LogToast(ctx, applog.OpCreate, t.Title, t.Description, entryFields(e))
	s.publish(ctx, amqp.EventCreated, e)
	return id, nil
}

// Update replaces an existing entry.
func (s *EntryService) Update(ctx context.Context, e core.WorkEntry) error {
	if err := s.store.Update(e); err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	t := UpdatedToast(e)
	s.notes.LogToast(ctx, applog.OpUpdate, t.Title, t.Description, entryFields(e))
	s.publish(ctx, amqp.EventUpdated, e)
	return nil
}

// UpdateFields replaces the fields of an existing entry, keeping its image
// unless n carries one.
func (s *EntryService) UpdateFields(ctx context.Context, id core.EntryID, n core.NewEntry) (core.WorkEntry, error) {
	e, err := s.store.UpdateFields(id, n)
	if err != nil {
		return core.WorkEntry{}, fmt.Errorf("update entry: %w", err)
	}
	t := UpdatedToast(e)
	s.notes.LogToast(ctx, applog.OpUpdate, t.Title, t.Description, entryFields(e))
	s.publish(ctx, amqp.EventUpdated, e)
	return e, nil
}

// Delete removes an entry. Unknown ids succeed without side effects.
func (s *EntryService) Delete(ctx context.Context, id core.EntryID) error {
	removed, err := s.store.Delete(id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if !removed {
		s.logger.DebugContext(ctx, "Delete of unknown entry ignored", applog.FieldEntryID, id)
		return nil
	}
	t := DeletedToast()
	s.notes.LogToast(ctx, applog.OpDelete, t.Title, t.Description,
		applog.LogFields{applog.FieldEntryID: string(id)})
	s.publish(ctx, amqp.EventDeleted, core.WorkEntry{ID: id})
	return nil
}

// AttachImage reads the image in the background and stores it on the entry.
// The read outlives ctx's cancellation but keeps its values.
func (s *EntryService) AttachImage(ctx context.Context, id core.EntryID, read store.ImageReader) <-chan error {
	bg := context.WithoutCancel(ctx)
	inner := s.store.AttachImage(bg, id, read)
	out := make(chan error, 1)
	go func() {
		defer close(out)
		err := <-inner
		if err != nil {
			s.notes.LogError(bg, "Failed to attach project image", err, applog.OpAttach,
				applog.LogFields{applog.FieldEntryID: string(id)})
			out <- err
			return
		}
		if e, ok := s.store.Get(id); ok {
			s.logger.InfoContext(bg, "Project image attached",
				applog.FieldOperation, applog.OpAttach,
				applog.FieldEntryID, id)
			s.publish(bg, amqp.EventUpdated, e)
		}
		out <- nil
	}()
	return out
}

// List returns the entries matching the filter text.
func (s *EntryService) List(_ context.Context, filter string) []core.WorkEntry {
	return dashboard.Filter(s.store.All(), filter)
}

func (s *EntryService) Get(_ context.Context, id core.EntryID) (core.WorkEntry, error) {
	e, ok := s.store.Get(id)
	if !ok {
		return core.WorkEntry{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	return e, nil
}

// Summary returns the derived views for the current store version.
func (s *EntryService) Summary(_ context.Context) dashboard.Summary {
	snap := s.store.Snapshot()
	if s.views == nil {
		return dashboard.Summarize(snap.Version, snap.Entries)
	}
	key := fmt.Sprintf("summary@%d", snap.Version)
	if v, ok := s.views.Get(key); ok {
		return v
	}
	v := dashboard.Summarize(snap.Version, snap.Entries)
	s.views.Set(key, v)
	return v
}

// ExportCSV renders the entries matching filter as CSV.
func (s *EntryService) ExportCSV(ctx context.Context, filter string) string {
	entries := s.List(ctx, filter)
	s.logger.InfoContext(ctx, "Exporting entries",
		applog.FieldOperation, applog.OpExport,
		applog.FieldCount, len(entries))
	return dashboard.ToCSV(entries)
}

func (s *EntryService) publish(ctx context.Context, t amqp.EventType, e core.WorkEntry) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No event publisher configured, skipping entry event",
			applog.FieldEntryID, e.ID)
		return
	}
	ev := amqp.NewEntryEvent(t, e, s.store.Version())
	if err := s.publisher.PublishEntryEvent(ctx, ev); err != nil {
		// The store already holds the change.
		s.notes.LogError(ctx, "Failed to publish entry event", err, applog.OpPublish,
			applog.LogFields{applog.FieldEntryID: string(e.ID), applog.FieldVersion: ev.Version})
	}
}

// Close releases the publisher when it owns a connection.
func (s *EntryService) Close() error {
	var errs []error
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close entry service: %w", errors.Join(errs...))
	}
	return nil
}

func entryFields(e core.WorkEntry) applog.LogFields {
	return applog.NewFields().WithEntry(string(e.ID), e.DesignerName, e.WorkTopic, e.Company, e.Payment.Cents, e.Status.String())
}
