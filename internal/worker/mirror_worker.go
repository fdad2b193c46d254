package worker

import (
	"context"
	"fmt"

	"workboard/internal/amqp"
	applog "workboard/internal/log"
	"workboard/internal/sheets"
)

// EventConsumer delivers entry events until its context ends.
type EventConsumer interface {
	ConsumeEntryEvents(ctx context.Context, handler amqp.EventHandler) error
}

// MirrorWorker applies entry events to a durable mirror.
type MirrorWorker struct {
	mirror sheets.EntryMirror
	logger *applog.Logger
}

func NewMirrorWorker(mirror sheets.EntryMirror, logger *applog.Logger) *MirrorWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &MirrorWorker{
		mirror: mirror,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// Run consumes events from c until ctx is cancelled.
func (w *MirrorWorker) Run(ctx context.Context, c EventConsumer) error {
	w.logger.InfoContext(ctx, "Mirror worker started")
	err := c.ConsumeEntryEvents(ctx, w.HandleEntryEvent)
	if ctx.Err() != nil {
		w.logger.InfoContext(ctx, "Mirror worker stopped")
		return nil
	}
	return err
}

// HandleEntryEvent applies one event. Errors are returned so the broker
// redelivers the message.
func (w *MirrorWorker) HandleEntryEvent(ctx context.Context, ev *amqp.EntryEvent) error {
	var err error
	switch ev.Type {
	case amqp.EventCreated, amqp.EventUpdated:
		if ev.Entry == nil {
			return fmt.Errorf("%s event %s without entry", ev.Type, ev.ID)
		}
		err = w.mirror.UpsertEntry(ctx, *ev.Entry, ev.Timestamp)
	case amqp.EventDeleted:
		err = w.mirror.DeleteEntry(ctx, ev.ID, ev.Timestamp)
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	if err != nil {
		return fmt.Errorf("mirror %s %s: %w", ev.Type, ev.ID, err)
	}

	w.logger.InfoContext(ctx, "Entry change mirrored",
		applog.FieldOperation, applog.OpMirror,
		applog.FieldEntryID, ev.ID,
		applog.FieldVersion, ev.Version,
		"event", string(ev.Type))
	return nil
}
