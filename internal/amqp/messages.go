package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"workboard/internal/core"
)

type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventCreated, EventUpdated, EventDeleted:
		return true
	}
	return false
}

// EntryEvent describes one committed change to the entry store. Entry is
// omitted for deletions.
type EntryEvent struct {
	Type      EventType       `json:"type"`
	ID        core.EntryID    `json:"id"`
	Entry     *core.WorkEntry `json:"entry,omitempty"`
	Version   uint64          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEntryEvent builds an event stamped with the current time.
func NewEntryEvent(t EventType, e core.WorkEntry, version uint64) *EntryEvent {
	ev := &EntryEvent{
		Type:      t,
		ID:        e.ID,
		Version:   version,
		Timestamp: time.Now().UTC(),
	}
	if t != EventDeleted {
		c := e.Clone()
		ev.Entry = &c
	}
	return ev
}

// Validate checks that the event can be applied by a consumer.
func (m *EntryEvent) Validate() error {
	if !m.Type.IsValid() {
		return fmt.Errorf("unknown event type %q", m.Type)
	}
	if m.ID == "" {
		return core.ErrMissingID
	}
	if m.Type == EventDeleted {
		return nil
	}
	if m.Entry == nil {
		return fmt.Errorf("%s event without entry", m.Type)
	}
	if m.Entry.ID != m.ID {
		return fmt.Errorf("event id %s does not match entry id %s", m.ID, m.Entry.ID)
	}
	return m.Entry.Validate()
}

func (m *EntryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryEventFromJSON decodes and validates an event.
func EntryEventFromJSON(data []byte) (*EntryEvent, error) {
	var msg EntryEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
