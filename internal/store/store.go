// Package store holds the in-memory collection of work entries.
//
// The store starts in the Loading state and becomes Ready once seeded. Every
// mutation bumps a version counter so derived views can be memoized per
// version.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"workboard/internal/core"
)

type State int

const (
	StateLoading State = iota
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrNotReady     = errors.New("store is still loading")
	ErrAlreadyReady = errors.New("store already loaded")
	ErrDuplicateID  = errors.New("duplicate entry id")
)

// Snapshot is a consistent view of the collection at one version.
type Snapshot struct {
	Entries []core.WorkEntry
	Version uint64
	State   State
}

type Store struct {
	mu      sync.RWMutex
	state   State
	entries []core.WorkEntry
	version uint64
	ready   chan struct{}
	newID   func() core.EntryID
}

type Option func(*Store)

// WithIDGenerator replaces the uuid generator, mostly for tests.
func WithIDGenerator(gen func() core.EntryID) Option {
	return func(s *Store) { s.newID = gen }
}

func New(opts ...Option) *Store {
	s := &Store{
		state: StateLoading,
		ready: make(chan struct{}),
		newID: func() core.EntryID { return core.EntryID(uuid.New().String()) },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load seeds the store and moves it to Ready. Entries without an id get a
// fresh one. It can succeed only once; a failed Load leaves the store Loading.
func (s *Store) Load(initial []core.WorkEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateReady {
		return ErrAlreadyReady
	}

	seen := make(map[core.EntryID]struct{}, len(initial))
	entries := make([]core.WorkEntry, 0, len(initial))
	for i, e := range initial {
		e = e.Clone()
		if e.ID == "" {
			e.ID = s.freshIDLocked(seen)
		}
		if err := e.Validate(); err != nil {
			return fmt.Errorf("seed entry %d: %w", i, err)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("seed entry %d: %w: %s", i, ErrDuplicateID, e.ID)
		}
		seen[e.ID] = struct{}{}
		entries = append(entries, e)
	}

	s.entries = entries
	s.state = StateReady
	s.version++
	close(s.ready)
	return nil
}

// Ready is closed once Load succeeds.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Add validates n, assigns it a fresh id and appends it.
func (s *Store) Add(n core.NewEntry) (core.EntryID, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return "", ErrNotReady
	}
	e := n.WithID(s.freshIDLocked(nil)).Clone()
	s.entries = append(s.entries, e)
	s.version++
	return e.ID, nil
}

// Update replaces the entry with the same id. A missing id leaves the store
// untouched and returns core.ErrNotFound.
func (s *Store) Update(e core.WorkEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	return s.modify(e.ID, func(cur *core.WorkEntry) {
		*cur = e.Clone()
	})
}

// UpdateFields replaces the fields of entry id with n. A nil image in n keeps
// the image already stored, read under the same lock as the write. The stored
// entry is returned.
func (s *Store) UpdateFields(id core.EntryID, n core.NewEntry) (core.WorkEntry, error) {
	if err := n.WithID(id).Validate(); err != nil {
		return core.WorkEntry{}, err
	}
	var stored core.WorkEntry
	err := s.modify(id, func(cur *core.WorkEntry) {
		img := cur.ProjectImage
		if n.ProjectImage != nil {
			img = n.ProjectImage
		}
		next := n.WithID(id)
		next.ProjectImage = img
		*cur = next.Clone()
		stored = cur.Clone()
	})
	if err != nil {
		return core.WorkEntry{}, err
	}
	return stored, nil
}

// Delete removes the entry with id and reports whether one was removed.
// Deleting an unknown id is not an error.
func (s *Store) Delete(id core.EntryID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return false, ErrNotReady
	}
	i := s.indexLocked(id)
	if i < 0 {
		return false, nil
	}
	s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
	s.version++
	return true, nil
}

// All returns a copy of the entries in insertion order.
func (s *Store) All() []core.WorkEntry {
	return s.Snapshot().Entries
}

func (s *Store) Get(id core.EntryID) (core.WorkEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return core.WorkEntry{}, false
	}
	return s.entries[i].Clone(), true
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.WorkEntry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Clone()
	}
	return Snapshot{Entries: out, Version: s.version, State: s.state}
}

// ImageReader produces the bytes of a project image, typically by draining an
// upload.
type ImageReader func(ctx context.Context) (*core.Image, error)

// AttachImage reads the image on its own goroutine and then stores it on the
// entry. The returned channel yields the outcome once and is closed. If the
// entry was deleted while the image was being read the result is nil.
func (s *Store) AttachImage(ctx context.Context, id core.EntryID, read ImageReader) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)

		img, err := read(ctx)
		if err != nil {
			done <- fmt.Errorf("read image: %w", err)
			return
		}
		if err := ctx.Err(); err != nil {
			done <- err
			return
		}
		err = s.modify(id, func(cur *core.WorkEntry) {
			cur.ProjectImage = img
		})
		if errors.Is(err, core.ErrNotFound) {
			err = nil
		}
		done <- err
	}()
	return done
}

func (s *Store) modify(id core.EntryID, fn func(*core.WorkEntry)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return ErrNotReady
	}
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	fn(&s.entries[i])
	s.version++
	return nil
}

func (s *Store) indexLocked(id core.EntryID) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// freshIDLocked draws ids until one is unused by live entries and extra.
func (s *Store) freshIDLocked(extra map[core.EntryID]struct{}) core.EntryID {
	for {
		id := s.newID()
		if _, taken := extra[id]; taken {
			continue
		}
		if s.indexLocked(id) < 0 {
			return id
		}
	}
}
