// Package store holds the client-side collection state: the canonical list
// last reported by the remote collection and the user-ordered visible list.
//
// Canonical is replaced wholesale on every fetch. Visible is seeded from
// canonical only while it is empty; afterwards it changes only through
// RecordCreated, RecordUpdated, RecordDeleted and Reorder, so a background
// refresh never clobbers the order the user chose. Items a refresh adds or
// removes are not merged into visible.
package store

import (
	"fmt"
	"sync"

	"github.com/Makepad-fr/tada/internal/model"
)

// Op names a tracked remote operation kind.
type Op int

const (
	OpLoad Op = iota
	OpCreate
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpLoad:
		return "load"
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Pending reports which operation kinds are in flight.
type Pending struct {
	Load, Create, Update, Delete bool
}

// Is reports whether op is in flight.
func (p Pending) Is(op Op) bool {
	switch op {
	case OpLoad:
		return p.Load
	case OpCreate:
		return p.Create
	case OpUpdate:
		return p.Update
	case OpDelete:
		return p.Delete
	}
	return false
}

// Any reports whether any write is in flight.
func (p Pending) Any() bool { return p.Create || p.Update || p.Delete }

func (p *Pending) set(op Op, on bool) {
	switch op {
	case OpLoad:
		p.Load = on
	case OpCreate:
		p.Create = on
	case OpUpdate:
		p.Update = on
	case OpDelete:
		p.Delete = on
	}
}

// Snapshot is a read-only copy of the state handed to subscribers.
type Snapshot struct {
	Canonical []model.Item
	Visible   []model.Item
	LastError string
	Pending   Pending
}

// IndexError reports a reorder with an index outside the visible list.
// It indicates a caller bug.
type IndexError struct {
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index out of range: have %d, got %d", e.Length, e.Index)
}

// Store is the shared state container. One instance per running
// application; pass it by pointer. The zero value is ready to use.
type Store struct {
	mu        sync.RWMutex
	canonical []model.Item
	visible   []model.Item
	lastError string
	pending   Pending

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Snapshot)
}

// New returns an empty store.
func New() *Store { return &Store{} }

// ReplaceCanonical sets canonical and seeds visible if it is empty.
func (s *Store) ReplaceCanonical(items []model.Item) {
	s.mu.Lock()
	s.canonical = clone(items)
	if len(s.visible) == 0 {
		s.visible = clone(items)
	}
	s.mu.Unlock()
	s.notify()
}

// RecordCreated appends item to both lists.
func (s *Store) RecordCreated(item model.Item) {
	s.mu.Lock()
	s.canonical = append(s.canonical, item)
	s.visible = append(s.visible, item)
	s.mu.Unlock()
	s.notify()
}

// RecordUpdated replaces the entry with the same id in both lists, keeping
// its position. Unknown ids are ignored.
func (s *Store) RecordUpdated(item model.Item) {
	s.mu.Lock()
	changed := false
	if i := model.IndexOf(s.canonical, item.ID); i != -1 {
		s.canonical[i] = item
		changed = true
	}
	if i := model.IndexOf(s.visible, item.ID); i != -1 {
		s.visible[i] = item
		changed = true
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// RecordDeleted removes the entry with id from both lists. Unknown ids are
// ignored, so calling it twice is harmless.
func (s *Store) RecordDeleted(id int) {
	s.mu.Lock()
	var changed bool
	s.canonical, changed = remove(s.canonical, id)
	var vchanged bool
	s.visible, vchanged = remove(s.visible, id)
	s.mu.Unlock()
	if changed || vchanged {
		s.notify()
	}
}

// Reorder moves the visible element at oldIndex to newIndex. Equal indexes
// are a no-op; an index outside [0, len) returns *IndexError and leaves the
// list untouched.
func (s *Store) Reorder(oldIndex, newIndex int) error {
	s.mu.Lock()
	n := len(s.visible)
	for _, idx := range []int{oldIndex, newIndex} {
		if idx < 0 || idx >= n {
			s.mu.Unlock()
			return &IndexError{Index: idx, Length: n}
		}
	}
	if oldIndex == newIndex {
		s.mu.Unlock()
		return nil
	}
	moved := s.visible[oldIndex]
	rest := append(s.visible[:oldIndex:oldIndex], s.visible[oldIndex+1:]...)
	out := make([]model.Item, 0, n)
	out = append(out, rest[:newIndex]...)
	out = append(out, moved)
	out = append(out, rest[newIndex:]...)
	s.visible = out
	s.mu.Unlock()
	s.notify()
	return nil
}

// SetLastError records the most recent failure. An empty message clears it.
func (s *Store) SetLastError(msg string) {
	s.mu.Lock()
	if s.lastError == msg {
		s.mu.Unlock()
		return
	}
	s.lastError = msg
	s.mu.Unlock()
	s.notify()
}

// SetPending flags op as in flight or settled.
func (s *Store) SetPending(op Op, on bool) {
	s.mu.Lock()
	if s.pending.Is(op) == on {
		s.mu.Unlock()
		return
	}
	s.pending.set(op, on)
	s.mu.Unlock()
	s.notify()
}

// Clear empties both lists.
func (s *Store) Clear() {
	s.mu.Lock()
	s.canonical = nil
	s.visible = nil
	s.mu.Unlock()
	s.notify()
}

// Visible returns a copy of the user-ordered list.
func (s *Store) Visible() []model.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.visible)
}

// Canonical returns a copy of the last server snapshot.
func (s *Store) Canonical() []model.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.canonical)
}

// LastError returns the most recent failure message, or "".
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Pending returns the in-flight flags.
func (s *Store) Pending() Pending {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// Snapshot returns a consistent copy of the whole state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Canonical: clone(s.canonical),
		Visible:   clone(s.visible),
		LastError: s.lastError,
		Pending:   s.pending,
	}
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that made the change and must not call back
// into mutating methods. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]func(Snapshot))
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	if len(fns) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}

func clone(items []model.Item) []model.Item {
	if items == nil {
		return nil
	}
	out := make([]model.Item, len(items))
	copy(out, items)
	return out
}

func remove(items []model.Item, id int) ([]model.Item, bool) {
	i := model.IndexOf(items, id)
	if i == -1 {
		return items, false
	}
	out := make([]model.Item, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...), true
}
