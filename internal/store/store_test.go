package store

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Makepad-fr/tada/internal/model"
)

func abc() []model.Item {
	return []model.Item{
		{ID: 1, Title: "A", OwnerID: 1},
		{ID: 2, Title: "B", OwnerID: 1},
		{ID: 3, Title: "C", OwnerID: 1},
	}
}

func ids(items []model.Item) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New()
	s.ReplaceCanonical(abc())
	return s
}

// -----------------------------------------------------------------------------
// ReplaceCanonical
// -----------------------------------------------------------------------------

func TestReplaceCanonical_SeedsVisibleOnce(t *testing.T) {
	s := seeded(t)
	if got := ids(s.Visible()); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("visible = %v, want [1 2 3]", got)
	}

	if err := s.Reorder(0, 2); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	s.ReplaceCanonical([]model.Item{{ID: 4, Title: "D"}, {ID: 1, Title: "A"}})

	if got := ids(s.Canonical()); !reflect.DeepEqual(got, []int{4, 1}) {
		t.Errorf("canonical = %v, want [4 1]", got)
	}
	if got := ids(s.Visible()); !reflect.DeepEqual(got, []int{2, 3, 1}) {
		t.Errorf("visible = %v, want [2 3 1] (refresh must not touch visible)", got)
	}
}

func TestReplaceCanonical_ReseedsAfterVisibleEmptied(t *testing.T) {
	s := New()
	s.ReplaceCanonical([]model.Item{{ID: 1, Title: "A"}})
	s.RecordDeleted(1)
	s.ReplaceCanonical([]model.Item{{ID: 2, Title: "B"}})
	if got := ids(s.Visible()); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("visible = %v, want [2]", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := seeded(t)
	v := s.Visible()
	v[0].Title = "mutated"
	if s.Visible()[0].Title != "A" {
		t.Error("Visible() returned an alias of internal state")
	}
}

// -----------------------------------------------------------------------------
// RecordCreated / RecordUpdated / RecordDeleted
// -----------------------------------------------------------------------------

func TestRecordCreated_AppendsToBoth(t *testing.T) {
	s := seeded(t)
	_ = s.Reorder(2, 0)
	s.RecordCreated(model.Item{ID: 9, Title: "Z"})

	if got := ids(s.Canonical()); !reflect.DeepEqual(got, []int{1, 2, 3, 9}) {
		t.Errorf("canonical = %v", got)
	}
	if got := ids(s.Visible()); !reflect.DeepEqual(got, []int{3, 1, 2, 9}) {
		t.Errorf("visible = %v", got)
	}
}

func TestRecordUpdated_InPlace(t *testing.T) {
	s := seeded(t)
	_ = s.Reorder(0, 2)
	s.RecordUpdated(model.Item{ID: 2, Title: "B", Done: true, OwnerID: 1})

	vis := s.Visible()
	if vis[0].ID != 2 || !vis[0].Done {
		t.Errorf("visible[0] = %+v, want id 2 done", vis[0])
	}
	can := s.Canonical()
	if can[1].ID != 2 || !can[1].Done {
		t.Errorf("canonical[1] = %+v, want id 2 done", can[1])
	}
}

func TestRecordUpdated_UnknownIDIsNoop(t *testing.T) {
	s := seeded(t)
	before := s.Snapshot()
	calls := 0
	cancel := s.Subscribe(func(Snapshot) { calls++ })
	defer cancel()

	s.RecordUpdated(model.Item{ID: 42, Title: "nope"})

	after := s.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Errorf("state changed: before %+v after %+v", before, after)
	}
	if calls != 0 {
		t.Errorf("subscribers notified %d times, want 0", calls)
	}
}

func TestRecordDeleted_Idempotent(t *testing.T) {
	s := seeded(t)
	s.RecordDeleted(2)
	s.RecordDeleted(2)

	if got := ids(s.Visible()); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("visible = %v, want [1 3]", got)
	}
	if got := ids(s.Canonical()); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("canonical = %v, want [1 3]", got)
	}
}

// -----------------------------------------------------------------------------
// Reorder
// -----------------------------------------------------------------------------

func TestReorder(t *testing.T) {
	tests := []struct {
		name     string
		old, new int
		want     []int
	}{
		{"first to last", 0, 2, []int{2, 3, 1}},
		{"last to first", 2, 0, []int{3, 1, 2}},
		{"adjacent down", 0, 1, []int{2, 1, 3}},
		{"adjacent up", 2, 1, []int{1, 3, 2}},
		{"same index", 1, 1, []int{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seeded(t)
			if err := s.Reorder(tt.old, tt.new); err != nil {
				t.Fatalf("Reorder(%d, %d): %v", tt.old, tt.new, err)
			}
			if got := ids(s.Visible()); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("visible = %v, want %v", got, tt.want)
			}
			if got := ids(s.Canonical()); !reflect.DeepEqual(got, []int{1, 2, 3}) {
				t.Errorf("canonical = %v, reorder must not touch it", got)
			}
		})
	}
}

func TestReorder_RoundTrip(t *testing.T) {
	s := seeded(t)
	before := s.Visible()
	if err := s.Reorder(0, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.Reorder(2, 0); err != nil {
		t.Fatal(err)
	}
	if got := s.Visible(); !reflect.DeepEqual(got, before) {
		t.Errorf("visible = %v, want %v", ids(got), ids(before))
	}
}

func TestReorder_SameIndexIsNoopForEveryPosition(t *testing.T) {
	s := seeded(t)
	before := s.Visible()
	for i := range before {
		if err := s.Reorder(i, i); err != nil {
			t.Fatalf("Reorder(%d, %d): %v", i, i, err)
		}
	}
	if got := s.Visible(); !reflect.DeepEqual(got, before) {
		t.Errorf("visible changed: %v", ids(got))
	}
}

func TestReorder_OutOfBounds(t *testing.T) {
	tests := []struct {
		name     string
		old, new int
		bad      int
	}{
		{"negative old", -1, 0, -1},
		{"old past end", 3, 0, 3},
		{"new past end", 0, 3, 3},
		{"negative new", 1, -2, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seeded(t)
			err := s.Reorder(tt.old, tt.new)
			var ie *IndexError
			if !errors.As(err, &ie) {
				t.Fatalf("err = %v, want *IndexError", err)
			}
			if ie.Index != tt.bad || ie.Length != 3 {
				t.Errorf("IndexError = %+v, want index %d length 3", ie, tt.bad)
			}
			if got := ids(s.Visible()); !reflect.DeepEqual(got, []int{1, 2, 3}) {
				t.Errorf("visible = %v, want unchanged", got)
			}
		})
	}
}

func TestReorder_EmptyList(t *testing.T) {
	s := New()
	if err := s.Reorder(0, 0); err == nil {
		t.Error("Reorder on empty list should fail")
	}
}

// -----------------------------------------------------------------------------
// Error slot, pending flags, subscriptions
// -----------------------------------------------------------------------------

func TestLastError(t *testing.T) {
	s := New()
	s.SetLastError("timeout")
	if got := s.LastError(); got != "timeout" {
		t.Errorf("LastError() = %q, want timeout", got)
	}
	s.SetLastError("boom")
	if got := s.LastError(); got != "boom" {
		t.Errorf("LastError() = %q, last error should win", got)
	}
	s.SetLastError("")
	if got := s.LastError(); got != "" {
		t.Errorf("LastError() = %q, want cleared", got)
	}
}

func TestPending(t *testing.T) {
	s := New()
	s.SetPending(OpCreate, true)
	s.SetPending(OpDelete, true)
	p := s.Pending()
	if !p.Is(OpCreate) || !p.Is(OpDelete) || p.Is(OpUpdate) || p.Is(OpLoad) {
		t.Errorf("Pending() = %+v", p)
	}
	if !p.Any() {
		t.Error("Any() = false, want true")
	}
	s.SetPending(OpCreate, false)
	s.SetPending(OpDelete, false)
	if s.Pending().Any() {
		t.Error("Any() = true after settling")
	}
}

func TestSubscribe(t *testing.T) {
	s := New()
	var got []Snapshot
	cancel := s.Subscribe(func(snap Snapshot) { got = append(got, snap) })

	s.ReplaceCanonical(abc())
	s.SetLastError("x")
	cancel()
	s.SetLastError("y")

	if len(got) != 2 {
		t.Fatalf("got %d notifications, want 2", len(got))
	}
	if len(got[0].Visible) != 3 {
		t.Errorf("first snapshot visible len = %d, want 3", len(got[0].Visible))
	}
	if got[1].LastError != "x" {
		t.Errorf("second snapshot LastError = %q, want x", got[1].LastError)
	}
}

func TestClear(t *testing.T) {
	s := seeded(t)
	s.Clear()
	if len(s.Visible()) != 0 || len(s.Canonical()) != 0 {
		t.Error("Clear() left items behind")
	}
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpLoad, "load"},
		{OpCreate, "create"},
		{OpUpdate, "update"},
		{OpDelete, "delete"},
		{Op(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}
