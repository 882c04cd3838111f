// Package orchestrator wraps each remote operation with pending tracking,
// calls the collection and reconciles the store with the outcome.
//
// Writes are never applied optimistically: the store changes only after the
// remote confirms. Remote failures land in the store's error slot and are
// not returned; only local programmer and validation errors are.
package orchestrator

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

// Collection is the remote side. *remote.Client implements it.
type Collection interface {
	List(ctx context.Context) ([]model.Item, error)
	Create(ctx context.Context, d model.Draft) (model.Item, error)
	Update(ctx context.Context, id int, p model.Patch) (model.Item, error)
	Delete(ctx context.Context, id int) (model.Item, error)
}

// ConfirmFunc gates a delete. Returning false cancels it with no network
// call and no state change.
type ConfirmFunc func(ctx context.Context, item model.Item) bool

// Approve is a ConfirmFunc that always says yes.
func Approve(context.Context, model.Item) bool { return true }

// Outcome is how an operation settled.
type Outcome int

const (
	// Skipped: nothing was sent (unknown id, declined confirmation).
	Skipped Outcome = iota
	Succeeded
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options tune an Orchestrator.
type Options struct {
	// OwnerID is sent as userId on create.
	OwnerID int
	// RefreshAfterWrite reloads canonical after each successful write.
	RefreshAfterWrite bool
	// Confirm is the default delete gate; nil approves.
	Confirm ConfirmFunc
	Logger  *log.Logger
}

// Orchestrator drives the store from remote operations.
type Orchestrator struct {
	client Collection
	store  *store.Store
	opt    Options
	log    *log.Logger

	mu       sync.Mutex
	inFlight map[store.Op]int
}

// New wires an orchestrator to client and st.
func New(client Collection, st *store.Store, opt Options) *Orchestrator {
	if opt.OwnerID == 0 {
		opt.OwnerID = 1
	}
	if opt.Confirm == nil {
		opt.Confirm = Approve
	}
	logger := opt.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Orchestrator{
		client:   client,
		store:    st,
		opt:      opt,
		log:      logger.WithPrefix("orchestrator"),
		inFlight: make(map[store.Op]int),
	}
}

// Store returns the state container the orchestrator reconciles.
func (o *Orchestrator) Store() *store.Store { return o.store }

// Pending reports whether any operation of kind op is in flight.
func (o *Orchestrator) Pending(op store.Op) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight[op] > 0
}

func (o *Orchestrator) begin(op store.Op) {
	o.mu.Lock()
	o.inFlight[op]++
	o.mu.Unlock()
	o.store.SetPending(op, true)
}

func (o *Orchestrator) settle(op store.Op) {
	o.mu.Lock()
	o.inFlight[op]--
	idle := o.inFlight[op] <= 0
	if idle {
		delete(o.inFlight, op)
	}
	o.mu.Unlock()
	if idle {
		o.store.SetPending(op, false)
	}
}

func (o *Orchestrator) fail(op store.Op, err error) Outcome {
	o.log.Warn("operation failed", "op", op, "err", err)
	o.store.SetLastError(err.Error())
	return Failed
}

// Load fetches the collection and replaces canonical. On failure visible is
// left as it was so stale items stay on screen.
func (o *Orchestrator) Load(ctx context.Context) Outcome {
	o.begin(store.OpLoad)
	defer o.settle(store.OpLoad)

	items, err := o.client.List(ctx)
	if err != nil {
		return o.fail(store.OpLoad, err)
	}
	o.store.ReplaceCanonical(items)
	o.store.SetLastError("")
	o.log.Debug("loaded", "count", len(items))
	return Succeeded
}

// SubmitCreate validates title against the visible titles and, if it
// passes, creates the item remotely. A *ValidationError is returned without
// touching the network or the store.
func (o *Orchestrator) SubmitCreate(ctx context.Context, title string) (Outcome, error) {
	t, err := ValidateTitle(title, model.Titles(o.store.Visible()))
	if err != nil {
		return Skipped, err
	}

	o.begin(store.OpCreate)
	defer o.settle(store.OpCreate)

	it, err := o.client.Create(ctx, model.Draft{Title: t, Done: false, OwnerID: o.opt.OwnerID})
	if err != nil {
		return o.fail(store.OpCreate, err), nil
	}
	o.store.RecordCreated(it)
	o.store.SetLastError("")
	o.log.Info("created", "id", it.ID)
	o.refresh(ctx)
	return Succeeded, nil
}

// Toggle flips done for the visible item with id. Unknown ids are skipped.
func (o *Orchestrator) Toggle(ctx context.Context, id int) Outcome {
	vis := o.store.Visible()
	i := model.IndexOf(vis, id)
	if i == -1 {
		return Skipped
	}
	done := !vis[i].Done

	o.begin(store.OpUpdate)
	defer o.settle(store.OpUpdate)

	it, err := o.client.Update(ctx, id, model.Patch{Done: &done})
	if err != nil {
		return o.fail(store.OpUpdate, err)
	}
	o.store.RecordUpdated(it)
	o.log.Info("updated", "id", it.ID, "done", it.Done)
	o.refresh(ctx)
	return Succeeded
}

// RequestDelete asks confirm (or the default gate when nil) and deletes the
// visible item with id if approved.
func (o *Orchestrator) RequestDelete(ctx context.Context, id int, confirm ConfirmFunc) Outcome {
	vis := o.store.Visible()
	i := model.IndexOf(vis, id)
	if i == -1 {
		return Skipped
	}
	if confirm == nil {
		confirm = o.opt.Confirm
	}
	if !confirm(ctx, vis[i]) {
		o.log.Debug("delete declined", "id", id)
		return Skipped
	}

	o.begin(store.OpDelete)
	defer o.settle(store.OpDelete)

	if _, err := o.client.Delete(ctx, id); err != nil {
		return o.fail(store.OpDelete, err)
	}
	o.store.RecordDeleted(id)
	o.log.Info("deleted", "id", id)
	o.refresh(ctx)
	return Succeeded
}

// MoveItem reorders the visible list locally. The remote is never told.
func (o *Orchestrator) MoveItem(oldIndex, newIndex int) error {
	return o.store.Reorder(oldIndex, newIndex)
}

// MoveByID moves the item activeID to the position currently held by
// overID, the way a drag-and-drop ends. Equal or unknown ids do nothing.
func (o *Orchestrator) MoveByID(activeID, overID int) error {
	if activeID == overID {
		return nil
	}
	vis := o.store.Visible()
	oldIndex := model.IndexOf(vis, activeID)
	newIndex := model.IndexOf(vis, overID)
	if oldIndex == -1 || newIndex == -1 {
		return nil
	}
	return o.store.Reorder(oldIndex, newIndex)
}

func (o *Orchestrator) refresh(ctx context.Context) {
	if o.opt.RefreshAfterWrite {
		o.Load(ctx)
	}
}
