// ABOUTME: Stateful per-entity collection holder over a service store
// ABOUTME: Tracks items, loading, and error state and applies confirmed writes
package hook

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/service"
)

const (
	ContactsLoadError = "Failed to load contacts. Please try again."
	DealsLoadError    = "Failed to load deals. Please try again."
)

// Entity is anything with a backend-assigned integer id.
type Entity interface {
	EntityID() int
}

// State is a point-in-time copy of a hook's state.
type State[T any] struct {
	Items   []T
	Loading bool
	Err     string
	// Degraded is set when the last load could not reach the backend and
	// Items is the empty fallback.
	Degraded bool
}

// Hook holds the displayed collection for one entity kind. The mutex guards
// state only and is never held across a store call, so overlapping calls
// are unordered and the last to complete wins.
type Hook[T Entity, In any] struct {
	store   service.Store[T, In]
	loadErr string
	logger  *zap.Logger
	once    sync.Once

	mu       sync.Mutex
	items    []T
	loading  bool
	errMsg   string
	degraded bool
}

// New builds a hook. loadErr is the message shown when a load fails.
func New[T Entity, In any](store service.Store[T, In], loadErr string, logger *zap.Logger) *Hook[T, In] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hook[T, In]{
		store:   store,
		loadErr: loadErr,
		logger:  logger,
		items:   []T{},
		loading: true,
	}
}

func NewContacts(store service.ContactStore, logger *zap.Logger) *Hook[models.Contact, models.ContactInput] {
	return New(store, ContactsLoadError, logger)
}

func NewDeals(store service.DealStore, logger *zap.Logger) *Hook[models.Deal, models.DealInput] {
	return New(store, DealsLoadError, logger)
}

// Load fetches the full collection and replaces the held list.
func (h *Hook[T, In]) Load(ctx context.Context) error {
	h.mu.Lock()
	h.loading = true
	h.errMsg = ""
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.loading = false
		h.mu.Unlock()
	}()

	items, err := h.store.GetAll(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.degraded = false
	switch {
	case err == nil:
		h.items = items
	case errors.Is(err, service.ErrUnavailable):
		h.logger.Warn("loaded degraded collection", zap.Error(err))
		if items == nil {
			items = []T{}
		}
		h.items = items
		h.degraded = true
	default:
		h.logger.Error("error loading collection", zap.Error(err))
		h.errMsg = h.loadErr
		return err
	}
	return nil
}

// Use triggers the one-time automatic load and returns the current state.
func (h *Hook[T, In]) Use(ctx context.Context) State[T] {
	h.once.Do(func() {
		_ = h.Load(ctx)
	})
	return h.Snapshot()
}

// Refetch reloads the collection.
func (h *Hook[T, In]) Refetch(ctx context.Context) error {
	return h.Load(ctx)
}

// Add creates an entity and appends the confirmed result.
func (h *Hook[T, In]) Add(ctx context.Context, in In) (T, error) {
	created, err := h.store.Create(ctx, in)
	if err != nil {
		return created, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, created)
	return created, nil
}

// Update replaces the entity with the given id by the confirmed result.
func (h *Hook[T, In]) Update(ctx context.Context, id int, in In) (T, error) {
	updated, err := h.store.Update(ctx, id, in)
	if err != nil {
		return updated, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	next := make([]T, len(h.items))
	for i, item := range h.items {
		if item.EntityID() == id {
			next[i] = updated
			continue
		}
		next[i] = item
	}
	h.items = next
	return updated, nil
}

// Delete removes the entity once the store confirms the deletion.
func (h *Hook[T, In]) Delete(ctx context.Context, id int) (bool, error) {
	ok, err := h.store.Delete(ctx, id)
	if err != nil || !ok {
		return ok, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	next := make([]T, 0, len(h.items))
	for _, item := range h.items {
		if item.EntityID() != id {
			next = append(next, item)
		}
	}
	h.items = next
	return true, nil
}

// Snapshot returns a copy of the current state.
func (h *Hook[T, In]) Snapshot() State[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	items := make([]T, len(h.items))
	copy(items, h.items)
	return State[T]{
		Items:    items,
		Loading:  h.loading,
		Err:      h.errMsg,
		Degraded: h.degraded,
	}
}
