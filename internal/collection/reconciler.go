// Package collection keeps a local mirror of the user's collection in
// lockstep with the backend. The mirror is never advanced optimistically:
// every visible quantity change corresponds to a completed, successful remote
// call for exactly that delta.
package collection

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ramonehamilton/YGO-Companion/internal/api"
)

var (
	// ErrNothingStaged is returned by confirm operations when no item is
	// staged for editing.
	ErrNothingStaged = errors.New("no collection item staged")

	// ErrMutationInFlight is returned when a mutation for the same card is
	// already awaiting its response. At most one mutation per card may be
	// outstanding; a double-click must not issue two delta requests.
	ErrMutationInFlight = errors.New("mutation already in flight for this card")

	// ErrNegativeQuantity is returned for a target quantity below zero.
	ErrNegativeQuantity = errors.New("quantity cannot be negative")

	// ErrUnknownCard is returned when staging a card that is not in the
	// local mirror.
	ErrUnknownCard = errors.New("card not in collection")
)

// Reconciler mutates a local ordered mirror of collection items in lockstep
// with the remote collection service.
type Reconciler struct {
	client *api.Client
	logger *slog.Logger

	mu       sync.Mutex
	items    []api.CollectionItem
	staged   *api.CollectionItem // copy of the item being edited, nil when no dialog is open
	inflight map[uint]bool       // card IDs with an unresolved mutation
}

// NewReconciler creates a reconciler with an empty mirror. Call Load before
// reading Items.
func NewReconciler(client *api.Client, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		client:   client,
		logger:   logger,
		inflight: make(map[uint]bool),
	}
}

// Load replaces the mirror with the server's current collection.
func (r *Reconciler) Load(ctx context.Context) error {
	items, err := r.client.GetCollection(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.items = items
	r.mu.Unlock()
	return nil
}

// Items returns a copy of the local mirror in server order.
func (r *Reconciler) Items() []api.CollectionItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]api.CollectionItem, len(r.items))
	copy(out, r.items)
	return out
}

// StagedItem returns a copy of the item staged for editing, or nil.
func (r *Reconciler) StagedItem() *api.CollectionItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.staged == nil {
		return nil
	}
	item := *r.staged
	return &item
}

// OpenManageFor stages the collection item for the given card so a confirm
// operation can run against its current quantity. Staging never touches
// remote state.
func (r *Reconciler) OpenManageFor(cardID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].CardID == cardID {
			item := r.items[i]
			r.staged = &item
			return nil
		}
	}
	return ErrUnknownCard
}

// CloseManage discards the staged item without any remote call.
func (r *Reconciler) CloseManage() {
	r.mu.Lock()
	r.staged = nil
	r.mu.Unlock()
}

// ConfirmDelete removes the staged item entirely: one delete request carrying
// the item's full current quantity. On success the item leaves the mirror and
// staging closes; on failure the mirror and staging are untouched.
func (r *Reconciler) ConfirmDelete(ctx context.Context) error {
	r.mu.Lock()
	if r.staged == nil {
		r.mu.Unlock()
		return ErrNothingStaged
	}
	cardID := r.staged.CardID
	quantity := r.staged.Quantity
	if r.inflight[cardID] {
		r.mu.Unlock()
		return ErrMutationInFlight
	}
	r.inflight[cardID] = true
	r.mu.Unlock()

	err := r.client.RemoveFromCollection(ctx, cardID, quantity)

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, cardID)
	if err != nil {
		r.logger.Error("failed to delete collection item", "cardId", cardID, "error", err)
		return err
	}

	r.removeLocked(cardID)
	r.staged = nil
	return nil
}

// ConfirmQuantityUpdate reconciles the staged item to the target quantity:
//   - target == current: no request, staging closes.
//   - target == 0: delete carrying the full current quantity, then local removal.
//   - target < current: one decrease request for the difference.
//   - target > current: one increase request for the difference.
//
// The mirror changes only after the matching request succeeds.
func (r *Reconciler) ConfirmQuantityUpdate(ctx context.Context, target int) error {
	if target < 0 {
		return ErrNegativeQuantity
	}

	r.mu.Lock()
	if r.staged == nil {
		r.mu.Unlock()
		return ErrNothingStaged
	}
	cardID := r.staged.CardID
	current := r.staged.Quantity

	if target == current {
		r.staged = nil
		r.mu.Unlock()
		return nil
	}
	if r.inflight[cardID] {
		r.mu.Unlock()
		return ErrMutationInFlight
	}
	r.inflight[cardID] = true
	r.mu.Unlock()

	var err error
	switch {
	case target == 0:
		err = r.client.RemoveFromCollection(ctx, cardID, current)
	case target < current:
		err = r.client.RemoveFromCollection(ctx, cardID, current-target)
	default:
		err = r.client.AddToCollection(ctx, cardID, target-current)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, cardID)
	if err != nil {
		r.logger.Error("failed to update collection quantity", "cardId", cardID, "target", target, "error", err)
		return err
	}

	if target == 0 {
		r.removeLocked(cardID)
	} else {
		r.setQuantityLocked(cardID, target)
	}
	r.staged = nil
	return nil
}

// Add adds copies of a card that may not be in the mirror yet. New items need
// the server-assigned row and embedded card data, so the mirror is refetched
// wholesale rather than patched.
func (r *Reconciler) Add(ctx context.Context, cardID uint, quantity int) error {
	r.mu.Lock()
	if r.inflight[cardID] {
		r.mu.Unlock()
		return ErrMutationInFlight
	}
	r.inflight[cardID] = true
	r.mu.Unlock()

	err := r.client.AddToCollection(ctx, cardID, quantity)

	r.mu.Lock()
	delete(r.inflight, cardID)
	r.mu.Unlock()
	if err != nil {
		r.logger.Error("failed to add card to collection", "cardId", cardID, "error", err)
		return err
	}

	return r.Load(ctx)
}

// removeLocked deletes a card's item from the mirror. Caller holds mu.
func (r *Reconciler) removeLocked(cardID uint) {
	for i := range r.items {
		if r.items[i].CardID == cardID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return
		}
	}
}

// setQuantityLocked sets a card's local quantity. Caller holds mu.
func (r *Reconciler) setQuantityLocked(cardID uint, quantity int) {
	for i := range r.items {
		if r.items[i].CardID == cardID {
			r.items[i].Quantity = quantity
			return
		}
	}
}
