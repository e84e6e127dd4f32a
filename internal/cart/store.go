// Package cart holds the authoritative client-side cart. Mutations are
// total over in-memory state; persistence and change notification
// happen as side effects of each successful mutation.
package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/harshit25jain/canteen-client/internal/domain"
	"github.com/harshit25jain/canteen-client/internal/snapshot"
)

// Store is the single mutable shared resource of the client. It is
// built per session via New, never as a package global. Safe for
// concurrent use, though the client is effectively single-writer.
//
// Two processes sharing one snapshot backend get last-write-wins
// semantics at the persistence layer; the store does not defend
// against that.
type Store struct {
	mu        sync.Mutex
	cart      domain.Cart
	snapshots snapshot.Store
	log       *zap.Logger

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

func New(snapshots snapshot.Store, log *zap.Logger) *Store {
	return &Store{
		snapshots: snapshots,
		log:       log,
		subs:      make(map[int]func()),
	}
}

// Load hydrates the store from the persisted snapshot. A missing
// snapshot means a fresh cart, not an error.
func (s *Store) Load(ctx context.Context) error {
	saved, err := s.snapshots.Load(ctx)
	if err == snapshot.ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cart = *saved
	s.mu.Unlock()
	return nil
}

// AddItem merges the item into the cart. When a line with the same
// MenuItemID already exists only its quantity grows; the incoming
// name, price and stock snapshot are ignored. Otherwise the item is
// appended, preserving insertion order for display.
func (s *Store) AddItem(ctx context.Context, item domain.CartItem) {
	s.mu.Lock()
	merged := false
	for i := range s.cart.Items {
		if s.cart.Items[i].MenuItemID == item.MenuItemID {
			s.cart.Items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		item.AddedAt = time.Now()
		s.cart.Items = append(s.cart.Items, item)
	}
	s.cart.UpdatedAt = time.Now()
	snap := s.copyCartLocked()
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.notifySubscribers()
}

// RemoveItem deletes the matching line. Removing an absent id is a
// no-op, not an error.
func (s *Store) RemoveItem(ctx context.Context, menuItemID int64) {
	s.mu.Lock()
	removed := false
	for i, item := range s.cart.Items {
		if item.MenuItemID == menuItemID {
			s.cart.Items = append(s.cart.Items[:i], s.cart.Items[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		s.mu.Unlock()
		return
	}
	s.cart.UpdatedAt = time.Now()
	snap := s.copyCartLocked()
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.notifySubscribers()
}

// UpdateQuantity sets the line's quantity. A quantity of zero or less
// removes the line entirely; zero-quantity lines never survive in the
// cart. Updating an absent id is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, menuItemID int64, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, menuItemID)
		return
	}

	s.mu.Lock()
	updated := false
	for i := range s.cart.Items {
		if s.cart.Items[i].MenuItemID == menuItemID {
			s.cart.Items[i].Quantity = quantity
			updated = true
			break
		}
	}
	if !updated {
		s.mu.Unlock()
		return
	}
	s.cart.UpdatedAt = time.Now()
	snap := s.copyCartLocked()
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.notifySubscribers()
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.cart.Items = nil
	s.cart.UpdatedAt = time.Now()
	snap := s.copyCartLocked()
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.notifySubscribers()
}

// Items returns a copy of the current cart lines in insertion order.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartItem, len(s.cart.Items))
	copy(out, s.cart.Items)
	return out
}

// TotalPrice is the sum of unit price times quantity over all lines,
// recomputed on every call.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, item := range s.cart.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// TotalItems is the sum of quantities over all lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int
	for _, item := range s.cart.Items {
		total += item.Quantity
	}
	return total
}

// Subscribe registers fn to run synchronously after every successful
// mutation. The returned function unsubscribes.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// persist saves the snapshot after a mutation. A failing backend is
// logged and otherwise ignored: the in-memory mutation has already
// succeeded and must not be rolled back.
func (s *Store) persist(ctx context.Context, snap domain.Cart) {
	if err := s.snapshots.Save(ctx, &snap); err != nil {
		s.log.Warn("cart snapshot save failed", zap.Error(err))
	}
}

func (s *Store) notifySubscribers() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *Store) copyCartLocked() domain.Cart {
	snap := s.cart
	snap.Items = make([]domain.CartItem, len(s.cart.Items))
	copy(snap.Items, s.cart.Items)
	return snap
}
