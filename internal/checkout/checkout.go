// Package checkout turns the cart into orders. The backend accepts
// one order per menu item unit, so a line with quantity N becomes N
// create calls.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/harshit25jain/canteen-client/internal/cart"
	"github.com/harshit25jain/canteen-client/internal/domain"
	"github.com/harshit25jain/canteen-client/internal/notify"
)

var (
	// ErrEmptyCart rejects a checkout before any network call is made.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInProgress rejects a duplicate submission while a checkout is
	// still running. A session is either idle or processing, never both.
	ErrInProgress = errors.New("checkout already in progress")
)

// OrderCreator is the slice of the order API checkout needs.
type OrderCreator interface {
	Create(ctx context.Context, menuItemID int64) (domain.Order, error)
}

type Checkout struct {
	cart       *cart.Store
	orders     OrderCreator
	notifier   notify.Notifier
	log        *zap.Logger
	processing atomic.Bool
}

func New(cartStore *cart.Store, orders OrderCreator, notifier notify.Notifier, log *zap.Logger) *Checkout {
	return &Checkout{
		cart:     cartStore,
		orders:   orders,
		notifier: notifier,
		log:      log,
	}
}

// Processing reports whether a checkout is currently running, for the
// UI to disable its submit control.
func (c *Checkout) Processing() bool {
	return c.processing.Load()
}

// Run places an order for every unit in the cart. On any failure the
// cart is left untouched so the user can retry; only a fully
// successful run clears it. Orders already created before a failure
// remain on the server; the backend's timeout will reclaim them if
// the user walks away.
func (c *Checkout) Run(ctx context.Context) ([]domain.Order, error) {
	if !c.processing.CompareAndSwap(false, true) {
		c.notifier.Notify(notify.Error, "Checkout already in progress")
		return nil, ErrInProgress
	}
	defer c.processing.Store(false)

	items := c.cart.Items()
	if len(items) == 0 {
		c.notifier.Notify(notify.Error, "Your cart is empty")
		return nil, ErrEmptyCart
	}

	created := make([]domain.Order, 0, c.cart.TotalItems())
	for _, item := range items {
		for i := 0; i < item.Quantity; i++ {
			order, err := c.orders.Create(ctx, item.MenuItemID)
			if err != nil {
				c.log.Warn("order creation failed",
					zap.Int64("menu_item_id", item.MenuItemID),
					zap.Error(err))
				c.notifier.Notify(notify.Error, "Failed to create orders. Please try again.")
				return created, fmt.Errorf("create order for item %d: %w", item.MenuItemID, err)
			}
			created = append(created, order)
		}
	}

	c.cart.Clear(ctx)
	c.notifier.Notify(notify.Success, "Orders created successfully!")
	return created, nil
}
