// Package track follows pending orders and drives their countdown
// views. Network fetches happen only on explicit Refresh or after a
// pay/cancel command; the periodic tick recomputes views from wall
// clock alone.
package track

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/harshit25jain/canteen-client/internal/countdown"
	"github.com/harshit25jain/canteen-client/internal/domain"
	"github.com/harshit25jain/canteen-client/internal/notify"
)

// ErrExpired gates pay/cancel once the countdown has run out. The
// server enforces the real timeout; this is only the client-side
// refusal that mirrors a disabled button.
var ErrExpired = errors.New("order payment window expired")

// ErrUnknownOrder is returned for commands against an order the
// tracker has not seen in its pending list.
var ErrUnknownOrder = errors.New("order not in pending list")

// OrderCommander is the slice of the order API the tracker needs.
type OrderCommander interface {
	ListPending(ctx context.Context) ([]domain.Order, error)
	Pay(ctx context.Context, id int64) (domain.Order, error)
	Cancel(ctx context.Context, id int64) (domain.Order, error)
}

// OrderView pairs an order with its countdown state at one instant.
type OrderView struct {
	Order     domain.Order
	Countdown countdown.View
}

type Tracker struct {
	orders   OrderCommander
	notifier notify.Notifier
	log      *zap.Logger
	tick     time.Duration
	now      func() time.Time

	mu      sync.Mutex
	pending []domain.Order
}

func New(orders OrderCommander, notifier notify.Notifier, log *zap.Logger) *Tracker {
	return &Tracker{
		orders:   orders,
		notifier: notifier,
		log:      log,
		tick:     time.Second,
		now:      time.Now,
	}
}

// Refresh fetches the pending orders. Failures are reported through
// the notifier and leave the previous list in place.
func (t *Tracker) Refresh(ctx context.Context) error {
	pending, err := t.orders.ListPending(ctx)
	if err != nil {
		t.log.Warn("pending orders fetch failed", zap.Error(err))
		t.notifier.Notify(notify.Error, "Failed to load orders")
		return err
	}

	t.mu.Lock()
	t.pending = pending
	t.mu.Unlock()
	return nil
}

// Views derives the countdown view for every tracked pending order at
// the current instant.
func (t *Tracker) Views() []OrderView {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()
	views := make([]OrderView, 0, len(t.pending))
	for _, order := range t.pending {
		views = append(views, OrderView{
			Order:     order,
			Countdown: countdown.At(order.CreatedAt, now),
		})
	}
	return views
}

// Watch emits views once immediately and then on every tick until ctx
// is cancelled. The ticker is owned here and stopped on return, so a
// torn-down view cannot leak a running timer.
func (t *Tracker) Watch(ctx context.Context, fn func([]OrderView)) {
	fn(t.Views())

	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fn(t.Views())
		case <-ctx.Done():
			return
		}
	}
}

// Pay settles a pending order. Refused locally once the countdown has
// expired; otherwise the server has the final word.
func (t *Tracker) Pay(ctx context.Context, id int64) error {
	if err := t.gate(id); err != nil {
		return err
	}

	if _, err := t.orders.Pay(ctx, id); err != nil {
		t.log.Warn("pay order failed", zap.Int64("order_id", id), zap.Error(err))
		t.notifier.Notify(notify.Error, "Failed to pay order")
		return err
	}

	t.notifier.Notify(notify.Success, "Order paid successfully!")
	if err := t.Refresh(ctx); err != nil {
		t.log.Warn("refresh after pay failed", zap.Error(err))
	}
	return nil
}

// Cancel cancels a pending order, with the same gating as Pay.
func (t *Tracker) Cancel(ctx context.Context, id int64) error {
	if err := t.gate(id); err != nil {
		return err
	}

	if _, err := t.orders.Cancel(ctx, id); err != nil {
		t.log.Warn("cancel order failed", zap.Int64("order_id", id), zap.Error(err))
		t.notifier.Notify(notify.Error, "Failed to cancel order")
		return err
	}

	t.notifier.Notify(notify.Success, "Order cancelled!")
	if err := t.Refresh(ctx); err != nil {
		t.log.Warn("refresh after cancel failed", zap.Error(err))
	}
	return nil
}

func (t *Tracker) gate(id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, order := range t.pending {
		if order.ID != id {
			continue
		}
		if countdown.At(order.CreatedAt, t.now()).Expired {
			t.notifier.Notify(notify.Error, "Order has expired and will be cancelled automatically")
			return ErrExpired
		}
		return nil
	}
	return ErrUnknownOrder
}
