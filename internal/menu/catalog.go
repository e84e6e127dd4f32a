// Package menu serves menu data to the UI layer, caching the
// available-items list so repeated page loads do not hammer the
// backend.
package menu

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/harshit25jain/canteen-client/internal/cart"
	"github.com/harshit25jain/canteen-client/internal/domain"
)

// ErrOutOfStock rejects an add-to-cart for an item whose last known
// stock is zero. The cart store itself never re-validates stock.
var ErrOutOfStock = errors.New("item is out of stock")

// Service is the slice of the menu API the catalog needs.
type Service interface {
	ListAvailable(ctx context.Context) ([]domain.MenuItem, error)
	Search(ctx context.Context, name string) ([]domain.MenuItem, error)
}

// Catalog is a read-through cache over the menu service. Concurrent
// refreshes collapse into a single backend call.
type Catalog struct {
	svc Service
	ttl time.Duration
	sfg singleflight.Group // Prevents cache stampede
	log *zap.Logger

	mu        sync.Mutex
	items     []domain.MenuItem
	fetchedAt time.Time
}

func NewCatalog(svc Service, ttl time.Duration, log *zap.Logger) *Catalog {
	return &Catalog{svc: svc, ttl: ttl, log: log}
}

// Available returns the in-stock menu, served from cache while fresh.
func (c *Catalog) Available(ctx context.Context) ([]domain.MenuItem, error) {
	c.mu.Lock()
	if c.items != nil && time.Since(c.fetchedAt) < c.ttl {
		items := c.items
		c.mu.Unlock()
		return items, nil
	}
	c.mu.Unlock()

	v, err, _ := c.sfg.Do("available", func() (interface{}, error) {
		items, err := c.svc.ListAvailable(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.items = items
		c.fetchedAt = time.Now()
		c.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.MenuItem), nil
}

// Search always goes to the backend; search results are not cached.
func (c *Catalog) Search(ctx context.Context, name string) ([]domain.MenuItem, error) {
	return c.svc.Search(ctx, name)
}

// Invalidate drops the cached list so the next Available call
// refetches, e.g. after an order changed stock counts.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

// AddToCart checks the stock snapshot and, when orderable, adds the
// item to the cart as a new line or merged quantity.
func (c *Catalog) AddToCart(ctx context.Context, store *cart.Store, item domain.MenuItem, quantity int) error {
	if !item.Available() {
		return fmt.Errorf("%w: %s", ErrOutOfStock, item.Name)
	}
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	store.AddItem(ctx, domain.CartItem{
		MenuItemID: item.ID,
		Name:       item.Name,
		UnitPrice:  item.Price,
		Quantity:   quantity,
		StockCount: item.StockCount,
	})
	return nil
}
