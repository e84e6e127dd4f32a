package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harshit25jain/canteen-client/internal/domain"
)

// fakeBackend is an in-memory stand-in for the canteen REST API,
// wired with the same routes the real backend exposes.
type fakeBackend struct {
	mu     sync.Mutex
	menu   map[int64]domain.MenuItem
	orders map[int64]domain.Order
	nextID int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		menu:   make(map[int64]domain.MenuItem),
		orders: make(map[int64]domain.Order),
		nextID: 1,
	}
}

func (b *fakeBackend) router() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/menu", func(r chi.Router) {
		r.Get("/", b.listMenu)
		r.Get("/available", b.listAvailable)
		r.Get("/search", b.searchMenu)
		r.Get("/{id}", b.getMenuItem)
		r.Post("/", b.createMenuItem)
		r.Put("/{id}", b.updateMenuItem)
		r.Delete("/{id}", b.deleteMenuItem)
	})
	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", b.listAllOrders)
		r.Get("/history", b.listAllOrders)
		r.Get("/pending", b.listOrdersByStatus(domain.OrderStatusPending))
		r.Get("/paid", b.listOrdersByStatus(domain.OrderStatusPaid))
		r.Get("/cancelled", b.listOrdersByStatus(domain.OrderStatusCancelled))
		r.Get("/{id}", b.getOrder)
		r.Post("/", b.createOrder)
		r.Post("/{id}/pay", b.payOrder)
		r.Post("/{id}/cancel", b.cancelOrder)
	})
	return r
}

func (b *fakeBackend) addMenuItem(item domain.MenuItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.menu[item.ID] = item
}

func (b *fakeBackend) listMenu(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := make([]domain.MenuItem, 0, len(b.menu))
	for _, item := range b.menu {
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

func (b *fakeBackend) listAvailable(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := make([]domain.MenuItem, 0, len(b.menu))
	for _, item := range b.menu {
		if item.Available() {
			items = append(items, item)
		}
	}
	writeJSON(w, http.StatusOK, items)
}

func (b *fakeBackend) searchMenu(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	b.mu.Lock()
	defer b.mu.Unlock()
	items := make([]domain.MenuItem, 0)
	for _, item := range b.menu {
		if name != "" && item.Name == name {
			items = append(items, item)
		}
	}
	writeJSON(w, http.StatusOK, items)
}

func (b *fakeBackend) getMenuItem(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.menu[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Menu item not found"})
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (b *fakeBackend) createMenuItem(w http.ResponseWriter, r *http.Request) {
	var item domain.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid menu item"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	item.ID = b.nextID
	b.nextID++
	b.menu[item.ID] = item
	writeJSON(w, http.StatusCreated, item)
}

func (b *fakeBackend) updateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var item domain.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid menu item"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.menu[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Menu item not found"})
		return
	}
	item.ID = id
	b.menu[id] = item
	writeJSON(w, http.StatusOK, item)
}

func (b *fakeBackend) deleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.menu[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Menu item not found"})
		return
	}
	delete(b.menu, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *fakeBackend) createOrder(w http.ResponseWriter, r *http.Request) {
	menuItemID, _ := strconv.ParseInt(r.URL.Query().Get("menuItemId"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.menu[menuItemID]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Menu item not found"})
		return
	}
	if item.StockCount <= 0 {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Insufficient stock for menu item: " + item.Name})
		return
	}
	item.StockCount--
	b.menu[menuItemID] = item

	order := domain.Order{
		ID:         b.nextID,
		MenuItem:   item,
		Status:     domain.OrderStatusPending,
		TotalPrice: item.Price,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	b.nextID++
	b.orders[order.ID] = order
	writeJSON(w, http.StatusCreated, order)
}

func (b *fakeBackend) listAllOrders(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	orders := make([]domain.Order, 0, len(b.orders))
	for _, o := range b.orders {
		orders = append(orders, o)
	}
	writeJSON(w, http.StatusOK, orders)
}

func (b *fakeBackend) getOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	order, ok := b.orders[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Order not found"})
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (b *fakeBackend) listOrdersByStatus(status domain.OrderStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		orders := make([]domain.Order, 0)
		for _, o := range b.orders {
			if o.Status == status {
				orders = append(orders, o)
			}
		}
		writeJSON(w, http.StatusOK, orders)
	}
}

func (b *fakeBackend) payOrder(w http.ResponseWriter, r *http.Request) {
	b.transitionOrder(w, r, domain.OrderStatusPaid)
}

func (b *fakeBackend) cancelOrder(w http.ResponseWriter, r *http.Request) {
	b.transitionOrder(w, r, domain.OrderStatusCancelled)
}

func (b *fakeBackend) transitionOrder(w http.ResponseWriter, r *http.Request, to domain.OrderStatus) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	order, ok := b.orders[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Order not found"})
		return
	}
	if order.Status != domain.OrderStatusPending {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Only pending orders can be " + string(to)})
		return
	}
	order.Status = to
	order.UpdatedAt = time.Now().UTC()
	b.orders[id] = order
	writeJSON(w, http.StatusOK, order)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func setupServices(t *testing.T) (*fakeBackend, *MenuService, *OrderService) {
	t.Helper()
	backend := newFakeBackend()
	srv := httptest.NewServer(backend.router())
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	return backend, NewMenuService(client), NewOrderService(client)
}

func TestMenuService_ListAvailableFiltersOutOfStock(t *testing.T) {
	backend, menu, _ := setupServices(t)
	backend.addMenuItem(domain.MenuItem{ID: 1, Name: "Masala Dosa", Price: 4.50, StockCount: 5})
	backend.addMenuItem(domain.MenuItem{ID: 2, Name: "Veg Thali", Price: 6.00, StockCount: 0})

	items, err := menu.ListAvailable(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Masala Dosa", items[0].Name)
}

func TestMenuService_Search(t *testing.T) {
	backend, menu, _ := setupServices(t)
	backend.addMenuItem(domain.MenuItem{ID: 1, Name: "Samosa", Price: 1.50, StockCount: 20})

	items, err := menu.Search(context.Background(), "Samosa")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ID)
}

func TestMenuService_GetNotFound(t *testing.T) {
	_, menu, _ := setupServices(t)

	_, err := menu.Get(context.Background(), 99)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Menu item not found", apiErr.Message)
}

func TestMenuService_AdminLifecycle(t *testing.T) {
	_, menu, _ := setupServices(t)
	ctx := context.Background()

	created, err := menu.Create(ctx, domain.MenuItem{Name: "Pav Bhaji", Price: 3.75, StockCount: 10})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	updated, err := menu.Update(ctx, created.ID, domain.MenuItem{Name: "Pav Bhaji", Price: 4.25, StockCount: 8})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 4.25, updated.Price)

	require.NoError(t, menu.Delete(ctx, created.ID))

	_, err = menu.Get(ctx, created.ID)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestOrderService_CreateSendsMenuItemIDQuery(t *testing.T) {
	backend, _, orders := setupServices(t)
	backend.addMenuItem(domain.MenuItem{ID: 3, Name: "Filter Coffee", Price: 1.25, StockCount: 2})

	order, err := orders.Create(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, int64(3), order.MenuItem.ID)
	assert.Equal(t, 1.25, order.TotalPrice)
}

func TestOrderService_CreateOutOfStock(t *testing.T) {
	backend, _, orders := setupServices(t)
	backend.addMenuItem(domain.MenuItem{ID: 4, Name: "Veg Thali", Price: 6.00, StockCount: 0})

	_, err := orders.Create(context.Background(), 4)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "Insufficient stock")
}

func TestOrderService_PayAndListByStatus(t *testing.T) {
	backend, _, orders := setupServices(t)
	backend.addMenuItem(domain.MenuItem{ID: 1, Name: "Idli", Price: 2.00, StockCount: 5})
	ctx := context.Background()

	created, err := orders.Create(ctx, 1)
	require.NoError(t, err)

	paid, err := orders.Pay(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, paid.Status)

	pending, err := orders.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	paidList, err := orders.ListByStatus(ctx, domain.OrderStatusPaid)
	require.NoError(t, err)
	require.Len(t, paidList, 1)
	assert.Equal(t, created.ID, paidList[0].ID)
}

func TestOrderService_GetAndHistory(t *testing.T) {
	backend, _, orders := setupServices(t)
	backend.addMenuItem(domain.MenuItem{ID: 1, Name: "Idli", Price: 2.00, StockCount: 5})
	ctx := context.Background()

	first, err := orders.Create(ctx, 1)
	require.NoError(t, err)
	second, err := orders.Create(ctx, 1)
	require.NoError(t, err)
	_, err = orders.Cancel(ctx, second.ID)
	require.NoError(t, err)

	got, err := orders.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	all, err := orders.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// History includes cancelled orders alongside pending ones.
	history, err := orders.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = orders.Get(ctx, 999)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestOrderService_PayNonPendingRejected(t *testing.T) {
	backend, _, orders := setupServices(t)
	backend.addMenuItem(domain.MenuItem{ID: 1, Name: "Idli", Price: 2.00, StockCount: 5})
	ctx := context.Background()

	created, err := orders.Create(ctx, 1)
	require.NoError(t, err)
	_, err = orders.Cancel(ctx, created.ID)
	require.NoError(t, err)

	_, err = orders.Pay(ctx, created.ID)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

func TestClient_NetworkErrorWrapped(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := NewClient(srv.URL, time.Second, zap.NewNop())
	menu := NewMenuService(client)

	_, err := menu.ListAll(context.Background())
	require.Error(t, err)

	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr), "transport failures are not api errors")
	assert.Contains(t, err.Error(), "network error")
}

func TestClient_ErrorWithoutBodyFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, time.Second, zap.NewNop())
	_, err := NewMenuService(client).ListAll(context.Background())

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Internal Server Error", apiErr.Message)
}
