package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/harshit25jain/canteen-client/internal/domain"
)

// OrderService wraps the backend's /api/orders endpoints. All commands
// are server-authoritative: the backend may reject a pay or cancel
// regardless of what the client's countdown says.
type OrderService struct {
	c *Client
}

func NewOrderService(c *Client) *OrderService {
	return &OrderService{c: c}
}

func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.list(ctx, "/api/orders")
}

func (s *OrderService) History(ctx context.Context) ([]domain.Order, error) {
	return s.list(ctx, "/api/orders/history")
}

// ListByStatus fetches orders in one of the three backend states.
func (s *OrderService) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	switch status {
	case domain.OrderStatusPending:
		return s.list(ctx, "/api/orders/pending")
	case domain.OrderStatusPaid:
		return s.list(ctx, "/api/orders/paid")
	case domain.OrderStatusCancelled:
		return s.list(ctx, "/api/orders/cancelled")
	default:
		return nil, fmt.Errorf("unknown order status %q", status)
	}
}

func (s *OrderService) ListPending(ctx context.Context) ([]domain.Order, error) {
	return s.ListByStatus(ctx, domain.OrderStatusPending)
}

func (s *OrderService) Get(ctx context.Context, id int64) (domain.Order, error) {
	var order domain.Order
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%d", id), nil, nil, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// Create places one order for a single unit of the given menu item.
// The backend decrements stock and starts the payment timeout.
func (s *OrderService) Create(ctx context.Context, menuItemID int64) (domain.Order, error) {
	query := url.Values{"menuItemId": {strconv.FormatInt(menuItemID, 10)}}
	var order domain.Order
	if err := s.c.do(ctx, http.MethodPost, "/api/orders", query, nil, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (s *OrderService) Pay(ctx context.Context, id int64) (domain.Order, error) {
	var order domain.Order
	if err := s.c.do(ctx, http.MethodPost, fmt.Sprintf("/api/orders/%d/pay", id), nil, nil, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (s *OrderService) Cancel(ctx context.Context, id int64) (domain.Order, error) {
	var order domain.Order
	if err := s.c.do(ctx, http.MethodPost, fmt.Sprintf("/api/orders/%d/cancel", id), nil, nil, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (s *OrderService) list(ctx context.Context, path string) ([]domain.Order, error) {
	var orders []domain.Order
	if err := s.c.do(ctx, http.MethodGet, path, nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
