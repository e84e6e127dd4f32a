package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/harshit25jain/canteen-client/internal/domain"
)

// MenuService wraps the backend's /api/menu endpoints. Create, Update
// and Delete are admin operations; the backend enforces that, not us.
type MenuService struct {
	c *Client
}

func NewMenuService(c *Client) *MenuService {
	return &MenuService{c: c}
}

func (s *MenuService) ListAll(ctx context.Context) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	if err := s.c.do(ctx, http.MethodGet, "/api/menu", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListAvailable returns only items with stock remaining.
func (s *MenuService) ListAvailable(ctx context.Context) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	if err := s.c.do(ctx, http.MethodGet, "/api/menu/available", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Search finds items whose name contains the given substring.
func (s *MenuService) Search(ctx context.Context, name string) ([]domain.MenuItem, error) {
	query := url.Values{"name": {name}}
	var items []domain.MenuItem
	if err := s.c.do(ctx, http.MethodGet, "/api/menu/search", query, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *MenuService) Get(ctx context.Context, id int64) (domain.MenuItem, error) {
	var item domain.MenuItem
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/api/menu/%d", id), nil, nil, &item); err != nil {
		return domain.MenuItem{}, err
	}
	return item, nil
}

func (s *MenuService) Create(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	var created domain.MenuItem
	if err := s.c.do(ctx, http.MethodPost, "/api/menu", nil, item, &created); err != nil {
		return domain.MenuItem{}, err
	}
	return created, nil
}

func (s *MenuService) Update(ctx context.Context, id int64, item domain.MenuItem) (domain.MenuItem, error) {
	var updated domain.MenuItem
	if err := s.c.do(ctx, http.MethodPut, fmt.Sprintf("/api/menu/%d", id), nil, item, &updated); err != nil {
		return domain.MenuItem{}, err
	}
	return updated, nil
}

func (s *MenuService) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/menu/%d", id), nil, nil, nil)
}
