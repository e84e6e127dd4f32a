package domain

import "time"

// MenuItem mirrors a menu record served by the canteen backend.
// Stock counts are a point-in-time snapshot; the backend decrements
// them on order creation.
type MenuItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	StockCount  int       `json:"stockCount"`
	Category    string    `json:"category,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// Available reports whether the item can still be ordered.
func (m MenuItem) Available() bool {
	return m.StockCount > 0
}
