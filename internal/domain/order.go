package domain

import "time"

// OrderStatus is the server-authoritative order state. The client only
// mirrors it; transitions happen on the backend.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type Order struct {
	ID         int64       `json:"id"`
	MenuItem   MenuItem    `json:"menuItem"`
	Status     OrderStatus `json:"status"`
	TotalPrice float64     `json:"totalPrice"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}
