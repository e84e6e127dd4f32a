package domain

import "time"

// Cart is the client-side shopping cart. It is owned by the cart store
// and persisted as an opaque snapshot between sessions.
type Cart struct {
	Items     []CartItem `json:"items" bson:"items"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updated_at"`
}

// CartItem is one cart line. There is at most one line per MenuItemID;
// re-adding the same item merges quantities.
type CartItem struct {
	MenuItemID int64     `json:"menuItemId" bson:"menu_item_id"`
	Name       string    `json:"name" bson:"name"`
	UnitPrice  float64   `json:"price" bson:"price"`
	Quantity   int       `json:"quantity" bson:"quantity"`
	StockCount int       `json:"stockCount" bson:"stock_count"`
	AddedAt    time.Time `json:"addedAt,omitempty" bson:"added_at"`
}
