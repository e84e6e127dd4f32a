// Package snapshot persists the cart between sessions as an opaque
// blob keyed by a fixed name. The cart store treats every backend the
// same way: load once at startup, save after each mutation.
package snapshot

import (
	"context"
	"errors"

	"github.com/harshit25jain/canteen-client/internal/domain"
)

// Key is the fixed storage name for the cart snapshot.
const Key = "cart-storage"

// Store defines the interface for cart snapshot persistence.
// Consumers define this interface, not the backend implementations.
type Store interface {
	Load(ctx context.Context) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
}

// ErrNotFound indicates no snapshot has been saved yet.
var ErrNotFound = errors.New("cart snapshot not found")
