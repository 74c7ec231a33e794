package repository

import (
	"context"

	"github.com/eltimbiriche/cart-service/internal/entity"
)

// ProductRepository handles persistence for the product catalog.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]entity.Product, error)
	FindByID(ctx context.Context, id int64) (*entity.Product, error)
	// Seed inserts initial products if none exist.
	Seed(ctx context.Context, products []entity.Product) error
	// ReduceStock decrements stock for a product or one of its
	// variations, flooring at zero.
	ReduceStock(ctx context.Context, productID int64, variationID *int64, quantity int) error
}

// OrderRepository maintains the order read model fed by OrderPlaced
// events, serving the tracking views.
type OrderRepository interface {
	// Record stores a placed order. It reports false for a redelivered
	// event that is already recorded, so projections run exactly once.
	Record(ctx context.Context, event entity.OrderPlaced) (bool, error)
	FindRecent(ctx context.Context, limit int) ([]entity.Order, error)
	FindByID(ctx context.Context, orderID string) (*entity.Order, error)
}

// CartRepository persists the cart between sessions. Implementations
// store the full ordered line list under a single key; there is no
// versioning or migration of the persisted shape.
type CartRepository interface {
	Load(ctx context.Context) ([]entity.CartItem, error)
	Save(ctx context.Context, items []entity.CartItem) error
	Clear(ctx context.Context) error
}
