package domain

import (
	"context"

	"github.com/google/uuid"
)

// ProductStore defines the storage interface for products.
// GetProduct returns ErrRecordNotFound when the id is unknown.
type ProductStore interface {
	GetProduct(ctx context.Context, id uuid.UUID) (ProductSnapshot, error)
	ListProducts(ctx context.Context) ([]ProductSnapshot, error)
	InsertProduct(ctx context.Context, p ProductSnapshot) error
	ReplaceProduct(ctx context.Context, p ProductSnapshot) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ProductExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// CategoryStore defines the storage interface for categories
type CategoryStore interface {
	GetCategory(ctx context.Context, id uuid.UUID) (CategorySnapshot, error)
	ListCategories(ctx context.Context) ([]CategorySnapshot, error)
	InsertCategory(ctx context.Context, c CategorySnapshot) error
	ReplaceCategory(ctx context.Context, c CategorySnapshot) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// OrderStore defines the storage interface for orders. An order and its items
// are always written and removed as one unit.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (OrderSnapshot, error)
	ListOrders(ctx context.Context) ([]OrderSnapshot, error)
	InsertOrder(ctx context.Context, o OrderSnapshot) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	OrderExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Transactor runs fn so that every store write made with the ctx it receives
// is committed together, or not at all when fn returns an error.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
