package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"productcatalog/domain"
)

// Backend is everything the services need from a storage collaborator.
type Backend interface {
	domain.ProductStore
	domain.CategoryStore
	domain.OrderStore
	domain.Transactor
}

// Services bundles the orchestration services over one backend.
type Services struct {
	Products   *CatalogService
	Categories *CategoryService
	Orders     *OrderService
}

// New wires every service to b.
func New(b Backend) *Services {
	return &Services{
		Products:   NewCatalogService(b, b),
		Categories: NewCategoryService(b),
		Orders:     NewOrderService(b, b, b),
	}
}

func loadProduct(ctx context.Context, store domain.ProductStore, id uuid.UUID) (*domain.Product, error) {
	snap, err := store.GetProduct(ctx, id)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("product", id)
	}
	if err != nil {
		return nil, err
	}
	return domain.RestoreProduct(snap), nil
}

func loadCategory(ctx context.Context, store domain.CategoryStore, id uuid.UUID) (*domain.Category, error) {
	snap, err := store.GetCategory(ctx, id)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("category", id)
	}
	if err != nil {
		return nil, err
	}
	return domain.RestoreCategory(snap), nil
}
