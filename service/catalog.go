package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"productcatalog/domain"
)

const maxImportWorkers = 10

// CatalogService manages products.
type CatalogService struct {
	products   domain.ProductStore
	categories domain.CategoryStore
}

// NewCatalogService returns a CatalogService over the given stores.
func NewCatalogService(products domain.ProductStore, categories domain.CategoryStore) *CatalogService {
	return &CatalogService{products: products, categories: categories}
}

// GetByID returns the product with id or a *domain.NotFoundError.
func (s *CatalogService) GetByID(ctx context.Context, id uuid.UUID) (ProductResponse, error) {
	p, err := loadProduct(ctx, s.products, id)
	if err != nil {
		return ProductResponse{}, err
	}
	return toProductResponse(p), nil
}

// GetAll returns every product; an empty store yields an empty, non-nil slice.
func (s *CatalogService) GetAll(ctx context.Context) ([]ProductResponse, error) {
	snaps, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProductResponse, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, toProductResponse(domain.RestoreProduct(snap)))
	}
	return out, nil
}

// Create adds a new, active product.
func (s *CatalogService) Create(ctx context.Context, req CreateProductRequest) (ProductResponse, error) {
	p, err := domain.NewProduct(req.Name, req.Description, req.Stock, req.Price, true)
	if err != nil {
		return ProductResponse{}, err
	}
	start := time.Now()
	if err := s.products.InsertProduct(ctx, p.Snapshot()); err != nil {
		slog.Error("create failed", "product_id", p.ID(), "error", err)
		return ProductResponse{}, err
	}
	slog.Info("product created", "product_id", p.ID(), "duration_ms", time.Since(start).Milliseconds())
	return toProductResponse(p), nil
}

// Update overwrites the editable fields of a product.
func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (ProductResponse, error) {
	return s.mutate(ctx, id, "product updated", func(p *domain.Product) error {
		return p.Update(req.Name, req.Description, req.Stock, req.Price, req.IsActive)
	})
}

// Delete removes a product.
func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	exists, err := s.products.ProductExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewNotFoundError("product", id)
	}
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		slog.Error("delete failed", "product_id", id, "error", err)
		return err
	}
	slog.Info("product deleted", "product_id", id)
	return nil
}

// ChangePrice applies the rate-limited price change rule.
func (s *CatalogService) ChangePrice(ctx context.Context, id uuid.UUID, req ChangePriceRequest) (ProductResponse, error) {
	return s.mutate(ctx, id, "product price changed", func(p *domain.Product) error {
		return p.ChangePrice(req.Price)
	})
}

// ApplyDiscount lowers the price by a percentage.
func (s *CatalogService) ApplyDiscount(ctx context.Context, id uuid.UUID, req DiscountRequest) (ProductResponse, error) {
	return s.mutate(ctx, id, "product discounted", func(p *domain.Product) error {
		return p.ApplyDiscount(req.Percentage)
	})
}

// IncreaseStock adds units to a product's stock.
func (s *CatalogService) IncreaseStock(ctx context.Context, id uuid.UUID, req StockRequest) (ProductResponse, error) {
	return s.mutate(ctx, id, "product restocked", func(p *domain.Product) error {
		return p.IncreaseStock(req.Quantity)
	})
}

// DecreaseStock removes units from a product's stock.
func (s *CatalogService) DecreaseStock(ctx context.Context, id uuid.UUID, req StockRequest) (ProductResponse, error) {
	return s.mutate(ctx, id, "product stock decreased", func(p *domain.Product) error {
		return p.DecreaseStock(req.Quantity)
	})
}

// AssignCategory links a product to an existing category.
func (s *CatalogService) AssignCategory(ctx context.Context, id uuid.UUID, req AssignCategoryRequest) (ProductResponse, error) {
	exists, err := s.categories.CategoryExists(ctx, req.CategoryID)
	if err != nil {
		return ProductResponse{}, err
	}
	if !exists {
		return ProductResponse{}, domain.NewNotFoundError("category", req.CategoryID)
	}
	return s.mutate(ctx, id, "product category assigned", func(p *domain.Product) error {
		p.AssignCategory(req.CategoryID)
		return nil
	})
}

// Import creates every product concurrently. Each item must pass every check
// before it is created. Failures do not stop the remaining items; they are
// joined into the returned error.
func (s *CatalogService) Import(ctx context.Context, reqs []CreateProductRequest, checks ...func(CreateProductRequest) error) ([]ProductResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	created := make([]ProductResponse, len(reqs))
	errs := make([]error, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxImportWorkers)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			p, err := s.importOne(gctx, req, checks)
			if err != nil {
				errs[i] = fmt.Errorf("item %d (%s): %w", i, req.Name, err)
				return nil
			}
			created[i] = p
			return nil
		})
	}
	_ = g.Wait()

	out := make([]ProductResponse, 0, len(reqs))
	for i, p := range created {
		if errs[i] == nil {
			out = append(out, p)
		}
	}
	return out, errors.Join(errs...)
}

func (s *CatalogService) importOne(ctx context.Context, req CreateProductRequest, checks []func(CreateProductRequest) error) (ProductResponse, error) {
	for _, check := range checks {
		if err := check(req); err != nil {
			return ProductResponse{}, err
		}
	}
	return s.Create(ctx, req)
}

func (s *CatalogService) mutate(ctx context.Context, id uuid.UUID, msg string, fn func(*domain.Product) error) (ProductResponse, error) {
	p, err := loadProduct(ctx, s.products, id)
	if err != nil {
		return ProductResponse{}, err
	}
	if err := fn(p); err != nil {
		return ProductResponse{}, err
	}
	start := time.Now()
	if err := s.products.ReplaceProduct(ctx, p.Snapshot()); err != nil {
		slog.Error("update failed", "product_id", id, "error", err)
		return ProductResponse{}, err
	}
	slog.Info(msg, "product_id", id, "duration_ms", time.Since(start).Milliseconds())
	return toProductResponse(p), nil
}

// TotalValue sums price times stock over the given products.
func TotalValue(products []ProductResponse) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
	}
	return total
}
