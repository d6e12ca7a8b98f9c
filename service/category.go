package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"productcatalog/domain"
)

// CategoryService manages categories.
type CategoryService struct {
	categories domain.CategoryStore
}

// NewCategoryService returns a CategoryService over categories.
func NewCategoryService(categories domain.CategoryStore) *CategoryService {
	return &CategoryService{categories: categories}
}

// GetByID returns the category with id or a *domain.NotFoundError.
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (CategoryResponse, error) {
	c, err := loadCategory(ctx, s.categories, id)
	if err != nil {
		return CategoryResponse{}, err
	}
	return toCategoryResponse(c), nil
}

// GetAll returns every category sorted by name.
func (s *CategoryService) GetAll(ctx context.Context) ([]CategoryResponse, error) {
	snaps, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, toCategoryResponse(domain.RestoreCategory(snap)))
	}
	return out, nil
}

// Create adds a new category.
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (CategoryResponse, error) {
	c, err := domain.NewCategory(req.Name, req.Description)
	if err != nil {
		return CategoryResponse{}, err
	}
	if err := s.categories.InsertCategory(ctx, c.Snapshot()); err != nil {
		return CategoryResponse{}, err
	}
	slog.Info("category created", "category_id", c.ID())
	return toCategoryResponse(c), nil
}

// Update renames or redescribes a category.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (CategoryResponse, error) {
	c, err := loadCategory(ctx, s.categories, id)
	if err != nil {
		return CategoryResponse{}, err
	}
	if err := c.Update(req.Name, req.Description); err != nil {
		return CategoryResponse{}, err
	}
	if err := s.categories.ReplaceCategory(ctx, c.Snapshot()); err != nil {
		return CategoryResponse{}, err
	}
	slog.Info("category updated", "category_id", id)
	return toCategoryResponse(c), nil
}

// Delete removes a category.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	exists, err := s.categories.CategoryExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewNotFoundError("category", id)
	}
	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		return err
	}
	slog.Info("category deleted", "category_id", id)
	return nil
}
