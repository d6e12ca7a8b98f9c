// Package service orchestrates the catalog entities over their storage collaborators.
package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"productcatalog/domain"
)

// ProductResponse is the transport shape of a product
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"is_active"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
}

// CreateProductRequest carries the fields of a new product.
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Stock       int             `json:"stock" validate:"gte=0"`
}

// UpdateProductRequest replaces the editable fields of a product.
type UpdateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Stock       int             `json:"stock" validate:"gte=0"`
	IsActive    bool            `json:"is_active"`
}

// ChangePriceRequest carries the new price.
type ChangePriceRequest struct {
	Price decimal.Decimal `json:"price" validate:"gte=0"`
}

// DiscountRequest carries a percentage in [0, 100].
type DiscountRequest struct {
	Percentage decimal.Decimal `json:"percentage" validate:"gte=0,lte=100"`
}

// StockRequest carries a positive quantity.
type StockRequest struct {
	Quantity int `json:"quantity" validate:"gt=0"`
}

// AssignCategoryRequest names the category to link.
type AssignCategoryRequest struct {
	CategoryID uuid.UUID `json:"category_id" validate:"required"`
}

// CategoryResponse is the transport shape of a category
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// CreateCategoryRequest carries the fields of a new category.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

// UpdateCategoryRequest replaces the fields of a category.
type UpdateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

// OrderResponse is the transport shape of an order
type OrderResponse struct {
	ID           uuid.UUID           `json:"id"`
	CustomerName string              `json:"customer_name"`
	OrderDate    time.Time           `json:"order_date"`
	TotalAmount  decimal.Decimal     `json:"total_amount"`
	Items        []OrderItemResponse `json:"items"`
}

// OrderItemResponse is one line of an order.
type OrderItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// CreateOrderRequest names the customer and the requested lines.
type CreateOrderRequest struct {
	CustomerName string             `json:"customer_name" validate:"required"`
	Items        []OrderItemRequest `json:"items" validate:"dive"`
}

// OrderItemRequest asks for quantity units of a product.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"min=1"`
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID(),
		Name:        p.Name(),
		Description: p.Description(),
		Price:       p.Price(),
		Stock:       p.Stock(),
		IsActive:    p.Active(),
		CategoryID:  p.CategoryID(),
	}
}

func toCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID(), Name: c.Name(), Description: c.Description()}
}

func toOrderResponse(o *domain.Order) OrderResponse {
	items := o.Items()
	out := OrderResponse{
		ID:           o.ID(),
		CustomerName: o.CustomerName(),
		OrderDate:    o.OrderDate(),
		TotalAmount:  o.Total(),
		Items:        make([]OrderItemResponse, 0, len(items)),
	}
	for _, it := range items {
		out.Items = append(out.Items, OrderItemResponse{
			ProductID:   it.ProductID(),
			ProductName: it.ProductName(),
			UnitPrice:   it.UnitPrice(),
			Quantity:    it.Quantity(),
		})
	}
	return out
}
