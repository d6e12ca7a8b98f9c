// Package domain defines core business types and interfaces.
package domain

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// MaxProductNameLength is counted in runes.
	MaxProductNameLength = 200
	entityProduct        = "product"
)

// maxPriceStep caps a single price increase at 150% of the current price.
var maxPriceStep = decimal.New(15, -1)

var hundred = decimal.NewFromInt(100)

// Product represents a catalog product. Fields are private; every mutation is validated.
type Product struct {
	id          uuid.UUID
	name        string
	description string
	stock       int
	price       decimal.Decimal
	active      bool
	categoryID  *uuid.UUID
}

// ProductSnapshot is the persisted form of a Product
type ProductSnapshot struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Stock       int             `json:"stock"`
	Price       decimal.Decimal `json:"price"`
	Active      bool            `json:"active"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
}

// NewProduct creates a product with a fresh id.
func NewProduct(name, description string, stock int, price decimal.Decimal, active bool) (*Product, error) {
	if err := validateProduct(name, stock, price); err != nil {
		return nil, err
	}
	return &Product{
		id:          uuid.New(),
		name:        name,
		description: description,
		stock:       stock,
		price:       price,
		active:      active,
	}, nil
}

// RestoreProduct rebuilds a product from storage without re-running business rules;
// persisted data was validated when it was written.
func RestoreProduct(s ProductSnapshot) *Product {
	p := &Product{
		id:          s.ID,
		name:        s.Name,
		description: s.Description,
		stock:       s.Stock,
		price:       s.Price,
		active:      s.Active,
	}
	if s.CategoryID != nil {
		id := *s.CategoryID
		p.categoryID = &id
	}
	return p
}

// Snapshot returns a detached copy of the product's state.
func (p *Product) Snapshot() ProductSnapshot {
	s := ProductSnapshot{
		ID:          p.id,
		Name:        p.name,
		Description: p.description,
		Stock:       p.stock,
		Price:       p.price,
		Active:      p.active,
	}
	if p.categoryID != nil {
		id := *p.categoryID
		s.CategoryID = &id
	}
	return s
}

func (p *Product) ID() uuid.UUID          { return p.id }
func (p *Product) Name() string           { return p.name }
func (p *Product) Description() string    { return p.description }
func (p *Product) Stock() int             { return p.stock }
func (p *Product) Price() decimal.Decimal { return p.price }
func (p *Product) Active() bool           { return p.active }

// CategoryID returns the assigned category, or nil.
func (p *Product) CategoryID() *uuid.UUID {
	if p.categoryID == nil {
		return nil
	}
	id := *p.categoryID
	return &id
}

// Update replaces every mutable field. On error nothing is changed.
func (p *Product) Update(name, description string, stock int, price decimal.Decimal, active bool) error {
	if err := validateProduct(name, stock, price); err != nil {
		return err
	}
	p.name = name
	p.description = description
	p.stock = stock
	p.price = price
	p.active = active
	return nil
}

// ChangePrice sets a new price. Decreases are unrestricted; an increase may not
// exceed 1.5x the current price unless the current price is zero.
func (p *Product) ChangePrice(newPrice decimal.Decimal) error {
	if newPrice.IsNegative() {
		return NewInvariantViolation(entityProduct, "price", "must be non-negative")
	}
	if p.price.IsPositive() && newPrice.GreaterThan(p.price.Mul(maxPriceStep)) {
		return NewInvariantViolation(entityProduct, "price", "cannot increase by more than 50% at once")
	}
	p.price = newPrice
	return nil
}

// DecreaseStock removes qty units from stock.
func (p *Product) DecreaseStock(qty int) error {
	if qty <= 0 {
		return NewInvariantViolation(entityProduct, "quantity", "must be positive")
	}
	if qty > p.stock {
		return NewInvariantViolation(entityProduct, "stock", "insufficient stock")
	}
	p.stock -= qty
	return nil
}

// IncreaseStock adds qty units to stock.
func (p *Product) IncreaseStock(qty int) error {
	if qty <= 0 {
		return NewInvariantViolation(entityProduct, "quantity", "must be positive")
	}
	if qty > math.MaxInt-p.stock {
		return NewInvariantViolation(entityProduct, "quantity", "stock overflow")
	}
	p.stock += qty
	return nil
}

// ApplyDiscount lowers the price by percentage, which must be within [0, 100].
func (p *Product) ApplyDiscount(percentage decimal.Decimal) error {
	if percentage.IsNegative() || percentage.GreaterThan(hundred) {
		return NewInvariantViolation(entityProduct, "percentage", "must be between 0 and 100")
	}
	p.price = p.price.Sub(p.price.Mul(percentage).Div(hundred))
	return nil
}

// AssignCategory links the product to a category. Existence is the caller's concern.
func (p *Product) AssignCategory(categoryID uuid.UUID) {
	p.categoryID = &categoryID
}

func validateProduct(name string, stock int, price decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return NewInvariantViolation(entityProduct, "name", "cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxProductNameLength {
		return NewInvariantViolation(entityProduct, "name", "cannot exceed 200 characters")
	}
	if price.IsNegative() {
		return NewInvariantViolation(entityProduct, "price", "must be non-negative")
	}
	if stock < 0 {
		return NewInvariantViolation(entityProduct, "stock", "must be non-negative")
	}
	return nil
}
