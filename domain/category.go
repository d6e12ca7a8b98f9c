package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxCategoryNameLength is counted in runes.
const MaxCategoryNameLength = 100

const entityCategory = "category"

// Category groups products.
type Category struct {
	id          uuid.UUID
	name        string
	description string
}

// CategorySnapshot is the persisted form of a Category
type CategorySnapshot struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// NewCategory creates a category with a fresh id.
func NewCategory(name, description string) (*Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	return &Category{id: uuid.New(), name: name, description: description}, nil
}

// RestoreCategory rebuilds a category from storage.
func RestoreCategory(s CategorySnapshot) *Category {
	return &Category{id: s.ID, name: s.Name, description: s.Description}
}

func (c *Category) Snapshot() CategorySnapshot {
	return CategorySnapshot{ID: c.id, Name: c.name, Description: c.description}
}

func (c *Category) ID() uuid.UUID       { return c.id }
func (c *Category) Name() string        { return c.name }
func (c *Category) Description() string { return c.description }

// Update replaces name and description. On error nothing is changed.
func (c *Category) Update(name, description string) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}
	c.name = name
	c.description = description
	return nil
}

func validateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewInvariantViolation(entityCategory, "name", "cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return NewInvariantViolation(entityCategory, "name", "cannot exceed 100 characters")
	}
	return nil
}
