// Package store provides storage implementations for the catalog.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"productcatalog/domain"
)

// InMemoryStore is a thread-safe in-memory Backend. It keeps snapshots, never
// entity pointers, so callers cannot mutate stored state behind its back.
type InMemoryStore struct {
	// txMu serialises writers: a transaction holds it for its whole duration.
	txMu sync.Mutex
	mu   sync.RWMutex
	data dataset
}

type dataset struct {
	products   map[uuid.UUID]domain.ProductSnapshot
	categories map[uuid.UUID]domain.CategorySnapshot
	orders     map[uuid.UUID]domain.OrderSnapshot
}

func newDataset() dataset {
	return dataset{
		products:   make(map[uuid.UUID]domain.ProductSnapshot),
		categories: make(map[uuid.UUID]domain.CategorySnapshot),
		orders:     make(map[uuid.UUID]domain.OrderSnapshot),
	}
}

func (d dataset) clone() dataset {
	c := newDataset()
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.categories {
		c.categories[k] = v
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	return c
}

// NewInMemoryStore constructs a new InMemoryStore
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: newDataset()}
}

// compile-time assertion that InMemoryStore implements Backend
var _ Backend = (*InMemoryStore)(nil)

type memTxKey struct{}

// InTx runs fn with exclusive write access and restores the previous state if fn fails.
func (s *InMemoryStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ctx.Value(memTxKey{}) == s {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	saved := s.data.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, memTxKey{}, s)); err != nil {
		s.mu.Lock()
		s.data = saved
		s.mu.Unlock()
		return err
	}
	return nil
}

// write applies fn under the write lock, joining the caller's transaction if any.
func (s *InMemoryStore) write(ctx context.Context, fn func(d dataset) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if ctx.Value(memTxKey{}) != s {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *InMemoryStore) read(ctx context.Context, fn func(d dataset) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

func (s *InMemoryStore) GetProduct(ctx context.Context, id uuid.UUID) (domain.ProductSnapshot, error) {
	var out domain.ProductSnapshot
	err := s.read(ctx, func(d dataset) error {
		p, ok := d.products[id]
		if !ok {
			return domain.ErrRecordNotFound
		}
		out = p
		return nil
	})
	return out, err
}

func (s *InMemoryStore) ListProducts(ctx context.Context) ([]domain.ProductSnapshot, error) {
	var out []domain.ProductSnapshot
	err := s.read(ctx, func(d dataset) error {
		out = make([]domain.ProductSnapshot, 0, len(d.products))
		for _, p := range d.products {
			out = append(out, p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, err
}

func (s *InMemoryStore) InsertProduct(ctx context.Context, p domain.ProductSnapshot) error {
	return s.write(ctx, func(d dataset) error {
		if _, exists := d.products[p.ID]; exists {
			return fmt.Errorf("insert product %s: %w", p.ID, ErrDuplicate)
		}
		d.products[p.ID] = p
		return nil
	})
}

func (s *InMemoryStore) ReplaceProduct(ctx context.Context, p domain.ProductSnapshot) error {
	return s.write(ctx, func(d dataset) error {
		if _, ok := d.products[p.ID]; !ok {
			return domain.ErrRecordNotFound
		}
		d.products[p.ID] = p
		return nil
	})
}

func (s *InMemoryStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.write(ctx, func(d dataset) error {
		if _, ok := d.products[id]; !ok {
			return domain.ErrRecordNotFound
		}
		delete(d.products, id)
		return nil
	})
}

func (s *InMemoryStore) ProductExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := s.read(ctx, func(d dataset) error {
		_, ok = d.products[id]
		return nil
	})
	return ok, err
}

func (s *InMemoryStore) GetCategory(ctx context.Context, id uuid.UUID) (domain.CategorySnapshot, error) {
	var out domain.CategorySnapshot
	err := s.read(ctx, func(d dataset) error {
		c, ok := d.categories[id]
		if !ok {
			return domain.ErrRecordNotFound
		}
		out = c
		return nil
	})
	return out, err
}

func (s *InMemoryStore) ListCategories(ctx context.Context) ([]domain.CategorySnapshot, error) {
	var out []domain.CategorySnapshot
	err := s.read(ctx, func(d dataset) error {
		out = make([]domain.CategorySnapshot, 0, len(d.categories))
		for _, c := range d.categories {
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, err
}

func (s *InMemoryStore) InsertCategory(ctx context.Context, c domain.CategorySnapshot) error {
	return s.write(ctx, func(d dataset) error {
		if _, exists := d.categories[c.ID]; exists {
			return fmt.Errorf("insert category %s: %w", c.ID, ErrDuplicate)
		}
		d.categories[c.ID] = c
		return nil
	})
}

func (s *InMemoryStore) ReplaceCategory(ctx context.Context, c domain.CategorySnapshot) error {
	return s.write(ctx, func(d dataset) error {
		if _, ok := d.categories[c.ID]; !ok {
			return domain.ErrRecordNotFound
		}
		d.categories[c.ID] = c
		return nil
	})
}

func (s *InMemoryStore) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.write(ctx, func(d dataset) error {
		if _, ok := d.categories[id]; !ok {
			return domain.ErrRecordNotFound
		}
		delete(d.categories, id)
		return nil
	})
}

func (s *InMemoryStore) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := s.read(ctx, func(d dataset) error {
		_, ok = d.categories[id]
		return nil
	})
	return ok, err
}

func (s *InMemoryStore) GetOrder(ctx context.Context, id uuid.UUID) (domain.OrderSnapshot, error) {
	var out domain.OrderSnapshot
	err := s.read(ctx, func(d dataset) error {
		o, ok := d.orders[id]
		if !ok {
			return domain.ErrRecordNotFound
		}
		out = copyOrder(o)
		return nil
	})
	return out, err
}

func (s *InMemoryStore) ListOrders(ctx context.Context) ([]domain.OrderSnapshot, error) {
	var out []domain.OrderSnapshot
	err := s.read(ctx, func(d dataset) error {
		out = make([]domain.OrderSnapshot, 0, len(d.orders))
		for _, o := range d.orders {
			out = append(out, copyOrder(o))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.Before(out[j].OrderDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, err
}

func (s *InMemoryStore) InsertOrder(ctx context.Context, o domain.OrderSnapshot) error {
	return s.write(ctx, func(d dataset) error {
		if _, exists := d.orders[o.ID]; exists {
			return fmt.Errorf("insert order %s: %w", o.ID, ErrDuplicate)
		}
		d.orders[o.ID] = copyOrder(o)
		return nil
	})
}

func (s *InMemoryStore) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return s.write(ctx, func(d dataset) error {
		if _, ok := d.orders[id]; !ok {
			return domain.ErrRecordNotFound
		}
		delete(d.orders, id)
		return nil
	})
}

func (s *InMemoryStore) OrderExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := s.read(ctx, func(d dataset) error {
		_, ok = d.orders[id]
		return nil
	})
	return ok, err
}

// Close is a no-op.
func (s *InMemoryStore) Close() error { return nil }

// copyOrder detaches the items slice.
func copyOrder(o domain.OrderSnapshot) domain.OrderSnapshot {
	items := make([]domain.OrderItemSnapshot, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}
