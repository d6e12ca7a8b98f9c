package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"productcatalog/domain"
)

// FileStore is a JSON file-backed Backend. It keeps the working set in an
// InMemoryStore and rewrites the whole document after every committed write.
type FileStore struct {
	mem  *InMemoryStore
	path string
}

// compile-time assertion
var _ Backend = (*FileStore)(nil)

type fileDocument struct {
	Products   []domain.ProductSnapshot  `json:"products"`
	Categories []domain.CategorySnapshot `json:"categories"`
	Orders     []domain.OrderSnapshot    `json:"orders"`
}

// NewFileStore constructs a FileStore at the given path. If the file exists it will be loaded.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{mem: NewInMemoryStore(), path: path}
	if err := s.loadFromFile(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) loadFromFile() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// no file yet; that's fine
			return nil
		}
		return err
	}
	if len(b) == 0 {
		return nil
	}
	var doc fileDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	d := s.mem.data
	for _, p := range doc.Products {
		d.products[p.ID] = p
	}
	for _, c := range doc.Categories {
		d.categories[c.ID] = c
	}
	for _, o := range doc.Orders {
		d.orders[o.ID] = o
	}
	return nil
}

// saveToFile must be called with the memory store's write access held.
func (s *FileStore) saveToFile() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	s.mem.mu.RLock()
	d := s.mem.data
	doc := fileDocument{
		Products:   make([]domain.ProductSnapshot, 0, len(d.products)),
		Categories: make([]domain.CategorySnapshot, 0, len(d.categories)),
		Orders:     make([]domain.OrderSnapshot, 0, len(d.orders)),
	}
	for _, p := range d.products {
		doc.Products = append(doc.Products, p)
	}
	for _, c := range d.categories {
		doc.Categories = append(doc.Categories, c)
	}
	for _, o := range d.orders {
		doc.Orders = append(doc.Orders, o)
	}
	s.mem.mu.RUnlock()

	// stable order for deterministic files
	sort.Slice(doc.Products, func(i, j int) bool { return doc.Products[i].ID.String() < doc.Products[j].ID.String() })
	sort.Slice(doc.Categories, func(i, j int) bool { return doc.Categories[i].ID.String() < doc.Categories[j].ID.String() })
	sort.Slice(doc.Orders, func(i, j int) bool { return doc.Orders[i].ID.String() < doc.Orders[j].ID.String() })

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

type fileTxKey struct{}

// InTx commits fn's writes to memory and then to disk once; if either fails,
// the in-memory state is rolled back.
func (s *FileStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(fileTxKey{}) == s {
		return fn(ctx)
	}
	return s.mem.InTx(ctx, func(ctx context.Context) error {
		if err := fn(context.WithValue(ctx, fileTxKey{}, s)); err != nil {
			return err
		}
		return s.saveToFile()
	})
}

// persist runs a single write, flushing to disk unless it is part of a transaction.
func (s *FileStore) persist(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.InTx(ctx, fn)
}

func (s *FileStore) GetProduct(ctx context.Context, id uuid.UUID) (domain.ProductSnapshot, error) {
	return s.mem.GetProduct(ctx, id)
}

func (s *FileStore) ListProducts(ctx context.Context) ([]domain.ProductSnapshot, error) {
	return s.mem.ListProducts(ctx)
}

func (s *FileStore) InsertProduct(ctx context.Context, p domain.ProductSnapshot) error {
	return s.persist(ctx, func(ctx context.Context) error { return s.mem.InsertProduct(ctx, p) })
}

func (s *FileStore) ReplaceProduct(ctx context.Context, p domain.ProductSnapshot) error {
	return s.persist(ctx, func(ctx context.Context) error { return s.mem.ReplaceProduct(ctx, p) })
}

func (s *FileStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.persist(ctx, func(ctx context.Context) error { return s.mem.DeleteProduct(ctx, id) })
}

func (s *FileStore) ProductExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.mem.ProductExists(ctx, id)
}

func (s *FileStore) GetCategory(ctx context.Context, id uuid.UUID) (domain.CategorySnapshot, error) {
	return s.mem.GetCategory(ctx, id)
}

func (s *FileStore) ListCategories(ctx context.Context) ([]domain.CategorySnapshot, error) {
	return s.mem.ListCategories(ctx)
}

func (s *FileStore) InsertCategory(ctx context.Context, c domain.CategorySnapshot) error {
	return s.persist(ctx, func(ctx context.Context) error { return s.mem.InsertCategory(ctx, c) })
}

func (s *FileStore) ReplaceCategory(ctx context.Context, c domain.CategorySnapshot) error {
	return s.persist(ctx, func(ctx context.Context) error { return s.mem.ReplaceCategory(ctx, c) })
}

func (s *FileStore) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.persist(ctx, func(ctx context.Context) error { return s.mem.DeleteCategory(ctx, id) })
}

func (s *FileStore) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.mem.CategoryExists(ctx, id)
}

func (s *FileStore) GetOrder(ctx context.Context, id uuid.UUID) (domain.OrderSnapshot, error) {
	return s.mem.GetOrder(ctx, id)
}

func (s *FileStore) ListOrders(ctx context.Context) ([]domain.OrderSnapshot, error) {
	return s.mem.ListOrders(ctx)
}

func (s *FileStore) InsertOrder(ctx context.Context, o domain.OrderSnapshot) error {
	return s.persist(ctx, func(ctx context.Context) error { return s.mem.InsertOrder(ctx, o) })
}

func (s *FileStore) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return s.persist(ctx, func(ctx context.Context) error { return s.mem.DeleteOrder(ctx, id) })
}

func (s *FileStore) OrderExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.mem.OrderExists(ctx, id)
}

// Close is a no-op; every write is already on disk.
func (s *FileStore) Close() error { return nil }
