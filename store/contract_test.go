package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"productcatalog/domain"
)

func productSnap(t *testing.T, name string, stock int, price string) domain.ProductSnapshot {
	t.Helper()
	p, err := domain.NewProduct(name, name+" description", stock, decimal.RequireFromString(price), true)
	if err != nil {
		t.Fatalf("NewProduct(%q) failed: %v", name, err)
	}
	return p.Snapshot()
}

func categorySnap(t *testing.T, name string) domain.CategorySnapshot {
	t.Helper()
	c, err := domain.NewCategory(name, "")
	if err != nil {
		t.Fatalf("NewCategory(%q) failed: %v", name, err)
	}
	return c.Snapshot()
}

func assertSameProduct(t *testing.T, want, got domain.ProductSnapshot) {
	t.Helper()
	if got.ID != want.ID || got.Name != want.Name || got.Description != want.Description ||
		got.Stock != want.Stock || got.Active != want.Active {
		t.Fatalf("product mismatch: want %+v, got %+v", want, got)
	}
	if !got.Price.Equal(want.Price) {
		t.Fatalf("price mismatch: want %s, got %s", want.Price, got.Price)
	}
	switch {
	case want.CategoryID == nil && got.CategoryID != nil:
		t.Fatalf("unexpected category %s", got.CategoryID)
	case want.CategoryID != nil && (got.CategoryID == nil || *got.CategoryID != *want.CategoryID):
		t.Fatalf("category mismatch: want %s, got %v", want.CategoryID, got.CategoryID)
	}
}

// runBackendContract exercises the behaviour every Backend must share.
func runBackendContract(t *testing.T, open func(t *testing.T) Backend) {
	ctx := context.Background()

	t.Run("product lifecycle", func(t *testing.T) {
		s := open(t)
		p := productSnap(t, "Laptop", 10, "1000.00")
		if err := s.InsertProduct(ctx, p); err != nil {
			t.Fatalf("insert failed: %v", err)
		}

		got, err := s.GetProduct(ctx, p.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		assertSameProduct(t, p, got)

		p.Stock = 4
		p.Price = decimal.RequireFromString("899.99")
		p.Active = false
		if err := s.ReplaceProduct(ctx, p); err != nil {
			t.Fatalf("replace failed: %v", err)
		}
		got, _ = s.GetProduct(ctx, p.ID)
		assertSameProduct(t, p, got)

		ok, err := s.ProductExists(ctx, p.ID)
		if err != nil || !ok {
			t.Fatalf("expected product to exist, ok=%v err=%v", ok, err)
		}
		if err := s.DeleteProduct(ctx, p.ID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if ok, _ := s.ProductExists(ctx, p.ID); ok {
			t.Fatal("expected product to be gone")
		}
	})

	t.Run("missing records", func(t *testing.T) {
		s := open(t)
		id := uuid.New()
		if _, err := s.GetProduct(ctx, id); !errors.Is(err, domain.ErrRecordNotFound) {
			t.Fatalf("get product: expected ErrRecordNotFound, got %v", err)
		}
		if err := s.ReplaceProduct(ctx, productSnap(t, "Ghost", 1, "1")); !errors.Is(err, domain.ErrRecordNotFound) {
			t.Fatalf("replace product: expected ErrRecordNotFound, got %v", err)
		}
		if err := s.DeleteProduct(ctx, id); !errors.Is(err, domain.ErrRecordNotFound) {
			t.Fatalf("delete product: expected ErrRecordNotFound, got %v", err)
		}
		if _, err := s.GetCategory(ctx, id); !errors.Is(err, domain.ErrRecordNotFound) {
			t.Fatalf("get category: expected ErrRecordNotFound, got %v", err)
		}
		if err := s.DeleteCategory(ctx, id); !errors.Is(err, domain.ErrRecordNotFound) {
			t.Fatalf("delete category: expected ErrRecordNotFound, got %v", err)
		}
		if _, err := s.GetOrder(ctx, id); !errors.Is(err, domain.ErrRecordNotFound) {
			t.Fatalf("get order: expected ErrRecordNotFound, got %v", err)
		}
		if err := s.DeleteOrder(ctx, id); !errors.Is(err, domain.ErrRecordNotFound) {
			t.Fatalf("delete order: expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("list sorted by name", func(t *testing.T) {
		s := open(t)
		for _, name := range []string{"Gamma", "Alpha", "Beta"} {
			if err := s.InsertProduct(ctx, productSnap(t, name, 1, "1")); err != nil {
				t.Fatalf("insert %s failed: %v", name, err)
			}
		}
		out, err := s.ListProducts(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(out) != 3 || out[0].Name != "Alpha" || out[1].Name != "Beta" || out[2].Name != "Gamma" {
			t.Fatalf("unexpected order: %+v", out)
		}
	})

	t.Run("equal names ordered by id", func(t *testing.T) {
		s := open(t)
		var ids []string
		for range 5 {
			p := productSnap(t, "Same", 1, "1")
			ids = append(ids, p.ID.String())
			if err := s.InsertProduct(ctx, p); err != nil {
				t.Fatalf("insert failed: %v", err)
			}
			c := categorySnap(t, "Same")
			if err := s.InsertCategory(ctx, c); err != nil {
				t.Fatalf("insert category failed: %v", err)
			}
		}
		products, err := s.ListProducts(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		for i := 1; i < len(products); i++ {
			if products[i-1].ID.String() >= products[i].ID.String() {
				t.Fatalf("products not ordered by id: %s before %s", products[i-1].ID, products[i].ID)
			}
		}
		categories, err := s.ListCategories(ctx)
		if err != nil {
			t.Fatalf("list categories failed: %v", err)
		}
		for i := 1; i < len(categories); i++ {
			if categories[i-1].ID.String() >= categories[i].ID.String() {
				t.Fatalf("categories not ordered by id: %s before %s", categories[i-1].ID, categories[i].ID)
			}
		}
	})

	t.Run("orders listed by date", func(t *testing.T) {
		s := open(t)
		base := time.Date(2024, 3, 1, 12, 0, 5, 0, time.UTC)
		dates := []time.Time{
			base.Add(120 * time.Millisecond),
			base.Add(100 * time.Millisecond),
			base.Add(2 * time.Second),
			base,
		}
		for _, d := range dates {
			o, _ := domain.NewOrder("Dana")
			snap := o.Snapshot()
			snap.OrderDate = d
			if err := s.InsertOrder(ctx, snap); err != nil {
				t.Fatalf("insert order failed: %v", err)
			}
		}
		out, err := s.ListOrders(ctx)
		if err != nil || len(out) != len(dates) {
			t.Fatalf("expected %d orders, got %d (%v)", len(dates), len(out), err)
		}
		for i := 1; i < len(out); i++ {
			if !out[i-1].OrderDate.Before(out[i].OrderDate) {
				t.Fatalf("orders out of date order: %s before %s", out[i-1].OrderDate, out[i].OrderDate)
			}
		}
	})

	t.Run("stock beyond 32 bits", func(t *testing.T) {
		s := open(t)
		p := productSnap(t, "Bolts", 5_000_000_000, "0.01")
		if err := s.InsertProduct(ctx, p); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
		got, err := s.GetProduct(ctx, p.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		assertSameProduct(t, p, got)
	})

	t.Run("empty lists", func(t *testing.T) {
		s := open(t)
		products, err := s.ListProducts(ctx)
		if err != nil || products == nil || len(products) != 0 {
			t.Fatalf("expected empty non-nil products, got %v (%v)", products, err)
		}
		categories, err := s.ListCategories(ctx)
		if err != nil || len(categories) != 0 {
			t.Fatalf("expected no categories, got %v (%v)", categories, err)
		}
		orders, err := s.ListOrders(ctx)
		if err != nil || len(orders) != 0 {
			t.Fatalf("expected no orders, got %v (%v)", orders, err)
		}
	})

	t.Run("category and assignment", func(t *testing.T) {
		s := open(t)
		c := categorySnap(t, "Electronics")
		if err := s.InsertCategory(ctx, c); err != nil {
			t.Fatalf("insert category failed: %v", err)
		}
		c.Name = "Gadgets"
		if err := s.ReplaceCategory(ctx, c); err != nil {
			t.Fatalf("replace category failed: %v", err)
		}
		got, err := s.GetCategory(ctx, c.ID)
		if err != nil || got.Name != "Gadgets" {
			t.Fatalf("unexpected category %+v (%v)", got, err)
		}

		p := productSnap(t, "Phone", 3, "500")
		p.CategoryID = &c.ID
		if err := s.InsertProduct(ctx, p); err != nil {
			t.Fatalf("insert product failed: %v", err)
		}
		gotP, _ := s.GetProduct(ctx, p.ID)
		assertSameProduct(t, p, gotP)

		if ok, _ := s.CategoryExists(ctx, c.ID); !ok {
			t.Fatal("expected category to exist")
		}
	})

	t.Run("order round trip", func(t *testing.T) {
		s := open(t)
		o, _ := domain.NewOrder("Alice")
		first, second := uuid.New(), uuid.New()
		if err := o.AddItem(first, "Laptop", decimal.RequireFromString("1000.00"), 2); err != nil {
			t.Fatal(err)
		}
		if err := o.AddItem(second, "Mouse", decimal.RequireFromString("25.50"), 4); err != nil {
			t.Fatal(err)
		}
		if err := s.InsertOrder(ctx, o.Snapshot()); err != nil {
			t.Fatalf("insert order failed: %v", err)
		}

		snap, err := s.GetOrder(ctx, o.ID())
		if err != nil {
			t.Fatalf("get order failed: %v", err)
		}
		if snap.CustomerName != "Alice" || !snap.OrderDate.Equal(o.OrderDate()) {
			t.Fatalf("unexpected order header %+v", snap)
		}
		if len(snap.Items) != 2 || snap.Items[0].ProductID != first || snap.Items[1].ProductID != second {
			t.Fatalf("items lost or reordered: %+v", snap.Items)
		}
		if total := domain.RestoreOrder(snap).Total(); !total.Equal(decimal.RequireFromString("2102")) {
			t.Fatalf("expected total 2102, got %s", total)
		}

		all, err := s.ListOrders(ctx)
		if err != nil || len(all) != 1 {
			t.Fatalf("expected one order, got %d (%v)", len(all), err)
		}
		if err := s.DeleteOrder(ctx, o.ID()); err != nil {
			t.Fatalf("delete order failed: %v", err)
		}
		if ok, _ := s.OrderExists(ctx, o.ID()); ok {
			t.Fatal("expected order to be gone")
		}
	})

	t.Run("transaction commits", func(t *testing.T) {
		s := open(t)
		p := productSnap(t, "Desk", 5, "150")
		err := s.InTx(ctx, func(ctx context.Context) error {
			if err := s.InsertProduct(ctx, p); err != nil {
				return err
			}
			p.Stock = 2
			return s.ReplaceProduct(ctx, p)
		})
		if err != nil {
			t.Fatalf("tx failed: %v", err)
		}
		got, err := s.GetProduct(ctx, p.ID)
		if err != nil || got.Stock != 2 {
			t.Fatalf("expected committed stock 2, got %+v (%v)", got, err)
		}
	})

	t.Run("transaction rolls back", func(t *testing.T) {
		s := open(t)
		kept := productSnap(t, "Chair", 5, "80")
		if err := s.InsertProduct(ctx, kept); err != nil {
			t.Fatal(err)
		}
		boom := errors.New("boom")
		discarded := productSnap(t, "Lamp", 1, "20")
		err := s.InTx(ctx, func(ctx context.Context) error {
			changed := kept
			changed.Stock = 0
			if err := s.ReplaceProduct(ctx, changed); err != nil {
				return err
			}
			if err := s.InsertProduct(ctx, discarded); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		got, _ := s.GetProduct(ctx, kept.ID)
		if got.Stock != 5 {
			t.Fatalf("expected stock restored to 5, got %d", got.Stock)
		}
		if ok, _ := s.ProductExists(ctx, discarded.ID); ok {
			t.Fatal("expected rolled back insert to be absent")
		}
	})

	t.Run("nested transaction joins outer", func(t *testing.T) {
		s := open(t)
		p := productSnap(t, "Shelf", 1, "40")
		boom := errors.New("outer failed")
		err := s.InTx(ctx, func(ctx context.Context) error {
			if err := s.InTx(ctx, func(ctx context.Context) error {
				return s.InsertProduct(ctx, p)
			}); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected outer error, got %v", err)
		}
		if ok, _ := s.ProductExists(ctx, p.ID); ok {
			t.Fatal("inner write should roll back with the outer transaction")
		}
	})
}
