package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productcatalog/domain"
	"productcatalog/service"
	"productcatalog/store"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newServices(t *testing.T) (*service.Services, *store.InMemoryStore) {
	t.Helper()
	st := store.NewInMemoryStore()
	return service.New(st), st
}

func mustCreate(t *testing.T, svc *service.Services, name string, stock int, price string) service.ProductResponse {
	t.Helper()
	p, err := svc.Products.Create(context.Background(), service.CreateProductRequest{
		Name: name, Stock: stock, Price: dec(price),
	})
	require.NoError(t, err)
	return p
}

func TestCreateOrder_DecrementsStock(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	laptop := mustCreate(t, svc, "Laptop", 10, "500")

	order, err := svc.Orders.Create(ctx, service.CreateOrderRequest{
		CustomerName: "Mohamed",
		Items:        []service.OrderItemRequest{{ProductID: laptop.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(dec("1000")))

	got, err := svc.Products.GetByID(ctx, laptop.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Stock)
}

func TestChangePrice_Guard(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	p := mustCreate(t, svc, "Widget", 1, "100")

	cases := []struct {
		name    string
		price   string
		wantErr bool
	}{
		{"exactly one and a half", "150", false},
		{"just above", "150.01", true},
		{"decrease", "50", false},
		{"negative", "-1", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// each case starts from a fresh 100
			p := mustCreate(t, svc, "Widget "+tc.name, 1, "100")
			out, err := svc.Products.ChangePrice(ctx, p.ID, service.ChangePriceRequest{Price: dec(tc.price)})
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsInvariantViolation(err))
				again, _ := svc.Products.GetByID(ctx, p.ID)
				assert.True(t, again.Price.Equal(dec("100")), "price changed to %s", again.Price)
				return
			}
			require.NoError(t, err)
			assert.True(t, out.Price.Equal(dec(tc.price)))
		})
	}

	_, err := svc.Products.ChangePrice(ctx, p.ID, service.ChangePriceRequest{Price: dec("130")})
	require.NoError(t, err)
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	_, err := svc.Orders.Create(ctx, service.CreateOrderRequest{
		CustomerName: "Nobody",
		Items:        []service.OrderItemRequest{{ProductID: uuid.New(), Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))

	orders, err := svc.Orders.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrder_LaterLineFailureChangesNothing(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	a := mustCreate(t, svc, "A", 5, "10")
	b := mustCreate(t, svc, "B", 5, "10")
	c := mustCreate(t, svc, "C", 1, "10")

	_, err := svc.Orders.Create(ctx, service.CreateOrderRequest{
		CustomerName: "Greedy",
		Items: []service.OrderItemRequest{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 2},
			{ProductID: c.ID, Quantity: 3},
		},
	})
	require.Error(t, err)
	assert.True(t, domain.IsInvariantViolation(err))

	for _, p := range []service.ProductResponse{a, b, c} {
		got, err := svc.Products.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.Stock, got.Stock, "stock of %s changed", p.Name)
	}
	orders, _ := svc.Orders.GetAll(ctx)
	assert.Empty(t, orders)
}

func TestCreateOrder_DuplicateLineRejected(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	p := mustCreate(t, svc, "Dup", 10, "1")

	_, err := svc.Orders.Create(ctx, service.CreateOrderRequest{
		CustomerName: "Twice",
		Items: []service.OrderItemRequest{
			{ProductID: p.ID, Quantity: 1},
			{ProductID: p.ID, Quantity: 1},
		},
	})
	assert.True(t, domain.IsInvariantViolation(err))
	got, _ := svc.Products.GetByID(ctx, p.ID)
	assert.Equal(t, 10, got.Stock)
}

// failingOrders makes the final insert of an order fail.
type failingOrders struct {
	*store.InMemoryStore
	err error
}

func (f *failingOrders) InsertOrder(context.Context, domain.OrderSnapshot) error {
	return f.err
}

func TestCreateOrder_StoreFailureRollsBackStock(t *testing.T) {
	boom := errors.New("disk full")
	backend := &failingOrders{InMemoryStore: store.NewInMemoryStore(), err: boom}
	svc := service.New(backend)
	ctx := context.Background()
	p := mustCreate(t, svc, "Fragile", 4, "3")

	_, err := svc.Orders.Create(ctx, service.CreateOrderRequest{
		CustomerName: "Unlucky",
		Items:        []service.OrderItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, domain.IsNotFound(err))

	got, err := svc.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock)
}

func TestNotFoundPaths(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	id := uuid.New()

	checks := map[string]error{}
	_, checks["get product"] = svc.Products.GetByID(ctx, id)
	_, checks["update product"] = svc.Products.Update(ctx, id, service.UpdateProductRequest{Name: "X", Price: dec("1")})
	checks["delete product"] = svc.Products.Delete(ctx, id)
	_, checks["change price"] = svc.Products.ChangePrice(ctx, id, service.ChangePriceRequest{Price: dec("1")})
	_, checks["discount"] = svc.Products.ApplyDiscount(ctx, id, service.DiscountRequest{Percentage: dec("10")})
	_, checks["increase stock"] = svc.Products.IncreaseStock(ctx, id, service.StockRequest{Quantity: 1})
	_, checks["decrease stock"] = svc.Products.DecreaseStock(ctx, id, service.StockRequest{Quantity: 1})
	_, checks["get category"] = svc.Categories.GetByID(ctx, id)
	_, checks["update category"] = svc.Categories.Update(ctx, id, service.UpdateCategoryRequest{Name: "X"})
	checks["delete category"] = svc.Categories.Delete(ctx, id)
	_, checks["get order"] = svc.Orders.GetByID(ctx, id)
	checks["delete order"] = svc.Orders.Delete(ctx, id)

	for name, err := range checks {
		assert.True(t, domain.IsNotFound(err), "%s: expected NotFound, got %v", name, err)
	}
}

func TestAssignCategory(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	p := mustCreate(t, svc, "Phone", 1, "300")

	_, err := svc.Products.AssignCategory(ctx, p.ID, service.AssignCategoryRequest{CategoryID: uuid.New()})
	assert.True(t, domain.IsNotFound(err))

	cat, err := svc.Categories.Create(ctx, service.CreateCategoryRequest{Name: "Mobile"})
	require.NoError(t, err)
	out, err := svc.Products.AssignCategory(ctx, p.ID, service.AssignCategoryRequest{CategoryID: cat.ID})
	require.NoError(t, err)
	require.NotNil(t, out.CategoryID)
	assert.Equal(t, cat.ID, *out.CategoryID)
}

func TestGetAll_EmptyIsNotNil(t *testing.T) {
	svc, _ := newServices(t)
	out, err := svc.Products.GetAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestGetByID_Idempotent(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	p := mustCreate(t, svc, "Same", 2, "2.50")

	first, err := svc.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	second, err := svc.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Name, second.Name)
	assert.True(t, first.Price.Equal(second.Price))
	assert.Equal(t, first.Stock, second.Stock)
}

func TestImport(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	reqs := make([]service.CreateProductRequest, 0, 25)
	for i := 0; i < 24; i++ {
		reqs = append(reqs, service.CreateProductRequest{Name: "Item", Stock: i, Price: dec("1.10")})
	}
	reqs = append(reqs, service.CreateProductRequest{Name: "Bad", Stock: -1, Price: dec("1")})

	created, err := svc.Products.Import(ctx, reqs)
	require.Error(t, err)
	assert.True(t, domain.IsInvariantViolation(err))
	assert.Len(t, created, 24)

	all, _ := svc.Products.GetAll(ctx)
	assert.Len(t, all, 24)
	assert.True(t, service.TotalValue(all).Equal(dec("303.6")), "total %s", service.TotalValue(all))
}

func TestImport_ChecksRejectSingleItems(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	errTooCheap := errors.New("too cheap")
	check := func(req service.CreateProductRequest) error {
		if req.Price.LessThan(dec("1")) {
			return errTooCheap
		}
		return nil
	}

	created, err := svc.Products.Import(ctx, []service.CreateProductRequest{
		{Name: "Cheap", Stock: 1, Price: dec("0.50")},
		{Name: "Fine", Stock: 1, Price: dec("2")},
	}, check)
	require.ErrorIs(t, err, errTooCheap)
	require.Len(t, created, 1)
	assert.Equal(t, "Fine", created[0].Name)

	all, _ := svc.Products.GetAll(ctx)
	assert.Len(t, all, 1)
}

func TestImport_CanceledContext(t *testing.T) {
	svc, _ := newServices(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	created, err := svc.Products.Import(ctx, []service.CreateProductRequest{{Name: "N", Price: dec("1")}})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, created)
}

func TestDeleteOrder_KeepsStock(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	p := mustCreate(t, svc, "Kept", 5, "1")
	order, err := svc.Orders.Create(ctx, service.CreateOrderRequest{
		CustomerName: "Eve",
		Items:        []service.OrderItemRequest{{ProductID: p.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Orders.Delete(ctx, order.ID))
	got, _ := svc.Products.GetByID(ctx, p.ID)
	assert.Equal(t, 3, got.Stock)
}
