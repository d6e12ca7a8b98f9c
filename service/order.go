package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"productcatalog/domain"
)

// OrderService places and manages orders.
type OrderService struct {
	orders   domain.OrderStore
	products domain.ProductStore
	tx       domain.Transactor
}

// NewOrderService returns an OrderService; tx scopes order creation.
func NewOrderService(orders domain.OrderStore, products domain.ProductStore, tx domain.Transactor) *OrderService {
	return &OrderService{orders: orders, products: products, tx: tx}
}

// Create builds the order and decrements stock for every line.
//
// All lines are validated against in-memory copies of their products before
// anything is written, and the product updates and the order insert are then
// committed in a single transaction. A failure on any line, or in storage,
// leaves neither an order nor any stock change behind.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (OrderResponse, error) {
	order, err := domain.NewOrder(req.CustomerName)
	if err != nil {
		return OrderResponse{}, err
	}

	touched := make([]*domain.Product, 0, len(req.Items))
	for _, line := range req.Items {
		p, err := loadProduct(ctx, s.products, line.ProductID)
		if err != nil {
			return OrderResponse{}, err
		}
		if err := order.AddItem(p.ID(), p.Name(), p.Price(), line.Quantity); err != nil {
			return OrderResponse{}, err
		}
		if err := p.DecreaseStock(line.Quantity); err != nil {
			return OrderResponse{}, err
		}
		touched = append(touched, p)
	}

	start := time.Now()
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		for _, p := range touched {
			if err := s.products.ReplaceProduct(ctx, p.Snapshot()); err != nil {
				return err
			}
		}
		return s.orders.InsertOrder(ctx, order.Snapshot())
	})
	if err != nil {
		slog.Error("order create failed", "order_id", order.ID(), "error", err)
		return OrderResponse{}, err
	}
	slog.Info("order created",
		"order_id", order.ID(),
		"items", len(touched),
		"total", order.Total().String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return toOrderResponse(order), nil
}

// GetByID returns the order with id or a *domain.NotFoundError.
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (OrderResponse, error) {
	snap, err := s.orders.GetOrder(ctx, id)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return OrderResponse{}, domain.NewNotFoundError("order", id)
	}
	if err != nil {
		return OrderResponse{}, err
	}
	return toOrderResponse(domain.RestoreOrder(snap)), nil
}

// GetAll returns every order, oldest first.
func (s *OrderService) GetAll(ctx context.Context) ([]OrderResponse, error) {
	snaps, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]OrderResponse, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, toOrderResponse(domain.RestoreOrder(snap)))
	}
	return out, nil
}

// Delete removes an order. Stock consumed by the order is not returned.
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	exists, err := s.orders.OrderExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewNotFoundError("order", id)
	}
	if err := s.orders.DeleteOrder(ctx, id); err != nil {
		return err
	}
	slog.Info("order deleted", "order_id", id)
	return nil
}
