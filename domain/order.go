package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const entityOrder = "order"

// OrderItem is a line of an order. It has no lifecycle outside its order and
// cannot be changed once added.
type OrderItem struct {
	id          uuid.UUID
	productID   uuid.UUID
	productName string
	unitPrice   decimal.Decimal
	quantity    int
}

func (i OrderItem) ID() uuid.UUID              { return i.id }
func (i OrderItem) ProductID() uuid.UUID       { return i.productID }
func (i OrderItem) ProductName() string        { return i.productName }
func (i OrderItem) UnitPrice() decimal.Decimal { return i.unitPrice }
func (i OrderItem) Quantity() int              { return i.quantity }

// LineTotal is unit price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.unitPrice.Mul(decimal.NewFromInt(int64(i.quantity)))
}

// Order is the aggregate root owning its items.
// Total always equals the sum of the item line totals.
type Order struct {
	id           uuid.UUID
	customerName string
	orderDate    time.Time
	total        decimal.Decimal
	items        []OrderItem
}

// OrderItemSnapshot is the persisted form of an OrderItem
type OrderItemSnapshot struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// OrderSnapshot is the persisted form of an Order and its items
type OrderSnapshot struct {
	ID           uuid.UUID           `json:"id"`
	CustomerName string              `json:"customer_name"`
	OrderDate    time.Time           `json:"order_date"`
	Items        []OrderItemSnapshot `json:"items"`
}

// NewOrder starts an empty order for the customer.
func NewOrder(customerName string) (*Order, error) {
	if strings.TrimSpace(customerName) == "" {
		return nil, NewInvariantViolation(entityOrder, "customer_name", "cannot be empty")
	}
	return &Order{
		id:           uuid.New(),
		customerName: customerName,
		orderDate:    time.Now().UTC(),
		total:        decimal.Zero,
	}, nil
}

// RestoreOrder rebuilds an order and its items from storage. The total is derived, not stored.
func RestoreOrder(s OrderSnapshot) *Order {
	o := &Order{
		id:           s.ID,
		customerName: s.CustomerName,
		orderDate:    s.OrderDate,
		items:        make([]OrderItem, 0, len(s.Items)),
	}
	for _, it := range s.Items {
		o.items = append(o.items, OrderItem{
			id:          it.ID,
			productID:   it.ProductID,
			productName: it.ProductName,
			unitPrice:   it.UnitPrice,
			quantity:    it.Quantity,
		})
	}
	o.recalculateTotal()
	return o
}

func (o *Order) Snapshot() OrderSnapshot {
	s := OrderSnapshot{
		ID:           o.id,
		CustomerName: o.customerName,
		OrderDate:    o.orderDate,
		Items:        make([]OrderItemSnapshot, 0, len(o.items)),
	}
	for _, it := range o.items {
		s.Items = append(s.Items, OrderItemSnapshot{
			ID:          it.id,
			ProductID:   it.productID,
			ProductName: it.productName,
			UnitPrice:   it.unitPrice,
			Quantity:    it.quantity,
		})
	}
	return s
}

func (o *Order) ID() uuid.UUID          { return o.id }
func (o *Order) CustomerName() string   { return o.customerName }
func (o *Order) OrderDate() time.Time   { return o.orderDate }
func (o *Order) Total() decimal.Decimal { return o.total }

// Items returns a copy of the order lines in insertion order.
func (o *Order) Items() []OrderItem {
	out := make([]OrderItem, len(o.items))
	copy(out, o.items)
	return out
}

// AddItem appends a line for productID. A product may appear only once per order.
func (o *Order) AddItem(productID uuid.UUID, productName string, unitPrice decimal.Decimal, quantity int) error {
	if quantity <= 0 {
		return NewInvariantViolation(entityOrder, "quantity", "must be positive")
	}
	if unitPrice.IsNegative() {
		return NewInvariantViolation(entityOrder, "unit_price", "must be non-negative")
	}
	if o.indexOf(productID) >= 0 {
		return NewInvariantViolation(entityOrder, "product_id", "product already in order")
	}
	o.items = append(o.items, OrderItem{
		id:          uuid.New(),
		productID:   productID,
		productName: productName,
		unitPrice:   unitPrice,
		quantity:    quantity,
	})
	o.recalculateTotal()
	return nil
}

// RemoveItem drops the line for productID.
func (o *Order) RemoveItem(productID uuid.UUID) error {
	i := o.indexOf(productID)
	if i < 0 {
		return NewInvariantViolation(entityOrder, "product_id", "product not in order")
	}
	o.items = append(o.items[:i], o.items[i+1:]...)
	o.recalculateTotal()
	return nil
}

func (o *Order) indexOf(productID uuid.UUID) int {
	for i, it := range o.items {
		if it.productID == productID {
			return i
		}
	}
	return -1
}

// recalculateTotal re-sums every line; it never adjusts incrementally.
func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, it := range o.items {
		total = total.Add(it.LineTotal())
	}
	o.total = total
}
