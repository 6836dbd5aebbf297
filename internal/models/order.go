package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ItemStatus is the fulfillment status of one OrderItem.
type ItemStatus int

const (
	ItemPending ItemStatus = iota
	ItemPreparing
	ItemReady
	ItemDelivered
)

var itemStatusNames = map[ItemStatus]string{
	ItemPending:   "pending",
	ItemPreparing: "preparing",
	ItemReady:     "ready",
	ItemDelivered: "delivered",
}

func (s ItemStatus) String() string {
	if name, ok := itemStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ItemStatus(%d)", int(s))
}

// Next returns the successor of s. Delivered has none.
func (s ItemStatus) Next() (ItemStatus, bool) {
	switch s {
	case ItemPending:
		return ItemPreparing, true
	case ItemPreparing:
		return ItemReady, true
	case ItemReady:
		return ItemDelivered, true
	case ItemDelivered:
		return ItemDelivered, false
	}
	return s, false
}

// ParseItemStatus converts a lowercase status name.
func ParseItemStatus(s string) (ItemStatus, error) {
	for status, name := range itemStatusNames {
		if name == s {
			return status, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown item status %q", ErrInvalidArgument, s)
}

func (s ItemStatus) MarshalText() ([]byte, error) {
	if _, ok := itemStatusNames[s]; !ok {
		return nil, fmt.Errorf("invalid item status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *ItemStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseItemStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value stores the status by name.
func (s ItemStatus) Value() (driver.Value, error) {
	return s.String(), nil
}

// Scan reads a status stored by name.
func (s *ItemStatus) Scan(src any) error {
	text, err := textValue(src)
	if err != nil {
		return err
	}
	return s.UnmarshalText(text)
}

// OrderStatus is the aggregate status of an Order.
type OrderStatus int

const (
	OrderPending OrderStatus = iota
	OrderPreparing
	OrderReady
	OrderDelivered
	OrderCancelled
)

var orderStatusNames = map[OrderStatus]string{
	OrderPending:   "pending",
	OrderPreparing: "preparing",
	OrderReady:     "ready",
	OrderDelivered: "delivered",
	OrderCancelled: "cancelled",
}

func (s OrderStatus) String() string {
	if name, ok := orderStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("OrderStatus(%d)", int(s))
}

// ParseOrderStatus converts a lowercase status name.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for status, name := range orderStatusNames {
		if name == s {
			return status, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown order status %q", ErrInvalidArgument, s)
}

func (s OrderStatus) MarshalText() ([]byte, error) {
	if _, ok := orderStatusNames[s]; !ok {
		return nil, fmt.Errorf("invalid order status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *OrderStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseOrderStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value stores the status by name.
func (s OrderStatus) Value() (driver.Value, error) {
	return s.String(), nil
}

// Scan reads a status stored by name.
func (s *OrderStatus) Scan(src any) error {
	text, err := textValue(src)
	if err != nil {
		return err
	}
	return s.UnmarshalText(text)
}

func textValue(src any) ([]byte, error) {
	switch v := src.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	}
	return nil, fmt.Errorf("unsupported status column type %T", src)
}

// itemPrecedence lists item statuses in the order they win the aggregate status.
var itemPrecedence = []struct {
	item  ItemStatus
	order OrderStatus
}{
	{ItemPending, OrderPending},
	{ItemPreparing, OrderPreparing},
	{ItemReady, OrderReady},
}

// DeriveOrderStatus computes the aggregate status from the item statuses:
// pending if any item is pending, else preparing if any is preparing, else
// ready if any is ready, else delivered. An empty set derives pending.
func DeriveOrderStatus(items []OrderItem) OrderStatus {
	if len(items) == 0 {
		return OrderPending
	}
	for _, p := range itemPrecedence {
		for _, item := range items {
			if item.Status == p.item {
				return p.order
			}
		}
	}
	return OrderDelivered
}

// Fulfillment is how a customer receives the order.
type Fulfillment string

const (
	FulfillmentDelivery Fulfillment = "delivery"
	FulfillmentPickup   Fulfillment = "pickup"
)

// ParseFulfillment validates a fulfillment option. Empty means delivery.
func ParseFulfillment(s string) (Fulfillment, error) {
	switch f := Fulfillment(s); f {
	case "":
		return FulfillmentDelivery, nil
	case FulfillmentDelivery, FulfillmentPickup:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown fulfillment %q", ErrInvalidArgument, s)
}

// Order is the record of one checkout.
type Order struct {
	// ID is the unique identifier for the order (UUID format).
	ID string

	// UserID is the account that placed the order.
	UserID string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Status is derived from Items, except for OrderCancelled.
	Status OrderStatus

	Fulfillment Fulfillment

	// Subtotal is the sum of item subtotals; Total adds Fee and Tax.
	Subtotal decimal.Decimal
	Fee      decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal

	// TableNumber is set for orders placed at a table.
	TableNumber *int

	SpecialInstructions string

	// CancelReason is set when Status is OrderCancelled.
	CancelReason string

	Items []OrderItem
}

// Item returns the item with the given ID.
func (o *Order) Item(id string) (*OrderItem, bool) {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy so callers can stage changes without touching o.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = append([]OrderItem(nil), o.Items...)
	if o.TableNumber != nil {
		n := *o.TableNumber
		c.TableNumber = &n
	}
	return &c
}

// OrderItem is one line of an Order. Name and Price are snapshots taken at
// checkout and do not follow later catalog edits.
type OrderItem struct {
	ID         string
	MenuItemID int64
	Name       string
	Price      decimal.Decimal
	Quantity   int
	Subtotal   decimal.Decimal
	Status     ItemStatus
}
