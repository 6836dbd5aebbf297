// Package events defines the domain events emitted by the catalog and the
// order lifecycle, and an in-process bus that fans them out.
package events

import (
	"time"

	"github.com/mmynk/bistro/internal/models"
)

// Event is anything published on the bus.
type Event interface {
	Type() string
}

// Dispatcher accepts events from domain code.
type Dispatcher interface {
	Dispatch(event Event) error
}

// OrderCreated is emitted after a successful checkout.
type OrderCreated struct {
	Order *models.Order
}

func (OrderCreated) Type() string { return "order.created" }

// ItemStatusChanged is emitted for every accepted item transition. Order is
// the order after the change.
type ItemStatusChanged struct {
	Order   *models.Order
	OrderID string
	ItemID  string
	From    models.ItemStatus
	To      models.ItemStatus
	At      time.Time
}

func (ItemStatusChanged) Type() string { return "order.item_status_changed" }

// OrderStatusChanged is emitted when an item transition moves the derived order status.
type OrderStatusChanged struct {
	Order *models.Order
	From  models.OrderStatus
	To    models.OrderStatus
}

func (OrderStatusChanged) Type() string { return "order.status_changed" }

// OrderCancelled is emitted when a pending order is cancelled.
type OrderCancelled struct {
	Order  *models.Order
	Reason string
}

func (OrderCancelled) Type() string { return "order.cancelled" }

// MenuItemChanged is emitted on catalog writes. Deleted reports removal.
type MenuItemChanged struct {
	Item    models.MenuItem
	Deleted bool
}

func (MenuItemChanged) Type() string { return "menu.item_changed" }

// Discard drops every event.
var Discard Dispatcher = discard{}

type discard struct{}

func (discard) Dispatch(Event) error { return nil }
