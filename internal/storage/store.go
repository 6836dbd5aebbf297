// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/bistro/internal/models"
)

// MenuStore persists the catalog.
type MenuStore interface {
	// CreateMenuItem persists a new item. item.ID is populated by the store.
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error

	// GetMenuItem returns models.ErrNotFound (wrapped) when the id is absent.
	GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error)

	// ListMenuItems returns every item ordered by category, then name.
	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)

	// UpdateMenuItem replaces all fields of an existing item.
	UpdateMenuItem(ctx context.Context, item *models.MenuItem) error

	// DeleteMenuItem removes an item; models.ErrNotFound when absent.
	DeleteMenuItem(ctx context.Context, id int64) error
}

// OrderFilter narrows ListOrders. Zero values match everything.
type OrderFilter struct {
	UserID   string
	Statuses []models.OrderStatus
}

// Matches reports whether o passes the filter.
func (f OrderFilter) Matches(o *models.Order) bool {
	if f.UserID != "" && o.UserID != f.UserID {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if o.Status == s {
			return true
		}
	}
	return false
}

// OrderStore persists orders. Each method is atomic per order.
type OrderStore interface {
	// CreateOrder persists an order with all of its items in one transaction.
	CreateOrder(ctx context.Context, order *models.Order) error

	// GetOrder returns the order with its items in checkout order.
	GetOrder(ctx context.Context, id string) (*models.Order, error)

	// ListOrders returns matching orders, newest first.
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error)

	// UpdateItemStatus writes an item status and the recomputed order status together.
	UpdateItemStatus(ctx context.Context, orderID, itemID string, item models.ItemStatus, order models.OrderStatus) error

	// CancelOrder marks an order cancelled with a reason.
	CancelOrder(ctx context.Context, orderID, reason string) error
}

// UserStore persists accounts and their trusted roles.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SetUserRole(ctx context.Context, id string, role models.Role) error
}

// Store defines the full storage interface.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, memory)
// without changing the service layer.
type Store interface {
	MenuStore
	OrderStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}
