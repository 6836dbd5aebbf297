// Package memory provides an in-process implementation of storage.Store.
// It backs the demo mode and unit tests; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/bistro/internal/models"
	"github.com/mmynk/bistro/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps every record in maps guarded by one mutex. Values are copied on
// the way in and out so callers never share memory with the store.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	menu   map[int64]models.MenuItem
	orders map[string]*models.Order
	users  map[string]models.User
}

// New returns an empty store.
func New() *Store {
	return &Store{
		menu:   make(map[int64]models.MenuItem),
		orders: make(map[string]*models.Order),
		users:  make(map[string]models.User),
	}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func (s *Store) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	item.ID = s.nextID
	s.menu[item.ID] = *item
	return nil
}

func (s *Store) GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.menu[id]
	if !ok {
		return nil, fmt.Errorf("menu item %d: %w", id, models.ErrNotFound)
	}
	return &item, nil
}

func (s *Store) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]models.MenuItem, 0, len(s.menu))
	for _, item := range s.menu {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (s *Store) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.menu[item.ID]; !ok {
		return fmt.Errorf("menu item %d: %w", item.ID, models.ErrNotFound)
	}
	s.menu[item.ID] = *item
	return nil
}

func (s *Store) DeleteMenuItem(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.menu[id]; !ok {
		return fmt.Errorf("menu item %d: %w", id, models.ErrNotFound)
	}
	delete(s.menu, id)
	return nil
}

func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
	}
	if _, exists := s.orders[order.ID]; exists {
		return fmt.Errorf("order %s already exists", order.ID)
	}
	s.orders[order.ID] = order.Clone()
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	return order.Clone(), nil
}

func (s *Store) ListOrders(ctx context.Context, filter storage.OrderFilter) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var orders []models.Order
	for _, order := range s.orders {
		if filter.Matches(order) {
			orders = append(orders, *order.Clone())
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID < orders[j].ID
	})
	return orders, nil
}

func (s *Store) UpdateItemStatus(ctx context.Context, orderID, itemID string, item models.ItemStatus, status models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s: %w", orderID, models.ErrNotFound)
	}
	line, ok := order.Item(itemID)
	if !ok {
		return fmt.Errorf("order item %s: %w", itemID, models.ErrNotFound)
	}
	line.Status = item
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) CancelOrder(ctx context.Context, orderID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s: %w", orderID, models.ErrNotFound)
	}
	order.Status = models.OrderCancelled
	order.CancelReason = reason
	order.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return fmt.Errorf("email %s already registered", user.Email)
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	return &user, nil
}

func (s *Store) SetUserRole(ctx context.Context, id string, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	user.Role = role
	user.UpdatedAt = time.Now().Unix()
	s.users[id] = user
	return nil
}
