// Package catalog manages the restaurant menu. Browsing is public; every
// write requires the manage-catalog capability.
package catalog

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/mmynk/bistro/internal/auth"
	"github.com/mmynk/bistro/internal/events"
	"github.com/mmynk/bistro/internal/locks"
	"github.com/mmynk/bistro/internal/models"
	"github.com/mmynk/bistro/internal/storage"
)

// Filter narrows List. The zero value matches every item.
type Filter struct {
	// Category matches exactly; "" and "all" match any category.
	Category string

	// Query is a case-insensitive substring of the name or description.
	Query string

	AvailableOnly bool
}

func (f Filter) matches(item *models.MenuItem) bool {
	if f.AvailableOnly && !item.Available {
		return false
	}
	if f.Category != "" && f.Category != "all" && item.Category != f.Category {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		return strings.Contains(strings.ToLower(item.Name), q) ||
			strings.Contains(strings.ToLower(item.Description), q)
	}
	return true
}

// Catalog reads and edits menu items.
type Catalog struct {
	store      storage.MenuStore
	dispatcher events.Dispatcher
	logger     *slog.Logger

	// locks serializes read-modify-write of one item.
	locks *locks.Keyed
}

// New creates a catalog over store. A nil dispatcher discards events.
func New(store storage.MenuStore, dispatcher events.Dispatcher, logger *slog.Logger) *Catalog {
	if dispatcher == nil {
		dispatcher = events.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{store: store, dispatcher: dispatcher, logger: logger, locks: locks.NewKeyed()}
}

// List returns the items matching filter, ordered by category then name.
func (c *Catalog) List(ctx context.Context, filter Filter) ([]models.MenuItem, error) {
	items, err := c.store.ListMenuItems(ctx)
	if err != nil {
		return nil, storage.Classify("list menu items", err)
	}
	out := items[:0]
	for i := range items {
		if filter.matches(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out, nil
}

// Get returns one item.
func (c *Catalog) Get(ctx context.Context, id int64) (*models.MenuItem, error) {
	item, err := c.store.GetMenuItem(ctx, id)
	if err != nil {
		return nil, storage.Classify("get menu item", err)
	}
	return item, nil
}

// Categories returns the distinct categories in use, sorted.
func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	items, err := c.store.ListMenuItems(ctx)
	if err != nil {
		return nil, storage.Classify("list menu items", err)
	}
	seen := make(map[string]bool)
	var categories []string
	for _, item := range items {
		if item.Category != "" && !seen[item.Category] {
			seen[item.Category] = true
			categories = append(categories, item.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// Create validates and stores a new item, returning it with its assigned ID.
func (c *Catalog) Create(ctx context.Context, p auth.Principal, item models.MenuItem) (*models.MenuItem, error) {
	if err := p.Require(auth.CapManageCatalog); err != nil {
		return nil, err
	}
	item.ID = 0
	item.Name = strings.TrimSpace(item.Name)
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := c.store.CreateMenuItem(ctx, &item); err != nil {
		return nil, storage.Classify("create menu item", err)
	}

	c.logger.Info("Menu item created", "item_id", item.ID, "name", item.Name, "user_id", p.UserID)
	_ = c.dispatcher.Dispatch(events.MenuItemChanged{Item: item})
	return &item, nil
}

// Update merges patch into the stored item. Only supplied fields change;
// concurrent patches to one item apply one after the other.
func (c *Catalog) Update(ctx context.Context, p auth.Principal, id int64, patch models.MenuItemPatch) (*models.MenuItem, error) {
	if err := p.Require(auth.CapManageCatalog); err != nil {
		return nil, err
	}
	unlock := c.locks.Lock(itemKey(id))
	defer unlock()

	item, err := c.store.GetMenuItem(ctx, id)
	if err != nil {
		return nil, storage.Classify("get menu item", err)
	}
	patch.Apply(item)
	item.Name = strings.TrimSpace(item.Name)
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := c.store.UpdateMenuItem(ctx, item); err != nil {
		return nil, storage.Classify("update menu item", err)
	}

	c.logger.Info("Menu item updated", "item_id", item.ID, "user_id", p.UserID)
	_ = c.dispatcher.Dispatch(events.MenuItemChanged{Item: *item})
	return item, nil
}

// SetAvailability toggles whether an item can be added to carts.
func (c *Catalog) SetAvailability(ctx context.Context, p auth.Principal, id int64, available bool) (*models.MenuItem, error) {
	return c.Update(ctx, p, id, models.MenuItemPatch{Available: &available})
}

// Delete removes an item. Orders keep their snapshots.
func (c *Catalog) Delete(ctx context.Context, p auth.Principal, id int64) error {
	if err := p.Require(auth.CapManageCatalog); err != nil {
		return err
	}
	unlock := c.locks.Lock(itemKey(id))
	defer unlock()

	item, err := c.store.GetMenuItem(ctx, id)
	if err != nil {
		return storage.Classify("get menu item", err)
	}
	if err := c.store.DeleteMenuItem(ctx, id); err != nil {
		return storage.Classify("delete menu item", err)
	}

	c.logger.Info("Menu item deleted", "item_id", id, "user_id", p.UserID)
	_ = c.dispatcher.Dispatch(events.MenuItemChanged{Item: *item, Deleted: true})
	return nil
}

func itemKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
