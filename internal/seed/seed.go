// Package seed loads the storefront's demo menu into an empty catalog.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/bistro/internal/models"
	"github.com/mmynk/bistro/internal/storage"
)

func item(name, description, price, category string, prep int) models.MenuItem {
	return models.MenuItem{
		Name:            name,
		Description:     description,
		Price:           decimal.RequireFromString(price),
		Category:        category,
		PreparationTime: prep,
		Available:       true,
	}
}

// DemoMenu returns a fresh copy of the demo menu.
func DemoMenu() []models.MenuItem {
	return []models.MenuItem{
		item("Margherita Pizza", "Classic pizza with tomato sauce, mozzarella, and fresh basil", "12.99", "main", 20),
		item("Caesar Salad", "Fresh romaine lettuce with Caesar dressing, croutons, and parmesan", "8.99", "appetizers", 10),
		item("Chocolate Lava Cake", "Warm chocolate cake with a molten center, served with ice cream", "8.99", "desserts", 15),
		item("Pasta Carbonara", "Creamy pasta with pancetta, egg, and parmesan cheese", "14.99", "main", 25),
		item("Garlic Bread", "Toasted bread with garlic butter and herbs", "5.99", "appetizers", 8),
		item("Tiramisu", "Classic Italian dessert with coffee-soaked ladyfingers and mascarpone", "7.99", "desserts", 0),
		item("Iced Tea", "Refreshing iced tea with lemon", "3.99", "drinks", 5),
		item("Grilled Salmon", "Fresh salmon fillet grilled to perfection with lemon and herbs", "18.99", "main", 20),
		item("Mozzarella Sticks", "Breaded and fried mozzarella sticks with marinara sauce", "7.99", "appetizers", 12),
		item("Cheesecake", "Creamy New York style cheesecake with berry compote", "8.99", "desserts", 0),
		item("Lemonade", "Freshly squeezed lemonade with mint", "4.99", "drinks", 5),
		item("Beef Burger", "Juicy beef patty with cheese, lettuce, tomato, and special sauce", "13.99", "main", 15),
	}
}

// Menu inserts the demo menu when the catalog is empty and returns how many
// items were added. A catalog with any item is left alone.
func Menu(ctx context.Context, store storage.MenuStore, logger *slog.Logger) (int, error) {
	existing, err := store.ListMenuItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list menu items: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("Catalog already populated, skipping seed", "items", len(existing))
		return 0, nil
	}

	items := DemoMenu()
	for i := range items {
		if err := store.CreateMenuItem(ctx, &items[i]); err != nil {
			return i, fmt.Errorf("failed to seed %s: %w", items[i].Name, err)
		}
	}
	logger.Info("Seeded demo menu", "items", len(items))
	return len(items), nil
}
