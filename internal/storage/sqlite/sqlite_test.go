package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/bistro/internal/models"
	"github.com/mmynk/bistro/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "bistro-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestMenuItems(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	pizza := &models.MenuItem{
		Name:            "Margherita Pizza",
		Description:     "Tomato, mozzarella, basil",
		Price:           price("12.99"),
		Category:        "main",
		PreparationTime: 15,
		Available:       true,
	}
	tea := &models.MenuItem{Name: "Iced Tea", Price: price("3.99"), Category: "drinks", Available: true}

	t.Run("CreateMenuItem assigns IDs", func(t *testing.T) {
		if err := store.CreateMenuItem(ctx, pizza); err != nil {
			t.Fatalf("CreateMenuItem failed: %v", err)
		}
		if err := store.CreateMenuItem(ctx, tea); err != nil {
			t.Fatalf("CreateMenuItem failed: %v", err)
		}
		if pizza.ID == 0 || tea.ID == 0 || pizza.ID == tea.ID {
			t.Fatalf("expected distinct non-zero IDs, got %d and %d", pizza.ID, tea.ID)
		}
	})

	t.Run("GetMenuItem round-trips fields", func(t *testing.T) {
		got, err := store.GetMenuItem(ctx, pizza.ID)
		if err != nil {
			t.Fatalf("GetMenuItem failed: %v", err)
		}
		if got.Name != pizza.Name || got.Description != pizza.Description || got.Category != "main" {
			t.Errorf("unexpected item: %+v", got)
		}
		if !got.Price.Equal(price("12.99")) {
			t.Errorf("price = %s, want 12.99", got.Price)
		}
		if got.PreparationTime != 15 || !got.Available {
			t.Errorf("prep/available = %d/%v", got.PreparationTime, got.Available)
		}
	})

	t.Run("ListMenuItems orders by category", func(t *testing.T) {
		items, err := store.ListMenuItems(ctx)
		if err != nil {
			t.Fatalf("ListMenuItems failed: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
		if items[0].Category != "drinks" || items[1].Category != "main" {
			t.Errorf("unexpected order: %s, %s", items[0].Category, items[1].Category)
		}
	})

	t.Run("UpdateMenuItem overwrites", func(t *testing.T) {
		pizza.Available = false
		pizza.Price = price("13.49")
		if err := store.UpdateMenuItem(ctx, pizza); err != nil {
			t.Fatalf("UpdateMenuItem failed: %v", err)
		}
		got, _ := store.GetMenuItem(ctx, pizza.ID)
		if got.Available || !got.Price.Equal(price("13.49")) {
			t.Errorf("update not applied: %+v", got)
		}
	})

	t.Run("missing items are ErrNotFound", func(t *testing.T) {
		if _, err := store.GetMenuItem(ctx, 9999); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("GetMenuItem error = %v, want ErrNotFound", err)
		}
		if err := store.UpdateMenuItem(ctx, &models.MenuItem{ID: 9999, Name: "x"}); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("UpdateMenuItem error = %v, want ErrNotFound", err)
		}
		if err := store.DeleteMenuItem(ctx, 9999); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("DeleteMenuItem error = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteMenuItem removes", func(t *testing.T) {
		if err := store.DeleteMenuItem(ctx, tea.ID); err != nil {
			t.Fatalf("DeleteMenuItem failed: %v", err)
		}
		if _, err := store.GetMenuItem(ctx, tea.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected deleted item to be gone, got %v", err)
		}
	})
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("cook@example.com", "Cook", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byEmail, err := store.GetUserByEmail(ctx, "cook@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID || byEmail.Role != models.RoleCustomer {
		t.Errorf("unexpected user: %+v", byEmail)
	}

	if err := store.SetUserRole(ctx, user.ID, models.RoleStaff); err != nil {
		t.Fatalf("SetUserRole failed: %v", err)
	}
	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Role != models.RoleStaff {
		t.Errorf("role = %s, want staff", byID.Role)
	}

	if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.CreateUser(ctx, models.NewUser("cook@example.com", "Dup", "hash")); err == nil {
		t.Error("expected duplicate email to fail")
	}
}

func TestOrders(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("guest@example.com", "Guest", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	table := 7
	order := &models.Order{
		UserID:      user.ID,
		CreatedAt:   time.Now().UTC().Add(-time.Minute),
		Status:      models.OrderPending,
		Fulfillment: models.FulfillmentPickup,
		Subtotal:    price("29.97"),
		Fee:         price("0"),
		Tax:         price("2.40"),
		Total:       price("32.37"),
		TableNumber: &table,
		Items: []models.OrderItem{
			{MenuItemID: 1, Name: "Margherita Pizza", Price: price("12.99"), Quantity: 2, Subtotal: price("25.98")},
			{MenuItemID: 2, Name: "Iced Tea", Price: price("3.99"), Quantity: 1, Subtotal: price("3.99")},
		},
	}

	t.Run("CreateOrder persists items in order", func(t *testing.T) {
		if err := store.CreateOrder(ctx, order); err != nil {
			t.Fatalf("CreateOrder failed: %v", err)
		}
		if order.ID == "" || order.Items[0].ID == "" {
			t.Fatal("expected generated IDs")
		}

		got, err := store.GetOrder(ctx, order.ID)
		if err != nil {
			t.Fatalf("GetOrder failed: %v", err)
		}
		if len(got.Items) != 2 || got.Items[0].Name != "Margherita Pizza" || got.Items[1].Name != "Iced Tea" {
			t.Fatalf("unexpected items: %+v", got.Items)
		}
		if !got.Total.Equal(price("32.37")) || got.Fulfillment != models.FulfillmentPickup {
			t.Errorf("unexpected totals: %+v", got)
		}
		if got.TableNumber == nil || *got.TableNumber != 7 {
			t.Errorf("table number = %v, want 7", got.TableNumber)
		}
		if got.Items[0].Status != models.ItemPending {
			t.Errorf("item status = %s, want pending", got.Items[0].Status)
		}
	})

	t.Run("UpdateItemStatus writes item and order", func(t *testing.T) {
		itemID := order.Items[0].ID
		if err := store.UpdateItemStatus(ctx, order.ID, itemID, models.ItemPreparing, models.OrderPending); err != nil {
			t.Fatalf("UpdateItemStatus failed: %v", err)
		}
		got, _ := store.GetOrder(ctx, order.ID)
		if got.Items[0].Status != models.ItemPreparing {
			t.Errorf("item status = %s, want preparing", got.Items[0].Status)
		}

		err := store.UpdateItemStatus(ctx, order.ID, "missing", models.ItemReady, models.OrderReady)
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound for missing item, got %v", err)
		}
		got, _ = store.GetOrder(ctx, order.ID)
		if got.Status != models.OrderPending {
			t.Errorf("failed update must not change order status, got %s", got.Status)
		}
	})

	t.Run("ListOrders filters by user and status", func(t *testing.T) {
		second := &models.Order{
			UserID:      user.ID,
			Status:      models.OrderPending,
			Fulfillment: models.FulfillmentDelivery,
			Items:       []models.OrderItem{{MenuItemID: 3, Name: "Tiramisu", Price: price("6.50"), Quantity: 1, Subtotal: price("6.50")}},
		}
		if err := store.CreateOrder(ctx, second); err != nil {
			t.Fatalf("CreateOrder failed: %v", err)
		}

		all, err := store.ListOrders(ctx, storage.OrderFilter{UserID: user.ID})
		if err != nil {
			t.Fatalf("ListOrders failed: %v", err)
		}
		if len(all) != 2 || all[0].ID != second.ID {
			t.Fatalf("expected newest first, got %d orders", len(all))
		}
		if len(all[1].Items) != 2 {
			t.Errorf("expected items loaded, got %d", len(all[1].Items))
		}

		if err := store.CancelOrder(ctx, second.ID, "changed my mind"); err != nil {
			t.Fatalf("CancelOrder failed: %v", err)
		}
		active, err := store.ListOrders(ctx, storage.OrderFilter{
			Statuses: []models.OrderStatus{models.OrderPending, models.OrderPreparing},
		})
		if err != nil {
			t.Fatalf("ListOrders failed: %v", err)
		}
		if len(active) != 1 || active[0].ID != order.ID {
			t.Errorf("expected only the first order active, got %d", len(active))
		}

		cancelled, _ := store.GetOrder(ctx, second.ID)
		if cancelled.Status != models.OrderCancelled || cancelled.CancelReason != "changed my mind" {
			t.Errorf("unexpected cancelled order: %+v", cancelled)
		}
	})

	t.Run("GetOrder missing", func(t *testing.T) {
		if _, err := store.GetOrder(ctx, "nope"); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
