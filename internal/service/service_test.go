package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/bistro/internal/auth"
	"github.com/mmynk/bistro/internal/cart"
	"github.com/mmynk/bistro/internal/catalog"
	"github.com/mmynk/bistro/internal/events"
	"github.com/mmynk/bistro/internal/lifecycle"
	"github.com/mmynk/bistro/internal/middleware"
	"github.com/mmynk/bistro/internal/models"
	"github.com/mmynk/bistro/internal/pricing"
	"github.com/mmynk/bistro/internal/storage/sqlite"
	"github.com/mmynk/bistro/pkg/api"
)

type testEnv struct {
	store    *sqlite.SQLiteStore
	auth     *api.AuthServiceClient
	menu     *api.MenuServiceClient
	carts    *api.CartServiceClient
	orders   *api.OrderServiceClient
	pizza    models.MenuItem
	tea      models.MenuItem
	tiramisu models.MenuItem
}

// setupTestServer wires every service against a temp SQLite database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "bistro-service-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("failed to create store: %v", err)
	}

	env := &testEnv{store: store}
	ctx := context.Background()
	env.pizza = models.MenuItem{Name: "Margherita Pizza", Description: "Tomato, mozzarella, basil", Price: decimal.RequireFromString("12.99"), Category: "main", PreparationTime: 15, Available: true}
	env.tea = models.MenuItem{Name: "Iced Tea", Description: "Freshly brewed", Price: decimal.RequireFromString("3.99"), Category: "drinks", Available: true}
	env.tiramisu = models.MenuItem{Name: "Tiramisu", Description: "Coffee-soaked ladyfingers", Price: decimal.RequireFromString("6.99"), Category: "desserts", Available: false}
	for _, item := range []*models.MenuItem{&env.pizza, &env.tea, &env.tiramisu} {
		if err := store.CreateMenuItem(ctx, item); err != nil {
			t.Fatalf("failed to seed menu: %v", err)
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := events.NewBus(logger)
	jwtManager := auth.NewJWTManager("test-secret-0123456789", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	menu := catalog.New(store, bus, logger)
	sessions := cart.NewSessions()
	engine := lifecycle.NewEngine(store, store, pricing.DefaultConfig(), bus, logger)

	interceptors := connect.WithInterceptors(middleware.NewAuthInterceptor(jwtManager, store, logger))
	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, store, logger), interceptors))
	mux.Handle(api.NewMenuServiceHandler(NewMenuService(menu, logger), interceptors))
	mux.Handle(api.NewCartServiceHandler(NewCartService(sessions, menu, pricing.DefaultConfig(), logger), interceptors))
	mux.Handle(api.NewOrderServiceHandler(NewOrderService(engine, sessions, bus, logger), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		bus.Close()
		store.Close()
		os.RemoveAll(tempDir)
	})

	env.auth = api.NewAuthServiceClient(http.DefaultClient, server.URL)
	env.menu = api.NewMenuServiceClient(http.DefaultClient, server.URL)
	env.carts = api.NewCartServiceClient(http.DefaultClient, server.URL)
	env.orders = api.NewOrderServiceClient(http.DefaultClient, server.URL)
	return env
}

// register creates an account, grants role, and returns its bearer token.
func (e *testEnv) register(t *testing.T, email string, role models.Role) string {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       email,
		Password:    "password123",
		DisplayName: email,
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if role != models.RoleCustomer {
		if err := e.store.SetUserRole(context.Background(), resp.Msg.User.ID, role); err != nil {
			t.Fatalf("SetUserRole failed: %v", err)
		}
	}
	return resp.Msg.Token
}

func withToken[T any](msg *T, token string) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if token != "" {
		req.Header().Set(api.AuthorizationHeader, "Bearer "+token)
	}
	return req
}

func expectCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected code %v, got %v (%v)", want, got, err)
	}
}

// fillCart adds two pizzas and one tea to the caller's cart.
func (e *testEnv) fillCart(t *testing.T, token string) api.Cart {
	t.Helper()
	var last api.Cart
	for _, id := range []int64{e.pizza.ID, e.pizza.ID, e.tea.ID} {
		resp, err := e.carts.AddItem(context.Background(), withToken(&api.AddItemRequest{MenuItemID: id}, token))
		if err != nil {
			t.Fatalf("AddItem failed: %v", err)
		}
		last = resp.Msg.Cart
	}
	return last
}

func (e *testEnv) placeOrder(t *testing.T, token string) api.Order {
	t.Helper()
	e.fillCart(t, token)
	resp, err := e.orders.Checkout(context.Background(), withToken(&api.CheckoutRequest{Fulfillment: "pickup"}, token))
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	return resp.Msg.Order
}
