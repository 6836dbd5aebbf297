package service

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/bistro/internal/models"
	"github.com/mmynk/bistro/pkg/api"
)

func TestCheckout(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	token := env.register(t, "guest@example.com", models.RoleCustomer)

	_, err := env.orders.Checkout(ctx, withToken(&api.CheckoutRequest{}, token))
	expectCode(t, err, connect.CodeFailedPrecondition)

	table := 12
	env.fillCart(t, token)
	resp, err := env.orders.Checkout(ctx, withToken(&api.CheckoutRequest{
		Fulfillment:         "pickup",
		TableNumber:         &table,
		SpecialInstructions: "  no basil  ",
	}, token))
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	order := resp.Msg.Order
	if order.Status != "pending" || len(order.Items) != 2 {
		t.Fatalf("unexpected order: %+v", order)
	}
	if order.Subtotal != "29.97" || order.Tax != "2.40" || order.Total != "32.37" {
		t.Errorf("totals = %s/%s/%s", order.Subtotal, order.Tax, order.Total)
	}
	if order.TableNumber == nil || *order.TableNumber != 12 || order.SpecialInstructions != "no basil" {
		t.Errorf("unexpected details: table=%v instructions=%q", order.TableNumber, order.SpecialInstructions)
	}
	for _, item := range order.Items {
		if item.Status != "pending" || item.ID == "" {
			t.Errorf("unexpected item: %+v", item)
		}
	}

	cart, err := env.carts.GetCart(ctx, withToken(&api.GetCartRequest{}, token))
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if cart.Msg.Cart.Count != 0 {
		t.Errorf("cart should be empty after checkout, count = %d", cart.Msg.Cart.Count)
	}

	got, err := env.orders.GetOrder(ctx, withToken(&api.GetOrderRequest{ID: order.ID}, token))
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if got.Msg.Order.Total != "32.37" || got.Msg.Order.Items[0].Name != "Margherita Pizza" {
		t.Errorf("stored order differs: %+v", got.Msg.Order)
	}
}

func TestCheckoutRejections(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	token := env.register(t, "guest@example.com", models.RoleCustomer)
	env.fillCart(t, token)

	table := 0
	_, err := env.orders.Checkout(ctx, withToken(&api.CheckoutRequest{TableNumber: &table}, token))
	expectCode(t, err, connect.CodeInvalidArgument)

	_, err = env.orders.Checkout(ctx, withToken(&api.CheckoutRequest{Fulfillment: "drone"}, token))
	expectCode(t, err, connect.CodeInvalidArgument)

	// An item withdrawn after it was carted blocks checkout and keeps the cart.
	admin := env.register(t, "owner@example.com", models.RoleAdmin)
	if _, err := env.menu.SetAvailability(ctx, withToken(&api.SetAvailabilityRequest{ID: env.tea.ID, Available: false}, admin)); err != nil {
		t.Fatalf("SetAvailability failed: %v", err)
	}
	_, err = env.orders.Checkout(ctx, withToken(&api.CheckoutRequest{}, token))
	expectCode(t, err, connect.CodeFailedPrecondition)

	cart, err := env.carts.GetCart(ctx, withToken(&api.GetCartRequest{}, token))
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if cart.Msg.Cart.Count != 3 {
		t.Errorf("failed checkout must keep the cart, count = %d", cart.Msg.Cart.Count)
	}
}

func TestKitchenFlow(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	customer := env.register(t, "guest@example.com", models.RoleCustomer)
	other := env.register(t, "other@example.com", models.RoleCustomer)
	staff := env.register(t, "cook@example.com", models.RoleStaff)

	order := env.placeOrder(t, customer)
	pizza, tea := order.Items[0].ID, order.Items[1].ID

	advance := func(itemID string) api.Order {
		t.Helper()
		resp, err := env.orders.AdvanceItem(ctx, withToken(&api.AdvanceItemRequest{OrderID: order.ID, ItemID: itemID}, staff))
		if err != nil {
			t.Fatalf("AdvanceItem failed: %v", err)
		}
		return resp.Msg.Order
	}

	t.Run("customers cannot advance items", func(t *testing.T) {
		_, err := env.orders.AdvanceItem(ctx, withToken(&api.AdvanceItemRequest{OrderID: order.ID, ItemID: pizza}, customer))
		expectCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("visibility", func(t *testing.T) {
		_, err := env.orders.GetOrder(ctx, withToken(&api.GetOrderRequest{ID: order.ID}, other))
		expectCode(t, err, connect.CodeNotFound)

		mine, err := env.orders.ListOrders(ctx, withToken(&api.ListOrdersRequest{}, other))
		if err != nil {
			t.Fatalf("ListOrders failed: %v", err)
		}
		if len(mine.Msg.Orders) != 0 {
			t.Errorf("other customer sees %d orders", len(mine.Msg.Orders))
		}

		board, err := env.orders.ListOrders(ctx, withToken(&api.ListOrdersRequest{ActiveOnly: true}, staff))
		if err != nil {
			t.Fatalf("ListOrders failed: %v", err)
		}
		if len(board.Msg.Orders) != 1 || board.Msg.Orders[0].ID != order.ID {
			t.Errorf("kitchen board = %+v", board.Msg.Orders)
		}

		_, err = env.orders.ListOrders(ctx, withToken(&api.ListOrdersRequest{Statuses: []string{"burnt"}}, staff))
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("order status follows item precedence", func(t *testing.T) {
		if got := advance(pizza); got.Status != "pending" {
			t.Errorf("status = %s, want pending while tea is pending", got.Status)
		}
		advance(pizza)
		if got := advance(pizza); got.Status != "pending" || got.Items[0].Status != "delivered" {
			t.Errorf("status = %s, pizza = %s", got.Status, got.Items[0].Status)
		}
		if got := advance(tea); got.Status != "preparing" {
			t.Errorf("status = %s, want preparing", got.Status)
		}
		if got := advance(tea); got.Status != "ready" {
			t.Errorf("status = %s, want ready", got.Status)
		}
		if got := advance(tea); got.Status != "delivered" {
			t.Errorf("status = %s, want delivered", got.Status)
		}
	})

	t.Run("delivered items cannot advance", func(t *testing.T) {
		_, err := env.orders.AdvanceItem(ctx, withToken(&api.AdvanceItemRequest{OrderID: order.ID, ItemID: pizza}, staff))
		expectCode(t, err, connect.CodeFailedPrecondition)

		_, err = env.orders.AdvanceItem(ctx, withToken(&api.AdvanceItemRequest{OrderID: order.ID, ItemID: "missing"}, staff))
		expectCode(t, err, connect.CodeNotFound)
	})

	t.Run("active filter drops delivered orders", func(t *testing.T) {
		board, err := env.orders.ListOrders(ctx, withToken(&api.ListOrdersRequest{ActiveOnly: true}, staff))
		if err != nil {
			t.Fatalf("ListOrders failed: %v", err)
		}
		if len(board.Msg.Orders) != 0 {
			t.Errorf("expected empty board, got %d orders", len(board.Msg.Orders))
		}
	})
}

func TestCancelOrder(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	customer := env.register(t, "guest@example.com", models.RoleCustomer)
	other := env.register(t, "other@example.com", models.RoleCustomer)
	staff := env.register(t, "cook@example.com", models.RoleStaff)

	order := env.placeOrder(t, customer)

	_, err := env.orders.CancelOrder(ctx, withToken(&api.CancelOrderRequest{OrderID: order.ID}, other))
	expectCode(t, err, connect.CodeNotFound)

	_, err = env.orders.CancelOrder(ctx, connect.NewRequest(&api.CancelOrderRequest{OrderID: order.ID}))
	expectCode(t, err, connect.CodeUnauthenticated)

	resp, err := env.orders.CancelOrder(ctx, withToken(&api.CancelOrderRequest{OrderID: order.ID, Reason: "changed my mind"}, customer))
	if err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}
	if resp.Msg.Order.Status != "cancelled" || resp.Msg.Order.CancelReason != "changed my mind" {
		t.Errorf("unexpected order: %+v", resp.Msg.Order)
	}

	_, err = env.orders.AdvanceItem(ctx, withToken(&api.AdvanceItemRequest{OrderID: order.ID, ItemID: order.Items[0].ID}, staff))
	expectCode(t, err, connect.CodeFailedPrecondition)

	// Once the kitchen starts an order it can no longer be cancelled.
	started := env.placeOrder(t, customer)
	if _, err := env.orders.AdvanceItem(ctx, withToken(&api.AdvanceItemRequest{OrderID: started.ID, ItemID: started.Items[0].ID}, staff)); err != nil {
		t.Fatalf("AdvanceItem failed: %v", err)
	}
	if _, err := env.orders.AdvanceItem(ctx, withToken(&api.AdvanceItemRequest{OrderID: started.ID, ItemID: started.Items[1].ID}, staff)); err != nil {
		t.Fatalf("AdvanceItem failed: %v", err)
	}
	_, err = env.orders.CancelOrder(ctx, withToken(&api.CancelOrderRequest{OrderID: started.ID}, staff))
	expectCode(t, err, connect.CodeFailedPrecondition)
}

func TestWatchOrders(t *testing.T) {
	env := setupTestServer(t)
	customer := env.register(t, "guest@example.com", models.RoleCustomer)
	other := env.register(t, "other@example.com", models.RoleCustomer)
	staff := env.register(t, "cook@example.com", models.RoleStaff)

	order := env.placeOrder(t, customer)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream, err := env.orders.WatchOrders(ctx, withToken(&api.WatchOrdersRequest{ActiveOnly: true}, staff))
	if err != nil {
		t.Fatalf("WatchOrders failed: %v", err)
	}
	defer stream.Close()

	next := func() api.OrderUpdate {
		t.Helper()
		if !stream.Receive() {
			t.Fatalf("stream ended: %v", stream.Err())
		}
		return *stream.Msg()
	}

	if u := next(); u.Type != "snapshot" || u.Order.ID != order.ID {
		t.Fatalf("expected snapshot of %s, got %s %s", order.ID, u.Type, u.Order.ID)
	}

	// Orders from other customers reach the kitchen too.
	placed := env.placeOrder(t, other)
	if u := next(); u.Type != "order.created" || u.Order.ID != placed.ID {
		t.Fatalf("expected order.created for %s, got %s %s", placed.ID, u.Type, u.Order.ID)
	}

	if _, err := env.orders.AdvanceItem(ctx, withToken(&api.AdvanceItemRequest{OrderID: order.ID, ItemID: order.Items[0].ID}, staff)); err != nil {
		t.Fatalf("AdvanceItem failed: %v", err)
	}
	u := next()
	if u.Type != "order.item_status_changed" || u.Order.ID != order.ID || u.Order.Items[0].Status != "preparing" {
		t.Fatalf("unexpected update: %+v", u)
	}
}

func TestWatchOrdersRequiresLogin(t *testing.T) {
	env := setupTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := env.orders.WatchOrders(ctx, connect.NewRequest(&api.WatchOrdersRequest{}))
	if err != nil {
		expectCode(t, err, connect.CodeUnauthenticated)
		return
	}
	defer stream.Close()
	if stream.Receive() {
		t.Fatal("expected no messages for an anonymous watcher")
	}
	expectCode(t, stream.Err(), connect.CodeUnauthenticated)
}
