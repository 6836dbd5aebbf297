// Package lifecycle turns carts into orders and moves order items through
// the kitchen: pending, preparing, ready, delivered.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/bistro/internal/auth"
	"github.com/mmynk/bistro/internal/cart"
	"github.com/mmynk/bistro/internal/events"
	"github.com/mmynk/bistro/internal/locks"
	"github.com/mmynk/bistro/internal/models"
	"github.com/mmynk/bistro/internal/pricing"
	"github.com/mmynk/bistro/internal/storage"
)

const maxInstructionsLength = 500

// CheckoutRequest carries the customer's choices at checkout.
type CheckoutRequest struct {
	Fulfillment         models.Fulfillment
	TableNumber         *int
	SpecialInstructions string
}

func (r *CheckoutRequest) normalize() error {
	f, err := models.ParseFulfillment(string(r.Fulfillment))
	if err != nil {
		return err
	}
	r.Fulfillment = f
	if r.TableNumber != nil && *r.TableNumber <= 0 {
		return fmt.Errorf("%w: table number must be positive", models.ErrInvalidArgument)
	}
	r.SpecialInstructions = strings.TrimSpace(r.SpecialInstructions)
	if utf8.RuneCountInString(r.SpecialInstructions) > maxInstructionsLength {
		return fmt.Errorf("%w: special instructions exceed %d characters", models.ErrInvalidArgument, maxInstructionsLength)
	}
	return nil
}

// ListFilter narrows List. Customers are always limited to their own orders.
type ListFilter struct {
	Statuses []models.OrderStatus
}

// ActiveStatuses are the statuses shown on the kitchen board.
var ActiveStatuses = []models.OrderStatus{models.OrderPending, models.OrderPreparing, models.OrderReady}

// Engine owns every order state change.
type Engine struct {
	orders     storage.OrderStore
	menu       storage.MenuStore
	pricing    pricing.Config
	dispatcher events.Dispatcher
	logger     *slog.Logger
	locks      *locks.Keyed
	now        func() time.Time
}

// NewEngine wires the engine to its stores. A nil dispatcher discards events.
func NewEngine(orders storage.OrderStore, menu storage.MenuStore, cfg pricing.Config, dispatcher events.Dispatcher, logger *slog.Logger) *Engine {
	if dispatcher == nil {
		dispatcher = events.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		orders:     orders,
		menu:       menu,
		pricing:    cfg,
		dispatcher: dispatcher,
		logger:     logger,
		locks:      locks.NewKeyed(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Checkout converts c into a pending order owned by p. Names and prices are
// snapshotted from the current catalog, not from the cart. The cart is
// cleared only after the order is stored; on any error it is left intact.
func (e *Engine) Checkout(ctx context.Context, p auth.Principal, c *cart.Cart, req CheckoutRequest) (*models.Order, error) {
	if err := p.Require(auth.CapOrder); err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, models.ErrEmptyCart
	}
	if err := req.normalize(); err != nil {
		return nil, err
	}

	lines := c.Lines()
	items := make([]models.OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, line := range lines {
		menuItem, err := e.menu.GetMenuItem(ctx, line.ItemID)
		if err != nil {
			return nil, storage.Classify("load menu item", err)
		}
		if !menuItem.Available {
			return nil, fmt.Errorf("%w: %s", models.ErrItemUnavailable, menuItem.Name)
		}
		item := models.OrderItem{
			ID:         uuid.New().String(),
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Price:      menuItem.Price,
			Quantity:   line.Quantity,
			Subtotal:   pricing.LineSubtotal(menuItem.Price, line.Quantity),
			Status:     models.ItemPending,
		}
		subtotal = subtotal.Add(item.Subtotal)
		items = append(items, item)
	}

	quote, err := pricing.Quote(e.pricing, subtotal, req.Fulfillment)
	if err != nil {
		return nil, err
	}

	now := e.now()
	order := &models.Order{
		ID:                  uuid.New().String(),
		UserID:              p.UserID,
		CreatedAt:           now,
		UpdatedAt:           now,
		Status:              models.DeriveOrderStatus(items),
		Fulfillment:         req.Fulfillment,
		Subtotal:            quote.Subtotal,
		Fee:                 quote.Fee,
		Tax:                 quote.Tax,
		Total:               quote.Total,
		TableNumber:         req.TableNumber,
		SpecialInstructions: req.SpecialInstructions,
		Items:               items,
	}
	if err := e.orders.CreateOrder(ctx, order); err != nil {
		return nil, storage.Classify("create order", err)
	}
	c.Clear()

	e.logger.Info("Order placed",
		"order_id", order.ID,
		"user_id", p.UserID,
		"items", len(order.Items),
		"total", order.Total.StringFixed(2),
		"fulfillment", order.Fulfillment,
	)
	_ = e.dispatcher.Dispatch(events.OrderCreated{Order: order.Clone()})
	return order, nil
}

// Advance moves one item to its successor status and recomputes the order
// status from the full item set.
func (e *Engine) Advance(ctx context.Context, p auth.Principal, orderID, itemID string) (*models.Order, error) {
	if err := p.Require(auth.CapAdvanceItem); err != nil {
		return nil, err
	}

	unlock := e.locks.Lock(orderID)
	defer unlock()

	order, err := e.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, storage.Classify("get order", err)
	}
	if order.Status == models.OrderCancelled {
		return nil, fmt.Errorf("%w: order %s is cancelled", models.ErrInvalidTransition, orderID)
	}

	next := order.Clone()
	item, ok := next.Item(itemID)
	if !ok {
		return nil, fmt.Errorf("order item %s: %w", itemID, models.ErrNotFound)
	}
	from := item.Status
	to, ok := from.Next()
	if !ok {
		return nil, fmt.Errorf("%w: item %s", models.ErrTerminalState, itemID)
	}
	item.Status = to
	next.Status = models.DeriveOrderStatus(next.Items)
	next.UpdatedAt = e.now()

	if err := e.orders.UpdateItemStatus(ctx, orderID, itemID, to, next.Status); err != nil {
		return nil, storage.Classify("update item status", err)
	}

	e.logger.Info("Order item advanced",
		"order_id", orderID,
		"item_id", itemID,
		"from", from,
		"to", to,
		"order_status", next.Status,
		"user_id", p.UserID,
	)
	_ = e.dispatcher.Dispatch(events.ItemStatusChanged{Order: next.Clone(), OrderID: orderID, ItemID: itemID, From: from, To: to, At: next.UpdatedAt})
	if next.Status != order.Status {
		_ = e.dispatcher.Dispatch(events.OrderStatusChanged{Order: next.Clone(), From: order.Status, To: next.Status})
	}
	return next, nil
}

// Cancel marks a pending order cancelled. The owner or kitchen staff may cancel.
func (e *Engine) Cancel(ctx context.Context, p auth.Principal, orderID, reason string) (*models.Order, error) {
	if !p.Authenticated() {
		return nil, models.ErrUnauthenticated
	}

	unlock := e.locks.Lock(orderID)
	defer unlock()

	order, err := e.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, storage.Classify("get order", err)
	}
	// Another customer's order reads as not found, as in Get.
	if !CanView(p, order) {
		return nil, fmt.Errorf("order %s: %w", orderID, models.ErrNotFound)
	}
	if !p.Can(auth.CapAdvanceItem) && !p.Can(auth.CapOrder) {
		return nil, fmt.Errorf("%w: cannot cancel order %s", models.ErrForbidden, orderID)
	}
	if order.Status != models.OrderPending {
		return nil, fmt.Errorf("%w: cannot cancel %s order", models.ErrInvalidTransition, order.Status)
	}

	reason = strings.TrimSpace(reason)
	if err := e.orders.CancelOrder(ctx, orderID, reason); err != nil {
		return nil, storage.Classify("cancel order", err)
	}

	next := order.Clone()
	next.Status = models.OrderCancelled
	next.CancelReason = reason
	next.UpdatedAt = e.now()

	e.logger.Info("Order cancelled", "order_id", orderID, "user_id", p.UserID, "reason", reason)
	_ = e.dispatcher.Dispatch(events.OrderCancelled{Order: next.Clone(), Reason: reason})
	_ = e.dispatcher.Dispatch(events.OrderStatusChanged{Order: next.Clone(), From: order.Status, To: models.OrderCancelled})
	return next, nil
}

// Get returns an order visible to p. Customers see only their own orders;
// another customer's order reads as not found.
func (e *Engine) Get(ctx context.Context, p auth.Principal, orderID string) (*models.Order, error) {
	if err := p.Require(auth.CapOrder); err != nil {
		return nil, err
	}
	order, err := e.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, storage.Classify("get order", err)
	}
	if !CanView(p, order) {
		return nil, fmt.Errorf("order %s: %w", orderID, models.ErrNotFound)
	}
	return order, nil
}

// List returns the orders visible to p, newest first.
func (e *Engine) List(ctx context.Context, p auth.Principal, filter ListFilter) ([]models.Order, error) {
	if err := p.Require(auth.CapOrder); err != nil {
		return nil, err
	}
	q := storage.OrderFilter{Statuses: filter.Statuses}
	if !p.Can(auth.CapAdvanceItem) {
		q.UserID = p.UserID
	}
	orders, err := e.orders.ListOrders(ctx, q)
	if err != nil {
		return nil, storage.Classify("list orders", err)
	}
	return orders, nil
}

// CanView reports whether p may see order: staff see every order, everyone
// else only their own.
func CanView(p auth.Principal, order *models.Order) bool {
	if p.Can(auth.CapAdvanceItem) {
		return true
	}
	return p.Authenticated() && order.UserID == p.UserID
}
