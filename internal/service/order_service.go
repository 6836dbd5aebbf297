package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/bistro/internal/auth"
	"github.com/mmynk/bistro/internal/cart"
	"github.com/mmynk/bistro/internal/events"
	"github.com/mmynk/bistro/internal/lifecycle"
	"github.com/mmynk/bistro/internal/models"
	"github.com/mmynk/bistro/pkg/api"
)

const watchBuffer = 64

// OrderService implements the OrderService RPC interface.
type OrderService struct {
	engine   *lifecycle.Engine
	sessions *cart.Sessions
	bus      *events.Bus
	logger   *slog.Logger
}

var _ api.OrderServiceHandler = (*OrderService)(nil)

func NewOrderService(engine *lifecycle.Engine, sessions *cart.Sessions, bus *events.Bus, logger *slog.Logger) *OrderService {
	return &OrderService{engine: engine, sessions: sessions, bus: bus, logger: logger}
}

// Checkout places an order from the caller's account cart.
func (s *OrderService) Checkout(ctx context.Context, req *connect.Request[api.CheckoutRequest]) (*connect.Response[api.OrderResponse], error) {
	p := auth.PrincipalFrom(ctx)
	if err := p.Require(auth.CapOrder); err != nil {
		return nil, toConnectError(err)
	}
	key, err := cartKey(ctx, s.sessions, req.Header())
	if err != nil {
		return nil, toConnectError(err)
	}

	var order *models.Order
	err = s.sessions.With(key, func(c *cart.Cart) error {
		var err error
		order, err = s.engine.Checkout(ctx, p, c, lifecycle.CheckoutRequest{
			Fulfillment:         models.Fulfillment(req.Msg.Fulfillment),
			TableNumber:         req.Msg.TableNumber,
			SpecialInstructions: req.Msg.SpecialInstructions,
		})
		return err
	})
	if err != nil {
		s.logger.Warn("Checkout failed", "user_id", p.UserID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.OrderResponse{Order: toAPIOrder(order)}), nil
}

func (s *OrderService) GetOrder(ctx context.Context, req *connect.Request[api.GetOrderRequest]) (*connect.Response[api.OrderResponse], error) {
	order, err := s.engine.Get(ctx, auth.PrincipalFrom(ctx), req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.OrderResponse{Order: toAPIOrder(order)}), nil
}

// ListOrders returns the caller's orders, or every order for kitchen staff.
func (s *OrderService) ListOrders(ctx context.Context, req *connect.Request[api.ListOrdersRequest]) (*connect.Response[api.ListOrdersResponse], error) {
	statuses, err := parseStatuses(req.Msg.Statuses, req.Msg.ActiveOnly)
	if err != nil {
		return nil, toConnectError(err)
	}
	orders, err := s.engine.List(ctx, auth.PrincipalFrom(ctx), lifecycle.ListFilter{Statuses: statuses})
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]api.Order, len(orders))
	for i := range orders {
		out[i] = toAPIOrder(&orders[i])
	}
	return connect.NewResponse(&api.ListOrdersResponse{Orders: out}), nil
}

func (s *OrderService) AdvanceItem(ctx context.Context, req *connect.Request[api.AdvanceItemRequest]) (*connect.Response[api.OrderResponse], error) {
	order, err := s.engine.Advance(ctx, auth.PrincipalFrom(ctx), req.Msg.OrderID, req.Msg.ItemID)
	if err != nil {
		s.logger.Warn("Advance rejected", "order_id", req.Msg.OrderID, "item_id", req.Msg.ItemID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.OrderResponse{Order: toAPIOrder(order)}), nil
}

func (s *OrderService) CancelOrder(ctx context.Context, req *connect.Request[api.CancelOrderRequest]) (*connect.Response[api.OrderResponse], error) {
	order, err := s.engine.Cancel(ctx, auth.PrincipalFrom(ctx), req.Msg.OrderID, req.Msg.Reason)
	if err != nil {
		s.logger.Warn("Cancel rejected", "order_id", req.Msg.OrderID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.OrderResponse{Order: toAPIOrder(order)}), nil
}

// WatchOrders streams a snapshot of the matching orders, then every change
// to an order the caller may see. The status filter applies to the snapshot
// only, so a board can drop orders that leave it.
func (s *OrderService) WatchOrders(ctx context.Context, req *connect.Request[api.WatchOrdersRequest], stream *connect.ServerStream[api.OrderUpdate]) error {
	p := auth.PrincipalFrom(ctx)
	statuses, err := parseStatuses(req.Msg.Statuses, req.Msg.ActiveOnly)
	if err != nil {
		return toConnectError(err)
	}

	// Subscribe before the snapshot so no change falls between the two.
	updates, unsubscribe := s.bus.Subscribe(watchBuffer)
	defer unsubscribe()

	orders, err := s.engine.List(ctx, p, lifecycle.ListFilter{Statuses: statuses})
	if err != nil {
		return toConnectError(err)
	}
	for i := range orders {
		if err := stream.Send(&api.OrderUpdate{Type: "snapshot", Order: toAPIOrder(&orders[i])}); err != nil {
			return err
		}
	}

	s.logger.Info("Order watch started", "user_id", p.UserID, "role", p.Role, "snapshot", len(orders))
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-updates:
			if !ok {
				return nil
			}
			order := changedOrder(e)
			if order == nil || !lifecycle.CanView(p, order) {
				continue
			}
			if err := stream.Send(&api.OrderUpdate{Type: e.Type(), Order: toAPIOrder(order)}); err != nil {
				return err
			}
		}
	}
}

// changedOrder returns the order an event reports on. OrderStatusChanged is
// skipped: it always follows an item change or cancellation for the same order.
func changedOrder(e events.Event) *models.Order {
	switch ev := e.(type) {
	case events.OrderCreated:
		return ev.Order
	case events.ItemStatusChanged:
		return ev.Order
	case events.OrderCancelled:
		return ev.Order
	}
	return nil
}
