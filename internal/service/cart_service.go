package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/bistro/internal/auth"
	"github.com/mmynk/bistro/internal/cart"
	"github.com/mmynk/bistro/internal/catalog"
	"github.com/mmynk/bistro/internal/models"
	"github.com/mmynk/bistro/internal/pricing"
	"github.com/mmynk/bistro/pkg/api"
)

// CartService implements the CartService RPC interface. Logged-in callers
// use their account cart; anonymous callers identify a cart with the
// Cart-Session header.
type CartService struct {
	sessions *cart.Sessions
	catalog  *catalog.Catalog
	pricing  pricing.Config
	logger   *slog.Logger
}

var _ api.CartServiceHandler = (*CartService)(nil)

func NewCartService(sessions *cart.Sessions, c *catalog.Catalog, cfg pricing.Config, logger *slog.Logger) *CartService {
	return &CartService{sessions: sessions, catalog: c, pricing: cfg, logger: logger}
}

// cartKey picks the session key for the caller. A logged-in caller that
// still sends a Cart-Session header takes over that anonymous cart.
func cartKey(ctx context.Context, sessions *cart.Sessions, header http.Header) (string, error) {
	session := strings.TrimSpace(header.Get(api.CartSessionHeader))
	if p := auth.PrincipalFrom(ctx); p.Authenticated() {
		key := "user:" + p.UserID
		if session != "" {
			if err := sessions.Adopt("session:"+session, key); err != nil {
				return "", err
			}
		}
		return key, nil
	}
	if session != "" {
		return "session:" + session, nil
	}
	return "", fmt.Errorf("%w: log in or send a %s header", models.ErrInvalidArgument, api.CartSessionHeader)
}

// update runs fn on the caller's cart and renders the result priced for delivery.
func (s *CartService) update(ctx context.Context, header http.Header, fulfillment models.Fulfillment, fn func(*cart.Cart) error) (*connect.Response[api.CartResponse], error) {
	key, err := cartKey(ctx, s.sessions, header)
	if err != nil {
		return nil, toConnectError(err)
	}

	var view api.Cart
	err = s.sessions.With(key, func(c *cart.Cart) error {
		if err := fn(c); err != nil {
			return err
		}
		v, err := toAPICart(c, s.pricing, fulfillment)
		view = v
		return err
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.CartResponse{Cart: view}), nil
}

// GetCart renders the cart with names and prices refreshed from the catalog.
// Items since removed from the menu keep their last known price.
func (s *CartService) GetCart(ctx context.Context, req *connect.Request[api.GetCartRequest]) (*connect.Response[api.CartResponse], error) {
	fulfillment, err := models.ParseFulfillment(req.Msg.Fulfillment)
	if err != nil {
		return nil, toConnectError(err)
	}
	return s.update(ctx, req.Header(), fulfillment, func(c *cart.Cart) error {
		for _, l := range c.Lines() {
			item, err := s.catalog.Get(ctx, l.ItemID)
			if errors.Is(err, models.ErrNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("reprice cart: %w", err)
			}
			c.Reprice(*item)
		}
		return nil
	})
}

// AddItem adds one unit of a menu item. Unknown items are not found;
// unavailable items are rejected and leave the cart unchanged.
func (s *CartService) AddItem(ctx context.Context, req *connect.Request[api.AddItemRequest]) (*connect.Response[api.CartResponse], error) {
	item, err := s.catalog.Get(ctx, req.Msg.MenuItemID)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp, err := s.update(ctx, req.Header(), models.FulfillmentDelivery, func(c *cart.Cart) error {
		return c.AddItem(*item)
	})
	if err != nil {
		s.logger.Info("Add to cart rejected", "item_id", item.ID, "error", err)
		return nil, err
	}
	s.logger.Debug("Cart updated", "item_id", item.ID, "count", resp.Msg.Cart.Count)
	return resp, nil
}

func (s *CartService) RemoveItem(ctx context.Context, req *connect.Request[api.RemoveItemRequest]) (*connect.Response[api.CartResponse], error) {
	return s.update(ctx, req.Header(), models.FulfillmentDelivery, func(c *cart.Cart) error {
		c.RemoveItem(req.Msg.MenuItemID)
		return nil
	})
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, req *connect.Request[api.UpdateQuantityRequest]) (*connect.Response[api.CartResponse], error) {
	return s.update(ctx, req.Header(), models.FulfillmentDelivery, func(c *cart.Cart) error {
		c.UpdateQuantity(req.Msg.MenuItemID, req.Msg.Quantity)
		return nil
	})
}

func (s *CartService) ClearCart(ctx context.Context, req *connect.Request[api.ClearCartRequest]) (*connect.Response[api.CartResponse], error) {
	return s.update(ctx, req.Header(), models.FulfillmentDelivery, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
}
