package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const CartServiceName = "bistro.v1.CartService"

const (
	CartServiceGetCartProcedure        = "/bistro.v1.CartService/GetCart"
	CartServiceAddItemProcedure        = "/bistro.v1.CartService/AddItem"
	CartServiceRemoveItemProcedure     = "/bistro.v1.CartService/RemoveItem"
	CartServiceUpdateQuantityProcedure = "/bistro.v1.CartService/UpdateQuantity"
	CartServiceClearCartProcedure      = "/bistro.v1.CartService/ClearCart"
)

// CartServiceHandler is implemented by the server.
type CartServiceHandler interface {
	GetCart(context.Context, *connect.Request[GetCartRequest]) (*connect.Response[CartResponse], error)
	AddItem(context.Context, *connect.Request[AddItemRequest]) (*connect.Response[CartResponse], error)
	RemoveItem(context.Context, *connect.Request[RemoveItemRequest]) (*connect.Response[CartResponse], error)
	UpdateQuantity(context.Context, *connect.Request[UpdateQuantityRequest]) (*connect.Response[CartResponse], error)
	ClearCart(context.Context, *connect.Request[ClearCartRequest]) (*connect.Response[CartResponse], error)
}

// NewCartServiceHandler returns the mount path and handler for svc.
func NewCartServiceHandler(svc CartServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	routes := map[string]http.Handler{
		CartServiceGetCartProcedure:        connect.NewUnaryHandler(CartServiceGetCartProcedure, svc.GetCart, opts...),
		CartServiceAddItemProcedure:        connect.NewUnaryHandler(CartServiceAddItemProcedure, svc.AddItem, opts...),
		CartServiceRemoveItemProcedure:     connect.NewUnaryHandler(CartServiceRemoveItemProcedure, svc.RemoveItem, opts...),
		CartServiceUpdateQuantityProcedure: connect.NewUnaryHandler(CartServiceUpdateQuantityProcedure, svc.UpdateQuantity, opts...),
		CartServiceClearCartProcedure:      connect.NewUnaryHandler(CartServiceClearCartProcedure, svc.ClearCart, opts...),
	}
	return "/" + CartServiceName + "/", route(routes)
}

// CartServiceClient calls CartService.
type CartServiceClient struct {
	get      *connect.Client[GetCartRequest, CartResponse]
	add      *connect.Client[AddItemRequest, CartResponse]
	remove   *connect.Client[RemoveItemRequest, CartResponse]
	quantity *connect.Client[UpdateQuantityRequest, CartResponse]
	clear    *connect.Client[ClearCartRequest, CartResponse]
}

func NewCartServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *CartServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &CartServiceClient{
		get:      connect.NewClient[GetCartRequest, CartResponse](httpClient, baseURL+CartServiceGetCartProcedure, opts...),
		add:      connect.NewClient[AddItemRequest, CartResponse](httpClient, baseURL+CartServiceAddItemProcedure, opts...),
		remove:   connect.NewClient[RemoveItemRequest, CartResponse](httpClient, baseURL+CartServiceRemoveItemProcedure, opts...),
		quantity: connect.NewClient[UpdateQuantityRequest, CartResponse](httpClient, baseURL+CartServiceUpdateQuantityProcedure, opts...),
		clear:    connect.NewClient[ClearCartRequest, CartResponse](httpClient, baseURL+CartServiceClearCartProcedure, opts...),
	}
}

func (c *CartServiceClient) GetCart(ctx context.Context, req *connect.Request[GetCartRequest]) (*connect.Response[CartResponse], error) {
	return c.get.CallUnary(ctx, req)
}

func (c *CartServiceClient) AddItem(ctx context.Context, req *connect.Request[AddItemRequest]) (*connect.Response[CartResponse], error) {
	return c.add.CallUnary(ctx, req)
}

func (c *CartServiceClient) RemoveItem(ctx context.Context, req *connect.Request[RemoveItemRequest]) (*connect.Response[CartResponse], error) {
	return c.remove.CallUnary(ctx, req)
}

func (c *CartServiceClient) UpdateQuantity(ctx context.Context, req *connect.Request[UpdateQuantityRequest]) (*connect.Response[CartResponse], error) {
	return c.quantity.CallUnary(ctx, req)
}

func (c *CartServiceClient) ClearCart(ctx context.Context, req *connect.Request[ClearCartRequest]) (*connect.Response[CartResponse], error) {
	return c.clear.CallUnary(ctx, req)
}
