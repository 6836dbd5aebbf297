package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const OrderServiceName = "bistro.v1.OrderService"

const (
	OrderServiceCheckoutProcedure    = "/bistro.v1.OrderService/Checkout"
	OrderServiceGetOrderProcedure    = "/bistro.v1.OrderService/GetOrder"
	OrderServiceListOrdersProcedure  = "/bistro.v1.OrderService/ListOrders"
	OrderServiceAdvanceItemProcedure = "/bistro.v1.OrderService/AdvanceItem"
	OrderServiceCancelOrderProcedure = "/bistro.v1.OrderService/CancelOrder"
	OrderServiceWatchOrdersProcedure = "/bistro.v1.OrderService/WatchOrders"
)

// OrderServiceHandler is implemented by the server.
type OrderServiceHandler interface {
	Checkout(context.Context, *connect.Request[CheckoutRequest]) (*connect.Response[OrderResponse], error)
	GetOrder(context.Context, *connect.Request[GetOrderRequest]) (*connect.Response[OrderResponse], error)
	ListOrders(context.Context, *connect.Request[ListOrdersRequest]) (*connect.Response[ListOrdersResponse], error)
	AdvanceItem(context.Context, *connect.Request[AdvanceItemRequest]) (*connect.Response[OrderResponse], error)
	CancelOrder(context.Context, *connect.Request[CancelOrderRequest]) (*connect.Response[OrderResponse], error)
	WatchOrders(context.Context, *connect.Request[WatchOrdersRequest], *connect.ServerStream[OrderUpdate]) error
}

// NewOrderServiceHandler returns the mount path and handler for svc.
func NewOrderServiceHandler(svc OrderServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	routes := map[string]http.Handler{
		OrderServiceCheckoutProcedure:    connect.NewUnaryHandler(OrderServiceCheckoutProcedure, svc.Checkout, opts...),
		OrderServiceGetOrderProcedure:    connect.NewUnaryHandler(OrderServiceGetOrderProcedure, svc.GetOrder, opts...),
		OrderServiceListOrdersProcedure:  connect.NewUnaryHandler(OrderServiceListOrdersProcedure, svc.ListOrders, opts...),
		OrderServiceAdvanceItemProcedure: connect.NewUnaryHandler(OrderServiceAdvanceItemProcedure, svc.AdvanceItem, opts...),
		OrderServiceCancelOrderProcedure: connect.NewUnaryHandler(OrderServiceCancelOrderProcedure, svc.CancelOrder, opts...),
		OrderServiceWatchOrdersProcedure: connect.NewServerStreamHandler(OrderServiceWatchOrdersProcedure, svc.WatchOrders, opts...),
	}
	return "/" + OrderServiceName + "/", route(routes)
}

// OrderServiceClient calls OrderService.
type OrderServiceClient struct {
	checkout *connect.Client[CheckoutRequest, OrderResponse]
	get      *connect.Client[GetOrderRequest, OrderResponse]
	list     *connect.Client[ListOrdersRequest, ListOrdersResponse]
	advance  *connect.Client[AdvanceItemRequest, OrderResponse]
	cancel   *connect.Client[CancelOrderRequest, OrderResponse]
	watch    *connect.Client[WatchOrdersRequest, OrderUpdate]
}

func NewOrderServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *OrderServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &OrderServiceClient{
		checkout: connect.NewClient[CheckoutRequest, OrderResponse](httpClient, baseURL+OrderServiceCheckoutProcedure, opts...),
		get:      connect.NewClient[GetOrderRequest, OrderResponse](httpClient, baseURL+OrderServiceGetOrderProcedure, opts...),
		list:     connect.NewClient[ListOrdersRequest, ListOrdersResponse](httpClient, baseURL+OrderServiceListOrdersProcedure, opts...),
		advance:  connect.NewClient[AdvanceItemRequest, OrderResponse](httpClient, baseURL+OrderServiceAdvanceItemProcedure, opts...),
		cancel:   connect.NewClient[CancelOrderRequest, OrderResponse](httpClient, baseURL+OrderServiceCancelOrderProcedure, opts...),
		watch:    connect.NewClient[WatchOrdersRequest, OrderUpdate](httpClient, baseURL+OrderServiceWatchOrdersProcedure, opts...),
	}
}

func (c *OrderServiceClient) Checkout(ctx context.Context, req *connect.Request[CheckoutRequest]) (*connect.Response[OrderResponse], error) {
	return c.checkout.CallUnary(ctx, req)
}

func (c *OrderServiceClient) GetOrder(ctx context.Context, req *connect.Request[GetOrderRequest]) (*connect.Response[OrderResponse], error) {
	return c.get.CallUnary(ctx, req)
}

func (c *OrderServiceClient) ListOrders(ctx context.Context, req *connect.Request[ListOrdersRequest]) (*connect.Response[ListOrdersResponse], error) {
	return c.list.CallUnary(ctx, req)
}

func (c *OrderServiceClient) AdvanceItem(ctx context.Context, req *connect.Request[AdvanceItemRequest]) (*connect.Response[OrderResponse], error) {
	return c.advance.CallUnary(ctx, req)
}

func (c *OrderServiceClient) CancelOrder(ctx context.Context, req *connect.Request[CancelOrderRequest]) (*connect.Response[OrderResponse], error) {
	return c.cancel.CallUnary(ctx, req)
}

func (c *OrderServiceClient) WatchOrders(ctx context.Context, req *connect.Request[WatchOrdersRequest]) (*connect.ServerStreamForClient[OrderUpdate], error) {
	return c.watch.CallServerStream(ctx, req)
}
