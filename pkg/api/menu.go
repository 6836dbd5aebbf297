package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const MenuServiceName = "bistro.v1.MenuService"

const (
	MenuServiceListMenuItemsProcedure   = "/bistro.v1.MenuService/ListMenuItems"
	MenuServiceGetMenuItemProcedure     = "/bistro.v1.MenuService/GetMenuItem"
	MenuServiceListCategoriesProcedure  = "/bistro.v1.MenuService/ListCategories"
	MenuServiceCreateMenuItemProcedure  = "/bistro.v1.MenuService/CreateMenuItem"
	MenuServiceUpdateMenuItemProcedure  = "/bistro.v1.MenuService/UpdateMenuItem"
	MenuServiceDeleteMenuItemProcedure  = "/bistro.v1.MenuService/DeleteMenuItem"
	MenuServiceSetAvailabilityProcedure = "/bistro.v1.MenuService/SetAvailability"
)

// MenuServiceHandler is implemented by the server.
type MenuServiceHandler interface {
	ListMenuItems(context.Context, *connect.Request[ListMenuItemsRequest]) (*connect.Response[ListMenuItemsResponse], error)
	GetMenuItem(context.Context, *connect.Request[GetMenuItemRequest]) (*connect.Response[MenuItemResponse], error)
	ListCategories(context.Context, *connect.Request[ListCategoriesRequest]) (*connect.Response[ListCategoriesResponse], error)
	CreateMenuItem(context.Context, *connect.Request[CreateMenuItemRequest]) (*connect.Response[MenuItemResponse], error)
	UpdateMenuItem(context.Context, *connect.Request[UpdateMenuItemRequest]) (*connect.Response[MenuItemResponse], error)
	DeleteMenuItem(context.Context, *connect.Request[DeleteMenuItemRequest]) (*connect.Response[DeleteMenuItemResponse], error)
	SetAvailability(context.Context, *connect.Request[SetAvailabilityRequest]) (*connect.Response[MenuItemResponse], error)
}

// NewMenuServiceHandler returns the mount path and handler for svc.
func NewMenuServiceHandler(svc MenuServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	routes := map[string]http.Handler{
		MenuServiceListMenuItemsProcedure:   connect.NewUnaryHandler(MenuServiceListMenuItemsProcedure, svc.ListMenuItems, opts...),
		MenuServiceGetMenuItemProcedure:     connect.NewUnaryHandler(MenuServiceGetMenuItemProcedure, svc.GetMenuItem, opts...),
		MenuServiceListCategoriesProcedure:  connect.NewUnaryHandler(MenuServiceListCategoriesProcedure, svc.ListCategories, opts...),
		MenuServiceCreateMenuItemProcedure:  connect.NewUnaryHandler(MenuServiceCreateMenuItemProcedure, svc.CreateMenuItem, opts...),
		MenuServiceUpdateMenuItemProcedure:  connect.NewUnaryHandler(MenuServiceUpdateMenuItemProcedure, svc.UpdateMenuItem, opts...),
		MenuServiceDeleteMenuItemProcedure:  connect.NewUnaryHandler(MenuServiceDeleteMenuItemProcedure, svc.DeleteMenuItem, opts...),
		MenuServiceSetAvailabilityProcedure: connect.NewUnaryHandler(MenuServiceSetAvailabilityProcedure, svc.SetAvailability, opts...),
	}
	return "/" + MenuServiceName + "/", route(routes)
}

// MenuServiceClient calls MenuService.
type MenuServiceClient struct {
	list       *connect.Client[ListMenuItemsRequest, ListMenuItemsResponse]
	get        *connect.Client[GetMenuItemRequest, MenuItemResponse]
	categories *connect.Client[ListCategoriesRequest, ListCategoriesResponse]
	create     *connect.Client[CreateMenuItemRequest, MenuItemResponse]
	update     *connect.Client[UpdateMenuItemRequest, MenuItemResponse]
	del        *connect.Client[DeleteMenuItemRequest, DeleteMenuItemResponse]
	available  *connect.Client[SetAvailabilityRequest, MenuItemResponse]
}

func NewMenuServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *MenuServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &MenuServiceClient{
		list:       connect.NewClient[ListMenuItemsRequest, ListMenuItemsResponse](httpClient, baseURL+MenuServiceListMenuItemsProcedure, opts...),
		get:        connect.NewClient[GetMenuItemRequest, MenuItemResponse](httpClient, baseURL+MenuServiceGetMenuItemProcedure, opts...),
		categories: connect.NewClient[ListCategoriesRequest, ListCategoriesResponse](httpClient, baseURL+MenuServiceListCategoriesProcedure, opts...),
		create:     connect.NewClient[CreateMenuItemRequest, MenuItemResponse](httpClient, baseURL+MenuServiceCreateMenuItemProcedure, opts...),
		update:     connect.NewClient[UpdateMenuItemRequest, MenuItemResponse](httpClient, baseURL+MenuServiceUpdateMenuItemProcedure, opts...),
		del:        connect.NewClient[DeleteMenuItemRequest, DeleteMenuItemResponse](httpClient, baseURL+MenuServiceDeleteMenuItemProcedure, opts...),
		available:  connect.NewClient[SetAvailabilityRequest, MenuItemResponse](httpClient, baseURL+MenuServiceSetAvailabilityProcedure, opts...),
	}
}

func (c *MenuServiceClient) ListMenuItems(ctx context.Context, req *connect.Request[ListMenuItemsRequest]) (*connect.Response[ListMenuItemsResponse], error) {
	return c.list.CallUnary(ctx, req)
}

func (c *MenuServiceClient) GetMenuItem(ctx context.Context, req *connect.Request[GetMenuItemRequest]) (*connect.Response[MenuItemResponse], error) {
	return c.get.CallUnary(ctx, req)
}

func (c *MenuServiceClient) ListCategories(ctx context.Context, req *connect.Request[ListCategoriesRequest]) (*connect.Response[ListCategoriesResponse], error) {
	return c.categories.CallUnary(ctx, req)
}

func (c *MenuServiceClient) CreateMenuItem(ctx context.Context, req *connect.Request[CreateMenuItemRequest]) (*connect.Response[MenuItemResponse], error) {
	return c.create.CallUnary(ctx, req)
}

func (c *MenuServiceClient) UpdateMenuItem(ctx context.Context, req *connect.Request[UpdateMenuItemRequest]) (*connect.Response[MenuItemResponse], error) {
	return c.update.CallUnary(ctx, req)
}

func (c *MenuServiceClient) DeleteMenuItem(ctx context.Context, req *connect.Request[DeleteMenuItemRequest]) (*connect.Response[DeleteMenuItemResponse], error) {
	return c.del.CallUnary(ctx, req)
}

func (c *MenuServiceClient) SetAvailability(ctx context.Context, req *connect.Request[SetAvailabilityRequest]) (*connect.Response[MenuItemResponse], error) {
	return c.available.CallUnary(ctx, req)
}
