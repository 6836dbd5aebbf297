package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/bistro/internal/auth"
	"github.com/mmynk/bistro/internal/catalog"
	"github.com/mmynk/bistro/internal/models"
	"github.com/mmynk/bistro/pkg/api"
)

// MenuService implements the MenuService RPC interface on top of the catalog.
type MenuService struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

var _ api.MenuServiceHandler = (*MenuService)(nil)

func NewMenuService(c *catalog.Catalog, logger *slog.Logger) *MenuService {
	return &MenuService{catalog: c, logger: logger}
}

// ListMenuItems browses the menu. No login is required.
func (s *MenuService) ListMenuItems(ctx context.Context, req *connect.Request[api.ListMenuItemsRequest]) (*connect.Response[api.ListMenuItemsResponse], error) {
	items, err := s.catalog.List(ctx, catalog.Filter{
		Category:      req.Msg.Category,
		Query:         req.Msg.Query,
		AvailableOnly: req.Msg.AvailableOnly,
	})
	if err != nil {
		s.logger.Error("Failed to list menu items", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.MenuItem, len(items))
	for i := range items {
		out[i] = toAPIMenuItem(&items[i])
	}
	return connect.NewResponse(&api.ListMenuItemsResponse{Items: out}), nil
}

func (s *MenuService) GetMenuItem(ctx context.Context, req *connect.Request[api.GetMenuItemRequest]) (*connect.Response[api.MenuItemResponse], error) {
	item, err := s.catalog.Get(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.MenuItemResponse{Item: toAPIMenuItem(item)}), nil
}

func (s *MenuService) ListCategories(ctx context.Context, req *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error) {
	categories, err := s.catalog.Categories(ctx)
	if err != nil {
		s.logger.Error("Failed to list categories", "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListCategoriesResponse{Categories: categories}), nil
}

func (s *MenuService) CreateMenuItem(ctx context.Context, req *connect.Request[api.CreateMenuItemRequest]) (*connect.Response[api.MenuItemResponse], error) {
	p := auth.PrincipalFrom(ctx)
	if err := p.Require(auth.CapManageCatalog); err != nil {
		return nil, toConnectError(err)
	}
	item, err := fromAPIMenuItem(req.Msg.Item)
	if err != nil {
		return nil, toConnectError(err)
	}

	created, err := s.catalog.Create(ctx, p, item)
	if err != nil {
		s.logger.Warn("Failed to create menu item", "name", item.Name, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.MenuItemResponse{Item: toAPIMenuItem(created)}), nil
}

func (s *MenuService) UpdateMenuItem(ctx context.Context, req *connect.Request[api.UpdateMenuItemRequest]) (*connect.Response[api.MenuItemResponse], error) {
	p := auth.PrincipalFrom(ctx)
	if err := p.Require(auth.CapManageCatalog); err != nil {
		return nil, toConnectError(err)
	}

	patch := models.MenuItemPatch{
		Name:            req.Msg.Name,
		Description:     req.Msg.Description,
		ImageURL:        req.Msg.ImageURL,
		Category:        req.Msg.Category,
		PreparationTime: req.Msg.PreparationTime,
		Available:       req.Msg.Available,
	}
	if req.Msg.Price != nil {
		price, err := parseMoney("price", *req.Msg.Price)
		if err != nil {
			return nil, toConnectError(err)
		}
		patch.Price = &price
	}

	updated, err := s.catalog.Update(ctx, p, req.Msg.ID, patch)
	if err != nil {
		s.logger.Warn("Failed to update menu item", "item_id", req.Msg.ID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.MenuItemResponse{Item: toAPIMenuItem(updated)}), nil
}

func (s *MenuService) DeleteMenuItem(ctx context.Context, req *connect.Request[api.DeleteMenuItemRequest]) (*connect.Response[api.DeleteMenuItemResponse], error) {
	if err := s.catalog.Delete(ctx, auth.PrincipalFrom(ctx), req.Msg.ID); err != nil {
		s.logger.Warn("Failed to delete menu item", "item_id", req.Msg.ID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.DeleteMenuItemResponse{}), nil
}

func (s *MenuService) SetAvailability(ctx context.Context, req *connect.Request[api.SetAvailabilityRequest]) (*connect.Response[api.MenuItemResponse], error) {
	item, err := s.catalog.SetAvailability(ctx, auth.PrincipalFrom(ctx), req.Msg.ID, req.Msg.Available)
	if err != nil {
		s.logger.Warn("Failed to set availability", "item_id", req.Msg.ID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.MenuItemResponse{Item: toAPIMenuItem(item)}), nil
}
