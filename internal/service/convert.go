package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/bistro/internal/auth"
	"github.com/mmynk/bistro/internal/cart"
	"github.com/mmynk/bistro/internal/lifecycle"
	"github.com/mmynk/bistro/internal/models"
	"github.com/mmynk/bistro/internal/pricing"
	"github.com/mmynk/bistro/pkg/api"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func parseMoney(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q is not a decimal", models.ErrInvalidArgument, field, s)
	}
	if d.Exponent() < -2 {
		return decimal.Zero, fmt.Errorf("%w: %s %q has more than two decimal places", models.ErrInvalidArgument, field, s)
	}
	return d, nil
}

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		CreatedAt:   time.Unix(u.CreatedAt, 0).UTC(),
	}
}

func capabilityNames(role models.Role) []string {
	caps := auth.Capabilities(role)
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = string(c)
	}
	return names
}

func toAPIMenuItem(m *models.MenuItem) api.MenuItem {
	return api.MenuItem{
		ID:              m.ID,
		Name:            m.Name,
		Description:     m.Description,
		Price:           money(m.Price),
		ImageURL:        m.ImageURL,
		Category:        m.Category,
		PreparationTime: m.PreparationTime,
		Available:       m.Available,
	}
}

func fromAPIMenuItem(m api.MenuItem) (models.MenuItem, error) {
	price, err := parseMoney("price", m.Price)
	if err != nil {
		return models.MenuItem{}, err
	}
	return models.MenuItem{
		Name:            m.Name,
		Description:     m.Description,
		Price:           price,
		ImageURL:        m.ImageURL,
		Category:        m.Category,
		PreparationTime: m.PreparationTime,
		Available:       m.Available,
	}, nil
}

func toAPICart(c *cart.Cart, cfg pricing.Config, fulfillment models.Fulfillment) (api.Cart, error) {
	quote, err := c.Quote(cfg, fulfillment)
	if err != nil {
		return api.Cart{}, err
	}
	lines := c.Lines()
	out := api.Cart{
		Lines:       make([]api.CartLine, len(lines)),
		Count:       c.Count(),
		Fulfillment: string(fulfillment),
		Pricing: api.PriceBreakdown{
			Subtotal: money(quote.Subtotal),
			Fee:      money(quote.Fee),
			Tax:      money(quote.Tax),
			Total:    money(quote.Total),
		},
	}
	for i, l := range lines {
		out.Lines[i] = api.CartLine{
			MenuItemID: l.ItemID,
			Name:       l.Name,
			Price:      money(l.Price),
			Quantity:   l.Quantity,
			Subtotal:   money(l.Subtotal()),
		}
	}
	return out, nil
}

func toAPIOrder(o *models.Order) api.Order {
	out := api.Order{
		ID:                  o.ID,
		UserID:              o.UserID,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
		Status:              o.Status.String(),
		Fulfillment:         string(o.Fulfillment),
		Subtotal:            money(o.Subtotal),
		Fee:                 money(o.Fee),
		Tax:                 money(o.Tax),
		Total:               money(o.Total),
		TableNumber:         o.TableNumber,
		SpecialInstructions: o.SpecialInstructions,
		CancelReason:        o.CancelReason,
		Items:               make([]api.OrderItem, len(o.Items)),
	}
	for i, item := range o.Items {
		out.Items[i] = api.OrderItem{
			ID:         item.ID,
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Price:      money(item.Price),
			Quantity:   item.Quantity,
			Subtotal:   money(item.Subtotal),
			Status:     item.Status.String(),
		}
	}
	return out
}

// parseStatuses reads a status filter. activeOnly selects the kitchen board
// statuses and wins over an explicit list.
func parseStatuses(names []string, activeOnly bool) ([]models.OrderStatus, error) {
	if activeOnly {
		return lifecycle.ActiveStatuses, nil
	}
	statuses := make([]models.OrderStatus, 0, len(names))
	for _, name := range names {
		s, err := models.ParseOrderStatus(name)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}
