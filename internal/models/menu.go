package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MenuItem represents one orderable dish or drink.
type MenuItem struct {
	// ID is assigned by the store and never reused.
	ID int64

	Name        string
	Description string

	// Price is the unit price in the restaurant's currency.
	Price decimal.Decimal

	ImageURL string

	// Category is an open set, e.g. "main", "appetizers", "desserts", "drinks".
	Category string

	// PreparationTime is the expected kitchen time in minutes.
	PreparationTime int

	// Available controls whether the item can be added to a cart.
	Available bool
}

// Validate checks the invariants every stored MenuItem must satisfy.
func (m *MenuItem) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	if m.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidArgument)
	}
	if m.PreparationTime < 0 {
		return fmt.Errorf("%w: preparation time must not be negative", ErrInvalidArgument)
	}
	return nil
}

// MenuItemPatch carries the fields of a partial update. Nil fields are left untouched.
type MenuItemPatch struct {
	Name            *string
	Description     *string
	Price           *decimal.Decimal
	ImageURL        *string
	Category        *string
	PreparationTime *int
	Available       *bool
}

// Apply merges the supplied fields into item.
func (p MenuItemPatch) Apply(item *MenuItem) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.ImageURL != nil {
		item.ImageURL = *p.ImageURL
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.PreparationTime != nil {
		item.PreparationTime = *p.PreparationTime
	}
	if p.Available != nil {
		item.Available = *p.Available
	}
}
