// Package cart implements the customer's pre-order basket.
package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/bistro/internal/models"
	"github.com/mmynk/bistro/internal/pricing"
)

// Line is one menu item in the cart. Name and Price are copies taken when the
// item was added; Reprice refreshes them and checkout re-reads the catalog.
type Line struct {
	ItemID   int64
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// Subtotal is Price × Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return pricing.LineSubtotal(l.Price, l.Quantity)
}

// Cart holds at most one line per menu item, in the order items were first
// added. Every line has Quantity >= 1. A Cart is not safe for concurrent use;
// see Sessions.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

func (c *Cart) index(id int64) int {
	for i := range c.lines {
		if c.lines[i].ItemID == id {
			return i
		}
	}
	return -1
}

// AddItem adds one unit of item. Unavailable items are rejected and leave the cart unchanged.
func (c *Cart) AddItem(item models.MenuItem) error {
	if !item.Available {
		return fmt.Errorf("%w: %s", models.ErrItemUnavailable, item.Name)
	}
	if i := c.index(item.ID); i >= 0 {
		c.lines[i].Quantity++
		return nil
	}
	c.lines = append(c.lines, Line{ItemID: item.ID, Name: item.Name, Price: item.Price, Quantity: 1})
	return nil
}

// RemoveItem deletes the line for id. Absent ids are ignored.
func (c *Cart) RemoveItem(id int64) {
	if i := c.index(id); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero or
// less removes the line. Absent ids are ignored.
func (c *Cart) UpdateQuantity(id int64, quantity int) {
	i := c.index(id)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		c.RemoveItem(id)
		return
	}
	c.lines[i].Quantity = quantity
}

// Merge adds lines to the cart, summing quantities for items already present.
func (c *Cart) Merge(lines []Line) {
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if i := c.index(l.ItemID); i >= 0 {
			c.lines[i].Quantity += l.Quantity
			continue
		}
		c.lines = append(c.lines, l)
	}
}

// Reprice refreshes the name and price of the line for item from the
// current catalog record. Absent ids are ignored.
func (c *Cart) Reprice(item models.MenuItem) {
	if i := c.index(item.ID); i >= 0 {
		c.lines[i].Name = item.Name
		c.lines[i].Price = item.Price
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Total is the sum of line subtotals, before fees and tax.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Quote prices the cart for a fulfillment option.
func (c *Cart) Quote(cfg pricing.Config, fulfillment models.Fulfillment) (pricing.Breakdown, error) {
	return pricing.Quote(cfg, c.Total(), fulfillment)
}

// Lines returns a copy of the lines.
func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

// Count is the total number of units across lines.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}
