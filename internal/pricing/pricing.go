// Package pricing computes order fees and tax. The cart preview and checkout
// both price through Quote so the two can never disagree.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/bistro/internal/models"
)

// Config holds the restaurant's fee and tax settings.
type Config struct {
	DeliveryFee decimal.Decimal
	PickupFee   decimal.Decimal
	TaxRate     decimal.Decimal
}

// DefaultConfig matches the storefront: $3.99 delivery, free pickup, 8% tax.
func DefaultConfig() Config {
	return Config{
		DeliveryFee: decimal.RequireFromString("3.99"),
		PickupFee:   decimal.Zero,
		TaxRate:     decimal.RequireFromString("0.08"),
	}
}

// Validate rejects negative fees and rates.
func (c Config) Validate() error {
	if c.DeliveryFee.IsNegative() || c.PickupFee.IsNegative() || c.TaxRate.IsNegative() {
		return fmt.Errorf("%w: fees and tax rate must not be negative", models.ErrInvalidArgument)
	}
	return nil
}

// Breakdown is a priced order summary.
type Breakdown struct {
	Subtotal decimal.Decimal
	Fee      decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Quote prices a subtotal for the given fulfillment option.
// tax = round(subtotal × rate, 2), total = subtotal + fee + tax.
func Quote(cfg Config, subtotal decimal.Decimal, fulfillment models.Fulfillment) (Breakdown, error) {
	var fee decimal.Decimal
	switch fulfillment {
	case models.FulfillmentDelivery:
		fee = cfg.DeliveryFee
	case models.FulfillmentPickup:
		fee = cfg.PickupFee
	default:
		return Breakdown{}, fmt.Errorf("%w: unknown fulfillment %q", models.ErrInvalidArgument, fulfillment)
	}

	tax := subtotal.Mul(cfg.TaxRate).Round(2)
	return Breakdown{
		Subtotal: subtotal,
		Fee:      fee,
		Tax:      tax,
		Total:    subtotal.Add(fee).Add(tax),
	}, nil
}

// LineSubtotal is price × quantity.
func LineSubtotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
