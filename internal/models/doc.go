// Package models defines the core domain models for Bistro.
//
// # Models
//
//   - MenuItem: an orderable catalog entry with price and availability
//   - Order: an immutable record of a completed checkout
//   - OrderItem: one line of an Order with its own fulfillment status
//   - User: a registered account carrying its server-side Role
//
// # Status machine
//
// Every OrderItem walks pending -> preparing -> ready -> delivered, one step at
// a time. The Order status is never stored independently of its items: it is
// recomputed with DeriveOrderStatus after each item transition. The only
// exception is OrderCancelled, which is terminal and reachable from a pending
// order only.
//
// # Design Principles
//
//  1. Closed enumerations for statuses, never free-form strings
//  2. Money is decimal.Decimal with cent precision, never float64
//  3. Use ID values instead of pointers for relationships
//  4. OrderItems snapshot name and price, so catalog edits never rewrite history
package models
