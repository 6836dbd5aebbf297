package models

import "errors"

// Errors shared by the cart, catalog and order lifecycle. Every operation that
// returns one of these has left state unchanged.
var (
	ErrItemUnavailable    = errors.New("menu item is not available")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("operation not permitted for this role")
	ErrNotFound           = errors.New("not found")
	ErrTerminalState      = errors.New("item is already delivered")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInvalidArgument    = errors.New("invalid argument")
)
