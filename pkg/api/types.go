package api

import "time"

// Header names read by the server.
const (
	// CartSessionHeader identifies an anonymous cart. Authenticated callers
	// use their account cart and may omit it.
	CartSessionHeader   = "Cart-Session"
	AuthorizationHeader = "Authorization"
)

// Money values are decimal strings with two fractional digits, e.g. "12.99".

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

type MenuItem struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Price           string `json:"price"`
	ImageURL        string `json:"image_url"`
	Category        string `json:"category"`
	PreparationTime int    `json:"preparation_time"`
	Available       bool   `json:"available"`
}

type CartLine struct {
	MenuItemID int64  `json:"menu_item_id"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	Quantity   int    `json:"quantity"`
	Subtotal   string `json:"subtotal"`
}

type PriceBreakdown struct {
	Subtotal string `json:"subtotal"`
	Fee      string `json:"fee"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// Cart is a priced view of the caller's cart.
type Cart struct {
	Lines       []CartLine     `json:"lines"`
	Count       int            `json:"count"`
	Fulfillment string         `json:"fulfillment"`
	Pricing     PriceBreakdown `json:"pricing"`
}

type OrderItem struct {
	ID         string `json:"id"`
	MenuItemID int64  `json:"menu_item_id"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	Quantity   int    `json:"quantity"`
	Subtotal   string `json:"subtotal"`
	Status     string `json:"status"`
}

type Order struct {
	ID                  string      `json:"id"`
	UserID              string      `json:"user_id"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
	Status              string      `json:"status"`
	Fulfillment         string      `json:"fulfillment"`
	Subtotal            string      `json:"subtotal"`
	Fee                 string      `json:"fee"`
	Tax                 string      `json:"tax"`
	Total               string      `json:"total"`
	TableNumber         *int        `json:"table_number,omitempty"`
	SpecialInstructions string      `json:"special_instructions,omitempty"`
	CancelReason        string      `json:"cancel_reason,omitempty"`
	Items               []OrderItem `json:"items"`
}

// Auth

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse answers Register and Login.
type SessionResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User         User     `json:"user"`
	Capabilities []string `json:"capabilities"`
}

// Menu

type ListMenuItemsRequest struct {
	Category      string `json:"category,omitempty"`
	Query         string `json:"query,omitempty"`
	AvailableOnly bool   `json:"available_only,omitempty"`
}

type ListMenuItemsResponse struct {
	Items []MenuItem `json:"items"`
}

type GetMenuItemRequest struct {
	ID int64 `json:"id"`
}

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Categories []string `json:"categories"`
}

type CreateMenuItemRequest struct {
	Item MenuItem `json:"item"`
}

// UpdateMenuItemRequest changes only the fields that are set.
type UpdateMenuItemRequest struct {
	ID              int64   `json:"id"`
	Name            *string `json:"name,omitempty"`
	Description     *string `json:"description,omitempty"`
	Price           *string `json:"price,omitempty"`
	ImageURL        *string `json:"image_url,omitempty"`
	Category        *string `json:"category,omitempty"`
	PreparationTime *int    `json:"preparation_time,omitempty"`
	Available       *bool   `json:"available,omitempty"`
}

type DeleteMenuItemRequest struct {
	ID int64 `json:"id"`
}

type DeleteMenuItemResponse struct{}

type SetAvailabilityRequest struct {
	ID        int64 `json:"id"`
	Available bool  `json:"available"`
}

// MenuItemResponse answers every call that returns a single item.
type MenuItemResponse struct {
	Item MenuItem `json:"item"`
}

// Cart

type GetCartRequest struct {
	// Fulfillment prices the preview; empty means delivery.
	Fulfillment string `json:"fulfillment,omitempty"`
}

type AddItemRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
}

type RemoveItemRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
}

type UpdateQuantityRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

type ClearCartRequest struct{}

// CartResponse answers every cart call with the cart after the change.
type CartResponse struct {
	Cart Cart `json:"cart"`
}

// Orders

type CheckoutRequest struct {
	Fulfillment         string `json:"fulfillment,omitempty"`
	TableNumber         *int   `json:"table_number,omitempty"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

type GetOrderRequest struct {
	ID string `json:"id"`
}

type ListOrdersRequest struct {
	Statuses []string `json:"statuses,omitempty"`
	// ActiveOnly selects pending, preparing and ready orders.
	ActiveOnly bool `json:"active_only,omitempty"`
}

type ListOrdersResponse struct {
	Orders []Order `json:"orders"`
}

type AdvanceItemRequest struct {
	OrderID string `json:"order_id"`
	ItemID  string `json:"item_id"`
}

type CancelOrderRequest struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason,omitempty"`
}

// OrderResponse answers every call that returns a single order.
type OrderResponse struct {
	Order Order `json:"order"`
}

type WatchOrdersRequest struct {
	Statuses   []string `json:"statuses,omitempty"`
	ActiveOnly bool     `json:"active_only,omitempty"`
}

// OrderUpdate is one message of the WatchOrders stream. The stream opens
// with a "snapshot" update per matching order.
type OrderUpdate struct {
	Type  string `json:"type"`
	Order Order  `json:"order"`
}
