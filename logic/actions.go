package logic

import "storefront/catalog"

// Action type names, as they appear on the wire.
const (
	TypeAddToCart          = "ADD_TO_CART"
	TypeRemoveFromCart     = "REMOVE_FROM_CART"
	TypeUpdateCartQuantity = "UPDATE_CART_QUANTITY"
	TypeClearCart          = "CLEAR_CART"
	TypeAddToWishlist      = "ADD_TO_WISHLIST"
	TypeRemoveFromWishlist = "REMOVE_FROM_WISHLIST"
	TypeToggleWishlist     = "TOGGLE_WISHLIST"
	TypeAddRecentlyViewed  = "ADD_RECENTLY_VIEWED"
	TypeAddSearchHistory   = "ADD_SEARCH_HISTORY"
	TypeClearSearchHistory = "CLEAR_SEARCH_HISTORY"
	TypeUpdateFilters      = "UPDATE_FILTERS"
	TypeClearFilters       = "CLEAR_FILTERS"
	TypeSetTheme           = "SET_THEME"
)

// TypeRemoveOrdered is raised by checkout after a successful charge and is
// not accepted from clients.
const TypeRemoveOrdered = "REMOVE_ORDERED"

// Action is a state transition request handled by Reduce.
type Action interface {
	Type() string
}

type AddToCart struct {
	Product  catalog.Product
	Quantity int
}

type RemoveFromCart struct {
	ProductID string
}

type UpdateCartQuantity struct {
	ProductID string
	Quantity  int
}

type ClearCart struct{}

type AddToWishlist struct {
	ProductID string
}

type RemoveFromWishlist struct {
	ProductID string
}

type ToggleWishlist struct {
	ProductID string
}

type AddRecentlyViewed struct {
	ProductID string
}

type AddSearchHistory struct {
	Term string
}

type ClearSearchHistory struct{}

// UpdateFilters resets the filter keys named in Clear, then merges the
// fields set in Filters into the current filters.
type UpdateFilters struct {
	Filters catalog.Filters
	Clear   []string
}

type ClearFilters struct{}

type SetTheme struct {
	Theme Theme
}

// RemoveOrdered takes the quantities of an order out of the cart.
type RemoveOrdered struct {
	Items []CartItem
}

func (AddToCart) Type() string          { return TypeAddToCart }
func (RemoveFromCart) Type() string     { return TypeRemoveFromCart }
func (UpdateCartQuantity) Type() string { return TypeUpdateCartQuantity }
func (ClearCart) Type() string          { return TypeClearCart }
func (AddToWishlist) Type() string      { return TypeAddToWishlist }
func (RemoveFromWishlist) Type() string { return TypeRemoveFromWishlist }
func (ToggleWishlist) Type() string     { return TypeToggleWishlist }
func (AddRecentlyViewed) Type() string  { return TypeAddRecentlyViewed }
func (AddSearchHistory) Type() string   { return TypeAddSearchHistory }
func (ClearSearchHistory) Type() string { return TypeClearSearchHistory }
func (UpdateFilters) Type() string      { return TypeUpdateFilters }
func (ClearFilters) Type() string       { return TypeClearFilters }
func (SetTheme) Type() string           { return TypeSetTheme }
func (RemoveOrdered) Type() string      { return TypeRemoveOrdered }
