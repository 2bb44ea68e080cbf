package logic

import (
	"encoding/json"

	"storefront/catalog"
	"storefront/pricing"
)

// HistoryLimit bounds the recently-viewed and search-history lists.
const HistoryLimit = 10

// Theme is the persisted colour scheme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Themes lists the accepted theme values.
var Themes = []Theme{ThemeLight, ThemeDark, ThemeSystem}

// Valid reports whether t is an accepted theme.
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// CartItem is a product snapshot plus a quantity of at least one.
type CartItem struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Subtotal is the line total for the item.
func (i CartItem) Subtotal() pricing.Cents {
	return i.Product.Price.Times(i.Quantity)
}

// Cart is an insertion-ordered list of items. Totals are always derived
// from the items. The zero value is an empty cart.
type Cart struct {
	items []CartItem
}

// Items returns a copy of the cart items in insertion order.
func (c Cart) Items() []CartItem {
	return append([]CartItem(nil), c.items...)
}

// Len returns the number of distinct products in the cart.
func (c Cart) Len() int {
	return len(c.items)
}

// IsEmpty reports whether the cart holds no items.
func (c Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Total is the sum of price times quantity over all items.
func (c Cart) Total() pricing.Cents {
	var total pricing.Cents
	for _, item := range c.items {
		total += item.Subtotal()
	}
	return total
}

// ItemCount is the sum of quantities over all items.
func (c Cart) ItemCount() int {
	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Item returns the item for productID, if present.
func (c Cart) Item(productID string) (CartItem, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.items[i], true
	}
	return CartItem{}, false
}

// Contains reports whether productID is in the cart.
func (c Cart) Contains(productID string) bool {
	return c.indexOf(productID) >= 0
}

// Quantity returns the quantity held for productID, or zero.
func (c Cart) Quantity(productID string) int {
	item, _ := c.Item(productID)
	return item.Quantity
}

// Totals applies the default pricing policy to the cart subtotal.
func (c Cart) Totals() pricing.Totals {
	return pricing.Compute(c.Total())
}

func (c Cart) indexOf(productID string) int {
	for i, item := range c.items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}

type cartJSON struct {
	Items     []CartItem    `json:"items"`
	Total     pricing.Cents `json:"total"`
	ItemCount int           `json:"itemCount"`
}

// MarshalJSON writes the items along with their derived totals.
func (c Cart) MarshalJSON() ([]byte, error) {
	items := c.items
	if items == nil {
		items = []CartItem{}
	}
	return json.Marshal(cartJSON{Items: items, Total: c.Total(), ItemCount: c.ItemCount()})
}

// UnmarshalJSON rebuilds the cart by adding each item in order. Stored
// totals are ignored.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var raw cartJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cart, err := NewCart(raw.Items...)
	if err != nil {
		return err
	}
	*c = cart
	return nil
}

// AppState is the whole per-session document: cart, wishlist, browsing
// history, filters and theme.
type AppState struct {
	Cart           Cart            `json:"cart"`
	Wishlist       []string        `json:"wishlist"`
	RecentlyViewed []string        `json:"recentlyViewed"`
	SearchHistory  []string        `json:"searchHistory"`
	Filters        catalog.Filters `json:"filters"`
	Theme          Theme           `json:"theme"`
}

// EmptyState returns the initial state of a new session.
func EmptyState() AppState {
	return AppState{
		Wishlist:       []string{},
		RecentlyViewed: []string{},
		SearchHistory:  []string{},
		Theme:          ThemeSystem,
	}
}

// InWishlist reports whether productID is wishlisted.
func (s AppState) InWishlist(productID string) bool {
	return indexOf(s.Wishlist, productID) >= 0
}

// Clone returns a copy that shares no slices with s.
func (s AppState) Clone() AppState {
	s.Wishlist = append([]string{}, s.Wishlist...)
	s.RecentlyViewed = append([]string{}, s.RecentlyViewed...)
	s.SearchHistory = append([]string{}, s.SearchHistory...)
	s.Filters = catalog.Filters{}.Merge(s.Filters)
	return s
}
