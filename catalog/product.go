package catalog

import (
	"fmt"
	"time"

	"storefront/pricing"
)

// Product is an immutable catalog entry. Carts hold copies of it, so the
// price a shopper sees is the price resolved when the item was added.
type Product struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Price         pricing.Cents  `json:"price"`
	OriginalPrice *pricing.Cents `json:"originalPrice,omitempty"`
	Category      string         `json:"category"`
	Subcategory   string         `json:"subcategory,omitempty"`
	Images        []string       `json:"images"`
	Rating        float64        `json:"rating"`
	ReviewCount   int            `json:"reviewCount"`
	InStock       bool           `json:"inStock"`
	StockQuantity int            `json:"stockQuantity"`
	Tags          []string       `json:"tags"`
	Featured      bool           `json:"featured"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// Available reports whether the product can be added to a cart at all.
func (p Product) Available() bool {
	return p.InStock && p.StockQuantity > 0
}

// Discount returns the markdown from the original price, if any.
func (p Product) Discount() (pricing.Cents, bool) {
	if p.OriginalPrice == nil || *p.OriginalPrice <= p.Price {
		return 0, false
	}
	return *p.OriginalPrice - p.Price, true
}

// Validate checks the invariants every catalog entry must hold.
func (p Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("product %q: %s", p.Name, ErrMsgProductIDRequired)
	}
	if p.Price < 0 {
		return fmt.Errorf("product %s: %s", p.ID, ErrMsgNegativePrice)
	}
	if p.OriginalPrice != nil && p.Price > *p.OriginalPrice {
		return fmt.Errorf("product %s: %s", p.ID, ErrMsgPriceAboveOriginal)
	}
	if p.StockQuantity < 0 {
		return fmt.Errorf("product %s: %s", p.ID, ErrMsgNegativeStock)
	}
	return nil
}

// Category groups products for browsing.
type Category struct {
	ID            string        `json:"id" yaml:"id"`
	Name          string        `json:"name" yaml:"name"`
	Description   string        `json:"description" yaml:"description"`
	Image         string        `json:"image" yaml:"image"`
	Subcategories []Subcategory `json:"subcategories,omitempty" yaml:"subcategories"`
}

type Subcategory struct {
	ID               string `json:"id" yaml:"id"`
	Name             string `json:"name" yaml:"name"`
	Description      string `json:"description" yaml:"description"`
	ParentCategoryID string `json:"parentCategoryId" yaml:"parentCategoryId"`
}

// Error message constants for catalog validation.
const (
	ErrMsgProductIDRequired  = "product id is required"
	ErrMsgNegativePrice      = "price must not be negative"
	ErrMsgPriceAboveOriginal = "price must not exceed original price"
	ErrMsgNegativeStock      = "stock quantity must not be negative"
	ErrMsgDuplicateProduct   = "duplicate product id"
	ErrMsgProductNotFound    = "Product not found"
)
