// Package catalog holds the static product dataset and the pure lookups
// the storefront runs over it: filtering, search, sorting, related
// products, categories and tags.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"storefront/pricing"
)

// DefaultRelatedLimit is used when Related is called without a positive limit.
const DefaultRelatedLimit = 4

//go:embed catalog.yaml
var defaultDataset []byte

// Catalog is a read-only product dataset. Safe for concurrent use.
type Catalog struct {
	products   []Product
	byID       map[string]int
	categories []Category
}

type datasetFile struct {
	Categories []Category       `yaml:"categories"`
	Products   []datasetProduct `yaml:"products"`
}

type datasetProduct struct {
	ID            string    `yaml:"id"`
	Name          string    `yaml:"name"`
	Description   string    `yaml:"description"`
	Price         float64   `yaml:"price"`
	OriginalPrice *float64  `yaml:"originalPrice"`
	Category      string    `yaml:"category"`
	Subcategory   string    `yaml:"subcategory"`
	Images        []string  `yaml:"images"`
	Rating        float64   `yaml:"rating"`
	ReviewCount   int       `yaml:"reviewCount"`
	InStock       bool      `yaml:"inStock"`
	StockQuantity int       `yaml:"stockQuantity"`
	Tags          []string  `yaml:"tags"`
	Featured      bool      `yaml:"featured"`
	CreatedAt     time.Time `yaml:"createdAt"`
	UpdatedAt     time.Time `yaml:"updatedAt"`
}

func (d datasetProduct) product() Product {
	p := Product{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		Price:         pricing.FromDollars(d.Price),
		Category:      d.Category,
		Subcategory:   d.Subcategory,
		Images:        d.Images,
		Rating:        d.Rating,
		ReviewCount:   d.ReviewCount,
		InStock:       d.InStock,
		StockQuantity: d.StockQuantity,
		Tags:          d.Tags,
		Featured:      d.Featured,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if d.OriginalPrice != nil {
		original := pricing.FromDollars(*d.OriginalPrice)
		p.OriginalPrice = &original
	}
	return p
}

// New builds a catalog from products and categories, validating every product.
func New(products []Product, categories []Category) (*Catalog, error) {
	c := &Catalog{
		products:   make([]Product, 0, len(products)),
		byID:       make(map[string]int, len(products)),
		categories: append([]Category(nil), categories...),
	}
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("product %s: %s", p.ID, ErrMsgDuplicateProduct)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

// Load parses a YAML dataset.
func Load(data []byte) (*Catalog, error) {
	var file datasetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	products := make([]Product, len(file.Products))
	for i, d := range file.Products {
		products[i] = d.product()
	}
	return New(products, file.Categories)
}

// LoadFile reads and parses a YAML dataset from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Load(data)
}

// Default returns the embedded storefront dataset.
func Default() *Catalog {
	c, err := Load(defaultDataset)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Products returns every product matching filters, in catalog order.
func (c *Catalog) Products(filters Filters) []Product {
	result := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if filters.Match(p) {
			result = append(result, p)
		}
	}
	return result
}

// All returns every product in catalog order.
func (c *Catalog) All() []Product {
	return c.Products(Filters{})
}

// ProductByID looks up a single product.
func (c *Catalog) ProductByID(id string) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Featured returns the featured products.
func (c *Catalog) Featured() []Product {
	featured := true
	return c.Products(Filters{Featured: &featured})
}

// ByCategory returns the products in a category.
func (c *Catalog) ByCategory(categoryID string) []Product {
	return c.Products(Filters{Category: categoryID})
}

// BySubcategory returns the products in a subcategory.
func (c *Catalog) BySubcategory(subcategoryID string) []Product {
	return c.Products(Filters{Subcategory: subcategoryID})
}

// Search returns products whose name, description or tags contain query,
// ignoring case.
func (c *Catalog) Search(query string) []Product {
	return c.Products(Filters{Search: query})
}

// Related returns up to limit other products from the same category.
// An unknown id yields no products.
func (c *Catalog) Related(productID string, limit int) []Product {
	product, ok := c.ProductByID(productID)
	if !ok {
		return nil
	}
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	related := make([]Product, 0, limit)
	for _, p := range c.products {
		if len(related) == limit {
			break
		}
		if p.ID != productID && p.Category == product.Category {
			related = append(related, p)
		}
	}
	return related
}

// Categories returns all categories.
func (c *Catalog) Categories() []Category {
	return append([]Category(nil), c.categories...)
}

// CategoryByID looks up a category.
func (c *Catalog) CategoryByID(id string) (Category, bool) {
	for _, cat := range c.categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return Category{}, false
}

// Tags returns every distinct tag, sorted.
func (c *Catalog) Tags() []string {
	seen := make(map[string]struct{})
	for _, p := range c.products {
		for _, tag := range p.Tags {
			seen[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// PriceRange returns the lowest and highest product prices.
func (c *Catalog) PriceRange() (min, max pricing.Cents) {
	for i, p := range c.products {
		if i == 0 || p.Price < min {
			min = p.Price
		}
		if i == 0 || p.Price > max {
			max = p.Price
		}
	}
	return min, max
}
