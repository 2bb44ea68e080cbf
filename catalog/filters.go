package catalog

import (
	"bytes"
	"encoding/json"
	"strings"

	"storefront/pricing"
)

// Filters narrows a product listing. Nil or empty fields do not filter.
type Filters struct {
	Category    string         `json:"category,omitempty"`
	Subcategory string         `json:"subcategory,omitempty"`
	MinPrice    *pricing.Cents `json:"minPrice,omitempty"`
	MaxPrice    *pricing.Cents `json:"maxPrice,omitempty"`
	InStock     *bool          `json:"inStock,omitempty"`
	Featured    *bool          `json:"featured,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Search      string         `json:"search,omitempty"`
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f.Category == "" && f.Subcategory == "" && f.MinPrice == nil && f.MaxPrice == nil &&
		f.InStock == nil && f.Featured == nil && f.Tags == nil && f.Search == ""
}

// Merge overlays the fields set in update onto f.
func (f Filters) Merge(update Filters) Filters {
	if update.Category != "" {
		f.Category = update.Category
	}
	if update.Subcategory != "" {
		f.Subcategory = update.Subcategory
	}
	if update.MinPrice != nil {
		f.MinPrice = update.MinPrice
	}
	if update.MaxPrice != nil {
		f.MaxPrice = update.MaxPrice
	}
	if update.InStock != nil {
		f.InStock = update.InStock
	}
	if update.Featured != nil {
		f.Featured = update.Featured
	}
	if update.Tags != nil {
		f.Tags = append([]string(nil), update.Tags...)
	}
	if update.Search != "" {
		f.Search = update.Search
	}
	return f
}

// Filter keys as they appear on the wire.
const (
	FilterCategory    = "category"
	FilterSubcategory = "subcategory"
	FilterMinPrice    = "minPrice"
	FilterMaxPrice    = "maxPrice"
	FilterInStock     = "inStock"
	FilterFeatured    = "featured"
	FilterTags        = "tags"
	FilterSearch      = "search"
)

// FilterKeys lists every key Without accepts.
var FilterKeys = []string{
	FilterCategory, FilterSubcategory, FilterMinPrice, FilterMaxPrice,
	FilterInStock, FilterFeatured, FilterTags, FilterSearch,
}

// Without resets the named fields. Unknown keys are ignored.
func (f Filters) Without(keys ...string) Filters {
	for _, key := range keys {
		switch key {
		case FilterCategory:
			f.Category = ""
		case FilterSubcategory:
			f.Subcategory = ""
		case FilterMinPrice:
			f.MinPrice = nil
		case FilterMaxPrice:
			f.MaxPrice = nil
		case FilterInStock:
			f.InStock = nil
		case FilterFeatured:
			f.Featured = nil
		case FilterTags:
			f.Tags = nil
		case FilterSearch:
			f.Search = ""
		}
	}
	return f
}

// FilterPatch is a partial filter update. Keys sent with an empty value
// ("", null or []) land in Clear; the rest are decoded into Set.
type FilterPatch struct {
	Set   Filters
	Clear []string
}

func (p *FilterPatch) UnmarshalJSON(data []byte) error {
	var set Filters
	if err := json.Unmarshal(data, &set); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var cleared []string
	for _, key := range FilterKeys {
		value, ok := raw[key]
		if !ok {
			continue
		}
		switch string(bytes.TrimSpace(value)) {
		case "null", `""`, "[]":
			cleared = append(cleared, key)
		}
	}
	p.Set, p.Clear = set, cleared
	return nil
}

// Match reports whether a product passes every set filter.
func (f Filters) Match(p Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Subcategory != "" && p.Subcategory != f.Subcategory {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.InStock != nil && p.InStock != *f.InStock {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	if len(f.Tags) > 0 && !hasAnyTag(p, f.Tags) {
		return false
	}
	if f.Search != "" && !matchesSearch(p, f.Search) {
		return false
	}
	return true
}

func hasAnyTag(p Product, tags []string) bool {
	for _, want := range tags {
		for _, tag := range p.Tags {
			if tag == want {
				return true
			}
		}
	}
	return false
}

func matchesSearch(p Product, query string) bool {
	term := strings.ToLower(query)
	if strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}
