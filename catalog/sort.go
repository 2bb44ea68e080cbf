package catalog

import "sort"

// SortKey names a product ordering.
type SortKey string

const (
	SortPopular  SortKey = "popular"
	SortNewest   SortKey = "newest"
	SortTopSales SortKey = "top-sales"
	SortPriceLow SortKey = "price-low"
)

// Valid reports whether k names a known ordering.
func (k SortKey) Valid() bool {
	switch k {
	case SortPopular, SortNewest, SortTopSales, SortPriceLow:
		return true
	}
	return false
}

// Sort returns a sorted copy of products. Unknown keys keep the input order.
// Ties keep their input order.
func Sort(products []Product, key SortKey) []Product {
	sorted := append([]Product(nil), products...)
	var less func(a, b Product) bool
	switch key {
	case SortPopular:
		less = func(a, b Product) bool {
			return a.Rating*float64(a.ReviewCount) > b.Rating*float64(b.ReviewCount)
		}
	case SortNewest:
		less = func(a, b Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortTopSales:
		// Rating stands in for sales volume.
		less = func(a, b Product) bool { return a.Rating > b.Rating }
	case SortPriceLow:
		less = func(a, b Product) bool { return a.Price < b.Price }
	default:
		return sorted
	}
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	return sorted
}
