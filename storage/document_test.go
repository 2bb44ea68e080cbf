package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/catalog"
	"storefront/logic"
	"storefront/pricing"
)

func sampleState(t *testing.T) logic.AppState {
	t.Helper()
	a := catalog.Product{ID: "10", Name: "Tee", Price: 2000, InStock: true, StockQuantity: 150, Tags: []string{"cotton"}}
	b := catalog.Product{ID: "11", Name: "Jacket", Price: 1500, InStock: true, StockQuantity: 8}
	max := pricing.Cents(9000)
	state, err := logic.Replay(logic.EmptyState(),
		logic.AddToCart{Product: a, Quantity: 2},
		logic.AddToCart{Product: b, Quantity: 1},
		logic.AddToWishlist{ProductID: "3"},
		logic.AddRecentlyViewed{ProductID: "10"},
		logic.AddSearchHistory{Term: "jacket"},
		logic.UpdateFilters{Filters: catalog.Filters{Category: "apparel", MaxPrice: &max}},
		logic.SetTheme{Theme: logic.ThemeDark},
	)
	require.NoError(t, err)
	return state
}

func TestEncodeDecode_PreservesState(t *testing.T) {
	state := sampleState(t)
	data, err := Encode(state)
	require.NoError(t, err)

	decoded, report, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, pricing.Cents(5500), decoded.Cart.Total())
	assert.Equal(t, 3, decoded.Cart.ItemCount())
	assert.Equal(t, state.Wishlist, decoded.Wishlist)
	assert.Equal(t, state.RecentlyViewed, decoded.RecentlyViewed)
	assert.Equal(t, state.SearchHistory, decoded.SearchHistory)
	assert.Equal(t, "apparel", decoded.Filters.Category)
	assert.Equal(t, logic.ThemeDark, decoded.Theme)
}

func TestEncode_DocumentLayout(t *testing.T) {
	data, err := Encode(sampleState(t))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, jsonUnmarshal(data, &doc))
	for _, field := range []string{FieldCart, FieldWishlist, FieldRecentlyViewed, FieldSearchHistory, FieldFilters, FieldTheme} {
		assert.Contains(t, doc, field)
	}
	cart := doc[FieldCart].(map[string]any)
	assert.Equal(t, 55.0, cart["total"])
	assert.Equal(t, 3.0, cart["itemCount"])
}

func TestDecode_UnparseableDocument(t *testing.T) {
	for _, doc := range []string{`{not json`, `[]`, `null`, `"text"`} {
		state, _, err := Decode([]byte(doc))
		assert.Error(t, err, doc)
		assert.True(t, state.Cart.IsEmpty())
		assert.Equal(t, logic.ThemeSystem, state.Theme)
	}
}

func TestDecode_DropsInvalidFieldsKeepsValidOnes(t *testing.T) {
	doc := `{
		"cart": "not a cart",
		"wishlist": ["1", 2, "3", null],
		"recentlyViewed": {"a": 1},
		"searchHistory": ["a","b","c","d","e","f","g","h","i","j","k","l"],
		"filters": [1, 2],
		"theme": "neon"
	}`
	state, report, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{FieldCart, FieldRecentlyViewed, FieldFilters, FieldTheme}, report.Fields)
	assert.Equal(t, []string{"1", "3"}, state.Wishlist)
	assert.Empty(t, state.RecentlyViewed)
	assert.Len(t, state.SearchHistory, logic.HistoryLimit)
	assert.Equal(t, "a", state.SearchHistory[0])
	assert.True(t, state.Filters.IsZero())
	assert.Equal(t, logic.ThemeSystem, state.Theme)
}

func TestDecode_RecomputesCartTotalsAndSkipsBadItems(t *testing.T) {
	doc := `{"cart": {"items": [
		{"product": {"id": "a", "price": 20, "inStock": true, "stockQuantity": 5}, "quantity": 2},
		{"product": {"id": "b", "price": 15, "inStock": true, "stockQuantity": 5}, "quantity": 0},
		{"product": {"id": "c", "price": 5, "inStock": true, "stockQuantity": 1}, "quantity": 9},
		{"product": "broken", "quantity": 1},
		{"product": {"id": "a", "price": 20, "inStock": true, "stockQuantity": 5}, "quantity": 1}
	], "total": 12345, "itemCount": 99}}`
	state, report, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Items)
	assert.Equal(t, 1, state.Cart.Len())
	assert.Equal(t, 3, state.Cart.Quantity("a"))
	assert.Equal(t, pricing.Cents(6000), state.Cart.Total())
}

func TestDecode_MissingFieldsUseDefaults(t *testing.T) {
	state, report, err := Decode([]byte(`{}`))
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, logic.EmptyState(), state)
}
