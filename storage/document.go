package storage

import (
	"encoding/json"
	"fmt"

	"storefront/catalog"
	"storefront/logic"
)

// Field names of the persisted document.
const (
	FieldCart           = "cart"
	FieldWishlist       = "wishlist"
	FieldRecentlyViewed = "recentlyViewed"
	FieldSearchHistory  = "searchHistory"
	FieldFilters        = "filters"
	FieldTheme          = "theme"
)

// Report lists what Decode had to drop. Fields names whole top-level
// fields that failed validation; Items counts cart items that were
// skipped.
type Report struct {
	Fields []string
	Items  int
}

// Clean reports whether nothing was dropped.
func (r Report) Clean() bool {
	return len(r.Fields) == 0 && r.Items == 0
}

// Encode writes the persisted document for state.
func Encode(state logic.AppState) ([]byte, error) {
	return json.Marshal(state)
}

type storedCart struct {
	Items []json.RawMessage `json:"items"`
}

// Decode rebuilds a state from a persisted document. A document that is
// not a JSON object is an error. Otherwise each field is validated on its
// own and invalid fields keep their empty value. Cart items are re-added
// one at a time so totals are recomputed and stock limits re-checked.
func Decode(data []byte) (logic.AppState, Report, error) {
	var report Report
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return logic.EmptyState(), report, fmt.Errorf("decode state: %w", err)
	}
	if doc == nil {
		return logic.EmptyState(), report, fmt.Errorf("decode state: document is null")
	}

	state := logic.EmptyState()
	drop := func(field string) { report.Fields = append(report.Fields, field) }

	if raw, ok := doc[FieldCart]; ok {
		cart, skipped, err := decodeCart(raw)
		if err != nil {
			drop(FieldCart)
		} else {
			state.Cart = cart
			report.Items = skipped
		}
	}
	if raw, ok := doc[FieldWishlist]; ok {
		if list, err := decodeStrings(raw); err != nil {
			drop(FieldWishlist)
		} else {
			state.Wishlist = logic.Bounded(list, len(list))
		}
	}
	if raw, ok := doc[FieldRecentlyViewed]; ok {
		if list, err := decodeStrings(raw); err != nil {
			drop(FieldRecentlyViewed)
		} else {
			state.RecentlyViewed = logic.Bounded(list, logic.HistoryLimit)
		}
	}
	if raw, ok := doc[FieldSearchHistory]; ok {
		if list, err := decodeStrings(raw); err != nil {
			drop(FieldSearchHistory)
		} else {
			state.SearchHistory = logic.Bounded(list, logic.HistoryLimit)
		}
	}
	if raw, ok := doc[FieldFilters]; ok {
		var filters catalog.Filters
		if err := decodeObject(raw, &filters); err != nil {
			drop(FieldFilters)
		} else {
			state.Filters = filters
		}
	}
	if raw, ok := doc[FieldTheme]; ok {
		var theme logic.Theme
		if err := json.Unmarshal(raw, &theme); err != nil || !theme.Valid() {
			drop(FieldTheme)
		} else {
			state.Theme = theme
		}
	}
	return state, report, nil
}

func decodeCart(raw json.RawMessage) (logic.Cart, int, error) {
	var stored storedCart
	if err := decodeObject(raw, &stored); err != nil {
		return logic.Cart{}, 0, err
	}
	if stored.Items == nil {
		return logic.Cart{}, 0, fmt.Errorf("cart items missing")
	}
	var cart logic.Cart
	skipped := 0
	for _, rawItem := range stored.Items {
		var item logic.CartItem
		if err := json.Unmarshal(rawItem, &item); err != nil {
			skipped++
			continue
		}
		next, err := cart.AddItem(item.Product, item.Quantity)
		if err != nil {
			skipped++
			continue
		}
		cart = next
	}
	return cart, skipped, nil
}

// decodeStrings keeps the string elements of a JSON array and skips the rest.
func decodeStrings(raw json.RawMessage) ([]string, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, err
	}
	if elems == nil {
		return nil, fmt.Errorf("expected array")
	}
	list := make([]string, 0, len(elems))
	for _, elem := range elems {
		var v string
		if err := json.Unmarshal(elem, &v); err == nil && string(elem) != "null" {
			list = append(list, v)
		}
	}
	return list, nil
}

// decodeObject rejects null and non-object values before unmarshalling.
func decodeObject(raw json.RawMessage, v any) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return err
	}
	if probe == nil {
		return fmt.Errorf("expected object")
	}
	return json.Unmarshal(raw, v)
}
