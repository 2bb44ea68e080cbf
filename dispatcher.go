package main

import (
	"storefront/catalog"
	"storefront/kit"
	"storefront/logic"
)

// resolver finishes decoding a command once the catalog is at hand.
// Commands on the wire name products by id; the reducer needs the product.
type resolver func(c *catalog.Catalog) (logic.Action, error)

type addToCartBody struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type productBody struct {
	ProductID string `json:"productId"`
}

type quantityBody struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type searchBody struct {
	Term string `json:"term"`
}

type filtersBody struct {
	Filters catalog.FilterPatch `json:"filters"`
}

type themeBody struct {
	Theme logic.Theme `json:"theme"`
}

type emptyBody struct{}

func resolved(action logic.Action) resolver {
	return func(*catalog.Catalog) (logic.Action, error) { return action, nil }
}

func toAddToCart(body addToCartBody) resolver {
	return func(c *catalog.Catalog) (logic.Action, error) {
		if err := kit.RequireNotBlank(body.ProductID, logic.ErrMsgProductIDRequired); err != nil {
			return nil, err
		}
		product, ok := c.ProductByID(body.ProductID)
		if !ok {
			return nil, kit.NewNotFound(catalog.ErrMsgProductNotFound)
		}
		quantity := 1
		if body.Quantity != nil {
			quantity = *body.Quantity
		}
		return logic.AddToCart{Product: product, Quantity: quantity}, nil
	}
}

// commands decodes every command the Dispatch operation accepts.
var commands = kit.NewCommandRouter[resolver]("storefront").
	On(logic.TypeAddToCart, kit.JSONCommand(toAddToCart)).
	On(logic.TypeRemoveFromCart, kit.JSONCommand(func(b productBody) resolver {
		return resolved(logic.RemoveFromCart{ProductID: b.ProductID})
	})).
	On(logic.TypeUpdateCartQuantity, kit.JSONCommand(func(b quantityBody) resolver {
		return resolved(logic.UpdateCartQuantity{ProductID: b.ProductID, Quantity: b.Quantity})
	})).
	On(logic.TypeClearCart, kit.JSONCommand(func(emptyBody) resolver {
		return resolved(logic.ClearCart{})
	})).
	On(logic.TypeAddToWishlist, kit.JSONCommand(func(b productBody) resolver {
		return resolved(logic.AddToWishlist{ProductID: b.ProductID})
	})).
	On(logic.TypeRemoveFromWishlist, kit.JSONCommand(func(b productBody) resolver {
		return resolved(logic.RemoveFromWishlist{ProductID: b.ProductID})
	})).
	On(logic.TypeToggleWishlist, kit.JSONCommand(func(b productBody) resolver {
		return resolved(logic.ToggleWishlist{ProductID: b.ProductID})
	})).
	On(logic.TypeAddRecentlyViewed, kit.JSONCommand(func(b productBody) resolver {
		return resolved(logic.AddRecentlyViewed{ProductID: b.ProductID})
	})).
	On(logic.TypeAddSearchHistory, kit.JSONCommand(func(b searchBody) resolver {
		return resolved(logic.AddSearchHistory{Term: b.Term})
	})).
	On(logic.TypeClearSearchHistory, kit.JSONCommand(func(emptyBody) resolver {
		return resolved(logic.ClearSearchHistory{})
	})).
	On(logic.TypeUpdateFilters, kit.JSONCommand(func(b filtersBody) resolver {
		return resolved(logic.UpdateFilters{Filters: b.Filters.Set, Clear: b.Filters.Clear})
	})).
	On(logic.TypeClearFilters, kit.JSONCommand(func(emptyBody) resolver {
		return resolved(logic.ClearFilters{})
	})).
	On(logic.TypeSetTheme, kit.JSONCommand(func(b themeBody) resolver {
		return resolved(logic.SetTheme{Theme: b.Theme})
	}))

// decodeAction turns a named command into a reducer action.
func decodeAction(c *catalog.Catalog, name string, payload []byte) (logic.Action, error) {
	resolve, err := commands.Decode(name, payload)
	if err != nil {
		return nil, err
	}
	return resolve(c)
}
