package logic

import (
	"strings"

	"storefront/catalog"
	"storefront/kit"
)

// Reduce applies action to state and returns the next state. A rejected
// action returns the input state unchanged together with a CommandError.
// The input state is never modified.
func Reduce(state AppState, action Action) (AppState, error) {
	next := state.Clone()
	switch a := action.(type) {
	case AddToCart:
		cart, err := state.Cart.AddItem(a.Product, a.Quantity)
		if err != nil {
			return state, err
		}
		next.Cart = cart
	case RemoveFromCart:
		next.Cart = state.Cart.RemoveItem(a.ProductID)
	case UpdateCartQuantity:
		cart, err := state.Cart.SetQuantity(a.ProductID, a.Quantity)
		if err != nil {
			return state, err
		}
		next.Cart = cart
	case ClearCart:
		next.Cart = state.Cart.Clear()
	case RemoveOrdered:
		next.Cart = state.Cart.Subtract(a.Items)

	case AddToWishlist:
		if err := kit.RequireNotBlank(a.ProductID, ErrMsgProductIDRequired); err != nil {
			return state, err
		}
		next.Wishlist = addToSet(state.Wishlist, a.ProductID)
	case RemoveFromWishlist:
		next.Wishlist = without(state.Wishlist, a.ProductID)
	case ToggleWishlist:
		if err := kit.RequireNotBlank(a.ProductID, ErrMsgProductIDRequired); err != nil {
			return state, err
		}
		if state.InWishlist(a.ProductID) {
			next.Wishlist = without(state.Wishlist, a.ProductID)
		} else {
			next.Wishlist = addToSet(state.Wishlist, a.ProductID)
		}

	case AddRecentlyViewed:
		if err := kit.RequireNotBlank(a.ProductID, ErrMsgProductIDRequired); err != nil {
			return state, err
		}
		next.RecentlyViewed = pushFront(state.RecentlyViewed, a.ProductID, HistoryLimit)
	case AddSearchHistory:
		term := strings.TrimSpace(a.Term)
		if err := kit.RequireNotBlank(term, ErrMsgSearchTermBlank); err != nil {
			return state, err
		}
		next.SearchHistory = pushFront(state.SearchHistory, term, HistoryLimit)
	case ClearSearchHistory:
		next.SearchHistory = []string{}

	case UpdateFilters:
		for _, key := range a.Clear {
			if err := kit.RequireOneOf(key, catalog.FilterKeys, ErrMsgUnknownFilter); err != nil {
				return state, err
			}
		}
		next.Filters = state.Filters.Without(a.Clear...).Merge(a.Filters)
	case ClearFilters:
		next.Filters = catalog.Filters{}
	case SetTheme:
		if err := kit.RequireOneOf(a.Theme, Themes, ErrMsgInvalidTheme); err != nil {
			return state, err
		}
		next.Theme = a.Theme

	default:
		return state, kit.NewInvalidArgumentf("%s: %T", ErrMsgUnknownAction, action)
	}
	return next, nil
}

// Replay folds actions into state in order, stopping at the first
// rejected action.
func Replay(state AppState, actions ...Action) (AppState, error) {
	for _, action := range actions {
		next, err := Reduce(state, action)
		if err != nil {
			return state, err
		}
		state = next
	}
	return state, nil
}
