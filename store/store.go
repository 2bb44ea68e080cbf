// Package store owns one session's AppState. Every mutation runs through
// logic.Reduce under the store lock, and subscribers see each applied
// snapshot in order once the lock is released.
package store

import (
	"sync"

	"go.uber.org/zap"

	"storefront/catalog"
	"storefront/logic"
	"storefront/pricing"
)

// Listener receives the state after an applied action. Listeners run
// outside the store lock but must not dispatch back into the same store.
type Listener func(state logic.AppState)

// Summary is the cart view shared by the cart page, the header dropdown
// and the checkout review step.
type Summary struct {
	Items     []logic.CartItem `json:"items"`
	ItemCount int              `json:"itemCount"`
	Totals    pricing.Totals   `json:"totals"`
}

// Summarize derives a Summary from a cart.
func Summarize(cart logic.Cart) Summary {
	return Summary{
		Items:     cart.Items(),
		ItemCount: cart.ItemCount(),
		Totals:    cart.Totals(),
	}
}

// Store is safe for concurrent use.
type Store struct {
	logger *zap.Logger

	// notifyMu is held across apply and notify so listeners observe
	// snapshots in mutation order.
	notifyMu sync.Mutex

	mu        sync.Mutex
	state     logic.AppState
	version   uint64
	listeners map[int]Listener
	nextID    int
}

// New creates a store holding initial. A nil logger disables logging.
func New(initial logic.AppState, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		logger:    logger,
		state:     initial,
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Dispatch applies action. A rejected action leaves the state unchanged,
// notifies nobody and returns the reducer's error.
func (s *Store) Dispatch(action logic.Action) (logic.AppState, error) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	next, err := logic.Reduce(s.state, action)
	if err != nil {
		current := s.state
		s.mu.Unlock()
		s.logger.Debug("action rejected",
			zap.String("action", actionType(action)),
			zap.Error(err))
		return current, err
	}
	s.state = next
	s.version++
	version := s.version
	listeners := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	s.logger.Debug("action applied",
		zap.String("action", action.Type()),
		zap.Uint64("version", version),
		zap.Int("item_count", next.Cart.ItemCount()))

	for _, l := range listeners {
		l(next)
	}
	return next, nil
}

// State returns the current snapshot.
func (s *Store) State() logic.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Version counts applied actions.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) Cart() logic.Cart {
	return s.State().Cart
}

func (s *Store) Summary() Summary {
	return Summarize(s.Cart())
}

func (s *Store) IsInCart(productID string) bool {
	return s.Cart().Contains(productID)
}

func (s *Store) CartItemQuantity(productID string) int {
	return s.Cart().Quantity(productID)
}

func (s *Store) IsInWishlist(productID string) bool {
	return s.State().InWishlist(productID)
}

// AddToCart adds quantity units of product.
func (s *Store) AddToCart(product catalog.Product, quantity int) error {
	_, err := s.Dispatch(logic.AddToCart{Product: product, Quantity: quantity})
	return err
}

func (s *Store) RemoveFromCart(productID string) error {
	_, err := s.Dispatch(logic.RemoveFromCart{ProductID: productID})
	return err
}

// UpdateCartQuantity replaces an item's quantity; zero or less removes it.
func (s *Store) UpdateCartQuantity(productID string, quantity int) error {
	_, err := s.Dispatch(logic.UpdateCartQuantity{ProductID: productID, Quantity: quantity})
	return err
}

func (s *Store) ClearCart() error {
	_, err := s.Dispatch(logic.ClearCart{})
	return err
}

// RemoveOrdered takes an order's items out of the cart, leaving anything
// added after the order was taken.
func (s *Store) RemoveOrdered(items []logic.CartItem) error {
	_, err := s.Dispatch(logic.RemoveOrdered{Items: items})
	return err
}

func (s *Store) AddToWishlist(productID string) error {
	_, err := s.Dispatch(logic.AddToWishlist{ProductID: productID})
	return err
}

func (s *Store) RemoveFromWishlist(productID string) error {
	_, err := s.Dispatch(logic.RemoveFromWishlist{ProductID: productID})
	return err
}

func (s *Store) ToggleWishlist(productID string) error {
	_, err := s.Dispatch(logic.ToggleWishlist{ProductID: productID})
	return err
}

func (s *Store) AddRecentlyViewed(productID string) error {
	_, err := s.Dispatch(logic.AddRecentlyViewed{ProductID: productID})
	return err
}

func (s *Store) AddSearchHistory(term string) error {
	_, err := s.Dispatch(logic.AddSearchHistory{Term: term})
	return err
}

func (s *Store) ClearSearchHistory() error {
	_, err := s.Dispatch(logic.ClearSearchHistory{})
	return err
}

func (s *Store) UpdateFilters(filters catalog.Filters) error {
	_, err := s.Dispatch(logic.UpdateFilters{Filters: filters})
	return err
}

// RemoveFilters resets the named filter keys and keeps the rest.
func (s *Store) RemoveFilters(keys ...string) error {
	_, err := s.Dispatch(logic.UpdateFilters{Clear: keys})
	return err
}

func (s *Store) ClearFilters() error {
	_, err := s.Dispatch(logic.ClearFilters{})
	return err
}

func (s *Store) SetTheme(theme logic.Theme) error {
	_, err := s.Dispatch(logic.SetTheme{Theme: theme})
	return err
}

func actionType(action logic.Action) string {
	if action == nil {
		return "<nil>"
	}
	return action.Type()
}
