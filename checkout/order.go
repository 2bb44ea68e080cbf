package checkout

import (
	"fmt"
	"sync"
	"time"

	"storefront/logic"
	"storefront/pricing"
)

// Address is the shipping destination captured from the form.
type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// Order is the local confirmation record of a placed order.
type Order struct {
	ID            string           `json:"id"`
	Items         []logic.CartItem `json:"items"`
	Totals        pricing.Totals   `json:"totals"`
	Email         string           `json:"email"`
	ShipTo        Address          `json:"shipTo"`
	PaymentMethod PaymentMethod    `json:"paymentMethod"`
	PlacedAt      time.Time        `json:"placedAt"`
}

func addressOf(f Form) Address {
	return Address{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Address:   f.Address,
		City:      f.City,
		State:     f.State,
		ZipCode:   f.ZipCode,
		Country:   f.Country,
		Phone:     f.Phone,
	}
}

// OrderIDs issues "ORD-<unix millis>" identifiers. Two ids from the same
// generator are never equal and always increase, even within one
// millisecond.
type OrderIDs struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewOrderIDs creates a generator. A nil clock uses time.Now.
func NewOrderIDs(now func() time.Time) *OrderIDs {
	if now == nil {
		now = time.Now
	}
	return &OrderIDs{now: now}
}

var processOrderIDs = NewOrderIDs(nil)

func (g *OrderIDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("ORD-%d", ms)
}
