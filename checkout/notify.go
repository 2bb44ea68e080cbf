package checkout

import (
	"fmt"
	"sync"
	"time"
)

// Variant styles a notification.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a user-visible message raised by the flow.
type Notification struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     Variant   `json:"variant"`
	At          time.Time `json:"at"`
}

// Notifier receives flow notifications.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

func orderConfirmed(orderID string, at time.Time) Notification {
	return Notification{
		Title:       "Order Confirmed!",
		Description: fmt.Sprintf("Your order %s has been successfully placed.", orderID),
		Variant:     VariantDefault,
		At:          at,
	}
}

func paymentFailed(at time.Time) Notification {
	return Notification{
		Title:       "Payment Failed",
		Description: ErrMsgPaymentFailed,
		Variant:     VariantDestructive,
		At:          at,
	}
}

// DefaultInboxSize bounds an Inbox created with a non-positive limit.
const DefaultInboxSize = 20

// Inbox buffers notifications until a client drains them. When full the
// oldest notification is dropped.
type Inbox struct {
	mu    sync.Mutex
	items []Notification
	limit int
}

func NewInbox(limit int) *Inbox {
	if limit <= 0 {
		limit = DefaultInboxSize
	}
	return &Inbox{limit: limit}
}

func (b *Inbox) Notify(n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) == b.limit {
		b.items = b.items[1:]
	}
	b.items = append(b.items, n)
}

// Drain returns and removes every buffered notification, oldest first.
func (b *Inbox) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := b.items
	b.items = nil
	if items == nil {
		return []Notification{}
	}
	return items
}
