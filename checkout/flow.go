// Package checkout implements the shipping, payment, review and complete
// step machine layered over a cart store.
package checkout

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/kit"
	"storefront/logic"
	"storefront/store"
)

// Snapshot is a copy of the flow state for rendering.
type Snapshot struct {
	Open       bool          `json:"open"`
	Step       Step          `json:"step"`
	Progress   int           `json:"progress"`
	Form       Form          `json:"form"`
	Processing bool          `json:"processing"`
	OrderID    string        `json:"orderId,omitempty"`
	Summary    store.Summary `json:"summary"`
	LastOrder  *Order        `json:"lastOrder,omitempty"`
}

// Option configures a Flow.
type Option func(*Flow)

func WithLogger(logger *zap.Logger) Option {
	return func(f *Flow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(f *Flow) { f.notifier = n }
}

func WithOrderIDs(ids *OrderIDs) Option {
	return func(f *Flow) { f.ids = ids }
}

func WithClock(now func() time.Time) Option {
	return func(f *Flow) { f.now = now }
}

// Flow is one session's checkout. It watches the store and closes itself
// when the cart empties before the order completes. Safe for concurrent use.
type Flow struct {
	store    *store.Store
	gateway  PaymentGateway
	notifier Notifier
	ids      *OrderIDs
	now      func() time.Time
	logger   *zap.Logger

	unsubscribe func()

	mu         sync.Mutex
	open       bool
	step       Step
	form       Form
	processing bool
	// generation changes whenever the flow is started or closed, so a
	// submission that completes afterwards can tell it is stale.
	generation uint64
	orderID    string
	lastOrder  *Order
}

// NewFlow creates a closed flow over st.
func NewFlow(st *store.Store, gateway PaymentGateway, opts ...Option) *Flow {
	f := &Flow{
		store:    st,
		gateway:  gateway,
		notifier: NotifierFunc(func(Notification) {}),
		ids:      processOrderIDs,
		now:      time.Now,
		logger:   zap.NewNop(),
		step:     StepShipping,
		form:     NewForm(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.unsubscribe = st.Subscribe(f.watchCart)
	return f
}

// Detach stops watching the store.
func (f *Flow) Detach() {
	f.unsubscribe()
}

func (f *Flow) watchCart(state logic.AppState) {
	if !state.Cart.IsEmpty() {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.open && f.step != StepComplete {
		f.logger.Info("cart emptied, closing checkout", zap.String("step", f.step.String()))
		f.resetLocked(false)
	}
}

// resetLocked discards the form and invalidates any in-flight submission.
func (f *Flow) resetLocked(open bool) {
	f.open = open
	f.step = StepShipping
	f.form = NewForm()
	f.processing = false
	f.orderID = ""
	f.generation++
}

func (f *Flow) snapshotLocked() Snapshot {
	return Snapshot{
		Open:       f.open,
		Step:       f.step,
		Progress:   f.step.Progress(),
		Form:       f.form.clone(),
		Processing: f.processing,
		OrderID:    f.orderID,
		Summary:    f.store.Summary(),
		LastOrder:  f.lastOrder,
	}
}

// Snapshot returns the current flow state.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Step returns the current step.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Summary returns the cart items and totals shown on the review step.
func (f *Flow) Summary() store.Summary {
	return f.store.Summary()
}

// LastOrder returns the most recently placed order, if any.
func (f *Flow) LastOrder() (Order, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lastOrder == nil {
		return Order{}, false
	}
	return *f.lastOrder, true
}

// Start opens a fresh checkout at shipping. The cart must not be empty.
func (f *Flow) Start() (Snapshot, error) {
	if f.store.Cart().IsEmpty() {
		return f.Snapshot(), kit.NewFailedPrecondition(ErrMsgCartEmpty)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked(true)
	f.logger.Debug("checkout started")
	return f.snapshotLocked(), nil
}

// Close cancels the checkout. A submission still in flight is discarded
// when it completes.
func (f *Flow) Close() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked(false)
	return f.snapshotLocked()
}

func (f *Flow) requireOpenLocked() error {
	if !f.open {
		return kit.NewFailedPrecondition(ErrMsgNotOpen)
	}
	return nil
}

// SetField updates one form field and clears its error.
func (f *Flow) SetField(field, value string) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireOpenLocked(); err != nil {
		return f.snapshotLocked(), err
	}
	if f.step == StepComplete {
		return f.snapshotLocked(), kit.NewFailedPrecondition(ErrMsgAlreadyComplete)
	}
	if err := f.form.Set(field, value); err != nil {
		return f.snapshotLocked(), err
	}
	return f.snapshotLocked(), nil
}

// Next validates the current step and advances. Failing fields are
// recorded on the form and returned as a field error. Next at complete
// is a no-op; review advances only through Submit.
func (f *Flow) Next() (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireOpenLocked(); err != nil {
		return f.snapshotLocked(), err
	}

	switch f.step {
	case StepShipping:
		if errs := ValidateShipping(f.form); len(errs) > 0 {
			f.form.applyErrors(errs)
			return f.snapshotLocked(), kit.NewFieldErrors(ErrMsgShippingIncomplete, errs)
		}
	case StepPayment:
		if errs := ValidatePayment(f.form); len(errs) > 0 {
			f.form.applyErrors(errs)
			return f.snapshotLocked(), kit.NewFieldErrors(ErrMsgPaymentIncomplete, errs)
		}
	case StepReview:
		return f.snapshotLocked(), kit.NewFailedPrecondition(ErrMsgReviewNeedsSubmit)
	case StepComplete:
		return f.snapshotLocked(), nil
	}
	f.step = forward[f.step]
	return f.snapshotLocked(), nil
}

// Back returns to the previous step. It is a no-op at shipping and complete.
func (f *Flow) Back() (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireOpenLocked(); err != nil {
		return f.snapshotLocked(), err
	}
	if f.processing {
		return f.snapshotLocked(), ErrSubmitInProgress
	}
	if prev, ok := backward[f.step]; ok {
		f.step = prev
	}
	return f.snapshotLocked(), nil
}

// submission captures what a charge needs while the flow is unlocked.
type submission struct {
	generation uint64
	request    PaymentRequest
	order      Order
}

func (f *Flow) begin() (submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireOpenLocked(); err != nil {
		return submission{}, err
	}
	if f.processing {
		return submission{}, ErrSubmitInProgress
	}
	if f.step != StepReview {
		return submission{}, kit.NewFailedPrecondition(ErrMsgNotAtReview)
	}
	summary := f.store.Summary()
	if len(summary.Items) == 0 {
		return submission{}, kit.NewFailedPrecondition(ErrMsgCartEmpty)
	}

	errs := ValidateShipping(f.form)
	msg := ErrMsgShippingIncomplete
	if len(errs) == 0 {
		msg = ErrMsgPaymentIncomplete
	}
	for k, v := range ValidatePayment(f.form) {
		errs[k] = v
	}
	if len(errs) > 0 {
		f.form.applyErrors(errs)
		return submission{}, kit.NewFieldErrors(msg, errs)
	}

	f.processing = true
	return submission{
		generation: f.generation,
		request: PaymentRequest{
			Amount: summary.Totals.Total,
			Method: f.form.PaymentMethod,
			Email:  f.form.Email,
		},
		order: Order{
			Items:         summary.Items,
			Totals:        summary.Totals,
			Email:         f.form.Email,
			ShipTo:        addressOf(f.form),
			PaymentMethod: f.form.PaymentMethod,
		},
	}, nil
}

// finish applies the charge outcome unless the flow moved on meanwhile.
func (f *Flow) finish(sub submission, chargeErr error) (Snapshot, error) {
	f.mu.Lock()
	if f.generation != sub.generation {
		snap := f.snapshotLocked()
		f.mu.Unlock()
		f.logger.Info("discarding stale order completion", zap.Error(chargeErr))
		return snap, kit.NewFailedPrecondition(ErrMsgCheckoutReset)
	}
	f.processing = false

	if chargeErr != nil {
		snap := f.snapshotLocked()
		f.mu.Unlock()
		f.logger.Warn("payment failed", zap.Error(chargeErr))
		f.notifier.Notify(paymentFailed(f.now()))
		return snap, kit.NewAborted(ErrMsgPaymentFailed)
	}

	order := sub.order
	order.ID = f.ids.Next()
	order.PlacedAt = f.now()
	f.orderID = order.ID
	f.lastOrder = &order
	f.step = StepComplete
	f.form = NewForm()
	f.mu.Unlock()

	// The step is already complete, so the cart guard leaves the flow open.
	// Only the charged lines leave the cart; changes made during the charge
	// stay for the next order.
	if err := f.store.RemoveOrdered(order.Items); err != nil {
		f.logger.Error("failed to remove ordered items from cart", zap.String("order_id", order.ID), zap.Error(err))
	}
	if left := f.store.Cart().ItemCount(); left > 0 {
		f.logger.Info("cart changed during payment, keeping unordered items",
			zap.String("order_id", order.ID), zap.Int("item_count", left))
	}
	f.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.Int("item_count", len(order.Items)),
		zap.String("total", order.Totals.Total.Decimal()))
	f.notifier.Notify(orderConfirmed(order.ID, order.PlacedAt))
	return f.Snapshot(), nil
}

// Submit charges the order from review and waits for the outcome. On
// success the step becomes complete and the ordered items leave the cart. On payment
// failure the flow stays at review. A second Submit while one is in
// flight returns ErrSubmitInProgress.
func (f *Flow) Submit(ctx context.Context) (Snapshot, error) {
	sub, err := f.begin()
	if err != nil {
		return f.Snapshot(), err
	}
	return f.finish(sub, f.gateway.Charge(ctx, sub.request))
}

// SubmitAsync validates and starts the charge in the background, returning
// the processing snapshot at once. ctx bounds the charge, not the call.
func (f *Flow) SubmitAsync(ctx context.Context) (Snapshot, error) {
	sub, err := f.begin()
	if err != nil {
		return f.Snapshot(), err
	}
	snap := f.Snapshot()
	go func() {
		_, _ = f.finish(sub, f.gateway.Charge(ctx, sub.request))
	}()
	return snap, nil
}
