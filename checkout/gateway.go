package checkout

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"storefront/pricing"
)

// DefaultPaymentDelay stands in for a payment round trip.
const DefaultPaymentDelay = 2 * time.Second

// ErrPaymentDeclined is returned by SimulatedGateway for injected failures.
var ErrPaymentDeclined = errors.New("payment declined")

// PaymentRequest describes one charge attempt.
type PaymentRequest struct {
	Amount pricing.Cents
	Method PaymentMethod
	Email  string
}

// PaymentGateway charges an order. Charge is called without any flow
// lock held and must honor ctx.
type PaymentGateway interface {
	Charge(ctx context.Context, req PaymentRequest) error
}

// GatewayFunc adapts a function to PaymentGateway.
type GatewayFunc func(ctx context.Context, req PaymentRequest) error

func (f GatewayFunc) Charge(ctx context.Context, req PaymentRequest) error {
	return f(ctx, req)
}

// SimulatedGateway waits Delay and then succeeds, except that every
// FailEvery-th call fails when FailEvery is positive.
type SimulatedGateway struct {
	Delay     time.Duration
	FailEvery int

	calls atomic.Int64
}

func (g *SimulatedGateway) Charge(ctx context.Context, _ PaymentRequest) error {
	n := g.calls.Add(1)
	if g.Delay > 0 {
		timer := time.NewTimer(g.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}
	if g.FailEvery > 0 && n%int64(g.FailEvery) == 0 {
		return ErrPaymentDeclined
	}
	return nil
}

// Calls reports how many charges were attempted.
func (g *SimulatedGateway) Calls() int64 {
	return g.calls.Load()
}
