package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storefront/catalog"
	"storefront/checkout"
	"storefront/storage"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestSessions(t *testing.T, st storage.Storage, gateway checkout.PaymentGateway) (*Sessions, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.UnixMilli(1700000000000)}
	sessions := NewSessions(st, gateway, time.Millisecond, zaptest.NewLogger(t))
	sessions.now = clock.Now
	t.Cleanup(sessions.Close)
	return sessions, clock
}

func TestSessions_evictIdleFlushesState(t *testing.T) {
	ctx := context.Background()
	sessions, clock := newTestSessions(t, storage.NewMemory(), &checkout.SimulatedGateway{})

	idle, err := sessions.Open(ctx, "idle")
	require.NoError(t, err)
	product, _ := catalog.Default().ProductByID("2")
	require.NoError(t, idle.Store.AddToCart(product, 3))

	clock.Advance(time.Minute)
	_, err = sessions.Open(ctx, "busy")
	require.NoError(t, err)
	clock.Advance(time.Minute)

	assert.Equal(t, 1, sessions.EvictIdle(90*time.Second))
	assert.Equal(t, 1, sessions.Len())

	reopened, err := sessions.Open(ctx, "idle")
	require.NoError(t, err)
	assert.NotSame(t, idle, reopened)
	assert.Equal(t, 3, reopened.Store.CartItemQuantity("2"))
}

func TestSessions_evictKeepsPaymentInFlight(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	gateway := checkout.GatewayFunc(func(ctx context.Context, _ checkout.PaymentRequest) error {
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	sessions, clock := newTestSessions(t, storage.NewMemory(), gateway)

	sess, err := sessions.Open(ctx, "paying")
	require.NoError(t, err)
	product, _ := catalog.Default().ProductByID("2")
	require.NoError(t, sess.Store.AddToCart(product, 1))

	_, err = sess.Flow.Start()
	require.NoError(t, err)
	for field, value := range map[string]string{
		checkout.FieldEmail:         "ada@example.com",
		checkout.FieldFirstName:     "Ada",
		checkout.FieldLastName:      "Lovelace",
		checkout.FieldAddress:       "12 Analytical Way",
		checkout.FieldCity:          "London",
		checkout.FieldState:         "LN",
		checkout.FieldZipCode:       "10001",
		checkout.FieldPhone:         "555-0100",
		checkout.FieldPaymentMethod: "paypal",
	} {
		_, err := sess.Flow.SetField(field, value)
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, err := sess.Flow.Next()
		require.NoError(t, err)
	}
	_, err = sess.Flow.SubmitAsync(ctx)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	assert.Zero(t, sessions.EvictIdle(time.Minute))
	assert.Equal(t, 1, sessions.Len())

	close(release)
	require.Eventually(t, func() bool {
		return sess.Flow.Step() == checkout.StepComplete
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, sessions.EvictIdle(time.Minute))
}

func TestSessions_concurrentOpenSharesOneSession(t *testing.T) {
	ctx := context.Background()
	sessions, _ := newTestSessions(t, storage.NewMemory(), &checkout.SimulatedGateway{})

	const callers = 8
	got := make([]*Session, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := sessions.Open(ctx, "shared")
			assert.NoError(t, err)
			got[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range got[1:] {
		assert.Same(t, got[0], s)
	}
	assert.Equal(t, 1, sessions.Len())
}

func TestSessions_runEvictionDisabled(t *testing.T) {
	sessions, _ := newTestSessions(t, storage.NewMemory(), &checkout.SimulatedGateway{})
	done := make(chan struct{})
	go func() {
		sessions.RunEviction(context.Background(), 0, time.Millisecond)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected RunEviction to return when disabled")
	}
}
