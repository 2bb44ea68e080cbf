package main

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/checkout"
	"storefront/kit"
	"storefront/storage"
	"storefront/store"
)

// Session is one client's storefront: its state store, the checkout flow
// over that store, the debounced persister and the notification inbox.
type Session struct {
	ID        uuid.UUID
	Store     *store.Store
	Flow      *checkout.Flow
	Persister *store.Persister
	Inbox     *checkout.Inbox

	unsubscribe func()
	// lastUsed is guarded by Sessions.mu.
	lastUsed time.Time
}

func (s *Session) close() {
	s.Flow.Detach()
	s.unsubscribe()
	s.Persister.Close()
}

// Sessions owns the live sessions. A session is hydrated from storage the
// first time it is opened and stays resident until it is evicted as idle
// or Close is called.
type Sessions struct {
	storage  storage.Storage
	gateway  checkout.PaymentGateway
	debounce time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	// closing holds sessions being flushed after eviction. Resume waits
	// for the flush so it never hydrates a stale document.
	closing map[uuid.UUID]chan struct{}
}

func NewSessions(st storage.Storage, gateway checkout.PaymentGateway, debounce time.Duration, logger *zap.Logger) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sessions{
		storage:  st,
		gateway:  gateway,
		debounce: debounce,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*Session),
		closing:  make(map[uuid.UUID]chan struct{}),
	}
}

// Open returns the session for a client key, hydrating it from storage
// when it is not resident.
func (r *Sessions) Open(ctx context.Context, clientKey string) (*Session, error) {
	return r.Resume(ctx, kit.SessionRoot(clientKey))
}

// Resume returns the session with the given id, hydrating it from storage
// when it is not resident. An id with no persisted state starts empty.
func (r *Sessions) Resume(ctx context.Context, id uuid.UUID) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s, ok, err := r.resident(ctx, id); ok || err != nil {
		return s, err
	}

	logger := r.logger.With(zap.String("session_id", id.String()))
	key := kit.StorageKey(storage.StateKey, id)
	initial := storage.Load(ctx, r.storage, key, logger)

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another caller may have hydrated the same id while we loaded.
	if s, ok := r.sessions[id]; ok {
		s.lastUsed = r.now()
		return s, nil
	}

	st := store.New(initial, logger)
	persister := store.NewPersister(storage.Saver(r.storage, key), r.debounce, logger)
	inbox := checkout.NewInbox(0)
	s := &Session{
		ID:          id,
		Store:       st,
		Persister:   persister,
		Inbox:       inbox,
		unsubscribe: st.Subscribe(persister.Listener()),
		lastUsed:    r.now(),
	}
	s.Flow = checkout.NewFlow(st, r.gateway,
		checkout.WithLogger(logger),
		checkout.WithNotifier(inbox),
	)
	r.sessions[id] = s

	logger.Info("session opened", zap.Int("cart_items", initial.Cart.ItemCount()))
	return s, nil
}

// resident returns a live session, waiting out any eviction flush of the
// same id first.
func (r *Sessions) resident(ctx context.Context, id uuid.UUID) (*Session, bool, error) {
	for {
		r.mu.Lock()
		if s, ok := r.sessions[id]; ok {
			s.lastUsed = r.now()
			r.mu.Unlock()
			return s, true, nil
		}
		flushed, closing := r.closing[id]
		r.mu.Unlock()
		if !closing {
			return nil, false, nil
		}
		select {
		case <-flushed:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

// EvictIdle flushes and releases sessions unused for longer than maxIdle.
// Sessions with a payment in flight are kept. It returns the number evicted.
func (r *Sessions) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var idle []*Session
	for id, s := range r.sessions {
		if !s.lastUsed.Before(cutoff) || s.Flow.Snapshot().Processing {
			continue
		}
		delete(r.sessions, id)
		r.closing[id] = make(chan struct{})
		idle = append(idle, s)
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.close()
		r.mu.Lock()
		close(r.closing[s.ID])
		delete(r.closing, s.ID)
		r.mu.Unlock()
		r.logger.Debug("session evicted", zap.String("session_id", s.ID.String()))
	}
	return len(idle)
}

// RunEviction evicts idle sessions every interval until ctx is done.
// A non-positive maxIdle disables eviction.
func (r *Sessions) RunEviction(ctx context.Context, maxIdle, interval time.Duration) {
	if maxIdle <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.EvictIdle(maxIdle); n > 0 {
				r.logger.Info("evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}

// Len returns the number of resident sessions.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close flushes and releases every resident session.
func (r *Sessions) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[uuid.UUID]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	r.logger.Info("sessions closed", zap.Int("count", len(sessions)))
}
