package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/logic"
)

// DefaultDebounce is the quiet period before a scheduled snapshot is written.
const DefaultDebounce = 100 * time.Millisecond

// SaveFunc writes a snapshot to durable storage.
type SaveFunc func(ctx context.Context, state logic.AppState) error

// Persister coalesces rapid snapshots into debounced writes. Each write
// uses the newest snapshot scheduled before it fires. Save failures are
// logged and never surfaced.
type Persister struct {
	save    SaveFunc
	delay   time.Duration
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	pending *logic.AppState
	closed  bool

	// writeMu serializes writes so an older snapshot never lands after a
	// newer one.
	writeMu sync.Mutex

	kick    chan struct{}
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewPersister starts the background writer. A non-positive delay
// selects DefaultDebounce.
func NewPersister(save SaveFunc, delay time.Duration, logger *zap.Logger) *Persister {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Persister{
		save:    save,
		delay:   delay,
		timeout: 5 * time.Second,
		logger:  logger,
		kick:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go p.run()
	return p
}

// Listener adapts the persister for Store.Subscribe.
func (p *Persister) Listener() Listener {
	return p.Schedule
}

// Schedule replaces the pending snapshot and restarts the debounce window.
// Snapshots scheduled after Close are dropped.
func (p *Persister) Schedule(state logic.AppState) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Debug("snapshot scheduled after close, dropping")
		return
	}
	snapshot := state.Clone()
	p.pending = &snapshot
	p.mu.Unlock()

	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Pending reports whether a snapshot is waiting to be written.
func (p *Persister) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending != nil
}

// Flush writes the pending snapshot now, if there is one.
func (p *Persister) Flush(ctx context.Context) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.mu.Lock()
	snapshot := p.pending
	p.pending = nil
	p.mu.Unlock()

	if snapshot == nil {
		return nil
	}
	if err := p.save(ctx, *snapshot); err != nil {
		p.logger.Warn("failed to persist state", zap.Error(err))
		return err
	}
	return nil
}

// Close stops the writer after flushing any pending snapshot.
func (p *Persister) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.done)
	})
	<-p.stopped
}

func (p *Persister) run() {
	defer close(p.stopped)

	timer := time.NewTimer(p.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-p.kick:
			timer.Reset(p.delay)
		case <-timer.C:
			p.flushWithTimeout()
		case <-p.done:
			p.flushWithTimeout()
			return
		}
	}
}

func (p *Persister) flushWithTimeout() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	_ = p.Flush(ctx)
}
