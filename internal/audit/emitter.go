package audit

import (
	"context"
	"sync"
	"time"

	"github.com/uniformedi/dlpgate/internal/redact"
)

// Sink consumes audit events (file, webhook).
type Sink interface {
	Name() string
	Deliver(context.Context, *Event) error
	Close(context.Context) error
}

// Emitter buffers events and delivers them to sinks off the request path.
// A full queue drops the event rather than stalling a filter decision.
type Emitter struct {
	queue           chan *Event
	sinks           []Sink
	shutdownTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	statsMu  sync.Mutex
	enqueued uint64
	dropped  uint64
	failures map[string]uint64
}

// EmitterConfig controls queue and worker sizing.
type EmitterConfig struct {
	QueueSize       int
	Workers         int
	ShutdownTimeout time.Duration
}

// NewEmitter starts background workers delivering to the given sinks.
func NewEmitter(cfg EmitterConfig, sinks []Sink) *Emitter {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 2 * time.Second
	}

	em := &Emitter{
		queue:           make(chan *Event, cfg.QueueSize),
		sinks:           sinks,
		shutdownTimeout: cfg.ShutdownTimeout,
		failures:        make(map[string]uint64, len(sinks)),
	}
	for i := 0; i < cfg.Workers; i++ {
		em.wg.Add(1)
		go em.worker()
	}
	return em
}

// Emit enqueues the event without blocking; drops when the queue is full or
// the emitter is closed.
func (e *Emitter) Emit(ev *Event) {
	if e == nil || ev == nil {
		return
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		e.count(&e.dropped)
		return
	}
	select {
	case e.queue <- ev:
		e.count(&e.enqueued)
	default:
		e.count(&e.dropped)
	}
}

// Close stops intake and waits up to the shutdown timeout for the queue to
// drain, then closes every sink.
func (e *Emitter) Close(ctx context.Context) {
	if e == nil {
		return
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	waitCtx, cancel := context.WithTimeout(ctx, e.shutdownTimeout)
	defer cancel()

	select {
	case <-done:
	case <-waitCtx.Done():
	}

	for _, s := range e.sinks {
		if err := s.Close(waitCtx); err != nil {
			redact.Logf("audit: sink %s close error: %v", s.Name(), err)
		}
	}
}

// Stats reports delivery counters: enqueued, dropped, and per-sink failures.
func (e *Emitter) Stats() (enqueued, dropped uint64, failures map[string]uint64) {
	if e == nil {
		return 0, 0, nil
	}
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	out := make(map[string]uint64, len(e.failures))
	for k, v := range e.failures {
		out[k] = v
	}
	return e.enqueued, e.dropped, out
}

func (e *Emitter) count(field *uint64) {
	e.statsMu.Lock()
	*field++
	e.statsMu.Unlock()
}

func (e *Emitter) worker() {
	defer e.wg.Done()
	for ev := range e.queue {
		for _, s := range e.sinks {
			if err := s.Deliver(context.Background(), ev); err != nil {
				redact.Logf("audit: sink %s failed: %v", s.Name(), err)
				e.statsMu.Lock()
				e.failures[s.Name()]++
				e.statsMu.Unlock()
			}
		}
	}
}
