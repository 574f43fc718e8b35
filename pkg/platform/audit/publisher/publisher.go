// Package publisher fans audit notifications out to sinks.
//
// In sync mode Emit delivers to every sink before returning. With
// WithAsyncBuffer, Emit enqueues and returns immediately; a full buffer
// drops the event rather than blocking the caller. Each async delivery is
// bounded by the delivery timeout so a stalled sink cannot wedge the drain.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	audit "ledger/pkg/platform/audit"
	"ledger/pkg/requestcontext"
)

// DefaultDeliveryTimeout bounds one async delivery across all sinks.
const DefaultDeliveryTimeout = 15 * time.Second

// ErrBufferFull is returned by Emit when the async buffer cannot take the event.
var ErrBufferFull = errors.New("audit buffer full")

// ErrClosed is returned by Emit after Close.
var ErrClosed = errors.New("audit publisher closed")

type Publisher struct {
	sinks           []audit.Sink
	logger          *slog.Logger
	metrics         *Metrics
	deliveryTimeout time.Duration

	queue  chan audit.Event
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithAsyncBuffer switches the publisher to async delivery through a buffer
// of size n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.queue = make(chan audit.Event, n)
		}
	}
}

// WithDeliveryTimeout bounds each async delivery. Non-positive values keep
// the default.
func WithDeliveryTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.deliveryTimeout = d
		}
	}
}

func New(sinks []audit.Sink, opts ...Option) *Publisher {
	p := &Publisher{sinks: sinks, deliveryTimeout: DefaultDeliveryTimeout}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.queue != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit stamps the event and hands it to the sinks.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Kind == "" {
		return fmt.Errorf("audit event requires a kind")
	}
	if event.Audience.ID == "" {
		return fmt.Errorf("audit event requires an audience")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	if p.queue == nil {
		return p.deliver(ctx, event)
	}

	select {
	case p.queue <- event:
		p.metrics.IncQueued()
		return nil
	default:
		p.metrics.IncDropped("buffer_full")
		p.logger.WarnContext(ctx, "audit buffer full, dropping notification",
			"kind", event.Kind,
			"audience_type", event.Audience.Type,
		)
		return ErrBufferFull
	}
}

// deliver sends the event to every sink and joins their errors.
func (p *Publisher) deliver(ctx context.Context, event audit.Event) error {
	var errs []error
	for _, sink := range p.sinks {
		if err := sink.Deliver(ctx, event); err != nil {
			p.metrics.IncFailed(string(event.Kind))
			errs = append(errs, err)
			continue
		}
		p.metrics.IncDelivered(string(event.Kind))
	}
	return errors.Join(errs...)
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.queue {
		// The emitting request may be finished; deliver on a detached context.
		ctx, cancel := context.WithTimeout(context.Background(), p.deliveryTimeout)
		err := p.deliver(ctx, event)
		cancel()
		if err != nil {
			p.logger.Error("audit delivery failed",
				"kind", event.Kind,
				"audience_type", event.Audience.Type,
				"error", err,
			)
		}
	}
}

// Close stops accepting events and waits for the async buffer to drain.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.queue != nil {
		close(p.queue)
	}
	p.mu.Unlock()
	p.wg.Wait()
	return nil
}
