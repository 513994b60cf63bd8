// Package publisher emits audit events to a store, synchronously by default
// or through a buffered channel when async mode is enabled. Async mode keeps
// audit writes off the request path; Close drains the buffer.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	id "haulpass/pkg/domain"
	audit "haulpass/pkg/platform/audit"
)

type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	buffer chan audit.Event
	wg     sync.WaitGroup
	once   sync.Once
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for async write failures, which have no caller to
// return an error to.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

// WithAsyncBuffer enables async mode with the given buffer size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) { p.buffer = make(chan audit.Event, size) }
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}

	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		// Detached from the request context: the request may be done by the
		// time the event is written.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := p.store.Append(ctx, event); err != nil && p.logger != nil {
			p.logger.Error("audit event dropped", "action", event.Action, "error", err)
		}
		cancel()
	}
}

// Emit records an event. Missing timestamps and categories are filled in.
// In async mode a full buffer drops the event rather than blocking the
// request path.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.CategoryFor(audit.AuditEvent(event.Action))
	}

	if p.buffer == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.buffer <- event:
	default:
		if p.logger != nil {
			p.logger.Warn("audit buffer full, event dropped", "action", event.Action)
		}
	}
	return nil
}

// List exposes the underlying store's per-actor listing.
func (p *Publisher) List(ctx context.Context, actor id.ActorRole) ([]audit.Event, error) {
	return p.store.ListByActor(ctx, actor)
}

// Close drains pending events. Safe to call more than once.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
	})
}

var _ audit.Publisher = (*Publisher)(nil)
