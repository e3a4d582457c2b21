// Package eventbus implements the in-process publish/subscribe bus the
// employee and survey slices publish their domain events on. Delivery is
// best-effort: a failing subscriber is logged and counted, never surfaced to
// the publisher, because the triggering business transaction has already
// committed by the time Publish is called.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samSKIF/EmployeeRewards-sub009/event"
)

// Handler consumes a published event. Returned errors are recorded against the
// subscriber and swallowed by the bus.
type Handler func(ctx context.Context, evt event.Event) error

// ObserverFunc is invoked once per delivery attempt, after the handler
// returns. It is the hook the sample app feeds Prometheus from.
type ObserverFunc func(eventType, subscriberID string, err error, elapsed time.Duration)

// ErrClosed is returned by Publish and Subscribe after Close.
var ErrClosed = errors.New("event bus is closed")

const defaultHistoryLimit = 100

type subscription struct {
	id           string
	eventType    string
	subscriberID string
	priority     int
	seq          uint64
	handler      Handler
}

// Bus is the process-wide dispatcher. A single instance is constructed at
// startup and passed to domain services and handler registration code.
type Bus struct {
	mu      sync.RWMutex
	subs    map[string][]*subscription
	seq     uint64
	closed  bool
	history []event.Event
	metrics map[string]*typeMetrics

	historyLimit int
	async        bool
	observer     ObserverFunc
	logger       *slog.Logger

	wg sync.WaitGroup
}

// Option configures a Bus.
type Option func(*Bus)

// WithHistoryLimit bounds the number of recent events retained for
// diagnostics. The default is 100.
func WithHistoryLimit(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.historyLimit = n
		}
	}
}

// WithAsyncDelivery makes Publish schedule handler invocation on a separate
// goroutine instead of awaiting it, so a slow subscriber cannot block the
// publishing transaction's response. In-flight deliveries are tracked and
// drained by Close.
func WithAsyncDelivery() Option {
	return func(b *Bus) { b.async = true }
}

// WithObserver registers a per-delivery callback for external metrics.
func WithObserver(fn ObserverFunc) Option {
	return func(b *Bus) { b.observer = fn }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) { b.logger = l }
}

// New constructs an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		subs:         make(map[string][]*subscription),
		metrics:      make(map[string]*typeMetrics),
		historyLimit: defaultHistoryLimit,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SubscribeOption configures a single subscription.
type SubscribeOption func(*subscription)

// WithPriority orders handlers of the same event type; lower values run
// first. Handlers of equal priority run in registration order.
func WithPriority(p int) SubscribeOption {
	return func(s *subscription) { s.priority = p }
}

// Subscribe registers a handler for one event type and returns the
// subscription id used to unsubscribe.
func (b *Bus) Subscribe(eventType string, handler Handler, subscriberID string, opts ...SubscribeOption) (string, error) {
	if eventType == "" {
		return "", fmt.Errorf("event type must not be empty")
	}
	if handler == nil {
		return "", fmt.Errorf("handler must not be nil")
	}

	sub := &subscription{
		id:           uuid.NewString(),
		eventType:    eventType,
		subscriberID: subscriberID,
		handler:      handler,
	}
	for _, opt := range opts {
		opt(sub)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return "", ErrClosed
	}
	b.seq++
	sub.seq = b.seq
	b.subs[eventType] = append(b.subs[eventType], sub)
	return sub.id, nil
}

// Unsubscribe drops the subscription with the given id. It reports whether a
// subscription was removed.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for eventType, subs := range b.subs {
		for i, sub := range subs {
			if sub.id == id {
				b.subs[eventType] = append(subs[:i:i], subs[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Publish dispatches an event to every subscriber of its type in ascending
// priority order. It returns an error only when the envelope itself is
// malformed or the bus is closed; subscriber failures are isolated, logged
// and counted, and never propagate to the caller.
func (b *Bus) Publish(ctx context.Context, evt event.Event) error {
	if err := validateEnvelope(evt); err != nil {
		return err
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.recordHistory(evt)
	b.metricsFor(evt.Type).total++
	targets := b.sortedSubscribers(evt.Type)
	b.wg.Add(1)
	b.mu.Unlock()

	if b.async {
		// Handlers outlive the request that triggered the publish, so they
		// must not inherit its cancellation.
		go b.deliver(context.WithoutCancel(ctx), evt, targets)
		return nil
	}
	b.deliver(ctx, evt, targets)
	return nil
}

func (b *Bus) deliver(ctx context.Context, evt event.Event, targets []*subscription) {
	defer b.wg.Done()
	started := time.Now()

	var succeeded, failed int64
	for _, sub := range targets {
		handlerStart := time.Now()
		err := b.invoke(ctx, sub, evt)
		if err != nil {
			failed++
			herr := &HandlerError{
				EventID:      evt.ID,
				EventType:    evt.Type,
				SubscriberID: sub.subscriberID,
				Err:          err,
			}
			b.logger.ErrorContext(ctx, "Event handler failed",
				"eventID", evt.ID,
				"eventType", evt.Type,
				"subscriber", sub.subscriberID,
				"error", herr)
		} else {
			succeeded++
		}
		if b.observer != nil {
			b.observer(evt.Type, sub.subscriberID, err, time.Since(handlerStart))
		}
	}

	elapsed := time.Since(started)
	b.mu.Lock()
	m := b.metricsFor(evt.Type)
	m.successful += succeeded
	m.failed += failed
	m.totalTime += elapsed
	b.mu.Unlock()
}

// invoke runs one handler with panic isolation.
func (b *Bus) invoke(ctx context.Context, sub *subscription, evt event.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return sub.handler(ctx, evt)
}

// sortedSubscribers must be called with b.mu held. It returns a copy so
// delivery happens outside the lock and cannot race with Subscribe.
func (b *Bus) sortedSubscribers(eventType string) []*subscription {
	subs := b.subs[eventType]
	out := make([]*subscription, len(subs))
	copy(out, subs)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].priority != out[j].priority {
			return out[i].priority < out[j].priority
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// recordHistory must be called with b.mu held.
func (b *Bus) recordHistory(evt event.Event) {
	b.history = append(b.history, evt)
	if len(b.history) > b.historyLimit {
		b.history = b.history[len(b.history)-b.historyLimit:]
	}
}

// History returns up to limit recent events across all types, most recent
// first. A non-positive limit returns the full retained window.
func (b *Bus) History(limit int) []event.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := len(b.history)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]event.Event, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, b.history[i])
	}
	return out
}

// Close stops accepting publishes and waits for in-flight async deliveries,
// bounded by the context deadline.
func (b *Bus) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown grace period elapsed with deliveries in flight: %w", ctx.Err())
	}
}

func validateEnvelope(evt event.Event) error {
	if evt.ID == uuid.Nil {
		return fmt.Errorf("event has no id; construct it with event.New")
	}
	if evt.Type == "" {
		return fmt.Errorf("event type must not be empty")
	}
	if evt.Data == nil {
		return fmt.Errorf("event %s has no payload", evt.ID)
	}
	if evt.Data.EventType() != evt.Type {
		return fmt.Errorf("payload type %q does not match envelope type %q", evt.Data.EventType(), evt.Type)
	}
	return nil
}
