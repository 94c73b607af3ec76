// Package events distributes domain events (cards acquired, decks changed)
// to in-process observers.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/ramonehamilton/carddex/internal/logger"
)

// Event represents a domain event that can be dispatched to observers.
type Event struct {
	// Type is the event type (e.g. "card:acquired", "deck:changed")
	Type string

	// Payload is one of the message types in messages.go.
	Payload any

	OccurredAt time.Time

	// Context of the operation that raised the event
	Context context.Context
}

// Observer defines the interface for objects that want to be notified of events.
type Observer interface {
	// OnEvent is called when an event is dispatched.
	OnEvent(event Event) error

	// Name returns a human-readable name for this observer.
	Name() string

	// ShouldHandle returns true if this observer wants events of eventType.
	ShouldHandle(eventType string) bool
}

// Dispatcher fans events out to registered observers. Safe for concurrent
// use. A nil *Dispatcher drops every event.
type Dispatcher struct {
	observers []Observer
	log       *logger.Logger
	mu        sync.RWMutex
}

// NewDispatcher creates a new Dispatcher. A nil logger discards dispatch failures.
func NewDispatcher(log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		observers: make([]Observer, 0),
		log:       log,
	}
}

// Register adds an observer to the dispatcher.
func (d *Dispatcher) Register(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.observers = append(d.observers, observer)
	d.log.Debug(context.Background(), "registered event observer "+observer.Name())
}

// Unregister removes an observer from the dispatcher.
func (d *Dispatcher) Unregister(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, obs := range d.observers {
		if obs == observer {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			return
		}
	}
}

func (d *Dispatcher) snapshot() []Observer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	observers := make([]Observer, len(d.observers))
	copy(observers, d.observers)
	return observers
}

// Dispatch notifies observers sequentially in registration order. Observer
// errors are logged and do not stop delivery to the others.
func (d *Dispatcher) Dispatch(event Event) {
	if d == nil {
		return
	}
	for _, observer := range d.snapshot() {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		d.notify(observer, event)
	}
}

// DispatchAsync notifies each observer in its own goroutine.
func (d *Dispatcher) DispatchAsync(event Event) {
	if d == nil {
		return
	}
	for _, observer := range d.snapshot() {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		go d.notify(observer, event)
	}
}

func (d *Dispatcher) notify(observer Observer, event Event) {
	if err := observer.OnEvent(event); err != nil {
		ctx := event.Context
		if ctx == nil {
			ctx = context.Background()
		}
		d.log.Error(ctx, "observer "+observer.Name()+" failed to handle "+event.Type, err)
	}
}

// ObserverCount returns the number of registered observers.
func (d *Dispatcher) ObserverCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.observers)
}

// Clear removes all registered observers.
func (d *Dispatcher) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = make([]Observer, 0)
}

// New creates an Event with a typed payload.
func New[T any](ctx context.Context, eventType string, payload T) Event {
	return Event{
		Type:       eventType,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
		Context:    ctx,
	}
}

// PayloadOf extracts a typed payload from an Event.
// Returns the zero value and false if the payload is not of the expected type.
func PayloadOf[T any](event Event) (T, bool) {
	var zero T
	if event.Payload == nil {
		return zero, false
	}
	typed, ok := event.Payload.(T)
	return typed, ok
}
