package websocket

import (
	"github.com/ramonehamilton/carddex/internal/events"
)

// Observer forwards every domain event to connected WebSocket clients.
type Observer struct {
	hub *Hub
}

// NewObserver creates an events.Observer that broadcasts through hub.
func NewObserver(hub *Hub) *Observer {
	return &Observer{hub: hub}
}

// OnEvent broadcasts the event payload. A stopped hub drops it silently.
func (o *Observer) OnEvent(event events.Event) error {
	if o.hub == nil {
		return nil
	}
	o.hub.BroadcastEvent(Event{
		Type:       event.Type,
		Data:       event.Payload,
		OccurredAt: event.OccurredAt,
	})
	return nil
}

// Name returns the observer's name.
func (o *Observer) Name() string {
	return "websocket"
}

// ShouldHandle returns true for all events.
func (o *Observer) ShouldHandle(string) bool {
	return true
}

var _ events.Observer = (*Observer)(nil)
