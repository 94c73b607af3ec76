package events

import (
	"context"

	"github.com/ramonehamilton/carddex/internal/logger"
)

// LoggingObserver writes every event to the structured log.
type LoggingObserver struct {
	log *logger.Logger
}

// NewLoggingObserver creates a new observer that logs events.
func NewLoggingObserver(log *logger.Logger) *LoggingObserver {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingObserver{log: log}
}

// OnEvent logs the event type and payload.
func (o *LoggingObserver) OnEvent(event Event) error {
	ctx := event.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = o.log.WithFields(ctx, map[string]any{
		"event":   event.Type,
		"payload": event.Payload,
	})
	o.log.Info(ctx, "domain event")
	return nil
}

// Name returns the observer's name.
func (o *LoggingObserver) Name() string {
	return "LoggingObserver"
}

// ShouldHandle accepts every event.
func (o *LoggingObserver) ShouldHandle(string) bool {
	return true
}

// FuncObserver adapts a function to the Observer interface. An empty Types
// list handles every event.
type FuncObserver struct {
	ObserverName string
	Types        []string
	Fn           func(Event) error
}

// OnEvent calls Fn.
func (o *FuncObserver) OnEvent(event Event) error {
	return o.Fn(event)
}

// Name returns ObserverName.
func (o *FuncObserver) Name() string {
	return o.ObserverName
}

// ShouldHandle reports whether eventType is in Types.
func (o *FuncObserver) ShouldHandle(eventType string) bool {
	if len(o.Types) == 0 {
		return true
	}
	for _, t := range o.Types {
		if t == eventType {
			return true
		}
	}
	return false
}
