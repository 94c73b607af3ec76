package events

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ramonehamilton/carddex/internal/logger"
)

func TestNew_TypedPayload(t *testing.T) {
	ctx := context.Background()

	event := New(ctx, TypeCardAcquired, CardAcquiredEvent{CardID: "sv01-1", Quantity: 2, Created: true})

	if event.Type != TypeCardAcquired {
		t.Errorf("Expected type %q, got %q", TypeCardAcquired, event.Type)
	}
	if event.OccurredAt.IsZero() {
		t.Error("OccurredAt should be set")
	}

	payload, ok := PayloadOf[CardAcquiredEvent](event)
	if !ok {
		t.Fatal("Expected CardAcquiredEvent payload")
	}
	if payload.CardID != "sv01-1" || payload.Quantity != 2 || !payload.Created {
		t.Errorf("unexpected payload: %+v", payload)
	}

	if _, ok := PayloadOf[DeckChangedEvent](event); ok {
		t.Error("PayloadOf should fail for the wrong type")
	}
	if _, ok := PayloadOf[DeckChangedEvent](Event{}); ok {
		t.Error("PayloadOf should fail for a nil payload")
	}
}

func TestDispatcher_FiltersAndOrders(t *testing.T) {
	d := NewDispatcher(nil)

	var got []string
	d.Register(&FuncObserver{ObserverName: "decks", Types: []string{TypeDeckChanged}, Fn: func(e Event) error {
		got = append(got, "decks:"+e.Type)
		return nil
	}})
	d.Register(&FuncObserver{ObserverName: "all", Fn: func(e Event) error {
		got = append(got, "all:"+e.Type)
		return nil
	}})

	d.Dispatch(New(context.Background(), TypeCardDeleted, CardDeletedEvent{CardID: "x"}))
	d.Dispatch(New(context.Background(), TypeDeckChanged, DeckChangedEvent{DeckID: "d"}))

	want := []string{"all:" + TypeCardDeleted, "decks:" + TypeDeckChanged, "all:" + TypeDeckChanged}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDispatcher_ObserverErrorDoesNotStopDelivery(t *testing.T) {
	var buf bytes.Buffer
	d := NewDispatcher(logger.New(logger.Options{Output: &buf, Level: zerolog.DebugLevel}))

	delivered := false
	d.Register(&FuncObserver{ObserverName: "broken", Fn: func(Event) error { return errors.New("boom") }})
	d.Register(&FuncObserver{ObserverName: "ok", Fn: func(Event) error {
		delivered = true
		return nil
	}})

	d.Dispatch(New(context.Background(), TypeDeckDeleted, DeckDeletedEvent{DeckID: "d"}))

	if !delivered {
		t.Error("second observer should still be notified")
	}
	if !strings.Contains(buf.String(), "observer broken failed") {
		t.Errorf("expected failure to be logged, got %s", buf.String())
	}
}

func TestDispatcher_DispatchAsync(t *testing.T) {
	d := NewDispatcher(nil)

	var wg sync.WaitGroup
	wg.Add(2)
	for _, name := range []string{"a", "b"} {
		d.Register(&FuncObserver{ObserverName: name, Fn: func(Event) error {
			wg.Done()
			return nil
		}})
	}

	d.DispatchAsync(New(context.Background(), TypeEnergyPoolChanged, EnergyPoolChangedEvent{Type: "Fire", Count: 3}))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("async observers were not notified")
	}
}

func TestDispatcher_RegisterUnregisterClear(t *testing.T) {
	d := NewDispatcher(nil)
	a := &FuncObserver{ObserverName: "a", Fn: func(Event) error { return nil }}
	b := &FuncObserver{ObserverName: "b", Fn: func(Event) error { return nil }}

	d.Register(a)
	d.Register(b)
	if d.ObserverCount() != 2 {
		t.Fatalf("ObserverCount = %d, want 2", d.ObserverCount())
	}

	d.Unregister(a)
	if d.ObserverCount() != 1 {
		t.Errorf("ObserverCount = %d after Unregister, want 1", d.ObserverCount())
	}

	d.Clear()
	if d.ObserverCount() != 0 {
		t.Errorf("ObserverCount = %d after Clear, want 0", d.ObserverCount())
	}
}

func TestDispatcher_NilIsNoop(t *testing.T) {
	var d *Dispatcher
	d.Dispatch(New(context.Background(), TypeCardDeleted, CardDeletedEvent{}))
	d.DispatchAsync(New(context.Background(), TypeCardDeleted, CardDeletedEvent{}))
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLoggingObserver(logger.New(logger.Options{Output: &buf}))

	if !obs.ShouldHandle(TypeDeckChanged) {
		t.Error("LoggingObserver should handle every event")
	}
	if err := obs.OnEvent(New(context.Background(), TypeDeckChanged, DeckChangedEvent{DeckID: "deck-1", Action: "create"})); err != nil {
		t.Fatalf("OnEvent failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"event":"deck:changed"`) || !strings.Contains(out, "deck-1") {
		t.Errorf("unexpected log output: %s", out)
	}
}
