package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ramonehamilton/carddex/internal/events"
)

func TestObserver_NilHub(t *testing.T) {
	observer := NewObserver(nil)
	if err := observer.OnEvent(events.Event{Type: events.TypeCardAcquired}); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}

func TestObserver_ForwardsTypedPayload(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url, nil)
	waitForClients(t, hub, 1)

	dispatcher := events.NewDispatcher(nil)
	dispatcher.Register(NewObserver(hub))

	dispatcher.Dispatch(events.New(context.Background(), events.TypeCardAcquired, events.CardAcquiredEvent{
		CardID:        "sv01-001",
		Quantity:      2,
		QuantityOwned: 3,
	}))

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}

	var received struct {
		Type string                   `json:"type"`
		Data events.CardAcquiredEvent `json:"data"`
	}
	if err := json.Unmarshal(message, &received); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if received.Type != events.TypeCardAcquired {
		t.Errorf("type = %q, want %q", received.Type, events.TypeCardAcquired)
	}
	if received.Data.CardID != "sv01-001" || received.Data.QuantityOwned != 3 {
		t.Errorf("unexpected payload: %+v", received.Data)
	}
}

func TestObserver_HandlesEverything(t *testing.T) {
	observer := NewObserver(nil)
	for _, eventType := range []string{events.TypeDeckChanged, events.TypeEnergyPoolChanged, "custom:event"} {
		if !observer.ShouldHandle(eventType) {
			t.Errorf("ShouldHandle(%q) = false", eventType)
		}
	}
	if observer.Name() != "websocket" {
		t.Errorf("Name() = %q", observer.Name())
	}
}
