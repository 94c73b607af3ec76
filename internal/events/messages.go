package events

// Event types.
const (
	TypeCardAcquired      = "card:acquired"
	TypeCardQuantity      = "card:quantity"
	TypeCardDeleted       = "card:deleted"
	TypeBulkAddCompleted  = "collection:bulk_added"
	TypeEnergyPoolChanged = "energy:changed"
	TypeDeckChanged       = "deck:changed"
	TypeDeckDeleted       = "deck:deleted"
)

// CardAcquiredEvent is the payload for card:acquired events.
type CardAcquiredEvent struct {
	CardID        string `json:"card_id"`
	Quantity      int    `json:"quantity"`
	QuantityOwned int    `json:"quantity_owned"`
	Created       bool   `json:"created"` // first copy of this card
}

// CardQuantityEvent is the payload for card:quantity events.
type CardQuantityEvent struct {
	CardID        string `json:"card_id"`
	QuantityOwned int    `json:"quantity_owned"`
}

// CardDeletedEvent is the payload for card:deleted events.
type CardDeletedEvent struct {
	CardID string `json:"card_id"`
}

// BulkAddCompletedEvent is the payload for collection:bulk_added events.
type BulkAddCompletedEvent struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// EnergyPoolChangedEvent is the payload for energy:changed events.
// Type is empty when every energy type was reset.
type EnergyPoolChangedEvent struct {
	Type  string `json:"type,omitempty"`
	Count int    `json:"count"`
}

// DeckChangedEvent is the payload for deck:changed events. Target is the
// card id or energy type a mutation applied to; Achieved is the resulting
// quantity after clamping.
type DeckChangedEvent struct {
	DeckID    string `json:"deck_id"`
	Action    string `json:"action"`
	Target    string `json:"target,omitempty"`
	Requested int    `json:"requested,omitempty"`
	Achieved  int    `json:"achieved,omitempty"`
}

// DeckDeletedEvent is the payload for deck:deleted events.
type DeckDeletedEvent struct {
	DeckID string `json:"deck_id"`
}
