package models

import "time"

// Deck game rules.
const (
	DeckSize           = 60
	MaxCopiesPerCard   = 4
	RecommendedMinimum = 10
)

// Deck is a user-built deck. Entries and BasicEnergy are loaded alongside
// the deck row; every count derived from them is recomputed on each call.
type Deck struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsFavorite  bool      `json:"is_favorite"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Entries []*DeckEntry `json:"entries"`

	// BasicEnergy maps energy type to count. Only positive counts are kept.
	BasicEnergy map[string]int `json:"basic_energy"`
}

// DeckEntry is one card line in a deck.
type DeckEntry struct {
	ID       int64     `json:"id"`
	DeckID   string    `json:"deck_id"`
	CardID   string    `json:"card_id"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"added_at"`

	// Card is the linked collection card, when loaded.
	Card *Card `json:"card,omitempty"`
}

// Entry returns the entry for cardID, or nil.
func (d *Deck) Entry(cardID string) *DeckEntry {
	for _, e := range d.Entries {
		if e.CardID == cardID {
			return e
		}
	}
	return nil
}

// QuantityOf returns how many copies of cardID the deck holds.
func (d *Deck) QuantityOf(cardID string) int {
	if e := d.Entry(cardID); e != nil {
		return e.Quantity
	}
	return 0
}

// BasicEnergyTotal sums all basic energy counts.
func (d *Deck) BasicEnergyTotal() int {
	total := 0
	for _, n := range d.BasicEnergy {
		total += n
	}
	return total
}

// TotalCards counts entry copies plus basic energy.
func (d *Deck) TotalCards() int {
	total := d.BasicEnergyTotal()
	for _, e := range d.Entries {
		total += e.Quantity
	}
	return total
}

// UniqueCards is the number of distinct card entries.
func (d *Deck) UniqueCards() int {
	return len(d.Entries)
}

// PokemonCount counts Pokémon copies.
func (d *Deck) PokemonCount() int {
	return d.countWhere((*Card).IsPokemon)
}

// TrainerCount counts Trainer copies.
func (d *Deck) TrainerCount() int {
	return d.countWhere((*Card).IsTrainer)
}

// EnergyCount counts Energy card copies plus all basic energy.
func (d *Deck) EnergyCount() int {
	return d.countWhere((*Card).IsEnergy) + d.BasicEnergyTotal()
}

// IsValid reports whether the deck holds exactly 60 cards.
func (d *Deck) IsValid() bool {
	return d.TotalCards() == DeckSize
}

// NeedsMoreCards is how many cards are missing to reach 60, or 0.
func (d *Deck) NeedsMoreCards() int {
	return max(0, DeckSize-d.TotalCards())
}

func (d *Deck) countWhere(pred func(*Card) bool) int {
	n := 0
	for _, e := range d.Entries {
		if e.Card != nil && pred(e.Card) {
			n += e.Quantity
		}
	}
	return n
}

// EnergyTypes tallies energy types across the deck: every entry contributes
// its quantity to each of its card's types, and basic energy adds per type.
func (d *Deck) EnergyTypes() map[string]int {
	types := make(map[string]int)
	for _, e := range d.Entries {
		if e.Card == nil {
			continue
		}
		for _, t := range e.Card.Types {
			types[t] += e.Quantity
		}
	}
	for t, n := range d.BasicEnergy {
		types[t] += n
	}
	return types
}

// SupertypeBreakdown tallies entry copies by card supertype.
func (d *Deck) SupertypeBreakdown() map[string]int {
	breakdown := make(map[string]int)
	for _, e := range d.Entries {
		if e.Card == nil {
			continue
		}
		breakdown[e.Card.Supertype] += e.Quantity
	}
	return breakdown
}
