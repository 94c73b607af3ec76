// Package models defines the persisted records of the card collection.
package models

import "time"

// Card supertypes as reported by the catalog.
const (
	SupertypePokemon = "Pokémon"
	SupertypeTrainer = "Trainer"
	SupertypeEnergy  = "Energy"
)

// Card is a catalog card the user has added to their collection.
// List-valued fields are nil when the catalog supplied no data.
type Card struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Supertype   string       `json:"supertype"`
	Subtypes    []string     `json:"subtypes"`
	HP          *string      `json:"hp"`
	Types       []string     `json:"types"`
	EvolvesFrom *string      `json:"evolves_from"`
	RetreatCost []string     `json:"retreat_cost"`
	Attacks     []Attack     `json:"attacks"`
	Ability     *Ability     `json:"ability"`
	Weaknesses  []TypeEffect `json:"weaknesses"`
	Resistances []TypeEffect `json:"resistances"`

	// Trainer and Energy cards
	Effect      *string `json:"effect"`
	TrainerType *string `json:"trainer_type"`

	SetID      string  `json:"set_id"`
	SetName    string  `json:"set_name"`
	SetLogo    *string `json:"set_logo"`
	Number     string  `json:"number"`
	Rarity     *string `json:"rarity"`
	ImageSmall *string `json:"image_small"`
	ImageLarge *string `json:"image_large"`

	Artist         *string `json:"artist"`
	FlavorText     *string `json:"flavor_text"`
	RegulationMark *string `json:"regulation_mark"`

	QuantityOwned int       `json:"quantity_owned"`
	DateAdded     time.Time `json:"date_added"`
}

// Attack is one attack printed on a Pokémon card.
type Attack struct {
	Name      string   `json:"name"`
	Cost      []string `json:"cost"`
	Damage    *string  `json:"damage"`
	Text      *string  `json:"text"`
	TotalCost int      `json:"total_cost"`
}

// Ability is a Pokémon ability. Type is usually "Ability".
type Ability struct {
	Name string `json:"name"`
	Text string `json:"text"`
	Type string `json:"type"`
}

// TypeEffect is a weakness or resistance entry, e.g. {Fire, ×2}.
type TypeEffect struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// IsPokemon reports whether the card is a Pokémon.
func (c *Card) IsPokemon() bool { return c.Supertype == SupertypePokemon }

// IsTrainer reports whether the card is a Trainer.
func (c *Card) IsTrainer() bool { return c.Supertype == SupertypeTrainer }

// IsEnergy reports whether the card is an Energy card.
func (c *Card) IsEnergy() bool { return c.Supertype == SupertypeEnergy }

// PrimaryType returns the first energy type of the card, or "" if it has none.
func (c *Card) PrimaryType() string {
	if len(c.Types) == 0 {
		return ""
	}
	return c.Types[0]
}

// RarityOrUnknown returns the rarity, or "Unknown" when absent.
func (c *Card) RarityOrUnknown() string {
	if c.Rarity == nil || *c.Rarity == "" {
		return "Unknown"
	}
	return *c.Rarity
}
