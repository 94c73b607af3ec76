package mapper

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ramonehamilton/carddex/internal/catalog"
)

var addedAt = time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)

func decodeCard(t *testing.T, payload string) *catalog.CardDetail {
	t.Helper()
	var card catalog.CardDetail
	if err := json.Unmarshal([]byte(payload), &card); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	return &card
}

func TestMapCard_HPStringOrInt(t *testing.T) {
	fromString := MapCard(decodeCard(t, `{"id": "a-1", "localId": "1", "name": "A", "hp": "120", "set": {"id": "a", "name": "A"}}`), 1, addedAt)
	fromInt := MapCard(decodeCard(t, `{"id": "a-1", "localId": "1", "name": "A", "hp": 120, "set": {"id": "a", "name": "A"}}`), 1, addedAt)

	for name, card := range map[string]*string{"string": fromString.HP, "int": fromInt.HP} {
		if card == nil || *card != "120" {
			t.Errorf("%s: HP = %v, want \"120\"", name, card)
		}
	}
}

func TestMapCard_MalformedNumbersBecomeNil(t *testing.T) {
	card := MapCard(decodeCard(t, `{"id": "a-1", "localId": "1", "name": "A", "hp": "??", "retreat": "x", "set": {"id": "a", "name": "A"}}`), 1, addedAt)

	if card.HP != nil {
		t.Errorf("HP = %v, want nil", *card.HP)
	}
	if card.RetreatCost != nil {
		t.Errorf("RetreatCost = %v, want nil", card.RetreatCost)
	}
}

func TestMapCard_Pokemon(t *testing.T) {
	raw := decodeCard(t, `{
		"id": "sv03.5-006",
		"localId": "006",
		"name": "Charizard ex",
		"image": "https://assets.tcgdex.net/en/sv/sv03.5/006",
		"category": "Pokemon",
		"hp": 330,
		"types": ["Fire"],
		"evolveFrom": "Charmeleon",
		"description": "It spits fire.",
		"stage": "Stage2",
		"abilities": [{"name": "Infernal Reign", "effect": "Attach Fire Energy."}, {"type": "Poke-Power", "name": "Second", "effect": "ignored"}],
		"attacks": [
			{"cost": ["Fire", "Fire"], "name": "Burning Darkness", "effect": "More damage.", "damage": "180+"},
			{"name": "Ember", "damage": 30}
		],
		"weaknesses": [{"type": "Water"}],
		"resistances": [{"type": "Grass", "value": "-30"}],
		"retreat": "2",
		"set": {"id": "sv03.5", "name": "151", "logo": "https://assets.tcgdex.net/en/sv/sv03.5/logo"},
		"rarity": "Double Rare",
		"illustrator": "PLANETA Mochizuki",
		"regulationMark": "G"
	}`)

	card := MapCard(raw, 3, addedAt)

	if card.Supertype != "Pokémon" {
		t.Errorf("Supertype = %q, want Pokémon", card.Supertype)
	}
	if len(card.Subtypes) != 1 || card.Subtypes[0] != "Stage2" {
		t.Errorf("Subtypes = %v", card.Subtypes)
	}
	if card.HP == nil || *card.HP != "330" {
		t.Errorf("HP = %v", card.HP)
	}
	if len(card.RetreatCost) != 2 || card.RetreatCost[0] != "Colorless" || card.RetreatCost[1] != "Colorless" {
		t.Errorf("RetreatCost = %v", card.RetreatCost)
	}
	if card.Ability == nil || card.Ability.Name != "Infernal Reign" || card.Ability.Type != "Ability" {
		t.Errorf("Ability = %+v", card.Ability)
	}
	if len(card.Attacks) != 2 {
		t.Fatalf("Attacks = %+v", card.Attacks)
	}
	if card.Attacks[0].TotalCost != 2 || *card.Attacks[0].Damage != "180+" {
		t.Errorf("first attack = %+v", card.Attacks[0])
	}
	if card.Attacks[1].TotalCost != 0 || card.Attacks[1].Cost != nil || *card.Attacks[1].Damage != "30" {
		t.Errorf("second attack = %+v", card.Attacks[1])
	}
	if card.Weaknesses[0].Value != "×2" {
		t.Errorf("weakness value = %q, want ×2", card.Weaknesses[0].Value)
	}
	if card.Resistances[0].Value != "-30" {
		t.Errorf("resistance value = %q, want -30", card.Resistances[0].Value)
	}
	if card.ImageSmall == nil || *card.ImageSmall != "https://assets.tcgdex.net/en/sv/sv03.5/006/low.webp" {
		t.Errorf("ImageSmall = %v", card.ImageSmall)
	}
	if card.ImageLarge == nil || *card.ImageLarge != "https://assets.tcgdex.net/en/sv/sv03.5/006/high.webp" {
		t.Errorf("ImageLarge = %v", card.ImageLarge)
	}
	if card.Number != "006" || card.SetID != "sv03.5" || card.SetName != "151" || card.SetLogo == nil {
		t.Errorf("set linkage = %s %s %s %v", card.Number, card.SetID, card.SetName, card.SetLogo)
	}
	if card.Artist == nil || *card.Artist != "PLANETA Mochizuki" {
		t.Errorf("Artist = %v", card.Artist)
	}
	if card.FlavorText == nil || card.EvolvesFrom == nil || card.RegulationMark == nil {
		t.Error("optional text fields should be mapped")
	}
	if card.QuantityOwned != 3 || !card.DateAdded.Equal(addedAt) {
		t.Errorf("collection state = %d %v", card.QuantityOwned, card.DateAdded)
	}
}

func TestMapCard_TrainerDefaults(t *testing.T) {
	card := MapCard(decodeCard(t, `{
		"id": "sv01-196",
		"localId": "196",
		"name": "Ultra Ball",
		"category": "Trainer",
		"effect": "Discard 2 cards.",
		"trainerType": "Item",
		"attacks": [],
		"set": {"id": "sv01", "name": "Scarlet & Violet"}
	}`), 1, addedAt)

	if card.Supertype != "Trainer" {
		t.Errorf("Supertype = %q", card.Supertype)
	}
	if card.Attacks != nil || card.Types != nil || card.Weaknesses != nil || card.Subtypes != nil {
		t.Error("absent or empty lists should map to nil")
	}
	if card.Ability != nil || card.HP != nil || card.RetreatCost != nil {
		t.Error("Pokémon-only fields should be nil")
	}
	if card.ImageSmall != nil || card.ImageLarge != nil {
		t.Error("images should be nil without a base image")
	}
	if card.Effect == nil || *card.Effect != "Discard 2 cards." || card.TrainerType == nil {
		t.Errorf("trainer fields not mapped: %v %v", card.Effect, card.TrainerType)
	}
}

func TestMapCard_MissingCategoryDefaultsToPokemon(t *testing.T) {
	card := MapCard(decodeCard(t, `{"id": "base1-4", "localId": "4", "name": "Charizard", "set": {"id": "base1", "name": "Base"}}`), 1, addedAt)
	if card.Supertype != "Pokémon" {
		t.Errorf("Supertype = %q, want Pokémon", card.Supertype)
	}
}

func TestMapCard_ZeroRetreat(t *testing.T) {
	card := MapCard(decodeCard(t, `{"id": "a-1", "localId": "1", "name": "A", "retreat": 0, "set": {"id": "a", "name": "A"}}`), 1, addedAt)
	if card.RetreatCost == nil || len(card.RetreatCost) != 0 {
		t.Errorf("RetreatCost = %#v, want empty non-nil", card.RetreatCost)
	}
}

func TestMapSet(t *testing.T) {
	total := 207
	set := MapSet(&catalog.SetDetail{
		ID:          "sv03.5",
		Name:        "151",
		CardCount:   catalog.CardCount{Official: 165, Total: &total},
		ReleaseDate: "2023-09-22",
		Serie:       &catalog.SerieBrief{ID: "sv", Name: "Scarlet & Violet"},
	})
	if set.Total != 207 || set.PrintedTotal != 165 || set.Series != "Scarlet & Violet" {
		t.Errorf("unexpected set: %+v", set)
	}

	fallback := MapSet(&catalog.SetDetail{ID: "x", Name: "X", CardCount: catalog.CardCount{Official: 100}})
	if fallback.Total != 100 || fallback.Series != "Unknown" {
		t.Errorf("unexpected fallback set: %+v", fallback)
	}
}

func TestMapSetBriefs(t *testing.T) {
	sets := MapSetBriefs([]catalog.SetBrief{
		{ID: "a", Name: "A", CardCount: &catalog.CardCount{Official: 10}},
		{ID: "b", Name: "B"},
	})
	if len(sets) != 2 {
		t.Fatalf("expected 2 sets, got %d", len(sets))
	}
	if sets[0].Total != 10 || sets[0].PrintedTotal != 10 || sets[0].Series != "Unknown" {
		t.Errorf("unexpected set: %+v", sets[0])
	}
	if sets[1].Total != 0 {
		t.Errorf("missing card count should leave totals at zero: %+v", sets[1])
	}
}
