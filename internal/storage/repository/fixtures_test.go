package repository_test

import (
	"testing"
	"time"

	"github.com/ramonehamilton/carddex/internal/storage"
	"github.com/ramonehamilton/carddex/internal/storage/models"
)

func setupRepos(t *testing.T) *storage.Repositories {
	t.Helper()
	return storage.NewTestService(t).Repos()
}

func strPtr(s string) *string { return &s }

var fixedTime = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

func pikachu() *models.Card {
	return &models.Card{
		ID:          "sv03.5-025",
		Name:        "Pikachu",
		Supertype:   models.SupertypePokemon,
		Subtypes:    []string{"Basic"},
		HP:          strPtr("60"),
		Types:       []string{"Lightning"},
		RetreatCost: []string{"Colorless"},
		Attacks: []models.Attack{
			{Name: "Thunder Shock", Cost: []string{"Lightning"}, Damage: strPtr("20"), TotalCost: 1},
		},
		Weaknesses:    []models.TypeEffect{{Type: "Fighting", Value: "×2"}},
		SetID:         "sv03.5",
		SetName:       "151",
		Number:        "025",
		Rarity:        strPtr("Common"),
		QuantityOwned: 2,
		DateAdded:     fixedTime,
	}
}

func trainer(id, name string) *models.Card {
	return &models.Card{
		ID:            id,
		Name:          name,
		Supertype:     models.SupertypeTrainer,
		Effect:        strPtr("Draw 2 cards."),
		TrainerType:   strPtr("Item"),
		SetID:         "sv01",
		SetName:       "Scarlet & Violet",
		Number:        "180",
		QuantityOwned: 4,
		DateAdded:     fixedTime,
	}
}
