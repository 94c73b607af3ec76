// Package mapper converts catalog payloads into collection records.
package mapper

import (
	"strconv"
	"time"

	"github.com/ramonehamilton/carddex/internal/catalog"
	"github.com/ramonehamilton/carddex/internal/storage/models"
)

const (
	imageLowSuffix     = "/low.webp"
	imageHighSuffix    = "/high.webp"
	retreatPlaceholder = "Colorless"
	defaultAbilityType = "Ability"
	defaultModifier    = "×2"
	unknownSeries      = "Unknown"
)

// MapCard builds a Card from a catalog card detail. Malformed numeric fields
// are left empty rather than reported.
func MapCard(raw *catalog.CardDetail, quantityOwned int, addedAt time.Time) *models.Card {
	supertype := models.SupertypePokemon
	if raw.Category != nil && *raw.Category != "" {
		supertype = normalizeSupertype(*raw.Category)
	}

	card := &models.Card{
		ID:             raw.ID,
		Name:           raw.Name,
		Supertype:      supertype,
		Types:          nonEmpty(raw.Types),
		EvolvesFrom:    raw.EvolveFrom,
		Attacks:        mapAttacks(raw.Attacks),
		Weaknesses:     mapTypeEffects(raw.Weaknesses),
		Resistances:    mapTypeEffects(raw.Resistances),
		Effect:         raw.Effect,
		TrainerType:    raw.TrainerType,
		SetID:          raw.Set.ID,
		SetName:        raw.Set.Name,
		SetLogo:        raw.Set.Logo,
		Number:         raw.LocalID,
		Rarity:         raw.Rarity,
		Artist:         raw.Illustrator,
		FlavorText:     raw.Description,
		RegulationMark: raw.RegulationMark,
		QuantityOwned:  quantityOwned,
		DateAdded:      addedAt,
	}

	if raw.Stage != nil && *raw.Stage != "" {
		card.Subtypes = []string{*raw.Stage}
	}
	if raw.HP.Valid {
		hp := strconv.Itoa(raw.HP.Value)
		card.HP = &hp
	}
	if raw.Retreat.Valid && raw.Retreat.Value >= 0 {
		card.RetreatCost = make([]string, raw.Retreat.Value)
		for i := range card.RetreatCost {
			card.RetreatCost[i] = retreatPlaceholder
		}
	}
	if len(raw.Abilities) > 0 {
		card.Ability = mapAbility(raw.Abilities[0])
	}
	if raw.Image != nil && *raw.Image != "" {
		small := *raw.Image + imageLowSuffix
		large := *raw.Image + imageHighSuffix
		card.ImageSmall = &small
		card.ImageLarge = &large
	}

	return card
}

// normalizeSupertype folds the unaccented spelling the catalog sometimes
// uses into the canonical supertype.
func normalizeSupertype(category string) string {
	if category == "Pokemon" {
		return models.SupertypePokemon
	}
	return category
}

func mapAttacks(raw []catalog.RawAttack) []models.Attack {
	if len(raw) == 0 {
		return nil
	}
	attacks := make([]models.Attack, 0, len(raw))
	for _, a := range raw {
		attacks = append(attacks, models.Attack{
			Name:      a.Name,
			Cost:      nonEmpty(a.Cost),
			Damage:    a.Damage.Ptr(),
			Text:      a.Effect,
			TotalCost: len(a.Cost),
		})
	}
	return attacks
}

func mapAbility(raw catalog.RawAbility) *models.Ability {
	abilityType := defaultAbilityType
	if raw.Type != nil && *raw.Type != "" {
		abilityType = *raw.Type
	}
	return &models.Ability{
		Name: raw.Name,
		Text: raw.Effect,
		Type: abilityType,
	}
}

func mapTypeEffects(raw []catalog.RawTypeValue) []models.TypeEffect {
	if len(raw) == 0 {
		return nil
	}
	effects := make([]models.TypeEffect, 0, len(raw))
	for _, e := range raw {
		value := defaultModifier
		if e.Value.Valid && e.Value.Value != "" {
			value = e.Value.Value
		}
		effects = append(effects, models.TypeEffect{Type: e.Type, Value: value})
	}
	return effects
}

func nonEmpty(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return values
}

// MapSet builds a Set from a full catalog set.
func MapSet(raw *catalog.SetDetail) *models.Set {
	series := unknownSeries
	if raw.Serie != nil && raw.Serie.Name != "" {
		series = raw.Serie.Name
	}
	return &models.Set{
		ID:           raw.ID,
		Name:         raw.Name,
		Series:       series,
		PrintedTotal: raw.CardCount.Official,
		Total:        raw.CardCount.TotalOrOfficial(),
		ReleaseDate:  raw.ReleaseDate,
		LogoURL:      raw.Logo,
		SymbolURL:    raw.Symbol,
	}
}

// MapSetBrief builds a Set from the short set form. Series and release date
// are unknown in that form.
func MapSetBrief(raw catalog.SetBrief) *models.Set {
	set := &models.Set{
		ID:        raw.ID,
		Name:      raw.Name,
		Series:    unknownSeries,
		LogoURL:   raw.Logo,
		SymbolURL: raw.Symbol,
	}
	if raw.CardCount != nil {
		set.PrintedTotal = raw.CardCount.Official
		set.Total = raw.CardCount.TotalOrOfficial()
	}
	return set
}

// MapSetBriefs maps a list of short sets.
func MapSetBriefs(raw []catalog.SetBrief) []*models.Set {
	sets := make([]*models.Set, 0, len(raw))
	for _, s := range raw {
		sets = append(sets, MapSetBrief(s))
	}
	return sets
}
