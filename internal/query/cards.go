// Package query filters, sorts and summarises collection cards and decks.
// Every function is pure: inputs are never modified and results are new slices.
package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ramonehamilton/carddex/internal/storage/models"
)

// CardFilter narrows a card list. Empty criteria match everything; criteria
// combine with AND, values within one criterion with OR.
type CardFilter struct {
	SearchText string   `json:"search_text,omitempty"`
	Supertypes []string `json:"supertypes,omitempty"`
	Types      []string `json:"types,omitempty"`
	Rarities   []string `json:"rarities,omitempty"`
	SetIDs     []string `json:"set_ids,omitempty"`
}

// IsEmpty reports whether the filter has no active criteria.
func (f CardFilter) IsEmpty() bool {
	return strings.TrimSpace(f.SearchText) == "" &&
		len(f.Supertypes) == 0 &&
		len(f.Types) == 0 &&
		len(f.Rarities) == 0 &&
		len(f.SetIDs) == 0
}

// FilterCards returns the cards matching f, keeping input order. Surrounding
// whitespace in the search text is ignored.
func FilterCards(cards []*models.Card, f CardFilter) []*models.Card {
	search := strings.ToLower(strings.TrimSpace(f.SearchText))
	supertypes := toSet(f.Supertypes)
	types := toSet(f.Types)
	rarities := toSet(f.Rarities)
	sets := toSet(f.SetIDs)

	result := make([]*models.Card, 0, len(cards))
	for _, card := range cards {
		if search != "" && !matchesText(card, search) {
			continue
		}
		if len(supertypes) > 0 && !supertypes[card.Supertype] {
			continue
		}
		if len(types) > 0 && !anyIn(card.Types, types) {
			continue
		}
		if len(rarities) > 0 && (card.Rarity == nil || !rarities[*card.Rarity]) {
			continue
		}
		if len(sets) > 0 && !sets[card.SetID] {
			continue
		}
		result = append(result, card)
	}
	return result
}

// matchesText does a case-insensitive substring match on name, set name and
// artist. search must already be lower case.
func matchesText(card *models.Card, search string) bool {
	if strings.Contains(strings.ToLower(card.Name), search) ||
		strings.Contains(strings.ToLower(card.SetName), search) {
		return true
	}
	return card.Artist != nil && strings.Contains(strings.ToLower(*card.Artist), search)
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func anyIn(values []string, set map[string]bool) bool {
	for _, v := range values {
		if set[v] {
			return true
		}
	}
	return false
}

// CardSort selects the ordering applied by SortCards.
type CardSort string

const (
	SortCardsByName      CardSort = "name"
	SortCardsByDateAdded CardSort = "date_added"
	SortCardsBySet       CardSort = "set"
	SortCardsByNumber    CardSort = "number"
	SortCardsByRarity    CardSort = "rarity"
	SortCardsByType      CardSort = "type"
)

// ParseCardSort maps a query value to a CardSort, defaulting to name.
func ParseCardSort(s string) CardSort {
	switch CardSort(strings.ToLower(s)) {
	case SortCardsByDateAdded, "dateadded", "date":
		return SortCardsByDateAdded
	case SortCardsBySet, "set_name", "setname":
		return SortCardsBySet
	case SortCardsByNumber:
		return SortCardsByNumber
	case SortCardsByRarity:
		return SortCardsByRarity
	case SortCardsByType:
		return SortCardsByType
	default:
		return SortCardsByName
	}
}

// SortCards returns a stably sorted copy of cards. Date added sorts newest
// first; every other option sorts ascending.
func SortCards(cards []*models.Card, by CardSort) []*models.Card {
	sorted := append([]*models.Card(nil), cards...)

	var less func(a, b *models.Card) bool
	switch by {
	case SortCardsByDateAdded:
		less = func(a, b *models.Card) bool { return a.DateAdded.After(b.DateAdded) }
	case SortCardsBySet:
		less = func(a, b *models.Card) bool { return a.SetName < b.SetName }
	case SortCardsByNumber:
		less = func(a, b *models.Card) bool { return CardNumber(a.Number) < CardNumber(b.Number) }
	case SortCardsByRarity:
		less = func(a, b *models.Card) bool { return deref(a.Rarity) < deref(b.Rarity) }
	case SortCardsByType:
		less = func(a, b *models.Card) bool { return a.PrimaryType() < b.PrimaryType() }
	default:
		less = func(a, b *models.Card) bool { return a.Name < b.Name }
	}

	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	return sorted
}

// CardNumber extracts the first run of decimal digits from a display number,
// so "25/167" is 25 and "1a" is 1. Numbers without digits are 0.
func CardNumber(number string) int {
	start := strings.IndexFunc(number, isDigit)
	if start < 0 {
		return 0
	}
	end := start
	for end < len(number) && isDigit(rune(number[end])) {
		end++
	}
	n, err := strconv.Atoi(number[start:end])
	if err != nil {
		return 0
	}
	return n
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
