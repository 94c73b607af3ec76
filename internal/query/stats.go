package query

import (
	"sort"

	"github.com/ramonehamilton/carddex/internal/storage/models"
)

// CollectionStats summarises the owned collection. Breakdowns weight each
// card by its owned quantity.
type CollectionStats struct {
	TotalCards  int            `json:"total_cards"`
	UniqueCards int            `json:"unique_cards"`
	ByType      map[string]int `json:"by_type"`
	BySupertype map[string]int `json:"by_supertype"`
	ByRarity    map[string]int `json:"by_rarity"`
}

// ComputeCollectionStats builds CollectionStats from the collection.
// A card with several types counts toward each of them.
func ComputeCollectionStats(cards []*models.Card) *CollectionStats {
	stats := &CollectionStats{
		UniqueCards: len(cards),
		ByType:      make(map[string]int),
		BySupertype: make(map[string]int),
		ByRarity:    make(map[string]int),
	}
	for _, card := range cards {
		stats.TotalCards += card.QuantityOwned
		for _, t := range card.Types {
			stats.ByType[t] += card.QuantityOwned
		}
		stats.BySupertype[card.Supertype] += card.QuantityOwned
		stats.ByRarity[card.RarityOrUnknown()] += card.QuantityOwned
	}
	return stats
}

// SetCompletion is the owned progress through one set.
type SetCompletion struct {
	Set        *models.Set `json:"set"`
	OwnedCount int         `json:"owned_count"`
	Percentage float64     `json:"completion_percentage"`
	IsComplete bool        `json:"is_complete"`
}

// SetCompletions computes completion for every set. OwnedCount counts
// distinct cards of the set with a positive owned quantity; the percentage
// is 0 for a set with no known total.
func SetCompletions(sets []*models.Set, cards []*models.Card) []SetCompletion {
	owned := make(map[string]int)
	for _, card := range cards {
		if card.QuantityOwned > 0 {
			owned[card.SetID]++
		}
	}

	result := make([]SetCompletion, 0, len(sets))
	for _, set := range sets {
		count := owned[set.ID]
		pct := 0.0
		if set.Total > 0 {
			pct = float64(count) / float64(set.Total) * 100
		}
		result = append(result, SetCompletion{
			Set:        set,
			OwnedCount: count,
			Percentage: pct,
			IsComplete: count == set.Total,
		})
	}
	return result
}

// DistinctTypes lists the energy types present in cards, sorted.
func DistinctTypes(cards []*models.Card) []string {
	seen := make(map[string]bool)
	for _, card := range cards {
		for _, t := range card.Types {
			seen[t] = true
		}
	}
	return sortedKeys(seen)
}

// DistinctRarities lists the rarities present in cards, sorted. Cards
// without a rarity are skipped.
func DistinctRarities(cards []*models.Card) []string {
	seen := make(map[string]bool)
	for _, card := range cards {
		if card.Rarity != nil && *card.Rarity != "" {
			seen[*card.Rarity] = true
		}
	}
	return sortedKeys(seen)
}

// SetOption is a selectable set filter value.
type SetOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DistinctSets lists the sets present in cards, sorted by name.
func DistinctSets(cards []*models.Card) []SetOption {
	byID := make(map[string]string)
	for _, card := range cards {
		if card.SetID != "" {
			byID[card.SetID] = card.SetName
		}
	}

	options := make([]SetOption, 0, len(byID))
	for id, name := range byID {
		options = append(options, SetOption{ID: id, Name: name})
	}
	sort.Slice(options, func(i, j int) bool {
		if options[i].Name != options[j].Name {
			return options[i].Name < options[j].Name
		}
		return options[i].ID < options[j].ID
	})
	return options
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
