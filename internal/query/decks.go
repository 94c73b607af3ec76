package query

import (
	"sort"
	"strings"

	"github.com/ramonehamilton/carddex/internal/storage/models"
)

// DeckFilter narrows a deck list.
type DeckFilter struct {
	SearchText    string `json:"search_text,omitempty"`
	FavoritesOnly bool   `json:"favorites_only,omitempty"`
}

// FilterDecks returns decks whose name contains the search text
// (case-insensitive), optionally restricted to favourites.
func FilterDecks(decks []*models.Deck, f DeckFilter) []*models.Deck {
	search := strings.ToLower(strings.TrimSpace(f.SearchText))

	result := make([]*models.Deck, 0, len(decks))
	for _, deck := range decks {
		if search != "" && !strings.Contains(strings.ToLower(deck.Name), search) {
			continue
		}
		if f.FavoritesOnly && !deck.IsFavorite {
			continue
		}
		result = append(result, deck)
	}
	return result
}

// DeckSort selects the ordering applied by SortDecks.
type DeckSort string

const (
	SortDecksByName      DeckSort = "name"
	SortDecksByCreated   DeckSort = "created"
	SortDecksByModified  DeckSort = "modified"
	SortDecksByCardCount DeckSort = "card_count"
)

// ParseDeckSort maps a query value to a DeckSort, defaulting to modified.
func ParseDeckSort(s string) DeckSort {
	switch DeckSort(strings.ToLower(s)) {
	case SortDecksByName:
		return SortDecksByName
	case SortDecksByCreated, "date_created":
		return SortDecksByCreated
	case SortDecksByCardCount, "cards":
		return SortDecksByCardCount
	default:
		return SortDecksByModified
	}
}

// SortDecks returns a stably sorted copy of decks. Name sorts ascending
// ignoring case; dates and card count sort descending.
func SortDecks(decks []*models.Deck, by DeckSort) []*models.Deck {
	sorted := append([]*models.Deck(nil), decks...)

	var less func(a, b *models.Deck) bool
	switch by {
	case SortDecksByName:
		less = func(a, b *models.Deck) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case SortDecksByCreated:
		less = func(a, b *models.Deck) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortDecksByCardCount:
		less = func(a, b *models.Deck) bool { return a.TotalCards() > b.TotalCards() }
	default:
		less = func(a, b *models.Deck) bool { return a.UpdatedAt.After(b.UpdatedAt) }
	}

	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	return sorted
}

// EntrySort selects the ordering applied by SortEntries.
type EntrySort string

const (
	SortEntriesByName     EntrySort = "name"
	SortEntriesByType     EntrySort = "type"
	SortEntriesByQuantity EntrySort = "quantity"
	SortEntriesByAdded    EntrySort = "added"
)

// ParseEntrySort maps a query value to an EntrySort, defaulting to name.
func ParseEntrySort(s string) EntrySort {
	switch EntrySort(strings.ToLower(s)) {
	case SortEntriesByType:
		return SortEntriesByType
	case SortEntriesByQuantity:
		return SortEntriesByQuantity
	case SortEntriesByAdded, "date_added":
		return SortEntriesByAdded
	default:
		return SortEntriesByName
	}
}

// SortEntries returns a stably sorted copy of deck entries. Name and type
// (supertype) sort ascending; quantity and date added sort descending.
// Entries without a linked card sort as if their name and type were empty.
func SortEntries(entries []*models.DeckEntry, by EntrySort) []*models.DeckEntry {
	sorted := append([]*models.DeckEntry(nil), entries...)

	var less func(a, b *models.DeckEntry) bool
	switch by {
	case SortEntriesByType:
		less = func(a, b *models.DeckEntry) bool { return entrySupertype(a) < entrySupertype(b) }
	case SortEntriesByQuantity:
		less = func(a, b *models.DeckEntry) bool { return a.Quantity > b.Quantity }
	case SortEntriesByAdded:
		less = func(a, b *models.DeckEntry) bool { return a.AddedAt.After(b.AddedAt) }
	default:
		less = func(a, b *models.DeckEntry) bool { return entryName(a) < entryName(b) }
	}

	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	return sorted
}

func entryName(e *models.DeckEntry) string {
	if e.Card == nil {
		return ""
	}
	return e.Card.Name
}

func entrySupertype(e *models.DeckEntry) string {
	if e.Card == nil {
		return ""
	}
	return e.Card.Supertype
}
