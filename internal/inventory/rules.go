package inventory

import "github.com/ramonehamilton/carddex/internal/storage/models"

// AvailableQuantity is the number of owned copies of card not yet placed in
// deck. It is scoped to one deck: the same copy may sit in several decks.
func AvailableQuantity(card *models.Card, deck *models.Deck) int {
	return card.QuantityOwned - deck.QuantityOf(card.ID)
}

// MaxAllowedQuantity is how many more copies of card deck may take: the
// smaller of the per-card limit headroom and the owned-copies headroom,
// never negative.
func MaxAllowedQuantity(card *models.Card, deck *models.Deck) int {
	current := deck.QuantityOf(card.ID)
	allowed := min(models.MaxCopiesPerCard-current, card.QuantityOwned-current)
	return max(0, allowed)
}
