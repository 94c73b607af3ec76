package deckbuilder

import (
	"context"

	"github.com/ramonehamilton/carddex/internal/apperrors"
	"github.com/ramonehamilton/carddex/internal/inventory"
	"github.com/ramonehamilton/carddex/internal/query"
	"github.com/ramonehamilton/carddex/internal/storage"
	"github.com/ramonehamilton/carddex/internal/storage/models"
)

// Change reports the outcome of a quantity mutation. Quantity is what the
// deck holds afterwards; Clamped is set when the rules reduced the request.
// Callers compare Quantity with what they asked for to detect clamping.
type Change struct {
	DeckID    string `json:"deck_id"`
	Target    string `json:"target"`
	Requested int    `json:"requested"`
	Previous  int    `json:"previous"`
	Quantity  int    `json:"quantity"`
	Clamped   bool   `json:"clamped"`
}

// Changed reports whether the mutation altered the deck.
func (c *Change) Changed() bool { return c.Previous != c.Quantity }

// requireCard returns a collection card or a not-found error.
func requireCard(ctx context.Context, repos *storage.Repositories, id string) (*models.Card, error) {
	card, err := repos.Cards.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, apperrors.NotFound("card %s is not in the collection", id)
	}
	return card, nil
}

func (s *Service) finish(ctx context.Context, action string, change *Change) *Change {
	if change.Clamped {
		s.metrics.IncClamped(action)
	}
	if change.Changed() {
		s.changed(ctx, change.DeckID, action, change.Target, change.Requested, change.Quantity)
	}
	return change
}

// AddCard adds up to quantity copies of an owned card. The amount added is
// silently reduced to what the per-card limit and the owned copies allow;
// a card already at its ceiling leaves the deck unchanged.
func (s *Service) AddCard(ctx context.Context, deckID, cardID string, quantity int) (*Change, error) {
	if quantity <= 0 {
		return nil, apperrors.Validation("quantity must be positive")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	change := &Change{DeckID: deckID, Target: cardID, Requested: quantity}
	err := s.store.InTx(ctx, func(repos *storage.Repositories) error {
		if _, err := requireDeck(ctx, repos, deckID); err != nil {
			return err
		}
		card, err := requireCard(ctx, repos, cardID)
		if err != nil {
			return err
		}
		entry, err := repos.Decks.GetEntry(ctx, deckID, cardID)
		if err != nil {
			return err
		}

		view := &models.Deck{ID: deckID}
		if entry != nil {
			view.Entries = []*models.DeckEntry{entry}
			change.Previous = entry.Quantity
		}
		change.Quantity = change.Previous

		allowed := inventory.MaxAllowedQuantity(card, view)
		if allowed <= 0 {
			change.Clamped = true
			return nil
		}

		added := min(quantity, allowed)
		change.Clamped = added < quantity
		change.Quantity = change.Previous + added

		if entry != nil {
			err = repos.Decks.UpdateEntryQuantity(ctx, deckID, cardID, change.Quantity)
		} else {
			err = repos.Decks.InsertEntry(ctx, &models.DeckEntry{
				DeckID:   deckID,
				CardID:   cardID,
				Quantity: change.Quantity,
				AddedAt:  s.now(),
			})
		}
		if err != nil {
			return err
		}
		return repos.Decks.Touch(ctx, deckID, s.now())
	})
	if err != nil {
		return nil, persistErr(err, "failed to add card to deck")
	}

	if change.Clamped {
		s.log.Debugf(ctx, "add %s to deck %s clamped: requested %d, deck holds %d", cardID, deckID, quantity, change.Quantity)
	}
	return s.finish(ctx, ActionCardAdded, change), nil
}

// RemoveCard removes quantity copies of a card. Removing as many copies as
// the deck holds, or more, deletes the entry. A card not in the deck is a
// no-op.
func (s *Service) RemoveCard(ctx context.Context, deckID, cardID string, quantity int) (*Change, error) {
	if quantity <= 0 {
		return nil, apperrors.Validation("quantity must be positive")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	change := &Change{DeckID: deckID, Target: cardID, Requested: quantity}
	err := s.store.InTx(ctx, func(repos *storage.Repositories) error {
		if _, err := requireDeck(ctx, repos, deckID); err != nil {
			return err
		}
		entry, err := repos.Decks.GetEntry(ctx, deckID, cardID)
		if err != nil || entry == nil {
			return err
		}

		change.Previous = entry.Quantity
		if entry.Quantity <= quantity {
			change.Quantity = 0
			err = repos.Decks.DeleteEntry(ctx, deckID, cardID)
		} else {
			change.Quantity = entry.Quantity - quantity
			err = repos.Decks.UpdateEntryQuantity(ctx, deckID, cardID, change.Quantity)
		}
		if err != nil {
			return err
		}
		return repos.Decks.Touch(ctx, deckID, s.now())
	})
	if err != nil {
		return nil, persistErr(err, "failed to remove card from deck")
	}

	return s.finish(ctx, ActionCardRemoved, change), nil
}

// SetQuantity writes a card's deck quantity directly. Zero or less deletes
// the entry; anything else is capped at the per-card limit only, not at the
// owned copies. A card not in the deck is a no-op.
func (s *Service) SetQuantity(ctx context.Context, deckID, cardID string, quantity int) (*Change, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	change := &Change{DeckID: deckID, Target: cardID, Requested: quantity}
	err := s.store.InTx(ctx, func(repos *storage.Repositories) error {
		if _, err := requireDeck(ctx, repos, deckID); err != nil {
			return err
		}
		entry, err := repos.Decks.GetEntry(ctx, deckID, cardID)
		if err != nil || entry == nil {
			return err
		}

		change.Previous = entry.Quantity
		if quantity <= 0 {
			change.Quantity = 0
			err = repos.Decks.DeleteEntry(ctx, deckID, cardID)
		} else {
			change.Quantity = min(quantity, models.MaxCopiesPerCard)
			change.Clamped = change.Quantity < quantity
			err = repos.Decks.UpdateEntryQuantity(ctx, deckID, cardID, change.Quantity)
		}
		if err != nil {
			return err
		}
		return repos.Decks.Touch(ctx, deckID, s.now())
	})
	if err != nil {
		return nil, persistErr(err, "failed to set deck quantity")
	}

	return s.finish(ctx, ActionCardSet, change), nil
}

// Candidate is an owned card that can still go into a deck.
type Candidate struct {
	Card       *models.Card `json:"card"`
	InDeck     int          `json:"in_deck"`
	Available  int          `json:"available"`
	MaxAllowed int          `json:"max_allowed"`
}

// Candidates lists owned cards matching filter that the deck can still take
// at least one copy of, sorted by name.
func (s *Service) Candidates(ctx context.Context, deckID string, filter query.CardFilter) ([]Candidate, error) {
	deck, err := s.GetDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}
	cards, err := s.store.Repos().Cards.List(ctx)
	if err != nil {
		return nil, persistErr(err, "failed to load collection")
	}

	cards = query.SortCards(query.FilterCards(cards, filter), query.SortCardsByName)
	candidates := make([]Candidate, 0, len(cards))
	for _, card := range cards {
		allowed := inventory.MaxAllowedQuantity(card, deck)
		if allowed <= 0 {
			continue
		}
		candidates = append(candidates, Candidate{
			Card:       card,
			InDeck:     deck.QuantityOf(card.ID),
			Available:  inventory.AvailableQuantity(card, deck),
			MaxAllowed: allowed,
		})
	}
	return candidates, nil
}
