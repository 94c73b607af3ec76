package deckbuilder

import (
	"context"
	"math"

	"github.com/ramonehamilton/carddex/internal/apperrors"
	"github.com/ramonehamilton/carddex/internal/storage"
	"github.com/ramonehamilton/carddex/internal/storage/models"
)

func validateEnergyType(energyType string) error {
	if !models.IsBasicEnergyType(energyType) {
		return apperrors.Validation("unknown basic energy type %q", energyType)
	}
	return nil
}

// energyHeadroom returns how many more copies of energyType the owned pool
// can still supply to decks. Without enforcement it is unbounded.
func (s *Service) energyHeadroom(ctx context.Context, energyType string) (int, error) {
	if !s.cfg.EnforceEnergyPool || s.energy == nil {
		return math.MaxInt, nil
	}
	available, err := s.energy.BasicEnergyAvailable(ctx, energyType)
	if err != nil {
		return 0, err
	}
	return max(0, available), nil
}

// AddBasicEnergy adds quantity basic energy of energyType to a deck. With
// pool enforcement the amount is reduced to what the owned pool still has;
// the count never exceeds models.MaxQuantity.
func (s *Service) AddBasicEnergy(ctx context.Context, deckID, energyType string, quantity int) (*Change, error) {
	if err := validateEnergyType(energyType); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, apperrors.Validation("quantity must be positive")
	}
	return s.writeEnergy(ctx, ActionEnergyAdded, deckID, energyType, quantity, func(current, headroom int) int {
		return models.AddQuantity(current, min(quantity, headroom))
	})
}

// RemoveBasicEnergy removes quantity basic energy of energyType from a
// deck, stopping at zero. A zero count is removed from the deck.
func (s *Service) RemoveBasicEnergy(ctx context.Context, deckID, energyType string, quantity int) (*Change, error) {
	if err := validateEnergyType(energyType); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, apperrors.Validation("quantity must be positive")
	}
	return s.writeEnergy(ctx, ActionEnergyRemoved, deckID, energyType, quantity, func(current, _ int) int {
		return max(0, current-quantity)
	})
}

// SetBasicEnergy writes the deck's count of energyType directly, clamped at
// zero and, with pool enforcement, at what the owned pool can supply.
func (s *Service) SetBasicEnergy(ctx context.Context, deckID, energyType string, quantity int) (*Change, error) {
	if err := validateEnergyType(energyType); err != nil {
		return nil, err
	}
	return s.writeEnergy(ctx, ActionEnergySet, deckID, energyType, quantity, func(current, headroom int) int {
		target := models.ClampQuantity(quantity)
		if target > current && headroom != math.MaxInt {
			target = min(target, models.AddQuantity(current, headroom))
		}
		return target
	})
}

func (s *Service) writeEnergy(ctx context.Context, action, deckID, energyType string, requested int, next func(current, headroom int) int) (*Change, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	headroom, err := s.energyHeadroom(ctx, energyType)
	if err != nil {
		return nil, persistErr(err, "failed to check energy pool")
	}

	change := &Change{DeckID: deckID, Target: energyType, Requested: requested}
	err = s.store.InTx(ctx, func(repos *storage.Repositories) error {
		if _, err := requireDeck(ctx, repos, deckID); err != nil {
			return err
		}
		counts, err := repos.Decks.GetBasicEnergy(ctx, deckID)
		if err != nil {
			return err
		}

		change.Previous = counts[energyType]
		change.Quantity = next(change.Previous, headroom)
		change.Clamped = clampedEnergy(action, requested, change.Previous, change.Quantity)
		if !change.Changed() {
			return nil
		}
		if err := repos.Decks.SetBasicEnergy(ctx, deckID, energyType, change.Quantity); err != nil {
			return err
		}
		return repos.Decks.Touch(ctx, deckID, s.now())
	})
	if err != nil {
		return nil, persistErr(err, "failed to update deck energy")
	}

	return s.finish(ctx, action, change), nil
}

// clampedEnergy reports whether an energy write achieved less than asked.
func clampedEnergy(action string, requested, previous, quantity int) bool {
	switch action {
	case ActionEnergyAdded:
		return quantity-previous < requested
	case ActionEnergySet:
		return quantity != max(0, requested)
	default:
		return false
	}
}

// EnergyBreakdown returns the deck's energy by type: the types of its cards
// weighted by quantity plus its basic energy.
func (s *Service) EnergyBreakdown(ctx context.Context, deckID string) (map[string]int, error) {
	deck, err := s.GetDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}
	return deck.EnergyTypes(), nil
}
