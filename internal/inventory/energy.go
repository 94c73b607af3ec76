package inventory

import (
	"context"

	"github.com/ramonehamilton/carddex/internal/apperrors"
	"github.com/ramonehamilton/carddex/internal/events"
	"github.com/ramonehamilton/carddex/internal/storage"
	"github.com/ramonehamilton/carddex/internal/storage/models"
)

func validateEnergyType(energyType string) error {
	if !models.IsBasicEnergyType(energyType) {
		return apperrors.Validation("unknown basic energy type %q", energyType)
	}
	return nil
}

// EnergyPool returns the owned count of every basic energy type, in
// display order. Types never recorded report zero.
func (s *Service) EnergyPool(ctx context.Context) ([]models.BasicEnergy, error) {
	rows, err := s.store.Repos().Energy.List(ctx)
	if err != nil {
		return nil, persistErr(err, "failed to load energy pool")
	}

	byType := make(map[string]*models.BasicEnergy, len(rows))
	for _, row := range rows {
		byType[row.Type] = row
	}

	pool := make([]models.BasicEnergy, 0, len(models.BasicEnergyTypes))
	for _, t := range models.BasicEnergyTypes {
		if row, ok := byType[t]; ok {
			pool = append(pool, *row)
			continue
		}
		pool = append(pool, models.BasicEnergy{Type: t})
	}
	return pool, nil
}

// OwnedEnergy returns the owned count of one basic energy type.
func (s *Service) OwnedEnergy(ctx context.Context, energyType string) (int, error) {
	if err := validateEnergyType(energyType); err != nil {
		return 0, err
	}
	row, err := s.store.Repos().Energy.Get(ctx, energyType)
	if err != nil {
		return 0, persistErr(err, "failed to load energy")
	}
	if row == nil {
		return 0, nil
	}
	return row.Count, nil
}

// SetEnergy sets the owned count of energyType, clamped to
// [0, models.MaxQuantity].
func (s *Service) SetEnergy(ctx context.Context, energyType string, count int) (int, error) {
	return s.changeEnergy(ctx, energyType, func(int) int { return count })
}

// IncrementEnergy adds by to the owned count of energyType, saturating at
// models.MaxQuantity.
func (s *Service) IncrementEnergy(ctx context.Context, energyType string, by int) (int, error) {
	if by < 0 {
		return 0, apperrors.Validation("increment must not be negative")
	}
	return s.changeEnergy(ctx, energyType, func(cur int) int { return models.AddQuantity(cur, by) })
}

// DecrementEnergy removes by from the owned count of energyType, stopping at zero.
func (s *Service) DecrementEnergy(ctx context.Context, energyType string, by int) (int, error) {
	if by < 0 {
		return 0, apperrors.Validation("decrement must not be negative")
	}
	return s.changeEnergy(ctx, energyType, func(cur int) int { return max(0, cur-by) })
}

// ResetEnergy sets the owned count of energyType to zero.
func (s *Service) ResetEnergy(ctx context.Context, energyType string) error {
	_, err := s.SetEnergy(ctx, energyType, 0)
	return err
}

func (s *Service) changeEnergy(ctx context.Context, energyType string, next func(int) int) (int, error) {
	if err := validateEnergyType(energyType); err != nil {
		return 0, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var count int
	err := s.store.InTx(ctx, func(repos *storage.Repositories) error {
		current := 0
		row, err := repos.Energy.Get(ctx, energyType)
		if err != nil {
			return err
		}
		if row != nil {
			current = row.Count
		}
		count = models.ClampQuantity(next(current))
		return repos.Energy.Set(ctx, energyType, count, s.now())
	})
	if err != nil {
		return 0, persistErr(err, "failed to update energy pool")
	}

	s.events.Dispatch(events.New(ctx, events.TypeEnergyPoolChanged, events.EnergyPoolChangedEvent{
		Type:  energyType,
		Count: count,
	}))
	return count, nil
}

// ResetAllEnergy zeroes every owned energy count.
func (s *Service) ResetAllEnergy(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.store.Repos().Energy.ResetAll(ctx, s.now()); err != nil {
		return persistErr(err, "failed to reset energy pool")
	}
	s.events.Dispatch(events.New(ctx, events.TypeEnergyPoolChanged, events.EnergyPoolChangedEvent{}))
	return nil
}

// TotalEnergy sums every owned basic energy.
func (s *Service) TotalEnergy(ctx context.Context) (int, error) {
	pool, err := s.EnergyPool(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, e := range pool {
		total += e.Count
	}
	return total, nil
}

// EnergyTypesOwned lists the energy types with a positive owned count.
func (s *Service) EnergyTypesOwned(ctx context.Context) ([]string, error) {
	pool, err := s.EnergyPool(ctx)
	if err != nil {
		return nil, err
	}
	var owned []string
	for _, e := range pool {
		if e.Count > 0 {
			owned = append(owned, e.Type)
		}
	}
	return owned, nil
}

// BasicEnergyAvailable is the owned count of energyType minus what all
// decks together already use. It goes negative when decks over-commit the pool.
func (s *Service) BasicEnergyAvailable(ctx context.Context, energyType string) (int, error) {
	owned, err := s.OwnedEnergy(ctx, energyType)
	if err != nil {
		return 0, err
	}
	inUse, err := s.store.Repos().Decks.BasicEnergyInUse(ctx)
	if err != nil {
		return 0, persistErr(err, "failed to sum deck energy")
	}
	return owned - inUse[energyType], nil
}

// CanAddBasicEnergy reports whether quantity more energyType can be placed
// in a deck without exceeding the owned pool.
func (s *Service) CanAddBasicEnergy(ctx context.Context, energyType string, quantity int) (bool, error) {
	available, err := s.BasicEnergyAvailable(ctx, energyType)
	if err != nil {
		return false, err
	}
	return quantity <= available, nil
}
