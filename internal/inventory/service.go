// Package inventory keeps the owned collection consistent: acquisitions,
// owned quantity changes, the basic energy pool and card deletion.
package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/ramonehamilton/carddex/internal/apperrors"
	"github.com/ramonehamilton/carddex/internal/catalog"
	"github.com/ramonehamilton/carddex/internal/catalog/mapper"
	"github.com/ramonehamilton/carddex/internal/events"
	"github.com/ramonehamilton/carddex/internal/logger"
	"github.com/ramonehamilton/carddex/internal/metrics"
	"github.com/ramonehamilton/carddex/internal/storage"
	"github.com/ramonehamilton/carddex/internal/storage/models"
)

// CatalogSource is the part of the catalog client the inventory needs.
type CatalogSource interface {
	GetCard(ctx context.Context, id string) (*catalog.CardDetail, error)
	GetSet(ctx context.Context, id string) (*catalog.SetDetail, error)
}

// Config tunes the inventory service.
type Config struct {
	// BulkConcurrency bounds parallel catalog fetches during BulkAdd.
	BulkConcurrency int
}

// DefaultConfig returns the default inventory configuration.
func DefaultConfig() Config {
	return Config{BulkConcurrency: 4}
}

// Service implements collection reconciliation on top of the local store.
type Service struct {
	store   *storage.Service
	catalog CatalogSource
	cfg     Config
	log     *logger.Logger
	events  *events.Dispatcher
	metrics *metrics.InventoryMetrics
	now     func() time.Time

	// writeMu serialises read-modify-write sequences against the store.
	writeMu sync.Mutex
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithEvents sets the dispatcher used for domain events.
func WithEvents(d *events.Dispatcher) Option {
	return func(s *Service) { s.events = d }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.InventoryMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new inventory service. source may be nil when only
// local operations are needed.
func NewService(store *storage.Service, source CatalogSource, cfg Config, opts ...Option) *Service {
	if cfg.BulkConcurrency <= 0 {
		cfg.BulkConcurrency = DefaultConfig().BulkConcurrency
	}
	s := &Service{
		store:   store,
		catalog: source,
		cfg:     cfg,
		log:     logger.Nop(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// persistErr keeps coded errors intact and classifies anything else as a
// store failure.
func persistErr(err error, message string) error {
	if err == nil {
		return nil
	}
	if apperrors.As(err) != nil {
		return err
	}
	return apperrors.Persistence(err, message)
}

// GetCard returns an owned card.
func (s *Service) GetCard(ctx context.Context, id string) (*models.Card, error) {
	card, err := s.store.Repos().Cards.GetByID(ctx, id)
	if err != nil {
		return nil, persistErr(err, "failed to load card")
	}
	if card == nil {
		return nil, apperrors.NotFound("card %s is not in the collection", id)
	}
	return card, nil
}

// ListCards returns every card in the collection.
func (s *Service) ListCards(ctx context.Context) ([]*models.Card, error) {
	cards, err := s.store.Repos().Cards.List(ctx)
	if err != nil {
		return nil, persistErr(err, "failed to load collection")
	}
	return cards, nil
}

// ListSets returns every known set.
func (s *Service) ListSets(ctx context.Context) ([]*models.Set, error) {
	sets, err := s.store.Repos().Sets.List(ctx)
	if err != nil {
		return nil, persistErr(err, "failed to load sets")
	}
	return sets, nil
}

// RecordAcquisition adds quantity copies of cardID. An owned card is
// incremented; otherwise raw is mapped into a new card. raw is only
// consulted for new cards.
func (s *Service) RecordAcquisition(ctx context.Context, cardID string, raw *catalog.CardDetail, quantity int) (*models.Card, error) {
	return s.recordAcquisition(ctx, cardID, raw, nil, quantity)
}

// Acquire adds quantity copies of cardID, fetching catalog detail only when
// the card is not yet owned.
func (s *Service) Acquire(ctx context.Context, cardID string, quantity int) (*models.Card, error) {
	if quantity <= 0 {
		return nil, apperrors.Validation("quantity must be positive")
	}

	raw, set, err := s.fetchIfNew(ctx, cardID)
	if err != nil {
		return nil, err
	}
	return s.recordAcquisition(ctx, cardID, raw, set, quantity)
}

// fetchIfNew fetches catalog detail for a card that is not owned yet, plus
// its set when the set is unknown locally. A set fetch failure is logged and
// the card's embedded set summary is used instead.
func (s *Service) fetchIfNew(ctx context.Context, cardID string) (*catalog.CardDetail, *models.Set, error) {
	existing, err := s.store.Repos().Cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, nil, persistErr(err, "failed to load card")
	}
	if existing != nil {
		return nil, nil, nil
	}
	if s.catalog == nil {
		return nil, nil, apperrors.New(apperrors.CodeDependency, "catalog is not configured")
	}

	raw, err := s.catalog.GetCard(ctx, cardID)
	if err != nil {
		return nil, nil, classifyCatalogErr(err, cardID)
	}

	known, err := s.store.Repos().Sets.GetByID(ctx, raw.Set.ID)
	if err != nil {
		return nil, nil, persistErr(err, "failed to load set")
	}
	if known != nil || raw.Set.ID == "" {
		return raw, nil, nil
	}

	detail, err := s.catalog.GetSet(ctx, raw.Set.ID)
	if err != nil {
		s.log.Warnf(ctx, "set %s unavailable, using card summary: %v", raw.Set.ID, err)
		return raw, nil, nil
	}
	return raw, mapper.MapSet(detail), nil
}

func classifyCatalogErr(err error, cardID string) error {
	switch {
	case catalog.IsNotFound(err):
		return apperrors.Wrap(apperrors.CodeNotFound, err, "card "+cardID+" not found in catalog")
	case catalog.IsRetryable(err):
		return apperrors.Wrap(apperrors.CodeDependency, err, "catalog temporarily unavailable")
	default:
		return apperrors.Wrap(apperrors.CodeDependency, err, "catalog request failed")
	}
}

func (s *Service) recordAcquisition(ctx context.Context, cardID string, raw *catalog.CardDetail, set *models.Set, quantity int) (*models.Card, error) {
	if quantity <= 0 {
		return nil, apperrors.Validation("quantity must be positive")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var (
		card    *models.Card
		created bool
	)
	err := s.store.InTx(ctx, func(repos *storage.Repositories) error {
		existing, err := repos.Cards.GetByID(ctx, cardID)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.QuantityOwned = models.AddQuantity(existing.QuantityOwned, quantity)
			if err := repos.Cards.UpdateQuantity(ctx, cardID, existing.QuantityOwned); err != nil {
				return err
			}
			card = existing
			return nil
		}

		if raw == nil {
			return apperrors.Validation("card %s is not in the collection and no catalog data was supplied", cardID)
		}
		if raw.ID != cardID {
			return apperrors.Validation("catalog card %s does not match %s", raw.ID, cardID)
		}

		if err := s.ensureSet(ctx, repos, raw, set); err != nil {
			return err
		}

		card = mapper.MapCard(raw, models.ClampQuantity(quantity), s.now())
		created = true
		return repos.Cards.Create(ctx, card)
	})
	if err != nil {
		return nil, persistErr(err, "failed to record acquisition")
	}

	s.metrics.IncAcquisition(created)
	s.log.Infof(ctx, "acquired %d x %s (owned %d)", quantity, cardID, card.QuantityOwned)
	s.events.Dispatch(events.New(ctx, events.TypeCardAcquired, events.CardAcquiredEvent{
		CardID:        cardID,
		Quantity:      quantity,
		QuantityOwned: card.QuantityOwned,
		Created:       created,
	}))
	return card, nil
}

// ensureSet stores the card's set the first time one of its cards is acquired.
func (s *Service) ensureSet(ctx context.Context, repos *storage.Repositories, raw *catalog.CardDetail, set *models.Set) error {
	if raw.Set.ID == "" {
		return nil
	}
	known, err := repos.Sets.GetByID(ctx, raw.Set.ID)
	if err != nil || known != nil {
		return err
	}
	if set == nil {
		set = mapper.MapSetBrief(raw.Set)
	}
	now := s.now()
	set.UpdatedAt = &now
	return repos.Sets.Upsert(ctx, set)
}

// UpsertSet stores set metadata.
func (s *Service) UpsertSet(ctx context.Context, set *models.Set) error {
	now := s.now()
	set.UpdatedAt = &now
	if err := s.store.Repos().Sets.Upsert(ctx, set); err != nil {
		return persistErr(err, "failed to save set")
	}
	return nil
}

// UpdateOwnedQuantity sets the owned quantity of a card, clamped to
// [0, models.MaxQuantity].
func (s *Service) UpdateOwnedQuantity(ctx context.Context, cardID string, quantity int) (*models.Card, error) {
	return s.changeOwned(ctx, cardID, func(int) int { return quantity })
}

// IncrementOwned adds by copies to a card, saturating at models.MaxQuantity.
func (s *Service) IncrementOwned(ctx context.Context, cardID string, by int) (*models.Card, error) {
	if by < 0 {
		return nil, apperrors.Validation("increment must not be negative")
	}
	return s.changeOwned(ctx, cardID, func(cur int) int { return models.AddQuantity(cur, by) })
}

// DecrementOwned removes by copies from a card, stopping at zero.
func (s *Service) DecrementOwned(ctx context.Context, cardID string, by int) (*models.Card, error) {
	if by < 0 {
		return nil, apperrors.Validation("decrement must not be negative")
	}
	return s.changeOwned(ctx, cardID, func(cur int) int { return max(0, cur-by) })
}

func (s *Service) changeOwned(ctx context.Context, cardID string, next func(int) int) (*models.Card, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var card *models.Card
	err := s.store.InTx(ctx, func(repos *storage.Repositories) error {
		existing, err := repos.Cards.GetByID(ctx, cardID)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperrors.NotFound("card %s is not in the collection", cardID)
		}
		existing.QuantityOwned = models.ClampQuantity(next(existing.QuantityOwned))
		card = existing
		return repos.Cards.UpdateQuantity(ctx, cardID, existing.QuantityOwned)
	})
	if err != nil {
		return nil, persistErr(err, "failed to update owned quantity")
	}

	s.events.Dispatch(events.New(ctx, events.TypeCardQuantity, events.CardQuantityEvent{
		CardID:        cardID,
		QuantityOwned: card.QuantityOwned,
	}))
	return card, nil
}

// DeleteCard removes a card and every deck entry referencing it.
func (s *Service) DeleteCard(ctx context.Context, cardID string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.store.InTx(ctx, func(repos *storage.Repositories) error {
		existing, err := repos.Cards.GetByID(ctx, cardID)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperrors.NotFound("card %s is not in the collection", cardID)
		}
		if err := repos.Decks.DeleteEntriesForCard(ctx, cardID); err != nil {
			return err
		}
		return repos.Cards.Delete(ctx, cardID)
	})
	if err != nil {
		return persistErr(err, "failed to delete card")
	}

	s.log.Infof(ctx, "deleted card %s", cardID)
	s.events.Dispatch(events.New(ctx, events.TypeCardDeleted, events.CardDeletedEvent{CardID: cardID}))
	return nil
}
