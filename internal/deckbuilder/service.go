// Package deckbuilder composes decks from the owned collection: card and
// basic energy quantities under the deck rules, validation reports and deck
// list management.
package deckbuilder

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ramonehamilton/carddex/internal/apperrors"
	"github.com/ramonehamilton/carddex/internal/events"
	"github.com/ramonehamilton/carddex/internal/logger"
	"github.com/ramonehamilton/carddex/internal/metrics"
	"github.com/ramonehamilton/carddex/internal/storage"
	"github.com/ramonehamilton/carddex/internal/storage/models"
	"github.com/ramonehamilton/carddex/internal/storage/repository"
)

// Deck change actions carried by events.DeckChangedEvent.
const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionDuplicated    = "duplicated"
	ActionFavorite      = "favorite"
	ActionCardAdded     = "card_added"
	ActionCardRemoved   = "card_removed"
	ActionCardSet       = "card_set"
	ActionEnergyAdded   = "energy_added"
	ActionEnergyRemoved = "energy_removed"
	ActionEnergySet     = "energy_set"
)

// EnergySource reports how many copies of a basic energy type are owned but
// not yet placed in any deck.
type EnergySource interface {
	BasicEnergyAvailable(ctx context.Context, energyType string) (int, error)
}

// Config tunes the deck engine.
type Config struct {
	// EnforceEnergyPool caps deck basic energy at what the owned pool can
	// still supply. When false the pool is advisory only.
	EnforceEnergyPool bool
}

// Service implements deck composition on top of the local store.
type Service struct {
	store   *storage.Service
	energy  EnergySource
	cfg     Config
	log     *logger.Logger
	events  *events.Dispatcher
	metrics *metrics.DeckMetrics
	now     func() time.Time
	newID   func() string

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
func WithMetrics(m *metrics.DeckMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides deck id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// NewService creates a deck engine. energy may be nil when the energy pool
// is never enforced.
func NewService(store *storage.Service, energy EnergySource, cfg Config, opts ...Option) *Service {
	s := &Service{
		store:  store,
		energy: energy,
		cfg:    cfg,
		log:    logger.Nop(),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetEnforceEnergyPool switches the energy pool ceiling on or off at runtime.
func (s *Service) SetEnforceEnergyPool(enforce bool) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.cfg.EnforceEnergyPool = enforce
}

func persistErr(err error, message string) error {
	if err == nil {
		return nil
	}
	if apperrors.As(err) != nil {
		return err
	}
	return apperrors.Persistence(err, message)
}

func (s *Service) changed(ctx context.Context, deckID, action, target string, requested, achieved int) {
	s.metrics.IncMutation(action)
	s.events.Dispatch(events.New(ctx, events.TypeDeckChanged, events.DeckChangedEvent{
		DeckID:    deckID,
		Action:    action,
		Target:    target,
		Requested: requested,
		Achieved:  achieved,
	}))
}

// requireDeck returns the deck row or a not-found error.
func requireDeck(ctx context.Context, repos *storage.Repositories, id string) (*models.Deck, error) {
	deck, err := repos.Decks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, apperrors.NotFound("deck %s not found", id)
	}
	return deck, nil
}

// loadDeck returns a deck with its entries, linked cards and basic energy.
func loadDeck(ctx context.Context, decks repository.DeckRepository, deck *models.Deck) (*models.Deck, error) {
	entries, err := decks.GetEntries(ctx, deck.ID)
	if err != nil {
		return nil, err
	}
	energy, err := decks.GetBasicEnergy(ctx, deck.ID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.DeckEntry{}
	}
	deck.Entries = entries
	deck.BasicEnergy = energy
	return deck, nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.Validation("deck name is required")
	}
	return name, nil
}

func normalizeDescription(description *string) *string {
	if description == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// CreateDeck creates an empty deck.
func (s *Service) CreateDeck(ctx context.Context, name string, description *string) (*models.Deck, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	now := s.now()
	deck := &models.Deck{
		ID:          s.newID(),
		Name:        name,
		Description: normalizeDescription(description),
		CreatedAt:   now,
		UpdatedAt:   now,
		Entries:     []*models.DeckEntry{},
		BasicEnergy: map[string]int{},
	}

	s.writeMu.Lock()
	err = s.store.Repos().Decks.Create(ctx, deck)
	s.writeMu.Unlock()
	if err != nil {
		return nil, persistErr(err, "failed to create deck")
	}

	s.log.Infof(ctx, "created deck %s (%s)", deck.Name, deck.ID)
	s.changed(ctx, deck.ID, ActionCreated, "", 0, 0)
	return deck, nil
}

// GetDeck returns a deck with its entries, linked cards and basic energy.
func (s *Service) GetDeck(ctx context.Context, id string) (*models.Deck, error) {
	repos := s.store.Repos()
	deck, err := requireDeck(ctx, repos, id)
	if err != nil {
		return nil, persistErr(err, "failed to load deck")
	}
	deck, err = loadDeck(ctx, repos.Decks, deck)
	if err != nil {
		return nil, persistErr(err, "failed to load deck")
	}
	return deck, nil
}

// ListDecks returns every deck, fully loaded, most recently modified first.
func (s *Service) ListDecks(ctx context.Context) ([]*models.Deck, error) {
	repos := s.store.Repos()
	decks, err := repos.Decks.List(ctx)
	if err != nil {
		return nil, persistErr(err, "failed to load decks")
	}
	for _, deck := range decks {
		if _, err := loadDeck(ctx, repos.Decks, deck); err != nil {
			return nil, persistErr(err, "failed to load deck "+deck.ID)
		}
	}
	if decks == nil {
		decks = []*models.Deck{}
	}
	return decks, nil
}

// UpdateDeck renames a deck and replaces its description.
func (s *Service) UpdateDeck(ctx context.Context, id, name string, description *string) (*models.Deck, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var deck *models.Deck
	err = s.store.InTx(ctx, func(repos *storage.Repositories) error {
		var err error
		if deck, err = requireDeck(ctx, repos, id); err != nil {
			return err
		}
		deck.Name = name
		deck.Description = normalizeDescription(description)
		deck.UpdatedAt = s.now()
		if err := repos.Decks.Update(ctx, deck); err != nil {
			return err
		}
		_, err = loadDeck(ctx, repos.Decks, deck)
		return err
	})
	if err != nil {
		return nil, persistErr(err, "failed to update deck")
	}

	s.changed(ctx, id, ActionUpdated, "", 0, 0)
	return deck, nil
}

// ToggleFavorite flips the favourite flag of a deck.
func (s *Service) ToggleFavorite(ctx context.Context, id string) (*models.Deck, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var deck *models.Deck
	err := s.store.InTx(ctx, func(repos *storage.Repositories) error {
		var err error
		if deck, err = requireDeck(ctx, repos, id); err != nil {
			return err
		}
		deck.IsFavorite = !deck.IsFavorite
		deck.UpdatedAt = s.now()
		if err := repos.Decks.Update(ctx, deck); err != nil {
			return err
		}
		_, err = loadDeck(ctx, repos.Decks, deck)
		return err
	})
	if err != nil {
		return nil, persistErr(err, "failed to update deck")
	}

	s.changed(ctx, id, ActionFavorite, "", 0, 0)
	return deck, nil
}

// DeleteDeck removes a deck with its entries and basic energy.
func (s *Service) DeleteDeck(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.store.InTx(ctx, func(repos *storage.Repositories) error {
		if _, err := requireDeck(ctx, repos, id); err != nil {
			return err
		}
		if err := repos.Decks.DeleteEntriesForDeck(ctx, id); err != nil {
			return err
		}
		if err := repos.Decks.DeleteBasicEnergyForDeck(ctx, id); err != nil {
			return err
		}
		return repos.Decks.Delete(ctx, id)
	})
	if err != nil {
		return persistErr(err, "failed to delete deck")
	}

	s.log.Infof(ctx, "deleted deck %s", id)
	s.metrics.IncMutation("deleted")
	s.events.Dispatch(events.New(ctx, events.TypeDeckDeleted, events.DeckDeletedEvent{DeckID: id}))
	return nil
}

// DuplicateDeck copies a deck's entries and basic energy into a new deck
// named "<name> (Copy)". The copy is never a favourite.
func (s *Service) DuplicateDeck(ctx context.Context, id string) (*models.Deck, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var dup *models.Deck
	err := s.store.InTx(ctx, func(repos *storage.Repositories) error {
		src, err := requireDeck(ctx, repos, id)
		if err != nil {
			return err
		}
		if src, err = loadDeck(ctx, repos.Decks, src); err != nil {
			return err
		}

		now := s.now()
		dup = &models.Deck{
			ID:          s.newID(),
			Name:        src.Name + " (Copy)",
			Description: src.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repos.Decks.Create(ctx, dup); err != nil {
			return err
		}
		for _, e := range src.Entries {
			entry := &models.DeckEntry{DeckID: dup.ID, CardID: e.CardID, Quantity: e.Quantity, AddedAt: now}
			if err := repos.Decks.InsertEntry(ctx, entry); err != nil {
				return err
			}
		}
		for energyType, n := range src.BasicEnergy {
			if err := repos.Decks.SetBasicEnergy(ctx, dup.ID, energyType, n); err != nil {
				return err
			}
		}
		_, err = loadDeck(ctx, repos.Decks, dup)
		return err
	})
	if err != nil {
		return nil, persistErr(err, "failed to duplicate deck")
	}

	s.log.Infof(ctx, "duplicated deck %s to %s", id, dup.ID)
	s.changed(ctx, dup.ID, ActionDuplicated, id, 0, 0)
	return dup, nil
}

// Stats summarises the deck list.
type Stats struct {
	TotalDecks    int `json:"total_decks"`
	ValidDecks    int `json:"valid_decks"`
	FavoriteDecks int `json:"favorite_decks"`
	TotalCards    int `json:"total_cards"`
}

// Statistics computes Stats over every deck.
func (s *Service) Statistics(ctx context.Context) (*Stats, error) {
	decks, err := s.ListDecks(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Stats{TotalDecks: len(decks)}
	for _, deck := range decks {
		if deck.IsValid() {
			stats.ValidDecks++
		}
		if deck.IsFavorite {
			stats.FavoriteDecks++
		}
		stats.TotalCards += deck.TotalCards()
	}
	return stats, nil
}
