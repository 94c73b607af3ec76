package deckbuilder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/carddex/internal/inventory"
	"github.com/ramonehamilton/carddex/internal/storage"
	"github.com/ramonehamilton/carddex/internal/storage/models"
)

var fixedNow = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

type harness struct {
	t     *testing.T
	ctx   context.Context
	store *storage.Service
	inv   *inventory.Service
	svc   *Service
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()

	store := storage.NewTestService(t)
	clock := func() time.Time { return fixedNow }
	inv := inventory.NewService(store, nil, inventory.DefaultConfig(), inventory.WithClock(clock))

	seq := 0
	svc := NewService(store, inv, cfg,
		WithClock(clock),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("deck-%d", seq)
		}),
	)
	return &harness{t: t, ctx: context.Background(), store: store, inv: inv, svc: svc}
}

// own stores a card in the collection with the given owned quantity.
func (h *harness) own(id, name, supertype string, owned int, types ...string) *models.Card {
	h.t.Helper()
	card := &models.Card{
		ID:            id,
		Name:          name,
		Supertype:     supertype,
		Types:         types,
		SetID:         "sv01",
		SetName:       "Scarlet & Violet",
		Number:        id[len("sv01-"):],
		QuantityOwned: owned,
		DateAdded:     fixedNow,
	}
	require.NoError(h.t, h.store.Repos().Cards.Create(h.ctx, card))
	return card
}

func (h *harness) deck(name string) *models.Deck {
	h.t.Helper()
	deck, err := h.svc.CreateDeck(h.ctx, name, nil)
	require.NoError(h.t, err)
	return deck
}

func (h *harness) reload(id string) *models.Deck {
	h.t.Helper()
	deck, err := h.svc.GetDeck(h.ctx, id)
	require.NoError(h.t, err)
	return deck
}
