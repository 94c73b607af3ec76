package deckbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/carddex/internal/apperrors"
	"github.com/ramonehamilton/carddex/internal/query"
	"github.com/ramonehamilton/carddex/internal/storage/models"
)

func TestAddCard_ClampsToOwnedAndLimit(t *testing.T) {
	h := newHarness(t, Config{})
	h.own("sv01-001", "Sprigatito", models.SupertypePokemon, 10, "Grass")
	h.own("sv01-002", "Floragato", models.SupertypePokemon, 3, "Grass")
	deck := h.deck("Grass")

	change, err := h.svc.AddCard(h.ctx, deck.ID, "sv01-001", 6)
	require.NoError(t, err)
	assert.Equal(t, 4, change.Quantity)
	assert.True(t, change.Clamped)

	change, err = h.svc.AddCard(h.ctx, deck.ID, "sv01-002", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, change.Quantity)
	assert.False(t, change.Clamped)

	change, err = h.svc.AddCard(h.ctx, deck.ID, "sv01-002", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, change.Previous)
	assert.Equal(t, 3, change.Quantity, "combined ceiling is the owned count")
	assert.True(t, change.Clamped)

	loaded := h.reload(deck.ID)
	for _, e := range loaded.Entries {
		assert.LessOrEqual(t, e.Quantity, min(4, e.Card.QuantityOwned))
	}
	assert.True(t, loaded.UpdatedAt.Equal(fixedNow))
}

func TestAddCard_AtCeilingIsNoOp(t *testing.T) {
	h := newHarness(t, Config{})
	h.own("sv01-025", "Pikachu", models.SupertypePokemon, 2, "Lightning")
	deck := h.deck("Sparks")

	_, err := h.svc.AddCard(h.ctx, deck.ID, "sv01-025", 2)
	require.NoError(t, err)

	change, err := h.svc.AddCard(h.ctx, deck.ID, "sv01-025", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, change.Quantity)
	assert.False(t, change.Changed())
	assert.True(t, change.Clamped)
	assert.Equal(t, 2, h.reload(deck.ID).QuantityOf("sv01-025"))
}

func TestAddCard_Errors(t *testing.T) {
	h := newHarness(t, Config{})
	h.own("sv01-025", "Pikachu", models.SupertypePokemon, 2)
	deck := h.deck("Sparks")

	_, err := h.svc.AddCard(h.ctx, "missing", "sv01-025", 1)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = h.svc.AddCard(h.ctx, deck.ID, "sv01-999", 1)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = h.svc.AddCard(h.ctx, deck.ID, "sv01-025", 0)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestRemoveCard_LastCopyDeletesEntry(t *testing.T) {
	h := newHarness(t, Config{})
	h.own("sv01-025", "Pikachu", models.SupertypePokemon, 4)
	deck := h.deck("Sparks")

	_, err := h.svc.AddCard(h.ctx, deck.ID, "sv01-025", 3)
	require.NoError(t, err)

	change, err := h.svc.RemoveCard(h.ctx, deck.ID, "sv01-025", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, change.Quantity)

	change, err = h.svc.RemoveCard(h.ctx, deck.ID, "sv01-025", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, change.Quantity)

	loaded := h.reload(deck.ID)
	assert.Empty(t, loaded.Entries)

	change, err = h.svc.RemoveCard(h.ctx, deck.ID, "sv01-025", 1)
	require.NoError(t, err)
	assert.False(t, change.Changed())
}

func TestSetQuantity_CapsAtLimitNotOwned(t *testing.T) {
	h := newHarness(t, Config{})
	h.own("sv01-025", "Pikachu", models.SupertypePokemon, 1)
	deck := h.deck("Sparks")

	_, err := h.svc.AddCard(h.ctx, deck.ID, "sv01-025", 1)
	require.NoError(t, err)

	change, err := h.svc.SetQuantity(h.ctx, deck.ID, "sv01-025", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, change.Quantity, "direct set ignores owned copies")
	assert.False(t, change.Clamped)

	change, err = h.svc.SetQuantity(h.ctx, deck.ID, "sv01-025", 9)
	require.NoError(t, err)
	assert.Equal(t, 4, change.Quantity)
	assert.True(t, change.Clamped)

	change, err = h.svc.SetQuantity(h.ctx, deck.ID, "sv01-025", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, change.Quantity)
	assert.Empty(t, h.reload(deck.ID).Entries)

	change, err = h.svc.SetQuantity(h.ctx, deck.ID, "sv01-025", 2)
	require.NoError(t, err)
	assert.False(t, change.Changed(), "cards not in the deck are left alone")
}

func TestCandidates(t *testing.T) {
	h := newHarness(t, Config{})
	h.own("sv01-001", "Sprigatito", models.SupertypePokemon, 2, "Grass")
	h.own("sv01-004", "Fuecoco", models.SupertypePokemon, 3, "Fire")
	h.own("sv01-196", "Ultra Ball", models.SupertypeTrainer, 0)
	deck := h.deck("Mixed")

	_, err := h.svc.AddCard(h.ctx, deck.ID, "sv01-001", 2)
	require.NoError(t, err)
	_, err = h.svc.AddCard(h.ctx, deck.ID, "sv01-004", 1)
	require.NoError(t, err)

	candidates, err := h.svc.Candidates(h.ctx, deck.ID, query.CardFilter{})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "sv01-004", candidates[0].Card.ID)
	assert.Equal(t, 1, candidates[0].InDeck)
	assert.Equal(t, 2, candidates[0].Available)
	assert.Equal(t, 2, candidates[0].MaxAllowed)

	candidates, err = h.svc.Candidates(h.ctx, deck.ID, query.CardFilter{Types: []string{"Grass"}})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
