package inventory

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/carddex/internal/apperrors"
	"github.com/ramonehamilton/carddex/internal/storage/models"
)

func TestEnergyPool(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	pool, err := svc.EnergyPool(ctx)
	require.NoError(t, err)
	require.Len(t, pool, 8)
	assert.Equal(t, "Grass", pool[0].Type)
	assert.Equal(t, 0, pool[0].Count)

	count, err := svc.SetEnergy(ctx, "Fire", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, count)

	count, err = svc.IncrementEnergy(ctx, "Fire", 2)
	require.NoError(t, err)
	assert.Equal(t, 12, count)

	count, err = svc.DecrementEnergy(ctx, "Water", 3)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "decrement clamps at zero")

	_, err = svc.IncrementEnergy(ctx, "Lightning", 4)
	require.NoError(t, err)

	total, err := svc.TotalEnergy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 16, total)

	owned, err := svc.EnergyTypesOwned(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fire", "Lightning"}, owned)

	require.NoError(t, svc.ResetEnergy(ctx, "Fire"))
	owned, err = svc.EnergyTypesOwned(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lightning"}, owned)

	require.NoError(t, svc.ResetAllEnergy(ctx))
	total, err = svc.TotalEnergy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestEnergy_UnknownType(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.SetEnergy(context.Background(), "Dragon", 1)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestBasicEnergyAvailable(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()
	repos := store.Repos()

	_, err := svc.SetEnergy(ctx, "Fire", 10)
	require.NoError(t, err)

	for _, id := range []string{"d1", "d2"} {
		require.NoError(t, repos.Decks.Create(ctx, &models.Deck{ID: id, Name: id, CreatedAt: fixedNow, UpdatedAt: fixedNow}))
	}
	require.NoError(t, repos.Decks.SetBasicEnergy(ctx, "d1", "Fire", 4))
	require.NoError(t, repos.Decks.SetBasicEnergy(ctx, "d2", "Fire", 3))

	available, err := svc.BasicEnergyAvailable(ctx, "Fire")
	require.NoError(t, err)
	assert.Equal(t, 3, available)

	ok, err := svc.CanAddBasicEnergy(ctx, "Fire", 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanAddBasicEnergy(ctx, "Fire", 4)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnergyPool_LargeIncrementSaturates(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetEnergy(ctx, "Metal", 5)
	require.NoError(t, err)

	count, err := svc.IncrementEnergy(ctx, "Metal", math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, models.MaxQuantity, count)

	count, err = svc.OwnedEnergy(ctx, "Metal")
	require.NoError(t, err)
	assert.Equal(t, models.MaxQuantity, count)
}
