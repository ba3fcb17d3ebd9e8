package inventory

import (
	"context"
	"math"
	"testing"

	"github.com/andresuchdata/supplychain-engine/internal/domain"
	"github.com/andresuchdata/supplychain-engine/internal/repository"
	"github.com/andresuchdata/supplychain-engine/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimalFor(t *testing.T) {
	o := NewOptimizer(20)

	tests := []struct {
		forecast uint64
		want     uint64
	}{
		{0, 0},
		{4, 4},
		{5, 6},
		{50, 60},
		{99, 118},
		{1000, 1200},
	}

	for _, tt := range tests {
		got, err := o.OptimalFor(tt.forecast)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "forecast %d", tt.forecast)
	}
}

func TestOptimalForLargeForecast(t *testing.T) {
	o := NewOptimizer(20)

	safety, err := o.SafetyStock(math.MaxUint64 / 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(368934881474191032), safety)

	got, err := o.OptimalFor(math.MaxUint64 / 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(2213609288845146193), got)

	_, err = o.OptimalFor(math.MaxUint64)
	assert.ErrorIs(t, err, domain.ErrInvalidData)
}

func TestPercentOf(t *testing.T) {
	got, err := PercentOf(math.MaxUint64, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), got)

	got, err = PercentOf(math.MaxUint64/10, 15)
	require.NoError(t, err)
	assert.Equal(t, uint64(276701161105643274), got)

	_, err = PercentOf(math.MaxUint64, 101)
	assert.ErrorIs(t, err, domain.ErrInvalidData)

	_, err = CheckedAdd(math.MaxUint64, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidData)
}

func TestRecomputeRejectsOverflowingTarget(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.PutProduct(ctx, &domain.Product{ID: 1, DemandForecast: math.MaxUint64, OptimalInventory: 3}))

	_, err := NewOptimizer(20).RecomputeOptimalInventory(ctx, store, 1)
	require.ErrorIs(t, err, domain.ErrInvalidData)

	product, _, err := store.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), product.OptimalInventory)
}

func TestRecomputeOptimalInventory(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	o := NewOptimizer(20)

	require.NoError(t, store.PutProduct(ctx, &domain.Product{ID: 1, DemandForecast: 50, OptimalInventory: 3}))

	var got uint64
	err := store.WithTx(ctx, func(tx repository.Registry) error {
		var err error
		got, err = o.RecomputeOptimalInventory(ctx, tx, 1)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(60), got)

	product, ok, err := store.GetProduct(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(60), product.OptimalInventory)
}

func TestRecomputeMissingProductIsNoop(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	got, err := NewOptimizer(20).RecomputeOptimalInventory(ctx, store, 9)
	require.NoError(t, err)
	assert.Zero(t, got)

	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}
