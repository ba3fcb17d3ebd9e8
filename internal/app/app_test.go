package app

import (
	"context"
	"testing"

	"github.com/andresuchdata/supplychain-engine/internal/config"
	"github.com/andresuchdata/supplychain-engine/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithMemoryStore(t *testing.T) {
	cfg := &config.Config{Engine: config.DefaultEngineConfig()}

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &memory.Store{}, a.Store)
	require.NotNil(t, a.Registry)

	stats, err := a.Registry.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Suppliers)
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "bolt"}}

	_, _, err := OpenStore(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewRejectsBadWeights(t *testing.T) {
	cfg := &config.Config{Engine: config.DefaultEngineConfig()}
	cfg.Engine.Scoring.CostWeight = 10

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
