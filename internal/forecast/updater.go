// Package forecast validates and records demand predictions.
package forecast

import (
	"context"
	"fmt"

	"github.com/andresuchdata/supplychain-engine/internal/clock"
	"github.com/andresuchdata/supplychain-engine/internal/domain"
	"github.com/andresuchdata/supplychain-engine/internal/inventory"
	"github.com/andresuchdata/supplychain-engine/internal/repository"
	"github.com/rs/zerolog/log"
)

// Secondary prediction metrics recorded with every accepted forecast
const (
	SeasonalFactor     = 100
	MarketTrends       = 95
	HistoricalAccuracy = 88
)

// Update is one forecast submission
type Update struct {
	ProductID       uint64
	Period          uint64
	PredictedDemand uint64
	ConfidenceLevel uint8
}

type Updater struct {
	store        repository.RegistryStore
	optimizer    *inventory.Optimizer
	clock        clock.Clock
	threshold    uint8
	modelVersion string
}

func NewUpdater(store repository.RegistryStore, optimizer *inventory.Optimizer, clk clock.Clock, threshold uint8, modelVersion string) *Updater {
	return &Updater{
		store:        store,
		optimizer:    optimizer,
		clock:        clk,
		threshold:    threshold,
		modelVersion: modelVersion,
	}
}

// Validate checks the submission without touching the registry
func (u *Updater) Validate(update Update) error {
	if update.ConfidenceLevel < u.threshold {
		return fmt.Errorf("confidence %d below %d: %w", update.ConfidenceLevel, u.threshold, domain.ErrPredictionBelowThreshold)
	}
	if update.ConfidenceLevel > domain.MaxPercentage {
		return fmt.Errorf("confidence %d exceeds %d: %w", update.ConfidenceLevel, domain.MaxPercentage, domain.ErrInvalidData)
	}
	return nil
}

// UpdateForecast upserts the prediction, overwrites the product's forecast
// and recomputes its optimal inventory, all in one transaction.
func (u *Updater) UpdateForecast(ctx context.Context, update Update) (*domain.Product, error) {
	if err := u.Validate(update); err != nil {
		return nil, err
	}

	var updated *domain.Product
	err := u.store.WithTx(ctx, func(tx repository.Registry) error {
		product, ok, err := tx.GetProduct(ctx, update.ProductID)
		if err != nil {
			return fmt.Errorf("load product %d: %w", update.ProductID, err)
		}
		if !ok {
			return fmt.Errorf("product %d: %w", update.ProductID, domain.ErrProductNotFound)
		}

		prediction := &domain.DemandPrediction{
			ProductID:          update.ProductID,
			Period:             update.Period,
			PredictedDemand:    update.PredictedDemand,
			ConfidenceLevel:    update.ConfidenceLevel,
			SeasonalFactor:     SeasonalFactor,
			MarketTrends:       MarketTrends,
			HistoricalAccuracy: HistoricalAccuracy,
			ModelVersion:       u.modelVersion,
		}
		if err := tx.PutPrediction(ctx, prediction); err != nil {
			return fmt.Errorf("save prediction: %w", err)
		}

		product.DemandForecast = update.PredictedDemand
		product.LastUpdated = u.clock.Now()
		if err := tx.PutProduct(ctx, product); err != nil {
			return fmt.Errorf("save product %d: %w", product.ID, err)
		}

		if _, err := u.optimizer.RecomputeOptimalInventory(ctx, tx, product.ID); err != nil {
			return err
		}

		updated, _, err = tx.GetProduct(ctx, product.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Debug().
		Uint64("product_id", update.ProductID).
		Uint64("period", update.Period).
		Uint64("forecast", updated.DemandForecast).
		Uint64("optimal_inventory", updated.OptimalInventory).
		Msg("forecast: prediction accepted")

	return updated, nil
}
