package inventory

import (
	"context"
	"fmt"

	"github.com/andresuchdata/supplychain-engine/internal/repository"
)

// Optimizer keeps a product's optimal inventory at forecast plus safety stock
type Optimizer struct {
	safetyPercent uint64
}

// NewOptimizer creates an optimizer adding safetyPercent of the forecast as buffer
func NewOptimizer(safetyPercent uint64) *Optimizer {
	return &Optimizer{safetyPercent: safetyPercent}
}

// SafetyStock returns floor(forecast * safetyPercent / 100)
func (o *Optimizer) SafetyStock(forecast uint64) (uint64, error) {
	return PercentOf(forecast, o.safetyPercent)
}

// OptimalFor returns forecast plus safety stock. ErrInvalidData is returned
// when the target does not fit in uint64.
func (o *Optimizer) OptimalFor(forecast uint64) (uint64, error) {
	safety, err := o.SafetyStock(forecast)
	if err != nil {
		return 0, err
	}
	return CheckedAdd(forecast, safety)
}

// RecomputeOptimalInventory persists and returns the new target for the
// product. A missing product is a silent no-op returning 0.
func (o *Optimizer) RecomputeOptimalInventory(ctx context.Context, products repository.ProductStore, productID uint64) (uint64, error) {
	product, ok, err := products.GetProduct(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("inventory: load product %d: %w", productID, err)
	}
	if !ok {
		return 0, nil
	}

	optimal, err := o.OptimalFor(product.DemandForecast)
	if err != nil {
		return 0, fmt.Errorf("inventory: optimal level for product %d: %w", productID, err)
	}

	product.OptimalInventory = optimal
	if err := products.PutProduct(ctx, product); err != nil {
		return 0, fmt.Errorf("inventory: save product %d: %w", productID, err)
	}

	return product.OptimalInventory, nil
}
