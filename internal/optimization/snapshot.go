package optimization

import (
	"context"
	"fmt"

	"github.com/andresuchdata/supplychain-engine/internal/domain"
	"github.com/andresuchdata/supplychain-engine/internal/repository"
)

// snapshot is the read-only view every sub-analysis works from
type snapshot struct {
	suppliers   []*domain.Supplier
	products    []*domain.Product
	predictions []*domain.DemandPrediction
	value       uint64
}

func loadSnapshot(ctx context.Context, reg repository.Registry) (*snapshot, error) {
	suppliers, err := reg.ListSuppliers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	products, err := reg.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	predictions, err := reg.ListPredictions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	value, err := reg.Count(ctx, repository.CounterSupplyChainValue)
	if err != nil {
		return nil, fmt.Errorf("read supply chain value: %w", err)
	}

	return &snapshot{
		suppliers:   suppliers,
		products:    products,
		predictions: predictions,
		value:       value,
	}, nil
}
