package memory

import (
	"context"
	"fmt"

	"github.com/andresuchdata/supplychain-engine/internal/domain"
	"github.com/andresuchdata/supplychain-engine/internal/repository"
)

// tx reads through pending writes to the committed state.
// A tx without pending state is read-only.
type tx struct {
	base    *state
	pending *state
}

var _ repository.Registry = (*tx)(nil)

func (t *tx) writable() error {
	if t.pending == nil {
		return fmt.Errorf("memory store: write outside transaction")
	}
	return nil
}

func (t *tx) GetSupplier(ctx context.Context, id uint64) (*domain.Supplier, bool, error) {
	if t.pending != nil {
		if v, ok := t.pending.suppliers[id]; ok {
			return &v, true, nil
		}
	}
	v, ok := t.base.suppliers[id]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (t *tx) ListSuppliers(ctx context.Context) ([]*domain.Supplier, error) {
	if t.pending == nil || len(t.pending.suppliers) == 0 {
		return sortedSuppliers(t.base.suppliers), nil
	}
	merged := make(map[uint64]domain.Supplier, len(t.base.suppliers)+len(t.pending.suppliers))
	for id, v := range t.base.suppliers {
		merged[id] = v
	}
	for id, v := range t.pending.suppliers {
		merged[id] = v
	}
	return sortedSuppliers(merged), nil
}

func (t *tx) PutSupplier(ctx context.Context, supplier *domain.Supplier) error {
	if err := t.writable(); err != nil {
		return err
	}
	if supplier == nil || supplier.ID == 0 {
		return fmt.Errorf("memory store: supplier id is required")
	}
	t.pending.suppliers[supplier.ID] = *supplier
	return nil
}

func (t *tx) GetProduct(ctx context.Context, id uint64) (*domain.Product, bool, error) {
	if t.pending != nil {
		if v, ok := t.pending.products[id]; ok {
			return &v, true, nil
		}
	}
	v, ok := t.base.products[id]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (t *tx) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	if t.pending == nil || len(t.pending.products) == 0 {
		return sortedProducts(t.base.products), nil
	}
	merged := make(map[uint64]domain.Product, len(t.base.products)+len(t.pending.products))
	for id, v := range t.base.products {
		merged[id] = v
	}
	for id, v := range t.pending.products {
		merged[id] = v
	}
	return sortedProducts(merged), nil
}

func (t *tx) PutProduct(ctx context.Context, product *domain.Product) error {
	if err := t.writable(); err != nil {
		return err
	}
	if product == nil || product.ID == 0 {
		return fmt.Errorf("memory store: product id is required")
	}
	t.pending.products[product.ID] = *product
	return nil
}

func (t *tx) GetShipment(ctx context.Context, id uint64) (*domain.Shipment, bool, error) {
	if t.pending != nil {
		if v, ok := t.pending.shipments[id]; ok {
			return &v, true, nil
		}
	}
	v, ok := t.base.shipments[id]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (t *tx) PutShipment(ctx context.Context, shipment *domain.Shipment) error {
	if err := t.writable(); err != nil {
		return err
	}
	if shipment == nil || shipment.ID == 0 {
		return fmt.Errorf("memory store: shipment id is required")
	}
	t.pending.shipments[shipment.ID] = *shipment
	return nil
}

func (t *tx) GetPrediction(ctx context.Context, key domain.PredictionKey) (*domain.DemandPrediction, bool, error) {
	if t.pending != nil {
		if v, ok := t.pending.predictions[key]; ok {
			return &v, true, nil
		}
	}
	v, ok := t.base.predictions[key]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (t *tx) PutPrediction(ctx context.Context, prediction *domain.DemandPrediction) error {
	if err := t.writable(); err != nil {
		return err
	}
	if prediction == nil {
		return fmt.Errorf("memory store: prediction is required")
	}
	t.pending.predictions[prediction.Key()] = *prediction
	return nil
}

func (t *tx) ListPredictions(ctx context.Context) ([]*domain.DemandPrediction, error) {
	if t.pending == nil || len(t.pending.predictions) == 0 {
		return sortedPredictions(t.base.predictions), nil
	}
	merged := make(map[domain.PredictionKey]domain.DemandPrediction, len(t.base.predictions)+len(t.pending.predictions))
	for key, v := range t.base.predictions {
		merged[key] = v
	}
	for key, v := range t.pending.predictions {
		merged[key] = v
	}
	return sortedPredictions(merged), nil
}

func (t *tx) counter(name repository.Counter) uint64 {
	if t.pending != nil {
		if v, ok := t.pending.counters[name]; ok {
			return v
		}
	}
	return t.base.counters[name]
}

func (t *tx) NextID(ctx context.Context, counter repository.Counter) (uint64, error) {
	return t.Add(ctx, counter, 1)
}

func (t *tx) Count(ctx context.Context, counter repository.Counter) (uint64, error) {
	return t.counter(counter), nil
}

func (t *tx) Add(ctx context.Context, counter repository.Counter, delta uint64) (uint64, error) {
	if err := t.writable(); err != nil {
		return 0, err
	}
	current := t.counter(counter)
	next := current + delta
	if next < current {
		return 0, fmt.Errorf("memory store: counter %s overflow: %w", counter, domain.ErrInvalidData)
	}
	t.pending.counters[counter] = next
	return next, nil
}
