package memory

import (
	"context"
	"sync"

	"github.com/andresuchdata/supplychain-engine/internal/domain"
	"github.com/andresuchdata/supplychain-engine/internal/repository"
)

// Store provides in-memory registry storage
type Store struct {
	mu   sync.RWMutex
	data *state
}

// NewStore creates a new empty in-memory registry
func NewStore() *Store {
	return &Store{data: newState()}
}

// Verify interface compliance
var _ repository.RegistryStore = (*Store)(nil)

// WithTx runs fn against an overlay of the store. The store stays locked
// for the duration of fn, so transactions are serialized.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Registry) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{base: s.data, pending: newState()}
	if err := fn(t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.data.merge(t.pending)
	return nil
}

func (s *Store) view() *tx {
	return &tx{base: s.data}
}

func (s *Store) update(ctx context.Context, fn func(t *tx) error) error {
	return s.WithTx(ctx, func(r repository.Registry) error {
		return fn(r.(*tx))
	})
}

func (s *Store) GetSupplier(ctx context.Context, id uint64) (*domain.Supplier, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().GetSupplier(ctx, id)
}

func (s *Store) ListSuppliers(ctx context.Context) ([]*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListSuppliers(ctx)
}

func (s *Store) PutSupplier(ctx context.Context, supplier *domain.Supplier) error {
	return s.update(ctx, func(t *tx) error { return t.PutSupplier(ctx, supplier) })
}

func (s *Store) GetProduct(ctx context.Context, id uint64) (*domain.Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().GetProduct(ctx, id)
}

func (s *Store) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListProducts(ctx)
}

func (s *Store) PutProduct(ctx context.Context, product *domain.Product) error {
	return s.update(ctx, func(t *tx) error { return t.PutProduct(ctx, product) })
}

func (s *Store) GetShipment(ctx context.Context, id uint64) (*domain.Shipment, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().GetShipment(ctx, id)
}

func (s *Store) PutShipment(ctx context.Context, shipment *domain.Shipment) error {
	return s.update(ctx, func(t *tx) error { return t.PutShipment(ctx, shipment) })
}

func (s *Store) GetPrediction(ctx context.Context, key domain.PredictionKey) (*domain.DemandPrediction, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().GetPrediction(ctx, key)
}

func (s *Store) PutPrediction(ctx context.Context, prediction *domain.DemandPrediction) error {
	return s.update(ctx, func(t *tx) error { return t.PutPrediction(ctx, prediction) })
}

func (s *Store) ListPredictions(ctx context.Context) ([]*domain.DemandPrediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListPredictions(ctx)
}

func (s *Store) NextID(ctx context.Context, counter repository.Counter) (uint64, error) {
	var id uint64
	err := s.update(ctx, func(t *tx) error {
		var err error
		id, err = t.NextID(ctx, counter)
		return err
	})
	return id, err
}

func (s *Store) Count(ctx context.Context, counter repository.Counter) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().Count(ctx, counter)
}

func (s *Store) Add(ctx context.Context, counter repository.Counter, delta uint64) (uint64, error) {
	var value uint64
	err := s.update(ctx, func(t *tx) error {
		var err error
		value, err = t.Add(ctx, counter, delta)
		return err
	})
	return value, err
}
