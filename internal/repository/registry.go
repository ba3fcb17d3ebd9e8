// internal/repository/registry.go
package repository

import (
	"context"

	"github.com/andresuchdata/supplychain-engine/internal/domain"
)

// Counter names a process-wide scalar owned by the registry
type Counter string

const (
	CounterSupplierID         Counter = "next_supplier_id"
	CounterProductID          Counter = "next_product_id"
	CounterShipmentID         Counter = "next_shipment_id"
	CounterSupplyChainValue   Counter = "total_supply_chain_value"
	CounterOptimizationCycles Counter = "optimization_cycles"
)

// Counters lists every counter a store must provide
var Counters = []Counter{
	CounterSupplierID,
	CounterProductID,
	CounterShipmentID,
	CounterSupplyChainValue,
	CounterOptimizationCycles,
}

type SupplierReader interface {
	GetSupplier(ctx context.Context, id uint64) (*domain.Supplier, bool, error)
	ListSuppliers(ctx context.Context) ([]*domain.Supplier, error)
}

type SupplierStore interface {
	SupplierReader
	PutSupplier(ctx context.Context, supplier *domain.Supplier) error
}

type ProductReader interface {
	GetProduct(ctx context.Context, id uint64) (*domain.Product, bool, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
}

type ProductStore interface {
	ProductReader
	PutProduct(ctx context.Context, product *domain.Product) error
}

type ShipmentStore interface {
	GetShipment(ctx context.Context, id uint64) (*domain.Shipment, bool, error)
	PutShipment(ctx context.Context, shipment *domain.Shipment) error
}

type PredictionStore interface {
	GetPrediction(ctx context.Context, key domain.PredictionKey) (*domain.DemandPrediction, bool, error)
	PutPrediction(ctx context.Context, prediction *domain.DemandPrediction) error
	ListPredictions(ctx context.Context) ([]*domain.DemandPrediction, error)
}

// CounterStore exposes the scalar counters. NextID advances an allocation
// counter and returns the new identifier; the first allocation yields 1.
type CounterStore interface {
	NextID(ctx context.Context, counter Counter) (uint64, error)
	Count(ctx context.Context, counter Counter) (uint64, error)
	Add(ctx context.Context, counter Counter, delta uint64) (uint64, error)
}

// Registry is a transactional view over all records and counters
type Registry interface {
	SupplierStore
	ProductStore
	ShipmentStore
	PredictionStore
	CounterStore
}

// RegistryStore is the backing store. WithTx runs fn against a
// transactional view; writes become visible only if fn returns nil.
type RegistryStore interface {
	Registry
	WithTx(ctx context.Context, fn func(tx Registry) error) error
}
