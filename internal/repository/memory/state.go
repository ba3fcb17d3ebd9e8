package memory

import (
	"sort"

	"github.com/andresuchdata/supplychain-engine/internal/domain"
	"github.com/andresuchdata/supplychain-engine/internal/repository"
)

// state holds records by value so callers never alias stored data
type state struct {
	suppliers   map[uint64]domain.Supplier
	products    map[uint64]domain.Product
	shipments   map[uint64]domain.Shipment
	predictions map[domain.PredictionKey]domain.DemandPrediction
	counters    map[repository.Counter]uint64
}

func newState() *state {
	return &state{
		suppliers:   make(map[uint64]domain.Supplier),
		products:    make(map[uint64]domain.Product),
		shipments:   make(map[uint64]domain.Shipment),
		predictions: make(map[domain.PredictionKey]domain.DemandPrediction),
		counters:    make(map[repository.Counter]uint64),
	}
}

// merge copies every record and counter of other into s
func (s *state) merge(other *state) {
	for id, v := range other.suppliers {
		s.suppliers[id] = v
	}
	for id, v := range other.products {
		s.products[id] = v
	}
	for id, v := range other.shipments {
		s.shipments[id] = v
	}
	for key, v := range other.predictions {
		s.predictions[key] = v
	}
	for name, v := range other.counters {
		s.counters[name] = v
	}
}

func sortedSuppliers(m map[uint64]domain.Supplier) []*domain.Supplier {
	out := make([]*domain.Supplier, 0, len(m))
	for _, v := range m {
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedProducts(m map[uint64]domain.Product) []*domain.Product {
	out := make([]*domain.Product, 0, len(m))
	for _, v := range m {
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedPredictions(m map[domain.PredictionKey]domain.DemandPrediction) []*domain.DemandPrediction {
	out := make([]*domain.DemandPrediction, 0, len(m))
	for _, v := range m {
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].Period < out[j].Period
	})
	return out
}
