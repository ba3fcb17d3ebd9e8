package inventory

import (
	"fmt"
	"sort"

	"github.com/andresuchdata/supplychain-engine/internal/domain"
)

// Urgency thresholds as a percentage of optimal inventory
const (
	highUrgencyGapPercent   = 50
	mediumUrgencyGapPercent = 25
)

// Recommend returns a reorder recommendation when the product sits below
// its target, and false otherwise. An estimated cost that does not fit in
// uint64 is ErrInvalidData.
func Recommend(product *domain.Product) (domain.ReorderRecommendation, bool, error) {
	if product == nil || product.CurrentInventory >= product.OptimalInventory {
		return domain.ReorderRecommendation{}, false, nil
	}

	gap := product.OptimalInventory - product.CurrentInventory
	cost, err := checkedMul(gap, product.UnitCost)
	if err != nil {
		return domain.ReorderRecommendation{}, false, fmt.Errorf("reorder cost for product %d: %w", product.ID, err)
	}

	return domain.ReorderRecommendation{
		ProductID:        product.ID,
		Name:             product.Name,
		SupplierID:       product.SupplierID,
		CurrentInventory: product.CurrentInventory,
		OptimalInventory: product.OptimalInventory,
		ReorderQuantity:  gap,
		EstimatedCost:    cost,
		Urgency:          UrgencyFor(gap, product.OptimalInventory),
	}, true, nil
}

// UrgencyFor is HIGH above a 50% gap, MEDIUM above 25%, LOW otherwise
func UrgencyFor(gap, optimal uint64) domain.Urgency {
	switch {
	case greaterShare(gap, optimal, highUrgencyGapPercent):
		return domain.UrgencyHigh
	case greaterShare(gap, optimal, mediumUrgencyGapPercent):
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

// RecommendAll evaluates every product, most urgent first, then by product id
func RecommendAll(products []*domain.Product) ([]domain.ReorderRecommendation, error) {
	recs := make([]domain.ReorderRecommendation, 0)
	for _, product := range products {
		rec, ok, err := Recommend(product)
		if err != nil {
			return nil, err
		}
		if ok {
			recs = append(recs, rec)
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if ri, rj := recs[i].Urgency.Rank(), recs[j].Urgency.Rank(); ri != rj {
			return ri < rj
		}
		return recs[i].ProductID < recs[j].ProductID
	})

	return recs, nil
}
