package optimization

import (
	"context"
	"fmt"

	"github.com/andresuchdata/supplychain-engine/internal/domain"
	"github.com/andresuchdata/supplychain-engine/internal/inventory"
)

func disabledReorder() domain.InventoryReorderReport {
	return domain.InventoryReorderReport{Recommendations: []domain.ReorderRecommendation{}}
}

func analyzeReorder(ctx context.Context, products []*domain.Product) (domain.InventoryReorderReport, error) {
	if err := ctx.Err(); err != nil {
		return disabledReorder(), err
	}

	recs, err := inventory.RecommendAll(products)
	if err != nil {
		return disabledReorder(), err
	}

	report := domain.InventoryReorderReport{
		Enabled:           true,
		ProductsEvaluated: uint64(len(products)),
		Recommendations:   recs,
	}
	for _, rec := range recs {
		if report.TotalReorderQuantity, err = inventory.CheckedAdd(report.TotalReorderQuantity, rec.ReorderQuantity); err != nil {
			return disabledReorder(), fmt.Errorf("total reorder quantity: %w", err)
		}
		if report.TotalEstimatedCost, err = inventory.CheckedAdd(report.TotalEstimatedCost, rec.EstimatedCost); err != nil {
			return disabledReorder(), fmt.Errorf("total reorder cost: %w", err)
		}
	}
	return report, nil
}
