package optimization

import (
	"context"

	"github.com/andresuchdata/supplychain-engine/internal/domain"
)

// Reference improvement estimates reported in static mode
const (
	staticQualityImprovement  = 12
	staticCostReduction       = 8
	staticDeliveryImprovement = 18
)

func mitigationActions() []domain.MitigationAction {
	return []domain.MitigationAction{
		{Code: "diversify_supplier_base", Description: "Qualify alternate suppliers for products sourced from high-risk suppliers", Priority: "HIGH"},
		{Code: "increase_quality_audits", Description: "Raise inspection frequency on inbound shipments from moderate and high-risk suppliers", Priority: "HIGH"},
		{Code: "negotiate_delivery_sla", Description: "Agree delivery service levels with penalties for late shipments", Priority: "MEDIUM"},
		{Code: "build_safety_stock", Description: "Hold additional buffer inventory for products with at-risk supply", Priority: "MEDIUM"},
	}
}

func disabledRisk() domain.RiskMitigationReport {
	return domain.RiskMitigationReport{Actions: []domain.MitigationAction{}}
}

// analyzeRisk reports the mitigation templates. In live mode the
// improvement estimates are the average shortfalls of HIGH and MODERATE
// risk suppliers against the low-risk thresholds.
func (o *Orchestrator) analyzeRisk(ctx context.Context, suppliers []*domain.Supplier, live bool) (domain.RiskMitigationReport, error) {
	if err := ctx.Err(); err != nil {
		return disabledRisk(), err
	}

	report := domain.RiskMitigationReport{
		Enabled: true,
		Actions: mitigationActions(),
	}
	if !live {
		report.QualityImprovement = staticQualityImprovement
		report.CostReduction = staticCostReduction
		report.DeliveryImprovement = staticDeliveryImprovement
		return report, nil
	}

	report.Live = true
	qualityTarget := o.cfg.Scoring.LowRiskQuality
	target := o.cfg.Scoring.LowRiskReliability

	var quality, cost, delivery uint64
	for _, s := range suppliers {
		switch o.scorer.ClassifyRisk(s) {
		case domain.RiskHigh, domain.RiskModerate:
		default:
			continue
		}
		report.SuppliersAtRisk++
		quality += shortfall(s.Quality, qualityTarget)
		cost += shortfall(s.CostEfficiency, target)
		delivery += shortfall(s.DeliveryPerformance, target)
	}

	if n := report.SuppliersAtRisk; n > 0 {
		report.QualityImprovement = quality / n
		report.CostReduction = cost / n
		report.DeliveryImprovement = delivery / n
	}
	return report, nil
}

func shortfall(value, target uint8) uint64 {
	if value >= target {
		return 0
	}
	return uint64(target - value)
}
