package optimization

import (
	"context"
	"sort"

	"github.com/andresuchdata/supplychain-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// Attribute bands for tier buckets
const (
	TierHigh   = "HIGH"
	TierMedium = "MEDIUM"
	TierLow    = "LOW"

	highBandFloor   = 80
	mediumBandFloor = 60
)

// Reference delivery figures reported in static mode
const (
	staticAverageDelivery    = 92
	staticAverageReliability = 89
)

var tierOrder = []string{TierHigh, TierMedium, TierLow}

func bandOf(value uint8) string {
	switch {
	case value >= highBandFloor:
		return TierHigh
	case value >= mediumBandFloor:
		return TierMedium
	default:
		return TierLow
	}
}

func emptyTiers() []domain.TierBucket {
	buckets := make([]domain.TierBucket, 0, len(tierOrder))
	for _, tier := range tierOrder {
		buckets = append(buckets, domain.TierBucket{Tier: tier, AverageUnitCost: decimal.Zero})
	}
	return buckets
}

func disabledSuppliers() domain.SupplierOptimizationReport {
	return domain.SupplierOptimizationReport{
		TopSuppliers: []domain.RankedSupplier{},
		CostTiers:    []domain.TierBucket{},
		QualityTiers: []domain.TierBucket{},
	}
}

func staticSuppliers() domain.SupplierOptimizationReport {
	return domain.SupplierOptimizationReport{
		Enabled:      true,
		TopSuppliers: []domain.RankedSupplier{},
		CostTiers:    emptyTiers(),
		QualityTiers: emptyTiers(),
		DeliveryReliability: domain.DeliveryReliability{
			AverageDelivery:    staticAverageDelivery,
			AverageReliability: staticAverageReliability,
		},
	}
}

// Rank scores every supplier, highest score first, ties by lowest id
func (o *Orchestrator) Rank(suppliers []*domain.Supplier) []domain.RankedSupplier {
	ranked := make([]domain.RankedSupplier, 0, len(suppliers))
	for _, s := range suppliers {
		ranked = append(ranked, domain.RankedSupplier{
			SupplierID: s.ID,
			Name:       s.Name,
			Score:      o.scorer.Score(s),
			RiskTier:   o.scorer.ClassifyRisk(s),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].SupplierID < ranked[j].SupplierID
	})

	return ranked
}

func (o *Orchestrator) analyzeSuppliers(ctx context.Context, snap *snapshot, live bool) (domain.SupplierOptimizationReport, error) {
	if err := ctx.Err(); err != nil {
		return disabledSuppliers(), err
	}
	if !live {
		return staticSuppliers(), nil
	}

	report := domain.SupplierOptimizationReport{Enabled: true, Live: true}

	ranked := o.Rank(snap.suppliers)
	top := o.cfg.TopSuppliers
	if top <= 0 || top > len(ranked) {
		top = len(ranked)
	}
	report.TopSuppliers = ranked[:top]

	for _, r := range ranked {
		switch r.RiskTier {
		case domain.RiskLow:
			report.RiskBuckets.Low++
		case domain.RiskModerate:
			report.RiskBuckets.Moderate++
		case domain.RiskHigh:
			report.RiskBuckets.High++
		}
	}

	report.CostTiers = tierBuckets(snap, func(s *domain.Supplier) uint8 { return s.CostEfficiency })
	report.QualityTiers = tierBuckets(snap, func(s *domain.Supplier) uint8 { return s.Quality })
	report.DeliveryReliability = o.deliveryReliability(snap.suppliers)

	return report, nil
}

// tierBuckets counts suppliers per band of attr and averages the unit
// cost of the products they supply, rounded to cents.
func tierBuckets(snap *snapshot, attr func(*domain.Supplier) uint8) []domain.TierBucket {
	supplierBand := make(map[uint64]string, len(snap.suppliers))
	counts := make(map[string]uint64, len(tierOrder))
	for _, s := range snap.suppliers {
		band := bandOf(attr(s))
		supplierBand[s.ID] = band
		counts[band]++
	}

	costSum := make(map[string]decimal.Decimal, len(tierOrder))
	costN := make(map[string]int64, len(tierOrder))
	for _, p := range snap.products {
		band, ok := supplierBand[p.SupplierID]
		if !ok {
			continue
		}
		costSum[band] = costSum[band].Add(decimal.NewFromUint64(p.UnitCost))
		costN[band]++
	}

	buckets := make([]domain.TierBucket, 0, len(tierOrder))
	for _, tier := range tierOrder {
		avg := decimal.Zero
		if n := costN[tier]; n > 0 {
			avg = costSum[tier].Div(decimal.NewFromInt(n)).Round(2)
		}
		buckets = append(buckets, domain.TierBucket{
			Tier:            tier,
			Suppliers:       counts[tier],
			AverageUnitCost: avg,
		})
	}
	return buckets
}

func (o *Orchestrator) deliveryReliability(suppliers []*domain.Supplier) domain.DeliveryReliability {
	var out domain.DeliveryReliability
	if len(suppliers) == 0 {
		return out
	}

	var delivery, reliability uint64
	for _, s := range suppliers {
		delivery += uint64(s.DeliveryPerformance)
		reliability += uint64(s.Reliability)
		if s.Reliability >= o.cfg.Scoring.LowRiskReliability {
			out.ReliableSuppliers++
		}
	}
	n := uint64(len(suppliers))
	out.AverageDelivery = delivery / n
	out.AverageReliability = reliability / n
	return out
}
