// Package scoring derives supplier composite scores and risk tiers.
package scoring

import (
	"context"
	"fmt"

	"github.com/andresuchdata/supplychain-engine/internal/config"
	"github.com/andresuchdata/supplychain-engine/internal/domain"
	"github.com/andresuchdata/supplychain-engine/internal/repository"
)

// Scorer applies the configured weights and thresholds. It holds no
// registry state.
type Scorer struct {
	cfg config.ScoringConfig
}

// NewScorer validates that the weights sum to 100
func NewScorer(cfg config.ScoringConfig) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Score returns floor(cost*Wc/100) + floor(quality*Wq/100) + floor(delivery*Wd/100).
// A nil supplier scores 0.
func (s *Scorer) Score(supplier *domain.Supplier) uint64 {
	if supplier == nil {
		return 0
	}
	return weighted(supplier.CostEfficiency, s.cfg.CostWeight) +
		weighted(supplier.Quality, s.cfg.QualityWeight) +
		weighted(supplier.DeliveryPerformance, s.cfg.DeliveryWeight)
}

// ClassifyRisk gates on reliability first, then quality.
// A nil supplier is UNKNOWN_RISK.
func (s *Scorer) ClassifyRisk(supplier *domain.Supplier) domain.RiskTier {
	if supplier == nil {
		return domain.RiskUnknown
	}
	if supplier.Reliability >= s.cfg.LowRiskReliability && supplier.Quality >= s.cfg.LowRiskQuality {
		return domain.RiskLow
	}
	if supplier.Reliability >= s.cfg.ModerateRiskReliability {
		return domain.RiskModerate
	}
	return domain.RiskHigh
}

// ScoreByID scores the supplier with the given id, 0 if it does not exist
func (s *Scorer) ScoreByID(ctx context.Context, suppliers repository.SupplierReader, id uint64) (uint64, error) {
	supplier, err := lookup(ctx, suppliers, id)
	if err != nil {
		return 0, err
	}
	return s.Score(supplier), nil
}

// ClassifyByID classifies the supplier with the given id, UNKNOWN_RISK if it does not exist
func (s *Scorer) ClassifyByID(ctx context.Context, suppliers repository.SupplierReader, id uint64) (domain.RiskTier, error) {
	supplier, err := lookup(ctx, suppliers, id)
	if err != nil {
		return domain.RiskUnknown, err
	}
	return s.ClassifyRisk(supplier), nil
}

func lookup(ctx context.Context, suppliers repository.SupplierReader, id uint64) (*domain.Supplier, error) {
	supplier, ok, err := suppliers.GetSupplier(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("scoring: load supplier %d: %w", id, err)
	}
	if !ok {
		return nil, nil
	}
	return supplier, nil
}

func weighted(value uint8, weight uint64) uint64 {
	return uint64(value) * weight / 100
}
