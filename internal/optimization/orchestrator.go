// Package optimization runs the registry-wide optimization cycle and
// assembles its report.
package optimization

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/andresuchdata/supplychain-engine/internal/clock"
	"github.com/andresuchdata/supplychain-engine/internal/config"
	"github.com/andresuchdata/supplychain-engine/internal/domain"
	"github.com/andresuchdata/supplychain-engine/internal/inventory"
	"github.com/andresuchdata/supplychain-engine/internal/repository"
	"github.com/andresuchdata/supplychain-engine/internal/scoring"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// MaxScopeLength bounds the free-text scope label
const MaxScopeLength = 100

// ConfidenceScore is reported with every cycle
const ConfidenceScore uint8 = 87

// Impact target percentages over the total supply chain value
const (
	costSavingsPercent        = 15
	qualityImprovementPercent = 10
	deliveryGainPercent       = 20
)

// State of the orchestrator
type State string

const (
	StateIdle    State = "IDLE"
	StateRunning State = "RUNNING"
)

// Request is one cycle invocation
type Request struct {
	Scope   string
	Toggles domain.CycleToggles
}

// Orchestrator owns the IDLE/RUNNING cycle state. Only one cycle may run
// at a time.
type Orchestrator struct {
	store   repository.RegistryStore
	scorer  *scoring.Scorer
	clock   clock.Clock
	cfg     config.EngineConfig
	running atomic.Bool
	now     func() time.Time
}

func NewOrchestrator(store repository.RegistryStore, scorer *scoring.Scorer, clk clock.Clock, cfg config.EngineConfig) *Orchestrator {
	return &Orchestrator{
		store:  store,
		scorer: scorer,
		clock:  clk,
		cfg:    cfg,
		now:    time.Now,
	}
}

func (o *Orchestrator) State() State {
	if o.running.Load() {
		return StateRunning
	}
	return StateIdle
}

// Run executes one optimization cycle. The cycle counter is incremented
// exactly once, and only when every enabled analysis succeeds.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*domain.OptimizationReport, error) {
	if len(req.Scope) > MaxScopeLength {
		return nil, fmt.Errorf("scope longer than %d characters: %w", MaxScopeLength, domain.ErrInvalidData)
	}
	if !o.running.CompareAndSwap(false, true) {
		return nil, domain.ErrCycleInProgress
	}
	defer o.running.Store(false)

	started := o.now()
	tick := o.clock.Now()

	report := &domain.OptimizationReport{
		CycleID:         tick,
		Scope:           req.Scope,
		Toggles:         req.Toggles,
		NextCycle:       tick + o.cfg.CycleIntervalTicks,
		ConfidenceScore: ConfidenceScore,
	}

	err := o.store.WithTx(ctx, func(tx repository.Registry) error {
		snap, err := loadSnapshot(ctx, tx)
		if err != nil {
			return err
		}

		if err := o.analyze(ctx, req.Toggles, snap, report); err != nil {
			return err
		}
		if report.Impact, err = projectImpact(snap.value); err != nil {
			return err
		}

		cycles, err := tx.Add(ctx, repository.CounterOptimizationCycles, 1)
		if err != nil {
			return fmt.Errorf("advance cycle counter: %w", err)
		}
		report.CycleNumber = cycles
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("scope", req.Scope).Msg("optimization: cycle failed")
		return nil, err
	}

	report.GeneratedAt = o.now().UTC()

	log.Info().
		Uint64("cycle_id", report.CycleID).
		Uint64("cycle_number", report.CycleNumber).
		Str("scope", report.Scope).
		Int("recommendations", len(report.InventoryReorder.Recommendations)).
		Dur("elapsed", time.Since(started)).
		Msg("optimization: cycle complete")

	return report, nil
}

// analyze runs the enabled sub-analyses concurrently over the snapshot.
// Each goroutine writes only its own section of the report.
func (o *Orchestrator) analyze(ctx context.Context, toggles domain.CycleToggles, snap *snapshot, report *domain.OptimizationReport) error {
	g, ctx := errgroup.WithContext(ctx)
	live := o.cfg.LiveAnalytics

	g.Go(func() error {
		if !toggles.DemandAnalytics {
			report.DemandAnalytics = disabledDemand()
			return nil
		}
		r, err := analyzeDemand(ctx, snap.predictions, live)
		report.DemandAnalytics = r
		return err
	})

	g.Go(func() error {
		if !toggles.SupplierOptimization {
			report.SupplierOptimization = disabledSuppliers()
			return nil
		}
		r, err := o.analyzeSuppliers(ctx, snap, live)
		report.SupplierOptimization = r
		return err
	})

	g.Go(func() error {
		if !toggles.AutoReorder {
			report.InventoryReorder = disabledReorder()
			return nil
		}
		r, err := analyzeReorder(ctx, snap.products)
		report.InventoryReorder = r
		return err
	})

	g.Go(func() error {
		if !toggles.RiskMitigation {
			report.RiskMitigation = disabledRisk()
			return nil
		}
		r, err := o.analyzeRisk(ctx, snap.suppliers, live)
		report.RiskMitigation = r
		return err
	})

	return g.Wait()
}

func projectImpact(value uint64) (domain.ImpactProjections, error) {
	impact := domain.ImpactProjections{CurrentValue: value}
	var err error
	if impact.ProjectedCostSavings, err = inventory.PercentOf(value, costSavingsPercent); err != nil {
		return domain.ImpactProjections{}, err
	}
	if impact.QualityImprovementValue, err = inventory.PercentOf(value, qualityImprovementPercent); err != nil {
		return domain.ImpactProjections{}, err
	}
	if impact.DeliveryPerformanceGain, err = inventory.PercentOf(value, deliveryGainPercent); err != nil {
		return domain.ImpactProjections{}, err
	}
	return impact, nil
}
