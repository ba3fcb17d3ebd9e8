package optimization

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/andresuchdata/supplychain-engine/internal/clock"
	"github.com/andresuchdata/supplychain-engine/internal/config"
	"github.com/andresuchdata/supplychain-engine/internal/domain"
	"github.com/andresuchdata/supplychain-engine/internal/repository"
	"github.com/andresuchdata/supplychain-engine/internal/repository/memory"
	"github.com/andresuchdata/supplychain-engine/internal/scoring"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allOn = domain.CycleToggles{
	DemandAnalytics:      true,
	AutoReorder:          true,
	SupplierOptimization: true,
	RiskMitigation:       true,
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	suppliers := []*domain.Supplier{
		{ID: 1, Name: "Acme", Reliability: 90, Quality: 90, CostEfficiency: 80, DeliveryPerformance: 70},
		{ID: 2, Name: "Bolt", Reliability: 70, Quality: 90, CostEfficiency: 100, DeliveryPerformance: 100},
		{ID: 3, Name: "Crate", Reliability: 50, Quality: 40, CostEfficiency: 50, DeliveryPerformance: 60},
		{ID: 4, Name: "Dyno", Reliability: 90, Quality: 90, CostEfficiency: 80, DeliveryPerformance: 70},
	}
	for _, s := range suppliers {
		require.NoError(t, store.PutSupplier(ctx, s))
	}

	products := []*domain.Product{
		{ID: 1, Name: "Bolt M4", SupplierID: 1, UnitCost: 10, CurrentInventory: 10, OptimalInventory: 60},
		{ID: 2, Name: "Nut M4", SupplierID: 2, UnitCost: 15, CurrentInventory: 100, OptimalInventory: 50},
		{ID: 3, Name: "Washer", SupplierID: 3, UnitCost: 7},
	}
	for _, p := range products {
		require.NoError(t, store.PutProduct(ctx, p))
	}

	require.NoError(t, store.PutPrediction(ctx, &domain.DemandPrediction{ProductID: 1, Period: 1, PredictedDemand: 100, ConfidenceLevel: 80, HistoricalAccuracy: 88}))
	require.NoError(t, store.PutPrediction(ctx, &domain.DemandPrediction{ProductID: 2, Period: 1, PredictedDemand: 200, ConfidenceLevel: 90, HistoricalAccuracy: 88}))

	_, err := store.Add(ctx, repository.CounterSupplyChainValue, 1000)
	require.NoError(t, err)

	return store
}

func newOrchestrator(t *testing.T, store repository.RegistryStore, mutate func(*config.EngineConfig)) *Orchestrator {
	t.Helper()
	cfg := config.DefaultEngineConfig()
	cfg.TopSuppliers = 3
	if mutate != nil {
		mutate(&cfg)
	}
	scorer, err := scoring.NewScorer(cfg.Scoring)
	require.NoError(t, err)
	return NewOrchestrator(store, scorer, clock.NewManual(500), cfg)
}

func TestRunLiveReport(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	o := newOrchestrator(t, store, nil)

	report, err := o.Run(ctx, Request{Scope: "weekly", Toggles: allOn})
	require.NoError(t, err)

	assert.Equal(t, uint64(500), report.CycleID)
	assert.Equal(t, uint64(1508), report.NextCycle)
	assert.Equal(t, uint64(1), report.CycleNumber)
	assert.Equal(t, ConfidenceScore, report.ConfidenceScore)
	assert.Equal(t, "weekly", report.Scope)
	assert.False(t, report.GeneratedAt.IsZero())
	assert.Equal(t, StateIdle, o.State())

	assert.Equal(t, domain.ImpactProjections{
		CurrentValue:            1000,
		ProjectedCostSavings:    150,
		QualityImprovementValue: 100,
		DeliveryPerformanceGain: 200,
	}, report.Impact)

	demand := report.DemandAnalytics
	assert.True(t, demand.Enabled)
	assert.True(t, demand.Live)
	assert.Len(t, demand.SeasonalIndices, 4)
	assert.Equal(t, uint64(2), demand.ModelConfidence.Predictions)
	assert.InDelta(t, 150.0, demand.ModelConfidence.MeanDemand, 0.001)
	assert.InDelta(t, 50.0, demand.ModelConfidence.DemandStdDev, 0.001)
	assert.InDelta(t, 85.0, demand.ModelConfidence.MeanConfidence, 0.001)
	assert.Equal(t, uint64(85), demand.ModelConfidence.Confidence)
	assert.Equal(t, uint64(88), demand.ModelConfidence.Accuracy)

	suppliers := report.SupplierOptimization
	require.Len(t, suppliers.TopSuppliers, 3)
	assert.Equal(t, []uint64{2, 1, 4}, []uint64{
		suppliers.TopSuppliers[0].SupplierID,
		suppliers.TopSuppliers[1].SupplierID,
		suppliers.TopSuppliers[2].SupplierID,
	})
	assert.Equal(t, uint64(96), suppliers.TopSuppliers[0].Score)
	assert.Equal(t, domain.RiskModerate, suppliers.TopSuppliers[0].RiskTier)
	assert.Equal(t, domain.RiskBuckets{Low: 2, Moderate: 1, High: 1}, suppliers.RiskBuckets)
	assert.Equal(t, domain.DeliveryReliability{AverageDelivery: 75, AverageReliability: 75, ReliableSuppliers: 2}, suppliers.DeliveryReliability)

	require.Len(t, suppliers.CostTiers, 3)
	assert.Equal(t, TierHigh, suppliers.CostTiers[0].Tier)
	assert.Equal(t, uint64(3), suppliers.CostTiers[0].Suppliers)
	assert.True(t, decimal.RequireFromString("12.5").Equal(suppliers.CostTiers[0].AverageUnitCost))
	assert.Equal(t, uint64(0), suppliers.CostTiers[1].Suppliers)
	assert.True(t, suppliers.CostTiers[1].AverageUnitCost.IsZero())
	assert.Equal(t, uint64(1), suppliers.CostTiers[2].Suppliers)
	assert.True(t, decimal.NewFromInt(7).Equal(suppliers.CostTiers[2].AverageUnitCost))

	reorder := report.InventoryReorder
	assert.Equal(t, uint64(3), reorder.ProductsEvaluated)
	require.Len(t, reorder.Recommendations, 1)
	assert.Equal(t, uint64(1), reorder.Recommendations[0].ProductID)
	assert.Equal(t, domain.UrgencyHigh, reorder.Recommendations[0].Urgency)
	assert.Equal(t, uint64(50), reorder.TotalReorderQuantity)
	assert.Equal(t, uint64(500), reorder.TotalEstimatedCost)

	risk := report.RiskMitigation
	assert.True(t, risk.Live)
	assert.Equal(t, uint64(2), risk.SuppliersAtRisk)
	assert.Len(t, risk.Actions, 4)
	assert.Equal(t, uint64(22), risk.QualityImprovement)
	assert.Equal(t, uint64(15), risk.CostReduction)
	assert.Equal(t, uint64(10), risk.DeliveryImprovement)
}

func TestRunIncrementsCycleCounterOnce(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	o := newOrchestrator(t, store, nil)

	for i := uint64(1); i <= 3; i++ {
		report, err := o.Run(ctx, Request{Toggles: allOn})
		require.NoError(t, err)
		assert.Equal(t, i, report.CycleNumber)
	}

	cycles, err := store.Count(ctx, repository.CounterOptimizationCycles)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), cycles)
}

func TestRunAllDisabled(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	o := newOrchestrator(t, store, nil)

	report, err := o.Run(ctx, Request{Scope: "noop"})
	require.NoError(t, err)

	assert.False(t, report.DemandAnalytics.Enabled)
	assert.NotNil(t, report.DemandAnalytics.SeasonalIndices)
	assert.Empty(t, report.DemandAnalytics.SeasonalIndices)
	assert.NotNil(t, report.SupplierOptimization.TopSuppliers)
	assert.Empty(t, report.SupplierOptimization.CostTiers)
	assert.NotNil(t, report.InventoryReorder.Recommendations)
	assert.Empty(t, report.InventoryReorder.Recommendations)
	assert.NotNil(t, report.RiskMitigation.Actions)
	assert.Empty(t, report.RiskMitigation.Actions)

	// impact and the counter are unconditional
	assert.Equal(t, uint64(150), report.Impact.ProjectedCostSavings)
	assert.Equal(t, uint64(1), report.CycleNumber)
}

func TestRunStaticMode(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	o := newOrchestrator(t, store, func(cfg *config.EngineConfig) { cfg.LiveAnalytics = false })

	report, err := o.Run(ctx, Request{Toggles: allOn})
	require.NoError(t, err)

	assert.False(t, report.DemandAnalytics.Live)
	assert.Equal(t, uint64(0), report.DemandAnalytics.ModelConfidence.Predictions)
	assert.Equal(t, uint64(staticModelConfidence), report.DemandAnalytics.ModelConfidence.Confidence)

	assert.False(t, report.SupplierOptimization.Live)
	assert.Empty(t, report.SupplierOptimization.TopSuppliers)
	assert.Len(t, report.SupplierOptimization.CostTiers, 3)
	assert.Equal(t, uint64(staticAverageDelivery), report.SupplierOptimization.DeliveryReliability.AverageDelivery)

	assert.Equal(t, uint64(staticQualityImprovement), report.RiskMitigation.QualityImprovement)
	assert.Equal(t, uint64(staticCostReduction), report.RiskMitigation.CostReduction)
	assert.Equal(t, uint64(staticDeliveryImprovement), report.RiskMitigation.DeliveryImprovement)

	// reorder is always computed from live records
	assert.Len(t, report.InventoryReorder.Recommendations, 1)
}

func TestRunRejectsConcurrentCycle(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	o := newOrchestrator(t, store, nil)

	o.running.Store(true)
	assert.Equal(t, StateRunning, o.State())

	_, err := o.Run(ctx, Request{Toggles: allOn})
	require.ErrorIs(t, err, domain.ErrCycleInProgress)

	cycles, err := store.Count(ctx, repository.CounterOptimizationCycles)
	require.NoError(t, err)
	assert.Zero(t, cycles)
}

func TestProjectImpactLargeValue(t *testing.T) {
	impact, err := projectImpact(math.MaxUint64 / 10)
	require.NoError(t, err)
	assert.Equal(t, domain.ImpactProjections{
		CurrentValue:            1844674407370955161,
		ProjectedCostSavings:    276701161105643274,
		QualityImprovementValue: 184467440737095516,
		DeliveryPerformanceGain: 368934881474191032,
	}, impact)

	impact, err = projectImpact(math.MaxUint64)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64/5), impact.DeliveryPerformanceGain)
}

func TestRunRejectsOverflowingReorderCost(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	require.NoError(t, store.PutProduct(ctx, &domain.Product{ID: 4, Name: "Ingot", SupplierID: 1, UnitCost: math.MaxUint64, OptimalInventory: 2}))
	o := newOrchestrator(t, store, nil)

	_, err := o.Run(ctx, Request{Toggles: allOn})
	require.ErrorIs(t, err, domain.ErrInvalidData)
	assert.Equal(t, StateIdle, o.State())

	cycles, err := store.Count(ctx, repository.CounterOptimizationCycles)
	require.NoError(t, err)
	assert.Zero(t, cycles)
}

func TestRunRejectsLongScope(t *testing.T) {
	o := newOrchestrator(t, memory.NewStore(), nil)

	_, err := o.Run(context.Background(), Request{Scope: strings.Repeat("x", MaxScopeLength+1)})
	assert.ErrorIs(t, err, domain.ErrInvalidData)
	assert.Equal(t, StateIdle, o.State())
}

func TestRunCancelledLeavesCounter(t *testing.T) {
	store := seededStore(t)
	o := newOrchestrator(t, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Run(ctx, Request{Toggles: allOn})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateIdle, o.State())

	cycles, err := store.Count(context.Background(), repository.CounterOptimizationCycles)
	require.NoError(t, err)
	assert.Zero(t, cycles)
}

func TestRankTiesByLowestID(t *testing.T) {
	o := newOrchestrator(t, memory.NewStore(), nil)

	ranked := o.Rank([]*domain.Supplier{
		{ID: 9, CostEfficiency: 50},
		{ID: 3, CostEfficiency: 50},
		{ID: 5, CostEfficiency: 100},
	})

	require.Len(t, ranked, 3)
	assert.Equal(t, []uint64{5, 3, 9}, []uint64{ranked[0].SupplierID, ranked[1].SupplierID, ranked[2].SupplierID})
}

func TestRunEmptyRegistry(t *testing.T) {
	o := newOrchestrator(t, memory.NewStore(), nil)

	report, err := o.Run(context.Background(), Request{Toggles: allOn})
	require.NoError(t, err)

	assert.Empty(t, report.SupplierOptimization.TopSuppliers)
	assert.NotNil(t, report.SupplierOptimization.TopSuppliers)
	assert.Equal(t, domain.ImpactProjections{}, report.Impact)
	assert.Zero(t, report.RiskMitigation.SuppliersAtRisk)
	assert.Zero(t, report.DemandAnalytics.ModelConfidence.MeanDemand)
}
