package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/andresuchdata/supplychain-engine/internal/clock"
	"github.com/andresuchdata/supplychain-engine/internal/config"
	"github.com/andresuchdata/supplychain-engine/internal/domain"
	"github.com/andresuchdata/supplychain-engine/internal/repository"
	"github.com/andresuchdata/supplychain-engine/internal/repository/memory"
	"github.com/andresuchdata/supplychain-engine/internal/storage"
	"github.com/andresuchdata/supplychain-engine/internal/tracking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "ops@registry"

type fixture struct {
	reg   *Registry
	store *memory.Store
	clock *clock.Manual
}

func newFixture(t *testing.T, deps Dependencies) *fixture {
	t.Helper()
	cfg := config.DefaultEngineConfig()
	cfg.Owners = []string{owner}

	store := memory.NewStore()
	clk := clock.NewManual(100)
	deps.Store = store
	deps.Clock = clk

	reg, err := NewRegistry(cfg, deps)
	require.NoError(t, err)
	return &fixture{reg: reg, store: store, clock: clk}
}

func (f *fixture) supplier(t *testing.T) *domain.Supplier {
	t.Helper()
	s, err := f.reg.RegisterSupplier(context.Background(), owner, RegisterSupplierInput{
		Name: "Acme", Reliability: 90, Quality: 88, CostEfficiency: 80, DeliveryPerformance: 70,
	})
	require.NoError(t, err)
	return s
}

func (f *fixture) product(t *testing.T, supplierID uint64) *domain.Product {
	t.Helper()
	p, err := f.reg.AddProduct(context.Background(), "clerk", AddProductInput{
		Name: "Bolt M4", Category: "fasteners", InitialInventory: 10, UnitCost: 3, SupplierID: supplierID,
	})
	require.NoError(t, err)
	return p
}

func TestRegisterSupplier(t *testing.T) {
	f := newFixture(t, Dependencies{})

	s := f.supplier(t)
	assert.Equal(t, uint64(1), s.ID)
	assert.Equal(t, domain.RiskLow, s.RiskTier)
	assert.True(t, s.Active)
	assert.Equal(t, uint64(100), s.RegisteredAt)

	second := f.supplier(t)
	assert.Equal(t, uint64(2), second.ID)
}

func TestRegisterSupplierRequiresOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Dependencies{})

	_, err := f.reg.RegisterSupplier(ctx, "intruder", RegisterSupplierInput{Name: "Acme"})
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	count, err := f.store.Count(ctx, repository.CounterSupplierID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRegisterSupplierValidation(t *testing.T) {
	f := newFixture(t, Dependencies{})

	tests := []struct {
		name string
		in   RegisterSupplierInput
	}{
		{name: "reliability over 100", in: RegisterSupplierInput{Name: "A", Reliability: 101}},
		{name: "quality over 100", in: RegisterSupplierInput{Name: "A", Quality: 300}},
		{name: "cost over 100", in: RegisterSupplierInput{Name: "A", CostEfficiency: 101}},
		{name: "delivery over 100", in: RegisterSupplierInput{Name: "A", DeliveryPerformance: 101}},
		{name: "empty name", in: RegisterSupplierInput{Name: "  "}},
		{name: "long name", in: RegisterSupplierInput{Name: strings.Repeat("n", domain.MaxNameLength+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.reg.RegisterSupplier(context.Background(), owner, tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidData)
		})
	}

	_, err := f.reg.RegisterSupplier(context.Background(), owner, RegisterSupplierInput{
		Name: strings.Repeat("n", domain.MaxNameLength), Reliability: 100, Quality: 100, CostEfficiency: 100, DeliveryPerformance: 100,
	})
	assert.NoError(t, err)
}

func TestAddProduct(t *testing.T) {
	f := newFixture(t, Dependencies{})
	s := f.supplier(t)

	p := f.product(t, s.ID)
	assert.Equal(t, uint64(1), p.ID)
	assert.Equal(t, s.Quality, p.QualityScore)
	assert.Equal(t, uint64(10), p.CurrentInventory)
	assert.Zero(t, p.DemandForecast)
	assert.Zero(t, p.OptimalInventory)
}

func TestAddProductErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Dependencies{})

	_, err := f.reg.AddProduct(ctx, "clerk", AddProductInput{Name: "Bolt", SupplierID: 9})
	require.ErrorIs(t, err, domain.ErrSupplierNotFound)

	s := f.supplier(t)
	_, err = f.reg.AddProduct(ctx, "clerk", AddProductInput{Name: "Bolt", Category: strings.Repeat("c", domain.MaxCategoryLength+1), SupplierID: s.ID})
	require.ErrorIs(t, err, domain.ErrInvalidData)

	count, err := f.store.Count(ctx, repository.CounterProductID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateShipment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Dependencies{})
	s := f.supplier(t)
	p := f.product(t, s.ID)

	shipment, err := f.reg.CreateShipment(ctx, "clerk", CreateShipmentInput{
		ProductID: p.ID, SupplierID: s.ID, Quantity: 5, ExpectedDelivery: 900, Cost: 250,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), shipment.ID)
	assert.Equal(t, domain.ShipmentInTransit, shipment.Status)
	assert.Zero(t, shipment.ActualDelivery)
	assert.Zero(t, shipment.QualityCheck)
	assert.True(t, tracking.Verify(shipment.ID, shipment.TrackingHash))

	got, err := f.reg.GetShipment(ctx, shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, shipment.TrackingHash, got.TrackingHash)

	view, err := f.reg.GetSupplier(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), view.TotalOrders)

	stats, err := f.reg.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(250), stats.TotalSupplyChainValue)
	assert.Equal(t, uint64(1), stats.Shipments)
}

func TestCreateShipmentMissingProductConsumesNoID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Dependencies{})
	s := f.supplier(t)

	_, err := f.reg.CreateShipment(ctx, "clerk", CreateShipmentInput{ProductID: 42, SupplierID: s.ID, Cost: 10})
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	p := f.product(t, s.ID)
	_, err = f.reg.CreateShipment(ctx, "clerk", CreateShipmentInput{ProductID: p.ID, SupplierID: 42, Cost: 10})
	require.ErrorIs(t, err, domain.ErrSupplierNotFound)

	stats, err := f.reg.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Shipments)
	assert.Zero(t, stats.TotalSupplyChainValue)

	shipment, err := f.reg.CreateShipment(ctx, "clerk", CreateShipmentInput{ProductID: p.ID, SupplierID: s.ID})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), shipment.ID)
}

func TestGetShipmentNotFound(t *testing.T) {
	f := newFixture(t, Dependencies{})
	_, err := f.reg.GetShipment(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrShipmentNotFound)
}

func TestUpdateShipmentStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Dependencies{})
	s := f.supplier(t)
	p := f.product(t, s.ID)
	shipment, err := f.reg.CreateShipment(ctx, "clerk", CreateShipmentInput{ProductID: p.ID, SupplierID: s.ID, Cost: 10})
	require.NoError(t, err)

	_, err = f.reg.UpdateShipmentStatus(ctx, "clerk", UpdateShipmentStatusInput{ShipmentID: shipment.ID, Status: "delivered"})
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.reg.UpdateShipmentStatus(ctx, owner, UpdateShipmentStatusInput{ShipmentID: shipment.ID, Status: "LOST"})
	require.ErrorIs(t, err, domain.ErrInvalidData)

	_, err = f.reg.UpdateShipmentStatus(ctx, owner, UpdateShipmentStatusInput{ShipmentID: shipment.ID, Status: "delivered", QualityCheck: 101})
	require.ErrorIs(t, err, domain.ErrInvalidData)

	_, err = f.reg.UpdateShipmentStatus(ctx, owner, UpdateShipmentStatusInput{ShipmentID: 99, Status: "delivered"})
	require.ErrorIs(t, err, domain.ErrShipmentNotFound)

	f.clock.Advance(5)
	delivered, err := f.reg.UpdateShipmentStatus(ctx, owner, UpdateShipmentStatusInput{ShipmentID: shipment.ID, Status: "delivered", QualityCheck: 93})
	require.NoError(t, err)
	assert.Equal(t, domain.ShipmentDelivered, delivered.Status)
	assert.Equal(t, uint64(105), delivered.ActualDelivery)
	assert.Equal(t, uint8(93), delivered.QualityCheck)

	_, err = f.reg.UpdateShipmentStatus(ctx, owner, UpdateShipmentStatusInput{ShipmentID: shipment.ID, Status: "cancelled"})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := f.reg.GetShipment(ctx, shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ShipmentDelivered, got.Status)
	assert.Equal(t, shipment.TrackingHash, got.TrackingHash)
}

func TestUpdateShipmentStatusDelayedKeepsDeliveryUnset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Dependencies{})
	s := f.supplier(t)
	p := f.product(t, s.ID)
	shipment, err := f.reg.CreateShipment(ctx, "clerk", CreateShipmentInput{ProductID: p.ID, SupplierID: s.ID})
	require.NoError(t, err)

	delayed, err := f.reg.UpdateShipmentStatus(ctx, owner, UpdateShipmentStatusInput{ShipmentID: shipment.ID, Status: "DELAYED", QualityCheck: 50})
	require.NoError(t, err)
	assert.Equal(t, domain.ShipmentDelayed, delayed.Status)
	assert.Zero(t, delayed.ActualDelivery)
	assert.Zero(t, delayed.QualityCheck)
}

func TestUpdateDemandPrediction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Dependencies{})
	p := f.product(t, f.supplier(t).ID)

	_, err := f.reg.UpdateDemandPrediction(ctx, "analyst", UpdatePredictionInput{ProductID: p.ID, Period: 1, PredictedDemand: 100, ConfidenceLevel: 79})
	require.ErrorIs(t, err, domain.ErrPredictionBelowThreshold)

	_, err = f.reg.UpdateDemandPrediction(ctx, "analyst", UpdatePredictionInput{ProductID: p.ID, Period: 1, PredictedDemand: 100, ConfidenceLevel: 256})
	require.ErrorIs(t, err, domain.ErrInvalidData)

	_, err = f.reg.UpdateDemandPrediction(ctx, "analyst", UpdatePredictionInput{ProductID: 99, Period: 1, PredictedDemand: 100, ConfidenceLevel: 90})
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	f.clock.Advance(6)
	updated, err := f.reg.UpdateDemandPrediction(ctx, "analyst", UpdatePredictionInput{ProductID: p.ID, Period: 1, PredictedDemand: 100, ConfidenceLevel: 80})
	require.NoError(t, err)
	assert.Equal(t, uint64(100), updated.DemandForecast)
	assert.Equal(t, uint64(120), updated.OptimalInventory)
	assert.Equal(t, uint64(106), updated.LastUpdated)

	prediction, err := f.reg.GetPrediction(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(80), prediction.ConfidenceLevel)

	_, err = f.reg.GetPrediction(ctx, p.ID, 2)
	assert.ErrorIs(t, err, domain.ErrPredictionNotFound)
}

func TestGetSupplierView(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Dependencies{})
	s := f.supplier(t)

	view, err := f.reg.GetSupplier(ctx, s.ID)
	require.NoError(t, err)
	// 80*40/100 + 88*35/100 + 70*25/100
	assert.Equal(t, uint64(32+30+17), view.Score)
	assert.Equal(t, domain.RiskLow, view.RiskTier)

	_, err = f.reg.GetSupplier(ctx, 77)
	assert.ErrorIs(t, err, domain.ErrSupplierNotFound)

	_, err = f.reg.GetProduct(ctx, 77)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

type failingArchive struct {
	calls int
}

func (a *failingArchive) Archive(ctx context.Context, report *domain.OptimizationReport) (string, error) {
	a.calls++
	return "", errors.New("bucket unavailable")
}

func (a *failingArchive) Load(ctx context.Context, cycleNumber uint64) (*domain.OptimizationReport, error) {
	return nil, errors.New("bucket unavailable")
}

func (a *failingArchive) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	return nil, errors.New("bucket unavailable")
}

func TestRunOptimizationCycle(t *testing.T) {
	ctx := context.Background()
	archive := &failingArchive{}
	f := newFixture(t, Dependencies{Archive: archive})
	s := f.supplier(t)
	p := f.product(t, s.ID)
	_, err := f.reg.CreateShipment(ctx, "clerk", CreateShipmentInput{ProductID: p.ID, SupplierID: s.ID, Cost: 1000})
	require.NoError(t, err)

	_, err = f.reg.LatestReport(ctx)
	require.ErrorIs(t, err, domain.ErrReportNotFound)

	_, err = f.reg.RunOptimizationCycle(ctx, "intruder", RunCycleInput{})
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	report, err := f.reg.RunOptimizationCycle(ctx, owner, RunCycleInput{
		Scope:   "weekly",
		Toggles: domain.CycleToggles{SupplierOptimization: true, AutoReorder: true},
	})
	require.NoError(t, err, "archive failures must not fail the cycle")
	assert.Equal(t, 1, archive.calls)
	assert.Equal(t, uint64(1), report.CycleNumber)
	assert.Equal(t, uint64(100), report.CycleID)
	assert.Equal(t, uint64(1108), report.NextCycle)
	assert.Equal(t, uint64(150), report.Impact.ProjectedCostSavings)
	require.Len(t, report.SupplierOptimization.TopSuppliers, 1)
	assert.False(t, report.DemandAnalytics.Enabled)

	latest, err := f.reg.LatestReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, report, latest)

	stats, err := f.reg.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.OptimizationCycles)

	byNumber, err := f.reg.CycleReport(ctx, report.CycleNumber)
	require.NoError(t, err)
	assert.Equal(t, report, byNumber)

	_, err = f.reg.CycleReport(ctx, report.CycleNumber+1)
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestNewRegistryRequiresStore(t *testing.T) {
	_, err := NewRegistry(config.DefaultEngineConfig(), Dependencies{})
	assert.Error(t, err)
}
