package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/supplychain-engine/internal/access"
	"github.com/andresuchdata/supplychain-engine/internal/cache"
	"github.com/andresuchdata/supplychain-engine/internal/clock"
	"github.com/andresuchdata/supplychain-engine/internal/config"
	"github.com/andresuchdata/supplychain-engine/internal/domain"
	"github.com/andresuchdata/supplychain-engine/internal/forecast"
	"github.com/andresuchdata/supplychain-engine/internal/inventory"
	"github.com/andresuchdata/supplychain-engine/internal/optimization"
	"github.com/andresuchdata/supplychain-engine/internal/repository"
	"github.com/andresuchdata/supplychain-engine/internal/scoring"
	"github.com/andresuchdata/supplychain-engine/internal/storage"
	"github.com/andresuchdata/supplychain-engine/internal/tracking"
	"github.com/rs/zerolog/log"
)

// Dependencies are the collaborators a Registry is built from. Cache and
// Archive default to no-ops.
type Dependencies struct {
	Store   repository.RegistryStore
	Clock   clock.Clock
	Cache   cache.ReportCache
	Archive storage.ReportArchive
}

// Registry exposes the registry operations. Every call is serialized.
type Registry struct {
	mu sync.Mutex

	store      repository.RegistryStore
	clock      clock.Clock
	principals *access.Principals
	scorer     *scoring.Scorer
	optimizer  *inventory.Optimizer
	forecasts  *forecast.Updater
	cycles     *optimization.Orchestrator
	cache      cache.ReportCache
	archive    storage.ReportArchive

	latest *domain.OptimizationReport
}

// SupplierView is a supplier with its live composite score
type SupplierView struct {
	*domain.Supplier
	Score uint64 `json:"score"`
}

func NewRegistry(cfg config.EngineConfig, deps Dependencies) (*Registry, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("registry store is required")
	}
	scorer, err := scoring.NewScorer(cfg.Scoring)
	if err != nil {
		return nil, err
	}

	clk := deps.Clock
	if clk == nil {
		clk = clock.NewTickClock(cfg.Genesis, cfg.TickInterval)
	}
	reportCache := deps.Cache
	if reportCache == nil {
		reportCache = cache.NewNoopReportCache()
	}
	archive := deps.Archive
	if archive == nil {
		archive = storage.NewNoopArchive()
	}

	optimizer := inventory.NewOptimizer(cfg.SafetyStockPercent)

	return &Registry{
		store:      deps.Store,
		clock:      clk,
		principals: access.NewPrincipals(cfg.Owners),
		scorer:     scorer,
		optimizer:  optimizer,
		forecasts:  forecast.NewUpdater(deps.Store, optimizer, clk, cfg.ConfidenceThreshold, cfg.ModelVersion),
		cycles:     optimization.NewOrchestrator(deps.Store, scorer, clk, cfg),
		cache:      reportCache,
		archive:    archive,
	}, nil
}

// RegisterSupplier is owner-only
func (r *Registry) RegisterSupplier(ctx context.Context, caller string, in RegisterSupplierInput) (*domain.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.principals.RequireOwner(caller, "register supplier"); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	supplier := &domain.Supplier{
		Name:                in.Name,
		Reliability:         uint8(in.Reliability),
		Quality:             uint8(in.Quality),
		CostEfficiency:      uint8(in.CostEfficiency),
		DeliveryPerformance: uint8(in.DeliveryPerformance),
		Active:              true,
		RegisteredAt:        r.clock.Now(),
	}
	supplier.RiskTier = r.scorer.ClassifyRisk(supplier)

	err := r.store.WithTx(ctx, func(tx repository.Registry) error {
		id, err := tx.NextID(ctx, repository.CounterSupplierID)
		if err != nil {
			return fmt.Errorf("allocate supplier id: %w", err)
		}
		supplier.ID = id
		return tx.PutSupplier(ctx, supplier)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint64("supplier_id", supplier.ID).
		Str("caller", caller).
		Str("risk_tier", string(supplier.RiskTier)).
		Msg("supplier registered")

	return supplier, nil
}

func (r *Registry) AddProduct(ctx context.Context, caller string, in AddProductInput) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := in.validate(); err != nil {
		return nil, err
	}

	var product *domain.Product
	err := r.store.WithTx(ctx, func(tx repository.Registry) error {
		supplier, ok, err := tx.GetSupplier(ctx, in.SupplierID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("supplier %d: %w", in.SupplierID, domain.ErrSupplierNotFound)
		}

		id, err := tx.NextID(ctx, repository.CounterProductID)
		if err != nil {
			return fmt.Errorf("allocate product id: %w", err)
		}

		if err := tx.PutProduct(ctx, &domain.Product{
			ID:               id,
			Name:             in.Name,
			Category:         in.Category,
			CurrentInventory: in.InitialInventory,
			UnitCost:         in.UnitCost,
			QualityScore:     supplier.Quality,
			LastUpdated:      r.clock.Now(),
			SupplierID:       supplier.ID,
		}); err != nil {
			return err
		}
		if _, err := r.optimizer.RecomputeOptimalInventory(ctx, tx, id); err != nil {
			return err
		}

		product, _, err = tx.GetProduct(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint64("product_id", product.ID).
		Uint64("supplier_id", product.SupplierID).
		Str("caller", caller).
		Msg("product added")

	return product, nil
}

// CreateShipment records an in-transit shipment, counts it as an order
// for the supplier and adds its cost to the supply chain value.
func (r *Registry) CreateShipment(ctx context.Context, caller string, in CreateShipmentInput) (*domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var shipment *domain.Shipment
	err := r.store.WithTx(ctx, func(tx repository.Registry) error {
		_, ok, err := tx.GetProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("product %d: %w", in.ProductID, domain.ErrProductNotFound)
		}
		supplier, ok, err := tx.GetSupplier(ctx, in.SupplierID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("supplier %d: %w", in.SupplierID, domain.ErrSupplierNotFound)
		}

		id, err := tx.NextID(ctx, repository.CounterShipmentID)
		if err != nil {
			return fmt.Errorf("allocate shipment id: %w", err)
		}

		shipment = &domain.Shipment{
			ID:               id,
			ProductID:        in.ProductID,
			SupplierID:       in.SupplierID,
			Quantity:         in.Quantity,
			ExpectedDelivery: in.ExpectedDelivery,
			Cost:             in.Cost,
			Status:           domain.ShipmentInTransit,
			TrackingHash:     tracking.Digest(id),
		}
		if err := tx.PutShipment(ctx, shipment); err != nil {
			return err
		}

		supplier.TotalOrders++
		if err := tx.PutSupplier(ctx, supplier); err != nil {
			return err
		}

		if _, err := tx.Add(ctx, repository.CounterSupplyChainValue, in.Cost); err != nil {
			return fmt.Errorf("add supply chain value: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint64("shipment_id", shipment.ID).
		Uint64("product_id", shipment.ProductID).
		Uint64("cost", shipment.Cost).
		Str("tracking_hash", shipment.TrackingHash.String()).
		Str("caller", caller).
		Msg("shipment created")

	return shipment, nil
}

// UpdateShipmentStatus moves an in-transit shipment to a final status.
// Delivery stamps the current tick and records the quality check.
func (r *Registry) UpdateShipmentStatus(ctx context.Context, caller string, in UpdateShipmentStatusInput) (*domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.principals.RequireOwner(caller, "update shipment status"); err != nil {
		return nil, err
	}
	next, err := in.validate()
	if err != nil {
		return nil, err
	}

	var shipment *domain.Shipment
	err = r.store.WithTx(ctx, func(tx repository.Registry) error {
		current, ok, err := tx.GetShipment(ctx, in.ShipmentID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("shipment %d: %w", in.ShipmentID, domain.ErrShipmentNotFound)
		}
		if !current.Status.CanTransition(next) {
			return fmt.Errorf("shipment %d from %s to %s: %w", current.ID, current.Status, next, domain.ErrInvalidTransition)
		}

		current.Status = next
		if next == domain.ShipmentDelivered {
			current.ActualDelivery = r.clock.Now()
			current.QualityCheck = uint8(in.QualityCheck)
		}
		shipment = current
		return tx.PutShipment(ctx, current)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint64("shipment_id", shipment.ID).
		Str("status", string(shipment.Status)).
		Str("caller", caller).
		Msg("shipment status updated")

	return shipment, nil
}

func (r *Registry) UpdateDemandPrediction(ctx context.Context, caller string, in UpdatePredictionInput) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := validatePercent("confidence_level", in.ConfidenceLevel); err != nil {
		return nil, err
	}

	product, err := r.forecasts.UpdateForecast(ctx, forecast.Update{
		ProductID:       in.ProductID,
		Period:          in.Period,
		PredictedDemand: in.PredictedDemand,
		ConfidenceLevel: uint8(in.ConfidenceLevel),
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint64("product_id", in.ProductID).
		Uint64("period", in.Period).
		Str("caller", caller).
		Msg("demand prediction updated")

	return product, nil
}

// RunOptimizationCycle is owner-only. The report is cached and archived
// after the cycle commits; failures there are logged and not returned.
func (r *Registry) RunOptimizationCycle(ctx context.Context, caller string, in RunCycleInput) (*domain.OptimizationReport, error) {
	report, err := r.runCycle(ctx, caller, in)
	if err != nil {
		return nil, err
	}
	r.publish(ctx, report)
	return report, nil
}

func (r *Registry) runCycle(ctx context.Context, caller string, in RunCycleInput) (*domain.OptimizationReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.principals.RequireOwner(caller, "run optimization cycle"); err != nil {
		return nil, err
	}

	report, err := r.cycles.Run(ctx, optimization.Request{Scope: in.Scope, Toggles: in.Toggles})
	if err != nil {
		return nil, err
	}
	r.latest = report
	return report, nil
}

func (r *Registry) publish(ctx context.Context, report *domain.OptimizationReport) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := r.cache.SetLatest(ctx, report); err != nil {
		log.Warn().Err(err).Uint64("cycle_number", report.CycleNumber).Msg("cache optimization report failed")
	}

	key, err := r.archive.Archive(ctx, report)
	if err != nil {
		log.Warn().Err(err).Uint64("cycle_number", report.CycleNumber).Msg("archive optimization report failed")
		return
	}
	if key != "" {
		log.Debug().Str("key", key).Msg("optimization report archived")
	}
}

// GetSupplier returns the supplier with its live score and risk tier
func (r *Registry) GetSupplier(ctx context.Context, id uint64) (*SupplierView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	supplier, ok, err := r.store.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("supplier %d: %w", id, domain.ErrSupplierNotFound)
	}
	supplier.RiskTier = r.scorer.ClassifyRisk(supplier)

	return &SupplierView{Supplier: supplier, Score: r.scorer.Score(supplier)}, nil
}

func (r *Registry) GetProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok, err := r.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrProductNotFound)
	}
	return product, nil
}

func (r *Registry) GetShipment(ctx context.Context, id uint64) (*domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	shipment, ok, err := r.store.GetShipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("shipment %d: %w", id, domain.ErrShipmentNotFound)
	}
	return shipment, nil
}

func (r *Registry) GetPrediction(ctx context.Context, productID, period uint64) (*domain.DemandPrediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prediction, ok, err := r.store.GetPrediction(ctx, domain.PredictionKey{ProductID: productID, Period: period})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("prediction %d/%d: %w", productID, period, domain.ErrPredictionNotFound)
	}
	return prediction, nil
}

// Stats reads every registry counter
func (r *Registry) Stats(ctx context.Context) (*domain.RegistryStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	values := make(map[repository.Counter]uint64, len(repository.Counters))
	for _, counter := range repository.Counters {
		v, err := r.store.Count(ctx, counter)
		if err != nil {
			return nil, fmt.Errorf("read counter %s: %w", counter, err)
		}
		values[counter] = v
	}

	return &domain.RegistryStats{
		Suppliers:             values[repository.CounterSupplierID],
		Products:              values[repository.CounterProductID],
		Shipments:             values[repository.CounterShipmentID],
		TotalSupplyChainValue: values[repository.CounterSupplyChainValue],
		OptimizationCycles:    values[repository.CounterOptimizationCycles],
		ReadAt:                time.Now().UTC(),
	}, nil
}

// LatestReport prefers the shared cache and falls back to the last report
// produced by this process.
func (r *Registry) LatestReport(ctx context.Context) (*domain.OptimizationReport, error) {
	report, ok, err := r.cache.GetLatest(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("read cached optimization report failed")
	}
	if ok {
		return report, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latest == nil {
		return nil, domain.ErrReportNotFound
	}
	return r.latest, nil
}

// CycleReport looks a past report up in the cache, the last report of this
// process, then the archive.
func (r *Registry) CycleReport(ctx context.Context, cycleNumber uint64) (*domain.OptimizationReport, error) {
	report, ok, err := r.cache.GetCycle(ctx, cycleNumber)
	if err != nil {
		log.Warn().Err(err).Uint64("cycle_number", cycleNumber).Msg("read cached optimization report failed")
	}
	if ok {
		return report, nil
	}

	r.mu.Lock()
	latest := r.latest
	r.mu.Unlock()
	if latest != nil && latest.CycleNumber == cycleNumber {
		return latest, nil
	}

	report, err = r.archive.Load(ctx, cycleNumber)
	if err != nil {
		log.Debug().Err(err).Uint64("cycle_number", cycleNumber).Msg("archived report unavailable")
		return nil, fmt.Errorf("cycle %d: %w", cycleNumber, domain.ErrReportNotFound)
	}
	return report, nil
}

// OptimizationState reports whether a cycle is running
func (r *Registry) OptimizationState() optimization.State {
	return r.cycles.State()
}
