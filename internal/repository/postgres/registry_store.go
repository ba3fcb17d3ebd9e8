package postgres

import (
	"context"
	"database/sql"

	"github.com/andresuchdata/supplychain-engine/internal/domain"
	"github.com/andresuchdata/supplychain-engine/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const (
	supplierColumns = `id, name, reliability, quality, cost_efficiency, delivery_performance,
		risk_tier, total_orders, active, registered_at`
	productColumns = `id, name, category, current_inventory, optimal_inventory, unit_cost,
		quality_score, demand_forecast, last_updated, supplier_id`
	shipmentColumns = `id, product_id, supplier_id, quantity, expected_delivery, actual_delivery,
		quality_check, cost, status, tracking_hash`
	predictionColumns = `product_id, period, predicted_demand, confidence_level, seasonal_factor,
		market_trends, historical_accuracy, model_version`
)

// registry implements repository.Registry over a pool or a transaction
type registry struct {
	q sqlx.ExtContext
}

// Store is the Postgres-backed registry store
type Store struct {
	registry
	db *DB
}

func NewStore(db *DB) *Store {
	return &Store{registry: registry{q: db}, db: db}
}

var (
	_ repository.RegistryStore = (*Store)(nil)
	_ repository.Registry      = (*registry)(nil)
)

func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Registry) error) error {
	return s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&registry{q: tx})
	})
}

func (r *registry) GetSupplier(ctx context.Context, id uint64) (*domain.Supplier, bool, error) {
	var supplier domain.Supplier
	err := sqlx.GetContext(ctx, r.q, &supplier, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "get supplier %d", id)
	}
	return &supplier, true, nil
}

func (r *registry) ListSuppliers(ctx context.Context) ([]*domain.Supplier, error) {
	suppliers := []*domain.Supplier{}
	if err := sqlx.SelectContext(ctx, r.q, &suppliers, `SELECT `+supplierColumns+` FROM suppliers ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "list suppliers")
	}
	return suppliers, nil
}

func (r *registry) PutSupplier(ctx context.Context, supplier *domain.Supplier) error {
	query := `
		INSERT INTO suppliers (` + supplierColumns + `)
		VALUES (:id, :name, :reliability, :quality, :cost_efficiency, :delivery_performance,
			:risk_tier, :total_orders, :active, :registered_at)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			reliability = EXCLUDED.reliability,
			quality = EXCLUDED.quality,
			cost_efficiency = EXCLUDED.cost_efficiency,
			delivery_performance = EXCLUDED.delivery_performance,
			risk_tier = EXCLUDED.risk_tier,
			total_orders = EXCLUDED.total_orders,
			active = EXCLUDED.active,
			updated_at = NOW()
	`
	if _, err := sqlx.NamedExecContext(ctx, r.q, query, supplier); err != nil {
		return errors.Wrapf(err, "put supplier %d", supplier.ID)
	}
	return nil
}

func (r *registry) GetProduct(ctx context.Context, id uint64) (*domain.Product, bool, error) {
	var product domain.Product
	err := sqlx.GetContext(ctx, r.q, &product, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "get product %d", id)
	}
	return &product, true, nil
}

func (r *registry) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	products := []*domain.Product{}
	if err := sqlx.SelectContext(ctx, r.q, &products, `SELECT `+productColumns+` FROM products ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return products, nil
}

func (r *registry) PutProduct(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES (:id, :name, :category, :current_inventory, :optimal_inventory, :unit_cost,
			:quality_score, :demand_forecast, :last_updated, :supplier_id)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			current_inventory = EXCLUDED.current_inventory,
			optimal_inventory = EXCLUDED.optimal_inventory,
			unit_cost = EXCLUDED.unit_cost,
			quality_score = EXCLUDED.quality_score,
			demand_forecast = EXCLUDED.demand_forecast,
			last_updated = EXCLUDED.last_updated,
			updated_at = NOW()
	`
	if _, err := sqlx.NamedExecContext(ctx, r.q, query, product); err != nil {
		return errors.Wrapf(err, "put product %d", product.ID)
	}
	return nil
}

func (r *registry) GetShipment(ctx context.Context, id uint64) (*domain.Shipment, bool, error) {
	var shipment domain.Shipment
	err := sqlx.GetContext(ctx, r.q, &shipment, `SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "get shipment %d", id)
	}
	return &shipment, true, nil
}

func (r *registry) PutShipment(ctx context.Context, shipment *domain.Shipment) error {
	query := `
		INSERT INTO shipments (` + shipmentColumns + `)
		VALUES (:id, :product_id, :supplier_id, :quantity, :expected_delivery, :actual_delivery,
			:quality_check, :cost, :status, :tracking_hash)
		ON CONFLICT (id) DO UPDATE SET
			actual_delivery = EXCLUDED.actual_delivery,
			quality_check = EXCLUDED.quality_check,
			status = EXCLUDED.status
	`
	if _, err := sqlx.NamedExecContext(ctx, r.q, query, shipment); err != nil {
		return errors.Wrapf(err, "put shipment %d", shipment.ID)
	}
	return nil
}

func (r *registry) GetPrediction(ctx context.Context, key domain.PredictionKey) (*domain.DemandPrediction, bool, error) {
	var prediction domain.DemandPrediction
	err := sqlx.GetContext(ctx, r.q, &prediction,
		`SELECT `+predictionColumns+` FROM demand_predictions WHERE product_id = $1 AND period = $2`,
		key.ProductID, key.Period)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "get prediction %d/%d", key.ProductID, key.Period)
	}
	return &prediction, true, nil
}

func (r *registry) PutPrediction(ctx context.Context, prediction *domain.DemandPrediction) error {
	query := `
		INSERT INTO demand_predictions (` + predictionColumns + `)
		VALUES (:product_id, :period, :predicted_demand, :confidence_level, :seasonal_factor,
			:market_trends, :historical_accuracy, :model_version)
		ON CONFLICT (product_id, period) DO UPDATE SET
			predicted_demand = EXCLUDED.predicted_demand,
			confidence_level = EXCLUDED.confidence_level,
			seasonal_factor = EXCLUDED.seasonal_factor,
			market_trends = EXCLUDED.market_trends,
			historical_accuracy = EXCLUDED.historical_accuracy,
			model_version = EXCLUDED.model_version,
			updated_at = NOW()
	`
	if _, err := sqlx.NamedExecContext(ctx, r.q, query, prediction); err != nil {
		return errors.Wrapf(err, "put prediction %d/%d", prediction.ProductID, prediction.Period)
	}
	return nil
}

func (r *registry) ListPredictions(ctx context.Context) ([]*domain.DemandPrediction, error) {
	predictions := []*domain.DemandPrediction{}
	err := sqlx.SelectContext(ctx, r.q, &predictions,
		`SELECT `+predictionColumns+` FROM demand_predictions ORDER BY product_id, period`)
	if err != nil {
		return nil, errors.Wrap(err, "list predictions")
	}
	return predictions, nil
}

func (r *registry) NextID(ctx context.Context, counter repository.Counter) (uint64, error) {
	return r.Add(ctx, counter, 1)
}

func (r *registry) Count(ctx context.Context, counter repository.Counter) (uint64, error) {
	var value uint64
	err := sqlx.GetContext(ctx, r.q, &value, `SELECT value FROM registry_counters WHERE name = $1`, string(counter))
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "read counter %s", counter)
	}
	return value, nil
}

// Add advances a counter with a single row-locking statement
func (r *registry) Add(ctx context.Context, counter repository.Counter, delta uint64) (uint64, error) {
	var value uint64
	err := sqlx.GetContext(ctx, r.q, &value, `
		INSERT INTO registry_counters (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = registry_counters.value + EXCLUDED.value
		RETURNING value
	`, string(counter), delta)
	if err != nil {
		return 0, errors.Wrapf(err, "advance counter %s", counter)
	}
	return value, nil
}
