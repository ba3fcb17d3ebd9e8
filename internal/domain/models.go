// internal/domain/models.go
package domain

import "time"

// Field limits for registry records.
const (
	MaxNameLength     = 50
	MaxCategoryLength = 30
	MaxPercentage     = 100
)

// Supplier represents a registered supplier and its performance attributes
type Supplier struct {
	ID                  uint64   `json:"id" db:"id"`
	Name                string   `json:"name" db:"name"`
	Reliability         uint8    `json:"reliability" db:"reliability"`
	Quality             uint8    `json:"quality" db:"quality"`
	CostEfficiency      uint8    `json:"cost_efficiency" db:"cost_efficiency"`
	DeliveryPerformance uint8    `json:"delivery_performance" db:"delivery_performance"`
	RiskTier            RiskTier `json:"risk_tier" db:"risk_tier"`
	TotalOrders         uint64   `json:"total_orders" db:"total_orders"`
	Active              bool     `json:"active" db:"active"`
	RegisteredAt        uint64   `json:"registered_at" db:"registered_at"`
}

// Product represents a tracked product and its inventory targets
type Product struct {
	ID               uint64 `json:"id" db:"id"`
	Name             string `json:"name" db:"name"`
	Category         string `json:"category" db:"category"`
	CurrentInventory uint64 `json:"current_inventory" db:"current_inventory"`
	OptimalInventory uint64 `json:"optimal_inventory" db:"optimal_inventory"`
	UnitCost         uint64 `json:"unit_cost" db:"unit_cost"`
	QualityScore     uint8  `json:"quality_score" db:"quality_score"`
	DemandForecast   uint64 `json:"demand_forecast" db:"demand_forecast"`
	LastUpdated      uint64 `json:"last_updated" db:"last_updated"`
	SupplierID       uint64 `json:"supplier_id" db:"supplier_id"`
}

// Shipment represents goods moving from a supplier for a product.
// ActualDelivery and QualityCheck use 0 as "not yet happened".
type Shipment struct {
	ID               uint64         `json:"id" db:"id"`
	ProductID        uint64         `json:"product_id" db:"product_id"`
	SupplierID       uint64         `json:"supplier_id" db:"supplier_id"`
	Quantity         uint64         `json:"quantity" db:"quantity"`
	ExpectedDelivery uint64         `json:"expected_delivery" db:"expected_delivery"`
	ActualDelivery   uint64         `json:"actual_delivery" db:"actual_delivery"`
	QualityCheck     uint8          `json:"quality_check" db:"quality_check"`
	Cost             uint64         `json:"cost" db:"cost"`
	Status           ShipmentStatus `json:"status" db:"status"`
	TrackingHash     TrackingHash   `json:"tracking_hash" db:"tracking_hash"`
}

// DemandPrediction is the accepted forecast for a product in a period
type DemandPrediction struct {
	ProductID          uint64 `json:"product_id" db:"product_id"`
	Period             uint64 `json:"period" db:"period"`
	PredictedDemand    uint64 `json:"predicted_demand" db:"predicted_demand"`
	ConfidenceLevel    uint8  `json:"confidence_level" db:"confidence_level"`
	SeasonalFactor     uint64 `json:"seasonal_factor" db:"seasonal_factor"`
	MarketTrends       uint64 `json:"market_trends" db:"market_trends"`
	HistoricalAccuracy uint64 `json:"historical_accuracy" db:"historical_accuracy"`
	ModelVersion       string `json:"model_version" db:"model_version"`
}

// PredictionKey identifies a DemandPrediction
type PredictionKey struct {
	ProductID uint64
	Period    uint64
}

// Key returns the composite key of the prediction
func (p *DemandPrediction) Key() PredictionKey {
	return PredictionKey{ProductID: p.ProductID, Period: p.Period}
}

// RegistryStats holds the process-wide counters
type RegistryStats struct {
	Suppliers             uint64    `json:"suppliers"`
	Products              uint64    `json:"products"`
	Shipments             uint64    `json:"shipments"`
	TotalSupplyChainValue uint64    `json:"total_supply_chain_value"`
	OptimizationCycles    uint64    `json:"optimization_cycles"`
	ReadAt                time.Time `json:"read_at"`
}
