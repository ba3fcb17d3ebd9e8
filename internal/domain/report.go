package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CycleToggles selects which sub-analyses an optimization cycle runs
type CycleToggles struct {
	DemandAnalytics      bool `json:"enable_demand_analytics"`
	AutoReorder          bool `json:"enable_auto_reorder"`
	SupplierOptimization bool `json:"enable_supplier_optimization"`
	RiskMitigation       bool `json:"enable_risk_mitigation"`
}

// OptimizationReport is the composite output of one optimization cycle.
// Every section is always present; disabled sections are zeroed.
type OptimizationReport struct {
	CycleID              uint64                     `json:"cycle_id"`
	CycleNumber          uint64                     `json:"cycle_number"`
	Scope                string                     `json:"scope"`
	Toggles              CycleToggles               `json:"toggles"`
	DemandAnalytics      DemandAnalyticsReport      `json:"demand_analytics"`
	SupplierOptimization SupplierOptimizationReport `json:"supplier_optimization"`
	InventoryReorder     InventoryReorderReport     `json:"inventory_reorder"`
	RiskMitigation       RiskMitigationReport       `json:"risk_mitigation"`
	Impact               ImpactProjections          `json:"impact"`
	NextCycle            uint64                     `json:"next_cycle"`
	ConfidenceScore      uint8                      `json:"confidence_score"`
	GeneratedAt          time.Time                  `json:"generated_at"`
}

// SeasonalIndex is a per-quarter demand multiplier (100 = neutral)
type SeasonalIndex struct {
	Quarter string `json:"quarter"`
	Index   uint64 `json:"index"`
}

// MarketIndicator is a named market figure (100 = neutral)
type MarketIndicator struct {
	Name  string `json:"name"`
	Value uint64 `json:"value"`
}

// ModelConfidence summarizes forecast quality
type ModelConfidence struct {
	Accuracy       uint64  `json:"accuracy"`
	Confidence     uint64  `json:"confidence"`
	Predictions    uint64  `json:"predictions"`
	MeanDemand     float64 `json:"mean_demand"`
	DemandStdDev   float64 `json:"demand_std_dev"`
	MeanConfidence float64 `json:"mean_confidence"`
}

type DemandAnalyticsReport struct {
	Enabled          bool              `json:"enabled"`
	Live             bool              `json:"live"`
	SeasonalIndices  []SeasonalIndex   `json:"seasonal_indices"`
	MarketIndicators []MarketIndicator `json:"market_indicators"`
	ModelConfidence  ModelConfidence   `json:"model_confidence"`
}

// RankedSupplier is one entry of the supplier ranking
type RankedSupplier struct {
	SupplierID uint64   `json:"supplier_id"`
	Name       string   `json:"name"`
	Score      uint64   `json:"score"`
	RiskTier   RiskTier `json:"risk_tier"`
}

// TierBucket groups suppliers by an attribute band
type TierBucket struct {
	Tier            string          `json:"tier"`
	Suppliers       uint64          `json:"suppliers"`
	AverageUnitCost decimal.Decimal `json:"average_unit_cost"`
}

type DeliveryReliability struct {
	AverageDelivery    uint64 `json:"average_delivery"`
	AverageReliability uint64 `json:"average_reliability"`
	ReliableSuppliers  uint64 `json:"reliable_suppliers"`
}

type RiskBuckets struct {
	Low      uint64 `json:"low"`
	Moderate uint64 `json:"moderate"`
	High     uint64 `json:"high"`
}

type SupplierOptimizationReport struct {
	Enabled             bool                `json:"enabled"`
	Live                bool                `json:"live"`
	TopSuppliers        []RankedSupplier    `json:"top_suppliers"`
	CostTiers           []TierBucket        `json:"cost_tiers"`
	QualityTiers        []TierBucket        `json:"quality_tiers"`
	DeliveryReliability DeliveryReliability `json:"delivery_reliability"`
	RiskBuckets         RiskBuckets         `json:"risk_buckets"`
}

// ReorderRecommendation asks for stock to bring a product to its target
type ReorderRecommendation struct {
	ProductID        uint64  `json:"product_id"`
	Name             string  `json:"name"`
	SupplierID       uint64  `json:"supplier_id"`
	CurrentInventory uint64  `json:"current_inventory"`
	OptimalInventory uint64  `json:"optimal_inventory"`
	ReorderQuantity  uint64  `json:"reorder_quantity"`
	EstimatedCost    uint64  `json:"estimated_cost"`
	Urgency          Urgency `json:"urgency"`
}

type InventoryReorderReport struct {
	Enabled              bool                    `json:"enabled"`
	ProductsEvaluated    uint64                  `json:"products_evaluated"`
	Recommendations      []ReorderRecommendation `json:"recommendations"`
	TotalReorderQuantity uint64                  `json:"total_reorder_quantity"`
	TotalEstimatedCost   uint64                  `json:"total_estimated_cost"`
}

// MitigationAction is a recommended risk-mitigation template
type MitigationAction struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type RiskMitigationReport struct {
	Enabled             bool               `json:"enabled"`
	Live                bool               `json:"live"`
	SuppliersAtRisk     uint64             `json:"suppliers_at_risk"`
	Actions             []MitigationAction `json:"actions"`
	QualityImprovement  uint64             `json:"quality_improvement"`
	CostReduction       uint64             `json:"cost_reduction"`
	DeliveryImprovement uint64             `json:"delivery_improvement"`
}

// ImpactProjections are fixed-percentage projections over the supply chain value
type ImpactProjections struct {
	CurrentValue            uint64 `json:"current_value"`
	ProjectedCostSavings    uint64 `json:"projected_cost_savings"`
	QualityImprovementValue uint64 `json:"quality_improvement_value"`
	DeliveryPerformanceGain uint64 `json:"delivery_performance_gain"`
}
