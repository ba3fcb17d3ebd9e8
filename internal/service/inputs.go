package service

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/supplychain-engine/internal/domain"
)

// Inputs carry raw caller values; percentages are wider than uint8 so
// out-of-range values are rejected instead of wrapped.

type RegisterSupplierInput struct {
	Name                string `json:"name"`
	Reliability         uint64 `json:"reliability"`
	Quality             uint64 `json:"quality"`
	CostEfficiency      uint64 `json:"cost_efficiency"`
	DeliveryPerformance uint64 `json:"delivery_performance"`
}

func (in RegisterSupplierInput) validate() error {
	if err := validateName("name", in.Name, domain.MaxNameLength); err != nil {
		return err
	}
	for field, v := range map[string]uint64{
		"reliability":          in.Reliability,
		"quality":              in.Quality,
		"cost_efficiency":      in.CostEfficiency,
		"delivery_performance": in.DeliveryPerformance,
	} {
		if err := validatePercent(field, v); err != nil {
			return err
		}
	}
	return nil
}

type UpdateShipmentStatusInput struct {
	ShipmentID   uint64 `json:"-"`
	Status       string `json:"status"`
	QualityCheck uint64 `json:"quality_check"`
}

func (in UpdateShipmentStatusInput) validate() (domain.ShipmentStatus, error) {
	status, err := domain.ParseShipmentStatus(in.Status)
	if err != nil {
		return "", err
	}
	if err := validatePercent("quality_check", in.QualityCheck); err != nil {
		return "", err
	}
	return status, nil
}

type AddProductInput struct {
	Name             string `json:"name"`
	Category         string `json:"category"`
	InitialInventory uint64 `json:"initial_inventory"`
	UnitCost         uint64 `json:"unit_cost"`
	SupplierID       uint64 `json:"supplier_id"`
}

func (in AddProductInput) validate() error {
	if err := validateName("name", in.Name, domain.MaxNameLength); err != nil {
		return err
	}
	if len(in.Category) > domain.MaxCategoryLength {
		return fmt.Errorf("category longer than %d characters: %w", domain.MaxCategoryLength, domain.ErrInvalidData)
	}
	return nil
}

type CreateShipmentInput struct {
	ProductID        uint64 `json:"product_id"`
	SupplierID       uint64 `json:"supplier_id"`
	Quantity         uint64 `json:"quantity"`
	ExpectedDelivery uint64 `json:"expected_delivery"`
	Cost             uint64 `json:"cost"`
}

type UpdatePredictionInput struct {
	ProductID       uint64 `json:"product_id"`
	Period          uint64 `json:"period"`
	PredictedDemand uint64 `json:"predicted_demand"`
	ConfidenceLevel uint64 `json:"confidence_level"`
}

type RunCycleInput struct {
	Scope   string              `json:"scope"`
	Toggles domain.CycleToggles `json:"toggles"`
}

func validateName(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required: %w", field, domain.ErrInvalidData)
	}
	if len(value) > max {
		return fmt.Errorf("%s longer than %d characters: %w", field, max, domain.ErrInvalidData)
	}
	return nil
}

func validatePercent(field string, value uint64) error {
	if value > domain.MaxPercentage {
		return fmt.Errorf("%s %d exceeds %d: %w", field, value, domain.MaxPercentage, domain.ErrInvalidData)
	}
	return nil
}
