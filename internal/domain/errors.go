package domain

import "errors"

var (
	ErrUnauthorized             = errors.New("unauthorized")
	ErrInvalidData              = errors.New("invalid data")
	ErrProductNotFound          = errors.New("product not found")
	ErrSupplierNotFound         = errors.New("supplier not found")
	ErrShipmentNotFound         = errors.New("shipment not found")
	ErrInvalidTransition        = errors.New("invalid shipment status transition")
	ErrPredictionNotFound       = errors.New("prediction not found")
	ErrPredictionBelowThreshold = errors.New("prediction below confidence threshold")
	ErrCycleInProgress          = errors.New("optimization cycle already running")
	ErrReportNotFound           = errors.New("optimization report not found")
)
