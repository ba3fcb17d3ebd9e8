package handlers

import (
	"net/http"

	"github.com/andresuchdata/supplychain-engine/internal/api/middleware"
	"github.com/andresuchdata/supplychain-engine/internal/service"
	"github.com/gin-gonic/gin"
)

type RegistryHandler struct {
	service *service.Registry
}

func NewRegistryHandler(service *service.Registry) *RegistryHandler {
	return &RegistryHandler{service: service}
}

func (h *RegistryHandler) RegisterSupplier(c *gin.Context) {
	var in service.RegisterSupplierInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid supplier payload", err)
		return
	}

	supplier, err := h.service.RegisterSupplier(c.Request.Context(), middleware.CallerOf(c), in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, supplier)
}

func (h *RegistryHandler) GetSupplier(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	supplier, err := h.service.GetSupplier(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, supplier)
}

func (h *RegistryHandler) AddProduct(c *gin.Context) {
	var in service.AddProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid product payload", err)
		return
	}

	product, err := h.service.AddProduct(c.Request.Context(), middleware.CallerOf(c), in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *RegistryHandler) GetProduct(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

type forecastRequest struct {
	Period          uint64 `json:"period"`
	PredictedDemand uint64 `json:"predicted_demand"`
	ConfidenceLevel uint64 `json:"confidence_level"`
}

func (h *RegistryHandler) UpdateForecast(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req forecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid forecast payload", err)
		return
	}

	product, err := h.service.UpdateDemandPrediction(c.Request.Context(), middleware.CallerOf(c), service.UpdatePredictionInput{
		ProductID:       id,
		Period:          req.Period,
		PredictedDemand: req.PredictedDemand,
		ConfidenceLevel: req.ConfidenceLevel,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *RegistryHandler) GetForecast(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	period, ok := uintParam(c, "period")
	if !ok {
		return
	}

	prediction, err := h.service.GetPrediction(c.Request.Context(), id, period)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, prediction)
}

func (h *RegistryHandler) CreateShipment(c *gin.Context) {
	var in service.CreateShipmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid shipment payload", err)
		return
	}

	shipment, err := h.service.CreateShipment(c.Request.Context(), middleware.CallerOf(c), in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, shipment)
}

func (h *RegistryHandler) GetShipment(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	shipment, err := h.service.GetShipment(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, shipment)
}

func (h *RegistryHandler) UpdateShipmentStatus(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var in service.UpdateShipmentStatusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid shipment status payload", err)
		return
	}
	in.ShipmentID = id

	shipment, err := h.service.UpdateShipmentStatus(c.Request.Context(), middleware.CallerOf(c), in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, shipment)
}

func (h *RegistryHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
