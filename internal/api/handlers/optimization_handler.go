package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/andresuchdata/supplychain-engine/internal/api/middleware"
	"github.com/andresuchdata/supplychain-engine/internal/service"
	"github.com/gin-gonic/gin"
)

type OptimizationHandler struct {
	service *service.Registry
}

func NewOptimizationHandler(service *service.Registry) *OptimizationHandler {
	return &OptimizationHandler{service: service}
}

// RunCycle accepts an empty body, which runs a cycle with every analysis disabled
func (h *OptimizationHandler) RunCycle(c *gin.Context) {
	var in service.RunCycleInput
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid cycle payload", err)
		return
	}

	report, err := h.service.RunOptimizationCycle(c.Request.Context(), middleware.CallerOf(c), in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

func (h *OptimizationHandler) GetLatest(c *gin.Context) {
	report, err := h.service.LatestReport(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *OptimizationHandler) GetCycle(c *gin.Context) {
	number, ok := uintParam(c, "number")
	if !ok {
		return
	}

	report, err := h.service.CycleReport(c.Request.Context(), number)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *OptimizationHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":             "ok",
		"optimization_state": h.service.OptimizationState(),
	})
}
