// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/andresuchdata/supplychain-engine/internal/api/handlers"
	"github.com/andresuchdata/supplychain-engine/internal/api/middleware"
	"github.com/andresuchdata/supplychain-engine/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Registry *service.Registry
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Principal())
	router.Use(middleware.Logger())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.PrincipalHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	apiGroup := router.Group("/api/v1")

	if services != nil && services.Registry != nil {
		registryHandler := handlers.NewRegistryHandler(services.Registry)
		optimizationHandler := handlers.NewOptimizationHandler(services.Registry)

		apiGroup.GET("/health", optimizationHandler.Health)

		supplierGroup := apiGroup.Group("/suppliers")
		{
			supplierGroup.POST("", registryHandler.RegisterSupplier)
			supplierGroup.GET("/:id", registryHandler.GetSupplier)
		}

		productGroup := apiGroup.Group("/products")
		{
			productGroup.POST("", registryHandler.AddProduct)
			productGroup.GET("/:id", registryHandler.GetProduct)
			productGroup.POST("/:id/forecasts", registryHandler.UpdateForecast)
			productGroup.GET("/:id/forecasts/:period", registryHandler.GetForecast)
		}

		shipmentGroup := apiGroup.Group("/shipments")
		{
			shipmentGroup.POST("", registryHandler.CreateShipment)
			shipmentGroup.GET("/:id", registryHandler.GetShipment)
			shipmentGroup.PATCH("/:id/status", registryHandler.UpdateShipmentStatus)
		}

		optimizationGroup := apiGroup.Group("/optimization")
		{
			optimizationGroup.POST("/cycles", optimizationHandler.RunCycle)
			optimizationGroup.GET("/cycles/:number", optimizationHandler.GetCycle)
			optimizationGroup.GET("/latest", optimizationHandler.GetLatest)
		}

		apiGroup.GET("/registry/stats", registryHandler.GetStats)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
