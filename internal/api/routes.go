package api

import (
	"github.com/gin-gonic/gin"

	"github.com/tarun-khatri/competitor-metrics/internal/api/handlers"
	"github.com/tarun-khatri/competitor-metrics/internal/middleware"
)

// RegisterRoutes wires the HTTP surface onto the engine.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler) {
	r.Use(middleware.SecurityHeadersMiddleware())

	r.GET("/healthz", h.HealthCheckHandler)
	if h.Broadcaster != nil {
		r.GET("/ws", h.Broadcaster.Handler)
	}

	cacheGroup := r.Group("/api/cache")
	{
		cacheGroup.GET("/companies", h.ListCompaniesHandler)
		cacheGroup.POST("/companies", h.CreateCompanyHandler)
		cacheGroup.PUT("/companies/:id", h.UpdateCompanyHandler)
		cacheGroup.GET("/:company/:platform/:identifier", h.PlatformCacheHandler)
		cacheGroup.POST("/:company/:platform/:identifier/refresh", h.PlatformRefreshHandler)
	}

	r.GET("/api/companies/:name/metrics", h.CompanyMetricsHandler)
}
