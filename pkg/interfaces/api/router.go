package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vsinha/jobshop/pkg/interfaces/api/handlers"
	"go.uber.org/zap"
)

// SetupRouter sets up the API routes
func SetupRouter(deps handlers.Dependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(logger))

	handler := handlers.NewHandler(deps)

	api := router.Group("/api/v1")
	{
		// Pure calculations
		api.POST("/calculations", handler.Calculate)
		api.POST("/quotes", handler.Quote)

		// Job endpoints
		api.POST("/jobs/:id/sync", handler.SyncJob)
		api.POST("/jobs/:id/edits", handler.ScheduleEdit)
		api.POST("/jobs/:id/status", handler.UpdateJobStatus)

		// Inventory endpoints
		api.GET("/inventory", handler.GetInventory)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
