package api

import (
	"github.com/gin-gonic/gin"

	"github.com/cmzlocks/value-props-model/internal/api/handlers"
	"github.com/cmzlocks/value-props-model/internal/services"
)

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, pipeline *services.Pipeline, store *services.DocumentStore, breaker *services.CircuitBreakerService) {
	propsHandler := handlers.NewPropsHandler(pipeline, store)
	healthHandler := handlers.NewHealthHandler(pipeline, breaker)

	group.GET("/props", propsHandler.GetProps)
	group.GET("/props/top", propsHandler.GetTopPlays)

	group.GET("/picks", propsHandler.GetPicks)
	group.GET("/performance", propsHandler.GetPerformance)

	group.POST("/runs", propsHandler.TriggerRun)
	group.GET("/runs/last", propsHandler.GetLastRun)

	group.GET("/health", healthHandler.GetHealth)
	group.GET("/status", healthHandler.GetStatus)
}
