package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cmzlocks/value-props-model/internal/services"
)

type HealthHandler struct {
	pipeline *services.Pipeline
	breaker  *services.CircuitBreakerService
}

func NewHealthHandler(pipeline *services.Pipeline, breaker *services.CircuitBreakerService) *HealthHandler {
	return &HealthHandler{
		pipeline: pipeline,
		breaker:  breaker,
	}
}

// GetHealth returns basic liveness status - always 200 while the server runs.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"time":    time.Now().UTC(),
		"service": "value-props-model",
	})
}

// GetStatus reports the last run and the external API circuit states.
func (h *HealthHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"last_run": h.pipeline.LastRun(),
		"circuits": gin.H{
			"oddsapi":     h.breaker.GetState("oddsapi").String(),
			"balldontlie": h.breaker.GetState("balldontlie").String(),
		},
	})
}
