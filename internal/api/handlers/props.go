package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cmzlocks/value-props-model/internal/models"
	"github.com/cmzlocks/value-props-model/internal/props"
	"github.com/cmzlocks/value-props-model/internal/services"
)

type PropsHandler struct {
	pipeline *services.Pipeline
	store    *services.DocumentStore
}

func NewPropsHandler(pipeline *services.Pipeline, store *services.DocumentStore) *PropsHandler {
	return &PropsHandler{
		pipeline: pipeline,
		store:    store,
	}
}

// GetProps returns the current run's display props, optionally filtered by
// ?category= and ?side=.
func (h *PropsHandler) GetProps(c *gin.Context) {
	list := h.pipeline.DisplayProps()

	if raw := c.Query("category"); raw != "" {
		cat := props.ParseCategory(raw)
		var filtered []*models.PropAnalysis
		for _, a := range list {
			if a.Category == cat {
				filtered = append(filtered, a)
			}
		}
		list = filtered
	}

	if raw := c.Query("side"); raw != "" {
		side := props.ParseSide(raw)
		var filtered []*models.PropAnalysis
		for _, a := range list {
			if a.Side == side {
				filtered = append(filtered, a)
			}
		}
		list = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(list),
		"props": list,
	})
}

// GetTopPlays returns the current run's highlighted plays.
func (h *PropsHandler) GetTopPlays(c *gin.Context) {
	top := h.pipeline.TopPlays()
	c.JSON(http.StatusOK, gin.H{
		"count": len(top),
		"props": top,
	})
}

// GetPicks returns tracked picks, optionally filtered by ?status=.
func (h *PropsHandler) GetPicks(c *gin.Context) {
	store, err := h.store.LoadPickStore()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load picks"})
		return
	}

	picks := store.Picks
	if raw := strings.ToLower(c.Query("status")); raw != "" {
		var filtered []*models.Pick
		for _, p := range picks {
			if string(p.Status) == raw {
				filtered = append(filtered, p)
			}
		}
		picks = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(picks),
		"picks": picks,
	})
}

// GetPerformance returns the persisted performance report.
func (h *PropsHandler) GetPerformance(c *gin.Context) {
	report, err := h.store.LoadPerformance()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load performance"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// TriggerRun starts a pipeline run in the background.
func (h *PropsHandler) TriggerRun(c *gin.Context) {
	go func() {
		ctx, cancel := contextWithRunTimeout()
		defer cancel()
		h.pipeline.Run(ctx)
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "run started"})
}

// GetLastRun returns the most recent run summary.
func (h *PropsHandler) GetLastRun(c *gin.Context) {
	summary := h.pipeline.LastRun()
	if summary == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no run has completed yet"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
