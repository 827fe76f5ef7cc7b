package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/study-crew/peer-assist-api/internal/service"
)

// MetricsHandler serves the Prometheus scrape and liveness endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
}

func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Prometheus exposes the metrics registry in the text exposition format.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health reports process liveness. Readiness lives on a separate route that
// also checks the database.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
