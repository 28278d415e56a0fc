package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type healthHandler struct {
	now func() time.Time
}

func registerHealthRoutes(r *gin.Engine, now func() time.Time) {
	h := &healthHandler{now: now}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/api/health", h.apiHealth)
}

// apiHealth godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} handlers.HealthResponse
// @Router /api/health [get]
func (h *healthHandler) apiHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "OK", Timestamp: h.now().UTC().Format(time.RFC3339)})
}
