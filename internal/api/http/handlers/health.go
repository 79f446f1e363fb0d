package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

// Health handles GET /health.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "privlend-api",
		"uptime":  time.Since(startedAt).Round(time.Second).String(),
		"scheme":  h.deps.Prover.Scheme().String(),
	})
}

// Live handles GET /health/live: the process is up.
func (h *Handlers) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /health/ready. Ready means every circuit's keys are
// cached; until warm-up finishes this reports 503 without triggering a setup
// itself.
func (h *Handlers) Ready(c *gin.Context) {
	if !h.deps.Prover.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "initializing"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
