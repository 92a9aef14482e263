package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/schoolpay/backend/internal/infrastructure/config"
)

// SystemHandler exposes liveness endpoints
type SystemHandler struct {
	BaseHandler
	cfg *config.Config
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(cfg *config.Config) *SystemHandler {
	return &SystemHandler{cfg: cfg}
}

// Health reports service liveness
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, gin.H{
		"status":  "ok",
		"service": h.cfg.App.Name,
		"env":     h.cfg.App.Env,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
