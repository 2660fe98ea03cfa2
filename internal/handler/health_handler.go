package handler

import (
	"context"
	"net/http"
	"time"

	"receipts/internal/logging"
	"receipts/pkg/response"

	"github.com/gin-gonic/gin"
)

const msgDBUnavailable = "Cannot connect to the database."

type HealthHandler struct {
	pingDB func(ctx context.Context) error
}

// NewHealthHandler takes the database probe used by /health/db
func NewHealthHandler(pingDB func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{pingDB: pingDB}
}

func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.Health)
	router.GET("/health/db", h.DatabaseHealth)
}

// Health godoc
// @Summary  Liveness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  response.Response
// @Router   /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	response.Write(c, http.StatusOK, gin.H{"status": "OK"})
}

// DatabaseHealth godoc
// @Summary  Database probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  response.Response
// @Failure  503  {object}  response.Response
// @Router   /health/db [get]
func (h *HealthHandler) DatabaseHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.pingDB(ctx); err != nil {
		logging.FromContext(c.Request.Context()).Error("database health check failed", "error", err)
		response.Fail(c, http.StatusServiceUnavailable, msgDBUnavailable)
		return
	}
	response.Write(c, http.StatusOK, gin.H{"status": "OK", "database": "up"})
}
