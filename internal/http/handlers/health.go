package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/churnboard/internal/predict"
)

type BackendProbe interface {
	Health(ctx context.Context) (predict.HealthStatus, error)
}

type HealthHandler struct {
	backend BackendProbe
	timeout time.Duration
}

func NewHealthHandler(backend BackendProbe) *HealthHandler {
	return &HealthHandler{backend: backend, timeout: 3 * time.Second}
}

// GET /healthz
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /readyz
// Ready only when the prediction backend reports a loaded model.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	st, err := h.backend.Health(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "detail": predict.UserMessage(err)})
		return
	}
	if !st.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "backend": st})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "backend": st})
}
