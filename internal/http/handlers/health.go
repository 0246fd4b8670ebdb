package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/familyauth/internal/observability"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	service string
	ping    func(ctx context.Context) error
}

// NewHealthHandler takes the readiness check; a nil ping always reports ready.
func NewHealthHandler(service string, ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{service: service, ping: ping}
}

func (h *HealthHandler) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "OK", "service": h.service})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.ping != nil {
		cctx, cancel := context.WithTimeout(ctx.Request.Context(), time.Second)
		defer cancel()

		if err := h.ping(cctx); err != nil {
			slog.Default().WarnContext(cctx, "readiness check failed", observability.Err(err))
			RespondError(ctx, http.StatusServiceUnavailable, "not_ready", "database unavailable", nil)
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
