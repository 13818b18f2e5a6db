package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// Health always answers 200; the database field reports whether the store
// is reachable.
func (h *Handler) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), healthTimeout)
	defer cancel()

	database := "Connected"

	if err := h.store.Ping(pingCtx); err != nil {
		h.log.Warn("health check could not reach database", "error", err)
		database = "Disconnected"
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":      "OK",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"database":    database,
		"environment": h.cfg.Env,
	})
}
