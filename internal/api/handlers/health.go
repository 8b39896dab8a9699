// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) HealthCheckHandler(c *gin.Context) {
	if h.Registry == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "failure", "details": "registry not initialized"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := h.Registry.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "failure", "details": "database ping failed: " + err.Error()})
		return
	}

	status := gin.H{"status": "ok"}
	if h.Worker != nil {
		status["worker"] = h.Worker.IsActive()
	}
	if h.Broadcaster != nil {
		status["wsClients"] = h.Broadcaster.ClientCount()
	}

	c.JSON(http.StatusOK, status)
}
