package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tarun-khatri/competitor-metrics/internal/registry"
)

// CompanyMetricsHandler settles all configured platforms for one registered
// company and returns the four-slot aggregate. Results overtaken by a newer
// concurrent call for the same company are discarded, not served.
func (h *Handler) CompanyMetricsHandler(c *gin.Context) {
	name := c.Param("name")

	company, err := h.Registry.GetCompanyByName(c.Request.Context(), name)
	if errors.Is(err, registry.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "company not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result := h.Aggregator.Aggregate(c.Request.Context(), company)
	if result.Superseded {
		c.JSON(http.StatusConflict, gin.H{"error": "superseded by a newer refresh, retry"})
		return
	}

	c.JSON(http.StatusOK, result)
}
