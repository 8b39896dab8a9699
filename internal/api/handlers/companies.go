package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tarun-khatri/competitor-metrics/internal/config"
	"github.com/tarun-khatri/competitor-metrics/internal/model"
	"github.com/tarun-khatri/competitor-metrics/internal/registry"
)

type companyRequest struct {
	Name        string            `json:"name" binding:"required"`
	Logo        string            `json:"logo"`
	Identifiers model.Identifiers `json:"identifiers"`
}

// ListCompaniesHandler serves the tracked company list, cached in-process
// because the dashboard polls it on every page load.
func (h *Handler) ListCompaniesHandler(c *gin.Context) {
	h.listMu.Lock()
	if h.listCache != nil && time.Since(h.listFetched) <= config.CompanyListTTL {
		list := h.listCache
		h.listMu.Unlock()
		c.JSON(http.StatusOK, list)
		return
	}
	h.listMu.Unlock()

	list, err := h.Registry.ListCompanies(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.listMu.Lock()
	h.listCache = list
	h.listFetched = time.Now()
	h.listMu.Unlock()

	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateCompanyHandler(c *gin.Context) {
	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	company, err := h.Registry.CreateCompany(c.Request.Context(), req.Name, req.Logo, req.Identifiers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.invalidateCompanyList()
	c.JSON(http.StatusCreated, company)
}

func (h *Handler) UpdateCompanyHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return
	}

	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	company, err := h.Registry.UpdateCompany(c.Request.Context(), id, req.Name, req.Logo, req.Identifiers)
	if errors.Is(err, registry.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "company not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.invalidateCompanyList()
	c.JSON(http.StatusOK, company)
}

func (h *Handler) invalidateCompanyList() {
	h.listMu.Lock()
	h.listCache = nil
	h.listMu.Unlock()
}
