// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tarun-khatri/competitor-metrics/internal/model"
	"github.com/tarun-khatri/competitor-metrics/internal/registry"
)

type refreshRequest struct {
	Force *bool `json:"force"`
}

// PlatformCacheHandler serves one (company, platform, identifier) slot
// cache-first. The company does not have to be registered; unknown
// companies get a transient lookup without follower history.
func (h *Handler) PlatformCacheHandler(c *gin.Context) {
	company, platform, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	data, err := h.Aggregator.FetchPlatform(c.Request.Context(), company, platform)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// PlatformRefreshHandler force-refreshes one slot. A body of
// {"force": false} downgrades to a cache-first read.
func (h *Handler) PlatformRefreshHandler(c *gin.Context) {
	company, platform, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	var req refreshRequest
	_ = c.ShouldBindJSON(&req)
	force := req.Force == nil || *req.Force

	var (
		data *model.SocialMediaData
		err  error
	)
	if force {
		data, err = h.Aggregator.RefreshPlatform(c.Request.Context(), company, platform)
	} else {
		data, err = h.Aggregator.FetchPlatform(c.Request.Context(), company, platform)
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}

	if force && h.Broadcaster != nil && data != nil {
		h.Broadcaster.Broadcast("platform:refresh", company.Name, data)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// resolveTarget maps the URL params to a company record. Registered
// companies keep their ID so follower history enrichment applies; the URL
// identifier always wins over the stored one.
func (h *Handler) resolveTarget(c *gin.Context) (model.Company, string, bool) {
	name := c.Param("company")
	platform := c.Param("platform")
	identifier := c.Param("identifier")

	if !validPlatform(platform) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unsupported platform " + platform})
		return model.Company{}, "", false
	}

	company, err := h.Registry.GetCompanyByName(c.Request.Context(), name)
	if errors.Is(err, registry.ErrNotFound) {
		company = model.Company{Name: name}
	} else if err != nil {
		log.Printf("Handlers: company lookup failed for %s: %v", name, err)
		company = model.Company{Name: name}
	}

	setIdentifier(&company.Identifiers, platform, identifier)
	return company, platform, true
}

func validPlatform(platform string) bool {
	for _, p := range model.Platforms {
		if p == platform {
			return true
		}
	}
	return false
}

func setIdentifier(ids *model.Identifiers, platform, identifier string) {
	switch platform {
	case model.PlatformTwitter:
		ids.Twitter = identifier
	case model.PlatformLinkedIn:
		ids.LinkedIn = identifier
	case model.PlatformMedium:
		ids.Medium = identifier
	case model.PlatformOnchain:
		ids.DefiLlama = identifier
	}
}
