package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/mompick/backend/internal/errors"
	"github.com/mompick/backend/internal/facility"
	"github.com/mompick/backend/internal/models"
)

// FacilityDetail serves the normalized facility detail, cache-first.
// `silent=true` returns 404 instead of the placeholder when the upstream
// fails; `cache_only=true` never calls upstream.
// GET /api/v1/facilities/:type/:code/detail?arcode=&silent=&cache_only=
func (h *Handlers) FacilityDetail(c *gin.Context) {
	facilityType := models.FacilityType(c.Param("type"))
	if !facilityType.Valid() {
		respondError(c, apperrors.ValidationError("type", "unknown facility type"))
		return
	}
	code := c.Param("code")

	opts := facility.Options{
		Silent:    c.Query("silent") == "true",
		CacheOnly: c.Query("cache_only") == "true",
	}

	summary := h.facilities.Detail(c.Request.Context(), string(facilityType), code,
		c.Query("arcode"), opts)
	if summary == nil {
		respondError(c, apperrors.NotFound("facility detail"))
		return
	}

	c.JSON(http.StatusOK, summary)
}
