package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/mompick/backend/internal/cache"
	apperrors "github.com/mompick/backend/internal/errors"
	"github.com/mompick/backend/internal/facility"
	"github.com/mompick/backend/internal/notify"
	"github.com/mompick/backend/internal/storage"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	blobs      storage.BlobStore
	facilities *facility.Fetcher
	redis      *cache.RedisClient
	notifier   *notify.Notifier
}

// NewHandlers creates a new handlers instance
func NewHandlers(blobs storage.BlobStore, facilities *facility.Fetcher, notifier *notify.Notifier) *Handlers {
	return &Handlers{
		blobs:      blobs,
		facilities: facilities,
		notifier:   notifier,
	}
}

// SetRedisClient sets the optional aggregate-cache client
func (h *Handlers) SetRedisClient(redis *cache.RedisClient) {
	h.redis = redis
}

// respondError writes an APIError with its mapped status code
func respondError(c *gin.Context, apiErr *apperrors.APIError) {
	c.JSON(apiErr.Status, gin.H{"error": apiErr})
}
