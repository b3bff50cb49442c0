package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mompick/backend/internal/database"
	"github.com/mompick/backend/internal/models"
)

// RequireAdmin ensures the request is authenticated and the profile is an
// admin. The profile_id must have been set by an earlier auth middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		profileIDInterface, exists := c.Get("profile_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		profileID, ok := profileIDInterface.(string)
		if !ok || profileID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_profile_context"})
			c.Abort()
			return
		}

		// Fetch fresh so a revoked admin flag takes effect immediately
		var profile models.Profile
		if err := database.DB.Where("id = ?", profileID).First(&profile).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "profile_not_found"})
			c.Abort()
			return
		}

		if !profile.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin_access_required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
