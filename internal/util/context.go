package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mompick/backend/internal/models"
)

// GetProfileFromContext extracts the authenticated profile from the Gin context.
// Returns the profile and true if found, or nil and false if not authenticated.
// If the profile is not authenticated, it automatically responds with 401 Unauthorized.
func GetProfileFromContext(c *gin.Context) (*models.Profile, bool) {
	profile, exists := c.Get("profile")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return nil, false
	}
	profilePtr, ok := profile.(*models.Profile)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid profile data in context"})
		return nil, false
	}
	return profilePtr, true
}

// GetProfileIDFromContext extracts the profile ID from the Gin context.
// Returns the ID and true if found, or empty string and false if not
// authenticated. If not authenticated, it automatically responds with 401.
func GetProfileIDFromContext(c *gin.Context) (string, bool) {
	profileID, exists := c.Get("profile_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return "", false
	}
	profileIDStr, ok := profileID.(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid profile ID in context"})
		return "", false
	}
	return profileIDStr, true
}

// OptionalProfileID returns the profile ID if the request carried valid
// credentials, without failing the request when it did not. Listing endpoints
// use this: anonymous callers get unfiltered pages.
func OptionalProfileID(c *gin.Context) (string, bool) {
	profileID, exists := c.Get("profile_id")
	if !exists {
		return "", false
	}
	profileIDStr, ok := profileID.(string)
	if !ok || profileIDStr == "" {
		return "", false
	}
	return profileIDStr, true
}
