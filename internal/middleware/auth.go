package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mompick/backend/internal/auth"
)

// RequireAuth validates the bearer token and puts the profile on the context.
// Requests without a valid token are rejected with 401.
func RequireAuth(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no token provided"})
			c.Abort()
			return
		}

		profile, err := authService.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("profile_id", profile.ID)
		c.Set("profile", profile)
		c.Next()
	}
}

// OptionalAuth attaches the profile when a valid token is present but never
// rejects the request. Public listings use it to personalize responses.
func OptionalAuth(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if profile, err := authService.ValidateToken(token); err == nil {
				c.Set("profile_id", profile.ID)
				c.Set("profile", profile)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
