package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mompick/backend/internal/auth"
	apperrors "github.com/mompick/backend/internal/errors"
	"github.com/mompick/backend/internal/util"
)

// AuthHandlers wraps the auth service for the HTTP surface
type AuthHandlers struct {
	service *auth.Service
}

// NewAuthHandlers creates auth handlers
func NewAuthHandlers(service *auth.Service) *AuthHandlers {
	return &AuthHandlers{service: service}
}

// Register creates a profile with email/password
// POST /api/v1/auth/register
func (h *AuthHandlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.service.Register(req)
	if err != nil {
		if errors.Is(err, auth.ErrProfileExists) {
			respondError(c, apperrors.AlreadyExists("profile"))
			return
		}
		respondError(c, apperrors.InternalError("registration failed"))
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login authenticates with email/password
// POST /api/v1/auth/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.service.Login(req)
	if err != nil {
		if errors.Is(err, auth.ErrProfileNotFound) || errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(c, apperrors.Unauthorized("invalid email or password"))
			return
		}
		respondError(c, apperrors.InternalError("login failed"))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated profile
// GET /api/v1/auth/me
func (h *AuthHandlers) Me(c *gin.Context) {
	profile, ok := util.GetProfileFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, profile)
}
