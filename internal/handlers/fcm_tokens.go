package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mompick/backend/internal/database"
	apperrors "github.com/mompick/backend/internal/errors"
	"github.com/mompick/backend/internal/logger"
	"github.com/mompick/backend/internal/models"
	"github.com/mompick/backend/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterTokenBody is the push-token registration payload
type RegisterTokenBody struct {
	Token    string  `json:"token" binding:"required"`
	Platform string  `json:"platform" binding:"required,oneof=ios android"`
	DeviceID *string `json:"device_id"`
}

// RegisterToken reconciles the caller's push token registration so that at
// most one row exists per (profile, device) and per raw token value.
//
// Reconcile sequence:
//  1. look up the caller's row for this device (device_id IS NULL matches
//     only other null-device rows)
//  2. if that row already carries this token, touch it and stop
//  3. if that row carries a rotated token, delete it
//  4. if the token value exists under another profile, evict that row
//  5. insert; a lost race on the unique token index falls back to
//     updating the existing row by token
//
// PUT /api/v1/push/tokens
func (h *Handlers) RegisterToken(c *gin.Context) {
	profileID, ok := util.GetProfileIDFromContext(c)
	if !ok {
		return
	}

	var req RegisterTokenBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.BadRequest(err.Error()))
		return
	}

	// Step 1: the caller's existing row for this device
	deviceQuery := database.DB.Where("profile_id = ?", profileID)
	if req.DeviceID != nil {
		deviceQuery = deviceQuery.Where("device_id = ?", *req.DeviceID)
	} else {
		deviceQuery = deviceQuery.Where("device_id IS NULL")
	}

	var deviceRow models.FCMToken
	err := deviceQuery.First(&deviceRow).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		respondError(c, apperrors.InternalError("failed to load token registration"))
		return
	}
	haveDeviceRow := err == nil

	// Step 2: same token on the same device, just refresh
	if haveDeviceRow && deviceRow.Token == req.Token {
		if err := database.DB.Model(&deviceRow).Update("platform", req.Platform).Error; err != nil {
			respondError(c, apperrors.InternalError("failed to refresh token"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": deviceRow, "status": "unchanged"})
		return
	}

	// Step 3: device re-registered with a rotated token
	if haveDeviceRow {
		if err := database.DB.Delete(&deviceRow).Error; err != nil {
			respondError(c, apperrors.InternalError("failed to replace token"))
			return
		}
	}

	// Step 4: token moved from another profile (reinstall, account switch)
	if err := database.DB.Where("token = ? AND profile_id <> ?", req.Token, profileID).
		Delete(&models.FCMToken{}).Error; err != nil {
		respondError(c, apperrors.InternalError("failed to evict stale token"))
		return
	}

	// Step 5: insert, falling back to update-by-token when a concurrent
	// request won the unique index
	row := models.FCMToken{
		ProfileID: profileID,
		Token:     req.Token,
		Platform:  req.Platform,
		DeviceID:  req.DeviceID,
	}
	if err := database.DB.Create(&row).Error; err != nil {
		if !apperrors.IsUniqueViolation(err) {
			respondError(c, apperrors.InternalError("failed to register token"))
			return
		}
		updates := map[string]interface{}{
			"profile_id": profileID,
			"platform":   req.Platform,
			"device_id":  req.DeviceID,
		}
		if err := database.DB.Model(&models.FCMToken{}).
			Where("token = ?", req.Token).Updates(updates).Error; err != nil {
			respondError(c, apperrors.InternalError("failed to register token"))
			return
		}
		if err := database.DB.Where("token = ?", req.Token).First(&row).Error; err != nil {
			respondError(c, apperrors.InternalError("failed to register token"))
			return
		}
	}

	logger.InfoWithFields("Push token registered",
		logger.WithProfileID(profileID), zap.String("platform", req.Platform))

	c.JSON(http.StatusOK, gin.H{"token": row, "status": "registered"})
}

// DeleteTokens removes every push token of the caller (logout)
// DELETE /api/v1/push/tokens
func (h *Handlers) DeleteTokens(c *gin.Context) {
	profileID, ok := util.GetProfileIDFromContext(c)
	if !ok {
		return
	}

	result := database.DB.Where("profile_id = ?", profileID).Delete(&models.FCMToken{})
	if result.Error != nil {
		respondError(c, apperrors.InternalError("failed to delete tokens"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": result.RowsAffected})
}
