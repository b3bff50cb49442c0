package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mompick/backend/internal/database"
	apperrors "github.com/mompick/backend/internal/errors"
	"github.com/mompick/backend/internal/models"
	"github.com/mompick/backend/internal/util"
	"gorm.io/gorm"
)

// ListNotifications returns the caller's notifications, newest first, with
// the unread count alongside
// GET /api/v1/notifications?limit=&offset=
func (h *Handlers) ListNotifications(c *gin.Context) {
	profileID, ok := util.GetProfileIDFromContext(c)
	if !ok {
		return
	}

	limit := util.ParseInt(c.DefaultQuery("limit", "20"), 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	var notifications []models.Notification
	err := database.DB.Where("to_profile_id = ?", profileID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error
	if err != nil {
		respondError(c, apperrors.InternalError("failed to load notifications"))
		return
	}

	var unread int64
	if err := database.DB.Model(&models.Notification{}).
		Where("to_profile_id = ? AND is_read = false", profileID).
		Count(&unread).Error; err != nil {
		respondError(c, apperrors.InternalError("failed to count notifications"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// MarkNotificationRead marks one of the caller's notifications as read
// POST /api/v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	profileID, ok := util.GetProfileIDFromContext(c)
	if !ok {
		return
	}

	result := database.DB.Model(&models.Notification{}).
		Where("id = ? AND to_profile_id = ?", c.Param("id"), profileID).
		Update("is_read", true)
	if result.Error != nil {
		respondError(c, apperrors.InternalError("failed to update notification"))
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, apperrors.NotFound("notification"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification marked read"})
}

// MarkAllNotificationsRead marks everything unread as read
// POST /api/v1/notifications/read-all
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	profileID, ok := util.GetProfileIDFromContext(c)
	if !ok {
		return
	}

	result := database.DB.Model(&models.Notification{}).
		Where("to_profile_id = ? AND is_read = false", profileID).
		Update("is_read", true)
	if result.Error != nil {
		respondError(c, apperrors.InternalError("failed to update notifications"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": result.RowsAffected})
}

// DeleteNotification removes one of the caller's notifications
// DELETE /api/v1/notifications/:id
func (h *Handlers) DeleteNotification(c *gin.Context) {
	profileID, ok := util.GetProfileIDFromContext(c)
	if !ok {
		return
	}

	result := database.DB.Where("id = ? AND to_profile_id = ?", c.Param("id"), profileID).
		Delete(&models.Notification{})
	if result.Error != nil {
		respondError(c, apperrors.InternalError("failed to delete notification"))
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, apperrors.NotFound("notification"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification deleted"})
}

// NotificationSettingsBody is the opt-out update payload
type NotificationSettingsBody struct {
	ReviewLikeEnabled *bool `json:"review_like_enabled"`
	PushEnabled       *bool `json:"push_enabled"`
}

// GetNotificationSettings returns the caller's opt-outs, defaulting to
// everything enabled when no row exists
// GET /api/v1/notifications/settings
func (h *Handlers) GetNotificationSettings(c *gin.Context) {
	profileID, ok := util.GetProfileIDFromContext(c)
	if !ok {
		return
	}

	var setting models.NotificationSetting
	err := database.DB.Where("profile_id = ?", profileID).First(&setting).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusOK, gin.H{
			"review_like_enabled": true,
			"push_enabled":        true,
		})
		return
	}
	if err != nil {
		respondError(c, apperrors.InternalError("failed to load settings"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"review_like_enabled": setting.ReviewLikeEnabled,
		"push_enabled":        setting.PushEnabled,
	})
}

// UpdateNotificationSettings upserts the caller's opt-outs
// PUT /api/v1/notifications/settings
func (h *Handlers) UpdateNotificationSettings(c *gin.Context) {
	profileID, ok := util.GetProfileIDFromContext(c)
	if !ok {
		return
	}

	var req NotificationSettingsBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.BadRequest(err.Error()))
		return
	}

	var setting models.NotificationSetting
	err := database.DB.Where("profile_id = ?", profileID).First(&setting).Error
	if err == gorm.ErrRecordNotFound {
		setting = models.NotificationSetting{
			ProfileID:         profileID,
			ReviewLikeEnabled: true,
			PushEnabled:       true,
		}
		if err := database.DB.Create(&setting).Error; err != nil && !apperrors.IsUniqueViolation(err) {
			respondError(c, apperrors.InternalError("failed to create settings"))
			return
		}
	} else if err != nil {
		respondError(c, apperrors.InternalError("failed to load settings"))
		return
	}

	updates := map[string]interface{}{}
	if req.ReviewLikeEnabled != nil {
		updates["review_like_enabled"] = *req.ReviewLikeEnabled
	}
	if req.PushEnabled != nil {
		updates["push_enabled"] = *req.PushEnabled
	}
	if len(updates) > 0 {
		if err := database.DB.Model(&models.NotificationSetting{}).
			Where("profile_id = ?", profileID).Updates(updates).Error; err != nil {
			respondError(c, apperrors.InternalError("failed to update settings"))
			return
		}
	}

	if err := database.DB.Where("profile_id = ?", profileID).First(&setting).Error; err != nil {
		respondError(c, apperrors.InternalError("failed to load settings"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"review_like_enabled": setting.ReviewLikeEnabled,
		"push_enabled":        setting.PushEnabled,
	})
}
