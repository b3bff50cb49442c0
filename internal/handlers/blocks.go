package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mompick/backend/internal/database"
	apperrors "github.com/mompick/backend/internal/errors"
	"github.com/mompick/backend/internal/models"
	"github.com/mompick/backend/internal/util"
	"gorm.io/gorm"
)

// BlockUser blocks another user for the caller.
// Blocking filters the blocked user's reviews out of the caller's listing
// pages; it never affects aggregate stats.
// POST /api/v1/users/:id/block
func (h *Handlers) BlockUser(c *gin.Context) {
	profileID, ok := util.GetProfileIDFromContext(c)
	if !ok {
		return
	}

	targetID := c.Param("id")
	if targetID == "" {
		respondError(c, apperrors.ValidationError("id", "user id is required"))
		return
	}
	if targetID == profileID {
		respondError(c, apperrors.BadRequest("cannot block yourself"))
		return
	}

	var target models.Profile
	if err := database.DB.First(&target, "id = ?", targetID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			respondError(c, apperrors.NotFound("user"))
			return
		}
		respondError(c, apperrors.InternalError("failed to find user"))
		return
	}

	var existing models.BlockedUser
	err := database.DB.Where("blocker_id = ? AND blocked_id = ?", profileID, targetID).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"message": "user already blocked", "blocked": true})
		return
	}

	block := models.BlockedUser{BlockerID: profileID, BlockedID: targetID}
	if err := database.DB.Create(&block).Error; err != nil {
		if apperrors.IsUniqueViolation(err) {
			c.JSON(http.StatusOK, gin.H{"message": "user already blocked", "blocked": true})
			return
		}
		respondError(c, apperrors.InternalError("failed to block user"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "user blocked",
		"blocked":    true,
		"blocked_at": block.CreatedAt,
	})
}

// UnblockUser removes a block
// DELETE /api/v1/users/:id/block
func (h *Handlers) UnblockUser(c *gin.Context) {
	profileID, ok := util.GetProfileIDFromContext(c)
	if !ok {
		return
	}

	result := database.DB.Where("blocker_id = ? AND blocked_id = ?", profileID, c.Param("id")).
		Delete(&models.BlockedUser{})
	if result.Error != nil {
		respondError(c, apperrors.InternalError("failed to unblock user"))
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, apperrors.NotFound("block"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user unblocked", "blocked": false})
}

// GetBlockedUsers returns the caller's block list
// GET /api/v1/users/me/blocked
func (h *Handlers) GetBlockedUsers(c *gin.Context) {
	profileID, ok := util.GetProfileIDFromContext(c)
	if !ok {
		return
	}

	limit := util.ParseInt(c.DefaultQuery("limit", "50"), 50)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	var blocks []models.BlockedUser
	err := database.DB.Preload("Blocked").
		Where("blocker_id = ?", profileID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&blocks).Error
	if err != nil {
		respondError(c, apperrors.InternalError("failed to load blocked users"))
		return
	}

	type blockedEntry struct {
		ID        string     `json:"id"`
		Profile   AuthorInfo `json:"profile"`
		BlockedAt time.Time  `json:"blocked_at"`
	}
	entries := make([]blockedEntry, 0, len(blocks))
	for _, b := range blocks {
		entries = append(entries, blockedEntry{
			ID: b.ID,
			Profile: AuthorInfo{
				ID:       b.Blocked.ID,
				Name:     b.Blocked.DisplayName(),
				ImageURL: b.Blocked.ProfileImageURL,
			},
			BlockedAt: b.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"blocked_users": entries})
}
