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

// FavoriteBody identifies a facility to bookmark
type FavoriteBody struct {
	TargetType models.FavoriteTargetType `json:"target_type" binding:"required"`
	TargetID   string                    `json:"target_id" binding:"required"`
	TargetName string                    `json:"target_name"`
	Arcode     string                    `json:"arcode"`
	SidoCode   string                    `json:"sido_code"`
	SggCode    string                    `json:"sgg_code"`
}

// AddFavorite bookmarks a facility for the caller. Adding an existing
// favorite is a no-op success.
// POST /api/v1/favorites
func (h *Handlers) AddFavorite(c *gin.Context) {
	profileID, ok := util.GetProfileIDFromContext(c)
	if !ok {
		return
	}

	var req FavoriteBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.BadRequest(err.Error()))
		return
	}
	if !req.TargetType.Valid() {
		respondError(c, apperrors.ValidationError("target_type", "unknown target type"))
		return
	}

	favorite := models.Favorite{
		ProfileID:  profileID,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		TargetName: req.TargetName,
		Arcode:     req.Arcode,
		SidoCode:   req.SidoCode,
		SggCode:    req.SggCode,
	}

	if err := database.DB.Create(&favorite).Error; err != nil {
		if apperrors.IsUniqueViolation(err) {
			c.JSON(http.StatusOK, gin.H{"message": "already favorited", "favorited": true})
			return
		}
		respondError(c, apperrors.InternalError("failed to add favorite"))
		return
	}

	c.JSON(http.StatusCreated, favorite)
}

// RemoveFavorite deletes a bookmark by (target_type, target_id)
// DELETE /api/v1/favorites?target_type=&target_id=
func (h *Handlers) RemoveFavorite(c *gin.Context) {
	profileID, ok := util.GetProfileIDFromContext(c)
	if !ok {
		return
	}

	targetType := models.FavoriteTargetType(c.Query("target_type"))
	targetID := c.Query("target_id")
	if !targetType.Valid() || targetID == "" {
		respondError(c, apperrors.BadRequest("target_type and target_id are required"))
		return
	}

	result := database.DB.Where("profile_id = ? AND target_type = ? AND target_id = ?",
		profileID, targetType, targetID).Delete(&models.Favorite{})
	if result.Error != nil {
		respondError(c, apperrors.InternalError("failed to remove favorite"))
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, apperrors.NotFound("favorite"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "favorite removed", "favorited": false})
}

// ListFavorites returns the caller's bookmarks, optionally filtered by type
// GET /api/v1/favorites?type=
func (h *Handlers) ListFavorites(c *gin.Context) {
	profileID, ok := util.GetProfileIDFromContext(c)
	if !ok {
		return
	}

	query := database.DB.Where("profile_id = ?", profileID).Order("created_at DESC")
	if t := c.Query("type"); t != "" {
		targetType := models.FavoriteTargetType(t)
		if !targetType.Valid() {
			respondError(c, apperrors.ValidationError("type", "unknown target type"))
			return
		}
		query = query.Where("target_type = ?", targetType)
	}

	var favorites []models.Favorite
	if err := query.Find(&favorites).Error; err != nil {
		respondError(c, apperrors.InternalError("failed to load favorites"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}

// CheckFavorite reports whether the caller has bookmarked a facility
// GET /api/v1/favorites/check?target_type=&target_id=
func (h *Handlers) CheckFavorite(c *gin.Context) {
	profileID, ok := util.GetProfileIDFromContext(c)
	if !ok {
		return
	}

	targetType := models.FavoriteTargetType(c.Query("target_type"))
	targetID := c.Query("target_id")
	if !targetType.Valid() || targetID == "" {
		respondError(c, apperrors.BadRequest("target_type and target_id are required"))
		return
	}

	var favorite models.Favorite
	err := database.DB.Where("profile_id = ? AND target_type = ? AND target_id = ?",
		profileID, targetType, targetID).First(&favorite).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusOK, gin.H{"favorited": false})
		return
	}
	if err != nil {
		respondError(c, apperrors.InternalError("failed to check favorite"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorited": true, "favorite": favorite})
}
