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

// ToggleHelpful flips the caller's helpful mark on a review.
//
// The mark row is the toggle state; the response count comes from recounting
// the mark table, never from the cached counter. Notification side effects are
// best-effort and never fail the toggle.
// POST /api/v1/reviews/:id/helpful
func (h *Handlers) ToggleHelpful(c *gin.Context) {
	profile, ok := util.GetProfileFromContext(c)
	if !ok {
		return
	}
	reviewID := c.Param("id")

	var review models.Review
	if err := database.DB.First(&review, "id = ? AND is_deleted = false", reviewID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			respondError(c, apperrors.NotFound("review"))
			return
		}
		respondError(c, apperrors.InternalError("failed to load review"))
		return
	}

	var existing models.ReviewHelpful
	err := database.DB.Where("review_id = ? AND profile_id = ?", reviewID, profile.ID).
		First(&existing).Error

	var marked bool
	switch {
	case err == nil:
		// Unmark
		if err := database.DB.Delete(&existing).Error; err != nil {
			respondError(c, apperrors.InternalError("failed to remove helpful mark"))
			return
		}
		marked = false

	case err == gorm.ErrRecordNotFound:
		mark := models.ReviewHelpful{ReviewID: reviewID, ProfileID: profile.ID}
		if err := database.DB.Create(&mark).Error; err != nil {
			// A concurrent duplicate insert lost the race against the unique
			// index; treat it as already marked
			if apperrors.IsUniqueViolation(err) {
				marked = true
				break
			}
			respondError(c, apperrors.InternalError("failed to add helpful mark"))
			return
		}
		marked = true

	default:
		respondError(c, apperrors.InternalError("failed to check helpful mark"))
		return
	}

	// Authoritative recount, written back to the convenience counter
	var count int64
	if err := database.DB.Model(&models.ReviewHelpful{}).
		Where("review_id = ?", reviewID).Count(&count).Error; err != nil {
		respondError(c, apperrors.InternalError("failed to count helpful marks"))
		return
	}
	if err := database.DB.Model(&models.Review{}).Where("id = ?", reviewID).
		Update("helpful_count", count).Error; err != nil {
		logger.Warn("Failed to update helpful counter",
			zap.Error(err), logger.WithReviewID(reviewID))
	}

	// Row creation is synchronous best-effort; the notifier pushes async
	if marked {
		h.notifier.ReviewLiked(profile, &review, review.FacilityName)
	} else {
		h.notifier.ReviewLikeRemoved(profile.ID, &review)
	}

	c.JSON(http.StatusOK, gin.H{
		"marked":        marked,
		"helpful_count": count,
		"review_id":     reviewID,
	})
}
