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

// CreateDeleteRequestBody is the JSON body for a review delete request
type CreateDeleteRequestBody struct {
	Reason string `json:"reason" binding:"required,min=10,max=500"`
}

// CreateDeleteRequest submits an admin-gated request to remove the caller's
// own review. At most one pending request may exist per (review, requester);
// the pre-insert check gives the friendly error and the partial unique index
// closes the race.
// POST /api/v1/reviews/:id/delete-requests
func (h *Handlers) CreateDeleteRequest(c *gin.Context) {
	profileID, ok := util.GetProfileIDFromContext(c)
	if !ok {
		return
	}
	reviewID := c.Param("id")

	var req CreateDeleteRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.ValidationError("reason", "reason must be 10-500 characters"))
		return
	}

	var review models.Review
	if err := database.DB.First(&review, "id = ? AND is_deleted = false", reviewID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			respondError(c, apperrors.NotFound("review"))
			return
		}
		respondError(c, apperrors.InternalError("failed to load review"))
		return
	}

	if review.ProfileID != profileID {
		respondError(c, apperrors.Forbidden("you can only request deletion of your own review"))
		return
	}

	var existing models.ReviewDeleteRequest
	err := database.DB.Where("review_id = ? AND requester_id = ? AND status = ?",
		reviewID, profileID, models.DeleteRequestPending).First(&existing).Error
	if err == nil {
		respondError(c, apperrors.Conflict("a delete request for this review is already pending"))
		return
	}
	if err != gorm.ErrRecordNotFound {
		respondError(c, apperrors.InternalError("failed to check existing requests"))
		return
	}

	request := models.ReviewDeleteRequest{
		ReviewID:      reviewID,
		ReviewType:    review.FacilityType,
		RequesterID:   profileID,
		Status:        models.DeleteRequestPending,
		RequestReason: req.Reason,
	}

	if err := database.DB.Create(&request).Error; err != nil {
		if apperrors.IsUniqueViolation(err) {
			respondError(c, apperrors.Conflict("a delete request for this review is already pending"))
			return
		}
		respondError(c, apperrors.InternalError("failed to create delete request"))
		return
	}

	c.JSON(http.StatusCreated, request)
}
