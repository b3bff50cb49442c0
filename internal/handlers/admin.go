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

// ListDeleteRequests returns delete requests for the moderation queue
// GET /api/v1/admin/delete-requests?status=
func (h *Handlers) ListDeleteRequests(c *gin.Context) {
	query := database.DB.Preload("Review").Preload("Requester").
		Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		s := models.DeleteRequestStatus(status)
		if s != models.DeleteRequestPending && s != models.DeleteRequestApproved && s != models.DeleteRequestRejected {
			respondError(c, apperrors.ValidationError("status", "unknown status"))
			return
		}
		query = query.Where("status = ?", s)
	}

	limit := util.ParseInt(c.DefaultQuery("limit", "50"), 50)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	var requests []models.ReviewDeleteRequest
	if err := query.Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		respondError(c, apperrors.InternalError("failed to load delete requests"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"delete_requests": requests})
}

// UpdateDeleteRequestBody carries the admin's decision
type UpdateDeleteRequestBody struct {
	Status     models.DeleteRequestStatus `json:"status" binding:"required"`
	AdminNotes string                     `json:"admin_notes" binding:"max=1000"`
}

// UpdateDeleteRequest resolves a pending delete request. Approval soft-deletes
// the target review; if that update fails the request stays approved and the
// failure is logged (the review can be re-deleted directly).
// PATCH /api/v1/admin/delete-requests/:id
func (h *Handlers) UpdateDeleteRequest(c *gin.Context) {
	requestID := c.Param("id")

	var req UpdateDeleteRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.BadRequest(err.Error()))
		return
	}
	if req.Status != models.DeleteRequestApproved && req.Status != models.DeleteRequestRejected {
		respondError(c, apperrors.ValidationError("status", "status must be approved or rejected"))
		return
	}

	var request models.ReviewDeleteRequest
	if err := database.DB.First(&request, "id = ?", requestID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			respondError(c, apperrors.NotFound("delete request"))
			return
		}
		respondError(c, apperrors.InternalError("failed to load delete request"))
		return
	}

	if request.Status != models.DeleteRequestPending {
		respondError(c, apperrors.Conflict("delete request has already been resolved"))
		return
	}

	updates := map[string]interface{}{
		"status":      req.Status,
		"admin_notes": req.AdminNotes,
	}
	if err := database.DB.Model(&request).Updates(updates).Error; err != nil {
		respondError(c, apperrors.InternalError("failed to update delete request"))
		return
	}

	if req.Status == models.DeleteRequestApproved {
		var review models.Review
		if err := database.DB.First(&review, "id = ?", request.ReviewID).Error; err != nil {
			logger.Warn("Approved delete request targets missing review",
				zap.Error(err), logger.WithReviewID(request.ReviewID))
		} else if err := database.DB.Model(&review).Update("is_deleted", true).Error; err != nil {
			logger.Error("Failed to soft-delete review after approval",
				zap.Error(err), logger.WithReviewID(request.ReviewID))
		} else {
			h.invalidateStats(review.FacilityType, review.FacilityCode)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          request.ID,
		"status":      req.Status,
		"admin_notes": req.AdminNotes,
	})
}

// DeleteDeleteRequest removes a delete-request audit row
// DELETE /api/v1/admin/delete-requests/:id
func (h *Handlers) DeleteDeleteRequest(c *gin.Context) {
	result := database.DB.Where("id = ?", c.Param("id")).Delete(&models.ReviewDeleteRequest{})
	if result.Error != nil {
		respondError(c, apperrors.InternalError("failed to delete request"))
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, apperrors.NotFound("delete request"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "delete request removed"})
}

// SetReviewHiddenBody toggles admin visibility of a review
type SetReviewHiddenBody struct {
	Hidden *bool `json:"hidden" binding:"required"`
}

// SetReviewHidden hides or unhides a review. Hidden reviews stay in listings
// with placeholder content.
// PATCH /api/v1/admin/reviews/:id/hidden
func (h *Handlers) SetReviewHidden(c *gin.Context) {
	reviewID := c.Param("id")

	var req SetReviewHiddenBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.ValidationError("hidden", "hidden flag is required"))
		return
	}

	var review models.Review
	if err := database.DB.First(&review, "id = ?", reviewID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			respondError(c, apperrors.NotFound("review"))
			return
		}
		respondError(c, apperrors.InternalError("failed to load review"))
		return
	}

	if err := database.DB.Model(&review).Update("is_hidden", *req.Hidden).Error; err != nil {
		respondError(c, apperrors.InternalError("failed to update review"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": review.ID, "is_hidden": *req.Hidden})
}

// AdminListReviews is the moderation table behind the dashboard
// GET /api/v1/admin/reviews?type=&hidden=&deleted=
func (h *Handlers) AdminListReviews(c *gin.Context) {
	query := database.DB.Preload("Author").Preload("Images").Order("created_at DESC")

	if t := c.Query("type"); t != "" {
		facilityType := models.FacilityType(t)
		if !facilityType.Valid() {
			respondError(c, apperrors.ValidationError("type", "unknown facility type"))
			return
		}
		query = query.Where("facility_type = ?", facilityType)
	}
	if hidden := c.Query("hidden"); hidden != "" {
		query = query.Where("is_hidden = ?", hidden == "true")
	}
	if deleted := c.Query("deleted"); deleted != "" {
		query = query.Where("is_deleted = ?", deleted == "true")
	}

	limit := util.ParseInt(c.DefaultQuery("limit", "50"), 50)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	var reviews []models.Review
	if err := query.Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
		respondError(c, apperrors.InternalError("failed to load reviews"))
		return
	}

	// Admins see stored content as-is, including hidden and deleted rows
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
