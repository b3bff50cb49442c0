package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mompick/backend/internal/database"
	apperrors "github.com/mompick/backend/internal/errors"
	"github.com/mompick/backend/internal/logger"
	"github.com/mompick/backend/internal/models"
	"github.com/mompick/backend/internal/storage"
	"github.com/mompick/backend/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const hiddenReviewPlaceholder = "이 후기는 관리자에 의해 숨김 처리되었습니다."

const statsCacheTTL = 5 * time.Minute

// AuthorInfo is the public slice of a review author's profile
type AuthorInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// anonymousAuthor is served when the author profile cannot be resolved
var anonymousAuthor = AuthorInfo{Name: "익명"}

// ReviewResponse is one review row as returned by the listing endpoints
type ReviewResponse struct {
	ID           string               `json:"id"`
	FacilityType models.FacilityType  `json:"facility_type"`
	FacilityCode string               `json:"facility_code"`
	FacilityName string               `json:"facility_name,omitempty"`
	Rating       int                  `json:"rating"`
	Content      string               `json:"content"`
	HelpfulCount int                  `json:"helpful_count"`
	IsHidden     bool                 `json:"is_hidden"`
	Author       AuthorInfo           `json:"author"`
	Images       []models.ReviewImage `json:"images"`
	CreatedAt    time.Time            `json:"created_at"`
}

// toReviewResponse shapes a review for output. Hidden reviews get placeholder
// content and lose their images so the stored text never leaves the server.
func toReviewResponse(r *models.Review) ReviewResponse {
	resp := ReviewResponse{
		ID:           r.ID,
		FacilityType: r.FacilityType,
		FacilityCode: r.FacilityCode,
		FacilityName: r.FacilityName,
		Rating:       r.Rating,
		Content:      r.Content,
		HelpfulCount: r.HelpfulCount,
		IsHidden:     r.IsHidden,
		Images:       r.Images,
		CreatedAt:    r.CreatedAt,
	}
	if resp.Images == nil {
		resp.Images = []models.ReviewImage{}
	}

	if r.Author.ID != "" {
		resp.Author = AuthorInfo{
			ID:       r.Author.ID,
			Name:     r.Author.DisplayName(),
			ImageURL: r.Author.ProfileImageURL,
		}
	} else {
		resp.Author = anonymousAuthor
	}

	if r.IsHidden {
		resp.Content = hiddenReviewPlaceholder
		resp.Images = []models.ReviewImage{}
	}

	return resp
}

func facilityTypeParam(c *gin.Context) (models.FacilityType, bool) {
	t := models.FacilityType(c.Param("type"))
	if !t.Valid() {
		respondError(c, apperrors.ValidationError("type", "unknown facility type"))
		return "", false
	}
	return t, true
}

// ListReviews returns a facility's non-deleted reviews
// GET /api/v1/facilities/:type/:code/reviews?page=&limit=&sort=
func (h *Handlers) ListReviews(c *gin.Context) {
	facilityType, ok := facilityTypeParam(c)
	if !ok {
		return
	}
	code := c.Param("code")

	page := util.ParseInt(c.DefaultQuery("page", "1"), 1)
	if page < 1 {
		page = 1
	}
	limit := util.ParseInt(c.DefaultQuery("limit", "10"), 10)
	if limit < 1 || limit > 50 {
		limit = 10
	}

	base := database.DB.Model(&models.Review{}).
		Where("facility_type = ? AND facility_code = ? AND is_deleted = false", facilityType, code)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		respondError(c, apperrors.InternalError("failed to count reviews"))
		return
	}

	query := base.Session(&gorm.Session{}).
		Preload("Images").
		Preload("Author").
		Offset((page - 1) * limit).
		Limit(limit)

	switch c.DefaultQuery("sort", "latest") {
	case "rating":
		query = query.Order("rating DESC, created_at DESC")
	case "helpful":
		query = query.Order("helpful_count DESC, created_at DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		respondError(c, apperrors.InternalError("failed to load reviews"))
		return
	}

	// The caller's block list prunes the returned page only; total and
	// has_more stay unfiltered so pagination is stable across viewers.
	blocked := map[string]bool{}
	if viewerID, ok := util.OptionalProfileID(c); ok {
		blocked = h.blockedIDs(viewerID)
	}

	items := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		if blocked[reviews[i].ProfileID] {
			continue
		}
		items = append(items, toReviewResponse(&reviews[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":  items,
		"total":    total,
		"page":     page,
		"limit":    limit,
		"has_more": int64(page*limit) < total,
	})
}

func (h *Handlers) blockedIDs(viewerID string) map[string]bool {
	var rows []models.BlockedUser
	if err := database.DB.Where("blocker_id = ?", viewerID).Find(&rows).Error; err != nil {
		logger.Warn("Failed to load block list",
			zap.Error(err), logger.WithProfileID(viewerID))
		return map[string]bool{}
	}
	blocked := make(map[string]bool, len(rows))
	for _, r := range rows {
		blocked[r.BlockedID] = true
	}
	return blocked
}

// reviewStats is the aggregate shape for one facility
type reviewStats struct {
	Total        int64          `json:"total"`
	Average      float64        `json:"average"`
	Distribution map[string]int `json:"distribution"`
}

func (h *Handlers) computeStats(facilityType models.FacilityType, code string) (*reviewStats, error) {
	type row struct {
		Rating int
		Cnt    int
	}
	var rows []row
	err := database.DB.Model(&models.Review{}).
		Select("rating, COUNT(*) as cnt").
		Where("facility_type = ? AND facility_code = ? AND is_deleted = false", facilityType, code).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &reviewStats{Distribution: map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}}
	sum := 0
	for _, r := range rows {
		if r.Rating < 1 || r.Rating > 5 {
			continue
		}
		stats.Distribution[fmt.Sprintf("%d", r.Rating)] = r.Cnt
		stats.Total += int64(r.Cnt)
		sum += r.Rating * r.Cnt
	}
	if stats.Total > 0 {
		stats.Average = math.Round(float64(sum)/float64(stats.Total)*10) / 10
	}
	return stats, nil
}

func statsCacheKey(facilityType models.FacilityType, code string) string {
	return fmt.Sprintf("review_stats:%s:%s", facilityType, code)
}

// invalidateStats drops the cached aggregates after any review write
func (h *Handlers) invalidateStats(facilityType models.FacilityType, code string) {
	if err := h.redis.Del(context.Background(), statsCacheKey(facilityType, code)); err != nil {
		logger.Warn("Failed to invalidate stats cache", zap.Error(err))
	}
}

// ReviewStats returns aggregate rating stats for a facility.
// The caller's block list is deliberately NOT applied here.
// GET /api/v1/facilities/:type/:code/reviews/stats
func (h *Handlers) ReviewStats(c *gin.Context) {
	facilityType, ok := facilityTypeParam(c)
	if !ok {
		return
	}
	code := c.Param("code")

	key := statsCacheKey(facilityType, code)
	if cached, err := h.redis.Get(c.Request.Context(), key); err == nil && cached != "" {
		var stats reviewStats
		if json.Unmarshal([]byte(cached), &stats) == nil {
			c.JSON(http.StatusOK, stats)
			return
		}
	}

	stats, err := h.computeStats(facilityType, code)
	if err != nil {
		respondError(c, apperrors.InternalError("failed to compute stats"))
		return
	}

	if payload, err := json.Marshal(stats); err == nil {
		if err := h.redis.SetEx(c.Request.Context(), key, payload, statsCacheTTL); err != nil {
			logger.Warn("Failed to cache stats", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, stats)
}

// BulkRatings returns per-facility average ratings for a code list
// GET /api/v1/facilities/:type/reviews/ratings?codes=a,b,c
func (h *Handlers) BulkRatings(c *gin.Context) {
	facilityType, ok := facilityTypeParam(c)
	if !ok {
		return
	}

	codes := util.ParseCodeList(c.Query("codes"))
	if len(codes) == 0 {
		respondError(c, apperrors.ValidationError("codes", "at least one facility code is required"))
		return
	}
	if len(codes) > 100 {
		respondError(c, apperrors.ValidationError("codes", "at most 100 facility codes per request"))
		return
	}

	type row struct {
		FacilityCode string
		Avg          float64
		Cnt          int64
	}
	var rows []row
	err := database.DB.Model(&models.Review{}).
		Select("facility_code, AVG(rating) as avg, COUNT(*) as cnt").
		Where("facility_type = ? AND facility_code IN ? AND is_deleted = false", facilityType, codes).
		Group("facility_code").
		Scan(&rows).Error
	if err != nil {
		respondError(c, apperrors.InternalError("failed to load ratings"))
		return
	}

	ratings := make(map[string]gin.H, len(codes))
	for _, code := range codes {
		ratings[code] = gin.H{"average": 0.0, "count": 0}
	}
	for _, r := range rows {
		ratings[r.FacilityCode] = gin.H{
			"average": math.Round(r.Avg*10) / 10,
			"count":   r.Cnt,
		}
	}

	c.JSON(http.StatusOK, gin.H{"ratings": ratings})
}

// CreateReviewRequest is the JSON body for review submission
type CreateReviewRequest struct {
	Rating       int    `json:"rating" form:"rating" binding:"required,min=1,max=5"`
	Content      string `json:"content" form:"content" binding:"required,min=10,max=2000"`
	FacilityName string `json:"facility_name" form:"facility_name"`
}

// CreateReview submits a review for a facility. Multipart requests may attach
// up to 5 images; image failures do not roll back the review row.
// POST /api/v1/facilities/:type/:code/reviews
func (h *Handlers) CreateReview(c *gin.Context) {
	profile, ok := util.GetProfileFromContext(c)
	if !ok {
		return
	}
	facilityType, ok := facilityTypeParam(c)
	if !ok {
		return
	}
	code := c.Param("code")

	var req CreateReviewRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, apperrors.BadRequest(err.Error()))
		return
	}

	review := models.Review{
		FacilityType: facilityType,
		FacilityCode: code,
		FacilityName: req.FacilityName,
		ProfileID:    profile.ID,
		Rating:       req.Rating,
		Content:      req.Content,
	}

	if err := database.DB.Create(&review).Error; err != nil {
		if apperrors.IsUniqueViolation(err) {
			respondError(c, apperrors.Conflict("you have already reviewed this facility"))
			return
		}
		logger.Warn("Failed to create review", zap.Error(err))
		respondError(c, apperrors.InternalError("failed to create review"))
		return
	}

	// Images are best-effort: the review stands even when an upload fails
	var form *multipart.Form
	if f, err := c.MultipartForm(); err == nil {
		form = f
	}
	var images []models.ReviewImage
	if form != nil {
		images = h.uploadReviewImages(c, &review, form.File["images"])
	}

	h.invalidateStats(facilityType, code)

	review.Images = images
	review.Author = *profile
	c.JSON(http.StatusCreated, toReviewResponse(&review))
}

// uploadReviewImages stores attachments in submission order and inserts their
// rows. A failed upload skips that image and logs; it never fails the request.
func (h *Handlers) uploadReviewImages(c *gin.Context, review *models.Review, files []*multipart.FileHeader) []models.ReviewImage {
	const maxImages = 5

	images := make([]models.ReviewImage, 0, len(files))
	for i, fh := range files {
		if i >= maxImages {
			break
		}

		data, err := readUpload(fh)
		if err != nil {
			logger.Warn("Failed to read review image",
				zap.Error(err), logger.WithReviewID(review.ID))
			continue
		}

		ext := filepath.Ext(fh.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := fmt.Sprintf("review-images/%s/%d_%d%s",
			review.ID, i, time.Now().UnixMilli(), ext)

		if err := h.blobs.Put(c.Request.Context(), key, data, storage.ImageContentType(ext)); err != nil {
			logger.Warn("Failed to upload review image",
				zap.Error(err), logger.WithReviewID(review.ID))
			continue
		}

		img := models.ReviewImage{
			ReviewID:   review.ID,
			ImageURL:   h.blobs.PublicURL(key),
			ImageOrder: i,
		}
		if err := database.DB.Create(&img).Error; err != nil {
			logger.Warn("Failed to save review image row",
				zap.Error(err), logger.WithReviewID(review.ID))
			continue
		}
		images = append(images, img)
	}
	return images
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	const maxImageSize = 10 << 20 // 10 MB

	if fh.Size > maxImageSize {
		return nil, fmt.Errorf("image too large: %d bytes", fh.Size)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxImageSize))
}

// MyReview returns the caller's own review of a facility
// GET /api/v1/facilities/:type/:code/reviews/mine
func (h *Handlers) MyReview(c *gin.Context) {
	profileID, ok := util.GetProfileIDFromContext(c)
	if !ok {
		return
	}
	facilityType, ok := facilityTypeParam(c)
	if !ok {
		return
	}
	code := c.Param("code")

	var review models.Review
	err := database.DB.Preload("Images").Preload("Author").
		Where("facility_type = ? AND facility_code = ? AND profile_id = ? AND is_deleted = false",
			facilityType, code, profileID).
		First(&review).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			respondError(c, apperrors.NotFound("review"))
			return
		}
		respondError(c, apperrors.InternalError("failed to load review"))
		return
	}

	c.JSON(http.StatusOK, toReviewResponse(&review))
}

// DeleteOwnReview is the legacy direct soft delete of the caller's review,
// kept alongside the admin-gated delete-request path
// DELETE /api/v1/reviews/:id
func (h *Handlers) DeleteOwnReview(c *gin.Context) {
	profileID, ok := util.GetProfileIDFromContext(c)
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

	if review.ProfileID != profileID {
		respondError(c, apperrors.Forbidden("you can only delete your own review"))
		return
	}

	if err := database.DB.Model(&review).Update("is_deleted", true).Error; err != nil {
		respondError(c, apperrors.InternalError("failed to delete review"))
		return
	}

	h.invalidateStats(review.FacilityType, review.FacilityCode)

	c.JSON(http.StatusOK, gin.H{"message": "review deleted", "id": review.ID})
}
