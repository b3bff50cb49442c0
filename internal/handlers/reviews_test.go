package handlers

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/mompick/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// REVIEW CREATION TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestCreateReview() {
	t := suite.T()

	w := suite.request("POST", "/api/v1/facilities/childcare/11110000123/reviews", suite.testProfile.ID, map[string]interface{}{
		"rating":        5,
		"content":       "시설이 깨끗하고 선생님들이 아이를 정성껏 돌봐주세요.",
		"facility_name": "푸른숲 어린이집",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	response := suite.decode(w)
	assert.NotEmpty(t, response["id"])
	assert.Equal(t, float64(5), response["rating"])
	assert.Equal(t, "childcare", response["facility_type"])
	assert.Equal(t, "11110000123", response["facility_code"])

	var count int64
	suite.db.Model(&models.Review{}).Where("profile_id = ?", suite.testProfile.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func (suite *HandlersTestSuite) TestCreateReviewWithImages() {
	t := suite.T()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("rating", "5"))
	require.NoError(t, form.WriteField("content", "놀이 공간이 넓고 사진처럼 채광이 좋아요."))
	part, err := form.CreateFormFile("images", "playground.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG not a real image"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req, _ := http.NewRequest("POST", "/api/v1/facilities/childcare/11110000123/reviews", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("X-Profile-ID", suite.testProfile.ID)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	response := suite.decode(w)
	reviewID := response["id"].(string)

	images, ok := response["images"].([]interface{})
	require.True(t, ok)
	require.Len(t, images, 1)
	imageURL := images[0].(map[string]interface{})["image_url"].(string)

	// Uploads are keyed under the review with their submission index and a
	// content type derived from the filename
	key := strings.TrimPrefix(imageURL, suite.blobs.PublicURL(""))
	assert.True(t, strings.HasPrefix(key, "review-images/"+reviewID+"/0_"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)

	_, err = suite.blobs.Head(context.Background(), key)
	assert.NoError(t, err)
	assert.Equal(t, "image/png", suite.blobs.ObjectContentType(key))

	var count int64
	suite.db.Model(&models.ReviewImage{}).Where("review_id = ?", reviewID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func (suite *HandlersTestSuite) TestCreateReviewRejectsSecondReviewForSameFacility() {
	t := suite.T()
	suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 4)

	w := suite.request("POST", "/api/v1/facilities/childcare/11110000123/reviews", suite.testProfile.ID, map[string]interface{}{
		"rating":  2,
		"content": "두번째 후기를 올려보려고 합니다만 거절되어야 합니다.",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestCreateReviewAllowsSameUserAcrossFacilityTypes() {
	t := suite.T()
	suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 4)

	// Same code under a different facility type is a different facility
	w := suite.request("POST", "/api/v1/facilities/kindergarten/11110000123/reviews", suite.testProfile.ID, map[string]interface{}{
		"rating":  4,
		"content": "유치원으로도 같은 코드의 시설에 후기를 남길 수 있어요.",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func (suite *HandlersTestSuite) TestCreateReviewValidation() {
	t := suite.T()

	// Rating out of range
	w := suite.request("POST", "/api/v1/facilities/childcare/123/reviews", suite.testProfile.ID, map[string]interface{}{
		"rating":  6,
		"content": "별점이 범위를 벗어나면 거절되어야 합니다.",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Content too short
	w = suite.request("POST", "/api/v1/facilities/childcare/123/reviews", suite.testProfile.ID, map[string]interface{}{
		"rating":  3,
		"content": "짧음",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown facility type
	w = suite.request("POST", "/api/v1/facilities/petshop/123/reviews", suite.testProfile.ID, map[string]interface{}{
		"rating":  3,
		"content": "알 수 없는 시설 유형은 거절되어야 합니다.",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestCreateReviewRequiresAuth() {
	t := suite.T()

	w := suite.request("POST", "/api/v1/facilities/childcare/123/reviews", "", map[string]interface{}{
		"rating":  3,
		"content": "로그인 없이 후기를 남길 수 없어야 합니다.",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// =============================================================================
// REVIEW LISTING TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestListReviews() {
	t := suite.T()
	suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)
	suite.createReview(suite.otherProfile, models.FacilityChildcare, "11110000123", 3)
	// Different facility, must not appear
	suite.createReview(suite.otherProfile, models.FacilityChildcare, "99990000999", 1)

	w := suite.request("GET", "/api/v1/facilities/childcare/11110000123/reviews", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	response := suite.decode(w)
	reviews := response["reviews"].([]interface{})
	assert.Len(t, reviews, 2)
	assert.Equal(t, float64(2), response["total"])
	assert.Equal(t, false, response["has_more"])
}

func (suite *HandlersTestSuite) TestListReviewsPagination() {
	t := suite.T()
	for i := 0; i < 3; i++ {
		p := suite.createProfile(fmt.Sprintf("pager%d@test.com", i), "페이저", false)
		suite.createReview(p, models.FacilityChildcare, "11110000123", 4)
	}

	w := suite.request("GET", "/api/v1/facilities/childcare/11110000123/reviews?page=1&limit=2", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	response := suite.decode(w)
	assert.Len(t, response["reviews"].([]interface{}), 2)
	assert.Equal(t, float64(3), response["total"])
	assert.Equal(t, true, response["has_more"])

	w = suite.request("GET", "/api/v1/facilities/childcare/11110000123/reviews?page=2&limit=2", "", nil)
	response = suite.decode(w)
	assert.Len(t, response["reviews"].([]interface{}), 1)
	assert.Equal(t, false, response["has_more"])
}

func (suite *HandlersTestSuite) TestListReviewsExcludesDeleted() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)
	suite.db.Model(review).Update("is_deleted", true)

	w := suite.request("GET", "/api/v1/facilities/childcare/11110000123/reviews", "", nil)

	response := suite.decode(w)
	assert.Len(t, response["reviews"].([]interface{}), 0)
	assert.Equal(t, float64(0), response["total"])
}

func (suite *HandlersTestSuite) TestListReviewsHiddenContentPlaceholdered() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)
	suite.db.Model(review).Update("is_hidden", true)

	w := suite.request("GET", "/api/v1/facilities/childcare/11110000123/reviews", "", nil)

	response := suite.decode(w)
	reviews := response["reviews"].([]interface{})
	require.Len(t, reviews, 1)
	row := reviews[0].(map[string]interface{})
	assert.Equal(t, hiddenReviewPlaceholder, row["content"])
	assert.NotContains(t, w.Body.String(), review.Content)
	assert.Equal(t, true, row["is_hidden"])
	assert.Len(t, row["images"].([]interface{}), 0)
}

func (suite *HandlersTestSuite) TestListReviewsBlockFiltersPageOnly() {
	t := suite.T()
	suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)
	suite.createReview(suite.otherProfile, models.FacilityChildcare, "11110000123", 1)

	require.NoError(t, suite.db.Create(&models.BlockedUser{
		BlockerID: suite.testProfile.ID,
		BlockedID: suite.otherProfile.ID,
	}).Error)

	// Viewer with a block: page loses the blocked row, total does not
	w := suite.request("GET", "/api/v1/facilities/childcare/11110000123/reviews", suite.testProfile.ID, nil)
	response := suite.decode(w)
	assert.Len(t, response["reviews"].([]interface{}), 1)
	assert.Equal(t, float64(2), response["total"])

	// Anonymous viewer sees everything
	w = suite.request("GET", "/api/v1/facilities/childcare/11110000123/reviews", "", nil)
	response = suite.decode(w)
	assert.Len(t, response["reviews"].([]interface{}), 2)
}

func (suite *HandlersTestSuite) TestListReviewsSortByRating() {
	t := suite.T()
	suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 2)
	suite.createReview(suite.otherProfile, models.FacilityChildcare, "11110000123", 5)

	w := suite.request("GET", "/api/v1/facilities/childcare/11110000123/reviews?sort=rating", "", nil)

	response := suite.decode(w)
	reviews := response["reviews"].([]interface{})
	require.Len(t, reviews, 2)
	first := reviews[0].(map[string]interface{})
	assert.Equal(t, float64(5), first["rating"])
}

// =============================================================================
// STATS AND BULK RATINGS TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestReviewStats() {
	t := suite.T()
	suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)
	suite.createReview(suite.otherProfile, models.FacilityChildcare, "11110000123", 4)

	w := suite.request("GET", "/api/v1/facilities/childcare/11110000123/reviews/stats", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	response := suite.decode(w)
	assert.Equal(t, float64(2), response["total"])
	assert.Equal(t, 4.5, response["average"])
	dist := response["distribution"].(map[string]interface{})
	assert.Equal(t, float64(1), dist["5"])
	assert.Equal(t, float64(1), dist["4"])
	assert.Equal(t, float64(0), dist["1"])
}

func (suite *HandlersTestSuite) TestReviewStatsIgnoreBlocksAndCountHidden() {
	t := suite.T()
	review := suite.createReview(suite.otherProfile, models.FacilityChildcare, "11110000123", 2)
	suite.db.Model(review).Update("is_hidden", true)
	require.NoError(t, suite.db.Create(&models.BlockedUser{
		BlockerID: suite.testProfile.ID,
		BlockedID: suite.otherProfile.ID,
	}).Error)

	w := suite.request("GET", "/api/v1/facilities/childcare/11110000123/reviews/stats", suite.testProfile.ID, nil)

	response := suite.decode(w)
	assert.Equal(t, float64(1), response["total"])
	assert.Equal(t, float64(2), response["average"])
}

func (suite *HandlersTestSuite) TestBulkRatings() {
	t := suite.T()
	suite.createReview(suite.testProfile, models.FacilityChildcare, "A1", 4)
	suite.createReview(suite.otherProfile, models.FacilityChildcare, "A1", 5)
	suite.createReview(suite.testProfile, models.FacilityChildcare, "B2", 1)

	w := suite.request("GET", "/api/v1/facilities/childcare/reviews/ratings?codes=A1,B2,C3", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	response := suite.decode(w)
	ratings := response["ratings"].(map[string]interface{})
	a1 := ratings["A1"].(map[string]interface{})
	assert.Equal(t, 4.5, a1["average"])
	assert.Equal(t, float64(2), a1["count"])
	// Unreviewed codes are zero-filled, not omitted
	c3 := ratings["C3"].(map[string]interface{})
	assert.Equal(t, float64(0), c3["count"])
}

func (suite *HandlersTestSuite) TestBulkRatingsRequiresCodes() {
	t := suite.T()

	w := suite.request("GET", "/api/v1/facilities/childcare/reviews/ratings", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// =============================================================================
// MY REVIEW / SELF DELETE TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestMyReview() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)

	w := suite.request("GET", "/api/v1/facilities/childcare/11110000123/reviews/mine", suite.testProfile.ID, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	response := suite.decode(w)
	assert.Equal(t, review.ID, response["id"])
}

func (suite *HandlersTestSuite) TestMyReviewNotFound() {
	t := suite.T()

	w := suite.request("GET", "/api/v1/facilities/childcare/11110000123/reviews/mine", suite.testProfile.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestDeleteOwnReview() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)

	w := suite.request("DELETE", "/api/v1/reviews/"+review.ID, suite.testProfile.ID, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	// Soft delete: row remains, flagged
	var stored models.Review
	require.NoError(t, suite.db.First(&stored, "id = ?", review.ID).Error)
	assert.True(t, stored.IsDeleted)
}

func (suite *HandlersTestSuite) TestDeleteOwnReviewRejectsNonOwner() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)

	w := suite.request("DELETE", "/api/v1/reviews/"+review.ID, suite.otherProfile.ID, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var stored models.Review
	require.NoError(t, suite.db.First(&stored, "id = ?", review.ID).Error)
	assert.False(t, stored.IsDeleted)
}
