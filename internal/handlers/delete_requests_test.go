package handlers

import (
	"net/http"

	"github.com/mompick/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) createDeleteRequest(review *models.Review, requester *models.Profile) *models.ReviewDeleteRequest {
	request := &models.ReviewDeleteRequest{
		ReviewID:      review.ID,
		ReviewType:    review.FacilityType,
		RequesterID:   requester.ID,
		Status:        models.DeleteRequestPending,
		RequestReason: "개인 정보가 포함되어 있어 삭제를 요청합니다.",
	}
	require.NoError(suite.T(), suite.db.Create(request).Error)
	return request
}

// =============================================================================
// DELETE REQUEST SUBMISSION TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestCreateDeleteRequest() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)

	w := suite.request("POST", "/api/v1/reviews/"+review.ID+"/delete-requests", suite.testProfile.ID, map[string]interface{}{
		"reason": "이사를 가게 되어서 후기를 내리고 싶습니다.",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	response := suite.decode(w)
	assert.Equal(t, "pending", response["status"])
	assert.Equal(t, review.ID, response["review_id"])

	// Associations were never loaded here; zero-value stubs must not leak
	assert.NotContains(t, response, "review")
	assert.NotContains(t, response, "requester")

	// The review itself is untouched until an admin approves
	var stored models.Review
	require.NoError(t, suite.db.First(&stored, "id = ?", review.ID).Error)
	assert.False(t, stored.IsDeleted)
}

func (suite *HandlersTestSuite) TestCreateDeleteRequestRejectsSecondPending() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)
	suite.createDeleteRequest(review, suite.testProfile)

	w := suite.request("POST", "/api/v1/reviews/"+review.ID+"/delete-requests", suite.testProfile.ID, map[string]interface{}{
		"reason": "다시 한번 삭제를 요청해 봅니다만 거절되어야 합니다.",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestCreateDeleteRequestAllowedAfterRejection() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)
	request := suite.createDeleteRequest(review, suite.testProfile)
	suite.db.Model(request).Update("status", models.DeleteRequestRejected)

	w := suite.request("POST", "/api/v1/reviews/"+review.ID+"/delete-requests", suite.testProfile.ID, map[string]interface{}{
		"reason": "거절된 뒤에는 새 요청을 다시 넣을 수 있어야 합니다.",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func (suite *HandlersTestSuite) TestCreateDeleteRequestRejectsNonOwner() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)

	w := suite.request("POST", "/api/v1/reviews/"+review.ID+"/delete-requests", suite.otherProfile.ID, map[string]interface{}{
		"reason": "내 후기가 아닌 후기의 삭제를 요청해 봅니다.",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func (suite *HandlersTestSuite) TestCreateDeleteRequestReasonValidation() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)

	w := suite.request("POST", "/api/v1/reviews/"+review.ID+"/delete-requests", suite.testProfile.ID, map[string]interface{}{
		"reason": "짧은 사유",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// =============================================================================
// ADMIN RESOLUTION TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestUpdateDeleteRequestApproveSoftDeletesReview() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)
	request := suite.createDeleteRequest(review, suite.testProfile)

	w := suite.request("PATCH", "/api/v1/admin/delete-requests/"+request.ID, suite.adminProfile.ID, map[string]interface{}{
		"status":      "approved",
		"admin_notes": "요청 사유 확인 완료",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	response := suite.decode(w)
	assert.Equal(t, "approved", response["status"])

	var stored models.Review
	require.NoError(t, suite.db.First(&stored, "id = ?", review.ID).Error)
	assert.True(t, stored.IsDeleted)
}

func (suite *HandlersTestSuite) TestUpdateDeleteRequestRejectKeepsReview() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)
	request := suite.createDeleteRequest(review, suite.testProfile)

	w := suite.request("PATCH", "/api/v1/admin/delete-requests/"+request.ID, suite.adminProfile.ID, map[string]interface{}{
		"status": "rejected",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.Review
	require.NoError(t, suite.db.First(&stored, "id = ?", review.ID).Error)
	assert.False(t, stored.IsDeleted)
}

func (suite *HandlersTestSuite) TestUpdateDeleteRequestAlreadyResolved() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)
	request := suite.createDeleteRequest(review, suite.testProfile)
	suite.db.Model(request).Update("status", models.DeleteRequestRejected)

	w := suite.request("PATCH", "/api/v1/admin/delete-requests/"+request.ID, suite.adminProfile.ID, map[string]interface{}{
		"status": "approved",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestUpdateDeleteRequestRejectsPendingStatus() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)
	request := suite.createDeleteRequest(review, suite.testProfile)

	w := suite.request("PATCH", "/api/v1/admin/delete-requests/"+request.ID, suite.adminProfile.ID, map[string]interface{}{
		"status": "pending",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestAdminRoutesRequireAdmin() {
	t := suite.T()

	w := suite.request("GET", "/api/v1/admin/delete-requests", suite.testProfile.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = suite.request("GET", "/api/v1/admin/delete-requests", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestListDeleteRequests() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)
	suite.createDeleteRequest(review, suite.testProfile)

	other := suite.createReview(suite.otherProfile, models.FacilityChildcare, "11110000123", 3)
	resolved := suite.createDeleteRequest(other, suite.otherProfile)
	suite.db.Model(resolved).Update("status", models.DeleteRequestApproved)

	w := suite.request("GET", "/api/v1/admin/delete-requests?status=pending", suite.adminProfile.ID, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	response := suite.decode(w)
	requests := response["delete_requests"].([]interface{})
	require.Len(t, requests, 1)
	row := requests[0].(map[string]interface{})
	assert.Equal(t, "pending", row["status"])
	// Review and requester are preloaded for the moderation queue
	assert.NotNil(t, row["review"])
	assert.NotNil(t, row["requester"])
}

func (suite *HandlersTestSuite) TestDeleteDeleteRequest() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)
	request := suite.createDeleteRequest(review, suite.testProfile)

	w := suite.request("DELETE", "/api/v1/admin/delete-requests/"+request.ID, suite.adminProfile.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.ReviewDeleteRequest{}).Count(&count)
	assert.Equal(t, int64(0), count)

	w = suite.request("DELETE", "/api/v1/admin/delete-requests/"+request.ID, suite.adminProfile.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
