package handlers

import (
	"net/http"

	"github.com/mompick/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// REVIEW HIDE / UNHIDE TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestSetReviewHidden() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)

	w := suite.request("PATCH", "/api/v1/admin/reviews/"+review.ID+"/hidden", suite.adminProfile.ID, map[string]interface{}{
		"hidden": true,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	response := suite.decode(w)
	assert.Equal(t, true, response["is_hidden"])

	var stored models.Review
	require.NoError(t, suite.db.First(&stored, "id = ?", review.ID).Error)
	assert.True(t, stored.IsHidden)
	// Stored content is untouched; only the read path placeholders it
	assert.Equal(t, review.Content, stored.Content)
}

func (suite *HandlersTestSuite) TestSetReviewHiddenUnhide() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)
	suite.db.Model(review).Update("is_hidden", true)

	w := suite.request("PATCH", "/api/v1/admin/reviews/"+review.ID+"/hidden", suite.adminProfile.ID, map[string]interface{}{
		"hidden": false,
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.Review
	require.NoError(t, suite.db.First(&stored, "id = ?", review.ID).Error)
	assert.False(t, stored.IsHidden)
}

func (suite *HandlersTestSuite) TestSetReviewHiddenRequiresFlag() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)

	w := suite.request("PATCH", "/api/v1/admin/reviews/"+review.ID+"/hidden", suite.adminProfile.ID, map[string]interface{}{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestSetReviewHiddenNotFound() {
	t := suite.T()

	w := suite.request("PATCH", "/api/v1/admin/reviews/00000000-0000-0000-0000-000000000000/hidden", suite.adminProfile.ID, map[string]interface{}{
		"hidden": true,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// =============================================================================
// ADMIN REVIEW LISTING TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestAdminListReviewsShowsStoredContent() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)
	suite.db.Model(review).Update("is_hidden", true)

	w := suite.request("GET", "/api/v1/admin/reviews", suite.adminProfile.ID, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	// Admins see the real content, not the placeholder
	assert.Contains(t, w.Body.String(), review.Content)
}

func (suite *HandlersTestSuite) TestAdminListReviewsFilters() {
	t := suite.T()
	hidden := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)
	suite.db.Model(hidden).Update("is_hidden", true)
	deleted := suite.createReview(suite.otherProfile, models.FacilityKindergarten, "22220000456", 3)
	suite.db.Model(deleted).Update("is_deleted", true)

	w := suite.request("GET", "/api/v1/admin/reviews?hidden=true", suite.adminProfile.ID, nil)
	response := suite.decode(w)
	require.Len(t, response["reviews"].([]interface{}), 1)

	w = suite.request("GET", "/api/v1/admin/reviews?deleted=true", suite.adminProfile.ID, nil)
	response = suite.decode(w)
	require.Len(t, response["reviews"].([]interface{}), 1)

	w = suite.request("GET", "/api/v1/admin/reviews?type=kindergarten", suite.adminProfile.ID, nil)
	response = suite.decode(w)
	require.Len(t, response["reviews"].([]interface{}), 1)

	w = suite.request("GET", "/api/v1/admin/reviews?type=aquarium", suite.adminProfile.ID, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
