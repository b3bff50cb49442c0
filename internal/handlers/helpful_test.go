package handlers

import (
	"net/http"

	"github.com/mompick/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// HELPFUL TOGGLE TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestToggleHelpfulMarks() {
	t := suite.T()
	review := suite.createReview(suite.otherProfile, models.FacilityChildcare, "11110000123", 5)

	w := suite.request("POST", "/api/v1/reviews/"+review.ID+"/helpful", suite.testProfile.ID, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	response := suite.decode(w)
	assert.Equal(t, true, response["marked"])
	assert.Equal(t, float64(1), response["helpful_count"])

	var count int64
	suite.db.Model(&models.ReviewHelpful{}).Where("review_id = ?", review.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	// The denormalized counter was written back
	var stored models.Review
	require.NoError(t, suite.db.First(&stored, "id = ?", review.ID).Error)
	assert.Equal(t, 1, stored.HelpfulCount)
}

func (suite *HandlersTestSuite) TestToggleHelpfulUnmarks() {
	t := suite.T()
	review := suite.createReview(suite.otherProfile, models.FacilityChildcare, "11110000123", 5)

	suite.request("POST", "/api/v1/reviews/"+review.ID+"/helpful", suite.testProfile.ID, nil)
	w := suite.request("POST", "/api/v1/reviews/"+review.ID+"/helpful", suite.testProfile.ID, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	response := suite.decode(w)
	assert.Equal(t, false, response["marked"])
	assert.Equal(t, float64(0), response["helpful_count"])

	var count int64
	suite.db.Model(&models.ReviewHelpful{}).Where("review_id = ?", review.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func (suite *HandlersTestSuite) TestToggleHelpfulRecountIsAuthoritative() {
	t := suite.T()
	review := suite.createReview(suite.otherProfile, models.FacilityChildcare, "11110000123", 5)
	// Drifted counter must be corrected by the toggle's recount
	suite.db.Model(&models.Review{}).Where("id = ?", review.ID).Update("helpful_count", 42)

	w := suite.request("POST", "/api/v1/reviews/"+review.ID+"/helpful", suite.testProfile.ID, nil)

	response := suite.decode(w)
	assert.Equal(t, float64(1), response["helpful_count"])

	var stored models.Review
	require.NoError(t, suite.db.First(&stored, "id = ?", review.ID).Error)
	assert.Equal(t, 1, stored.HelpfulCount)
}

func (suite *HandlersTestSuite) TestToggleHelpfulDeletedReview() {
	t := suite.T()
	review := suite.createReview(suite.otherProfile, models.FacilityChildcare, "11110000123", 5)
	suite.db.Model(review).Update("is_deleted", true)

	w := suite.request("POST", "/api/v1/reviews/"+review.ID+"/helpful", suite.testProfile.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// =============================================================================
// NOTIFICATION SIDE EFFECT TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestToggleHelpfulCreatesNotification() {
	t := suite.T()
	review := suite.createReview(suite.otherProfile, models.FacilityChildcare, "11110000123", 5)

	suite.request("POST", "/api/v1/reviews/"+review.ID+"/helpful", suite.testProfile.ID, nil)

	var notifications []models.Notification
	suite.db.Where("to_profile_id = ?", suite.otherProfile.ID).Find(&notifications)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationReviewLike, notifications[0].Type)
	assert.Equal(t, suite.testProfile.ID, notifications[0].FromProfileID)
	require.NotNil(t, notifications[0].ReviewID)
	assert.Equal(t, review.ID, *notifications[0].ReviewID)
}

func (suite *HandlersTestSuite) TestToggleHelpfulSelfMarkNoNotification() {
	t := suite.T()
	review := suite.createReview(suite.testProfile, models.FacilityChildcare, "11110000123", 5)

	w := suite.request("POST", "/api/v1/reviews/"+review.ID+"/helpful", suite.testProfile.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.Notification{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func (suite *HandlersTestSuite) TestToggleHelpfulUnmarkRemovesNotification() {
	t := suite.T()
	review := suite.createReview(suite.otherProfile, models.FacilityChildcare, "11110000123", 5)

	suite.request("POST", "/api/v1/reviews/"+review.ID+"/helpful", suite.testProfile.ID, nil)
	suite.request("POST", "/api/v1/reviews/"+review.ID+"/helpful", suite.testProfile.ID, nil)

	var count int64
	suite.db.Model(&models.Notification{}).
		Where("to_profile_id = ?", suite.otherProfile.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func (suite *HandlersTestSuite) TestToggleHelpfulRemarkNoDuplicateNotification() {
	t := suite.T()
	review := suite.createReview(suite.otherProfile, models.FacilityChildcare, "11110000123", 5)

	suite.request("POST", "/api/v1/reviews/"+review.ID+"/helpful", suite.testProfile.ID, nil)

	// Simulate an unmark whose notification cleanup failed: the mark row is
	// gone but the notification row survived
	suite.db.Where("review_id = ? AND profile_id = ?", review.ID, suite.testProfile.ID).
		Delete(&models.ReviewHelpful{})

	suite.request("POST", "/api/v1/reviews/"+review.ID+"/helpful", suite.testProfile.ID, nil)

	var count int64
	suite.db.Model(&models.Notification{}).
		Where("to_profile_id = ?", suite.otherProfile.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func (suite *HandlersTestSuite) TestToggleHelpfulReadNotificationDoesNotSuppress() {
	t := suite.T()
	review := suite.createReview(suite.otherProfile, models.FacilityChildcare, "11110000123", 5)

	suite.request("POST", "/api/v1/reviews/"+review.ID+"/helpful", suite.testProfile.ID, nil)

	// The author reads the notification, then the mark row disappears without
	// its notification being cleaned up
	suite.db.Model(&models.Notification{}).
		Where("to_profile_id = ?", suite.otherProfile.ID).Update("is_read", true)
	suite.db.Where("review_id = ? AND profile_id = ?", review.ID, suite.testProfile.ID).
		Delete(&models.ReviewHelpful{})

	// Only an unread row suppresses; a fresh mark notifies again
	suite.request("POST", "/api/v1/reviews/"+review.ID+"/helpful", suite.testProfile.ID, nil)

	var count int64
	suite.db.Model(&models.Notification{}).
		Where("to_profile_id = ?", suite.otherProfile.ID).Count(&count)
	assert.Equal(t, int64(2), count)
}

func (suite *HandlersTestSuite) TestToggleHelpfulRespectsOptOut() {
	t := suite.T()
	review := suite.createReview(suite.otherProfile, models.FacilityChildcare, "11110000123", 5)
	require.NoError(t, suite.db.Create(&models.NotificationSetting{
		ProfileID:         suite.otherProfile.ID,
		ReviewLikeEnabled: false,
		PushEnabled:       true,
	}).Error)

	w := suite.request("POST", "/api/v1/reviews/"+review.ID+"/helpful", suite.testProfile.ID, nil)
	// The mark itself still succeeds
	assert.Equal(t, http.StatusOK, w.Code)
	response := suite.decode(w)
	assert.Equal(t, true, response["marked"])

	var count int64
	suite.db.Model(&models.Notification{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
