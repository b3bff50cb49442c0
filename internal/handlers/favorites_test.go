package handlers

import (
	"net/http"

	"github.com/mompick/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// FAVORITE TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestAddFavorite() {
	t := suite.T()

	w := suite.request("POST", "/api/v1/favorites", suite.testProfile.ID, map[string]interface{}{
		"target_type": "childcare",
		"target_id":   "11110000123",
		"target_name": "푸른숲 어린이집",
		"arcode":      "11110",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	response := suite.decode(w)
	assert.Equal(t, "childcare", response["target_type"])
	assert.Equal(t, "11110", response["arcode"])
}

func (suite *HandlersTestSuite) TestAddFavoriteDuplicateIsNoOp() {
	t := suite.T()
	body := map[string]interface{}{"target_type": "hospital", "target_id": "H123"}

	suite.request("POST", "/api/v1/favorites", suite.testProfile.ID, body)
	w := suite.request("POST", "/api/v1/favorites", suite.testProfile.ID, body)

	assert.Equal(t, http.StatusOK, w.Code)
	response := suite.decode(w)
	assert.Equal(t, true, response["favorited"])

	var count int64
	suite.db.Model(&models.Favorite{}).Where("profile_id = ?", suite.testProfile.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func (suite *HandlersTestSuite) TestAddFavoriteUnknownType() {
	t := suite.T()

	w := suite.request("POST", "/api/v1/favorites", suite.testProfile.ID, map[string]interface{}{
		"target_type": "restaurant",
		"target_id":   "R1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestRemoveFavorite() {
	t := suite.T()
	require.NoError(t, suite.db.Create(&models.Favorite{
		ProfileID:  suite.testProfile.ID,
		TargetType: models.FavoriteChildcare,
		TargetID:   "11110000123",
	}).Error)

	w := suite.request("DELETE", "/api/v1/favorites?target_type=childcare&target_id=11110000123", suite.testProfile.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.Favorite{}).Where("profile_id = ?", suite.testProfile.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	w = suite.request("DELETE", "/api/v1/favorites?target_type=childcare&target_id=11110000123", suite.testProfile.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestListFavoritesFilteredByType() {
	t := suite.T()
	require.NoError(t, suite.db.Create(&models.Favorite{
		ProfileID: suite.testProfile.ID, TargetType: models.FavoriteChildcare, TargetID: "C1",
	}).Error)
	require.NoError(t, suite.db.Create(&models.Favorite{
		ProfileID: suite.testProfile.ID, TargetType: models.FavoriteHospital, TargetID: "H1",
	}).Error)
	require.NoError(t, suite.db.Create(&models.Favorite{
		ProfileID: suite.otherProfile.ID, TargetType: models.FavoriteChildcare, TargetID: "C1",
	}).Error)

	w := suite.request("GET", "/api/v1/favorites", suite.testProfile.ID, nil)
	response := suite.decode(w)
	assert.Len(t, response["favorites"].([]interface{}), 2)

	w = suite.request("GET", "/api/v1/favorites?type=hospital", suite.testProfile.ID, nil)
	response = suite.decode(w)
	favorites := response["favorites"].([]interface{})
	require.Len(t, favorites, 1)
	assert.Equal(t, "H1", favorites[0].(map[string]interface{})["target_id"])
}

func (suite *HandlersTestSuite) TestCheckFavorite() {
	t := suite.T()
	require.NoError(t, suite.db.Create(&models.Favorite{
		ProfileID: suite.testProfile.ID, TargetType: models.FavoritePlayground, TargetID: "P1",
	}).Error)

	w := suite.request("GET", "/api/v1/favorites/check?target_type=playground&target_id=P1", suite.testProfile.ID, nil)
	response := suite.decode(w)
	assert.Equal(t, true, response["favorited"])

	w = suite.request("GET", "/api/v1/favorites/check?target_type=playground&target_id=P2", suite.testProfile.ID, nil)
	response = suite.decode(w)
	assert.Equal(t, false, response["favorited"])
}
