package handlers

import (
	"net/http"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// FACILITY DETAIL TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestFacilityDetail() {
	t := suite.T()

	w := suite.request("GET", "/api/v1/facilities/childcare/11110000123/detail", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	response := suite.decode(w)
	assert.Equal(t, "11110000123", response["code"])
	assert.Equal(t, "푸른숲 어린이집", response["name"])
	assert.Equal(t, "국공립", response["type"])
	assert.Equal(t, float64(60), response["capacity"])
	assert.Equal(t, float64(48), response["enrolled"])
}

func (suite *HandlersTestSuite) TestFacilityDetailUnknownType() {
	t := suite.T()

	w := suite.request("GET", "/api/v1/facilities/zoo/11110000123/detail", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestFacilityDetailCacheOnlyColdCache() {
	t := suite.T()

	// Cold cache with cache_only never reaches upstream and yields nothing
	w := suite.request("GET", "/api/v1/facilities/kindergarten/K-COLD/detail?cache_only=true", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
