package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"

	"jobpath-backend/internal/database"
)

func TestLogoutSuccess(t *testing.T) {
	accessToken, err := GetAccessToken(t, testDB, database.TestUserCandidate1.Username, database.TestSeedPassword)
	assert.NoError(t, err)
	assert.NotEmpty(t, accessToken)

	blacklistStore := NewInMemoryBlacklistStore()
	logoutController := NewLogoutController(blacklistStore)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request, err = http.NewRequest(http.MethodPost, "/logout", nil)
	assert.NoError(t, err)
	c.Request.Header.Set("Authorization", "Bearer "+accessToken)

	// Parse and set claims in context (simulating middleware behavior)
	token, err := ValidatedToken(accessToken)
	assert.NoError(t, err)
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	assert.True(t, ok)
	c.Set("claims", claims)

	logoutController.LogoutHandler(c)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "Successfully logged out", resp["message"])

	isBlacklisted, err := blacklistStore.IsBlacklisted(accessToken)
	assert.NoError(t, err)
	assert.True(t, isBlacklisted, "Token should be blacklisted after logout")
}

func TestLogoutMissingToken(t *testing.T) {
	logoutController := NewLogoutController(NewInMemoryBlacklistStore())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	var err error
	c.Request, err = http.NewRequest(http.MethodPost, "/logout", nil)
	assert.NoError(t, err)

	logoutController.LogoutHandler(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutMissingClaims(t *testing.T) {
	accessToken, err := GetAccessToken(t, testDB, database.TestUserCandidate1.Username, database.TestSeedPassword)
	assert.NoError(t, err)

	logoutController := NewLogoutController(NewInMemoryBlacklistStore())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request, err = http.NewRequest(http.MethodPost, "/logout", nil)
	assert.NoError(t, err)
	c.Request.Header.Set("Authorization", "Bearer "+accessToken)

	// No claims set: middleware did not run.
	logoutController.LogoutHandler(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
