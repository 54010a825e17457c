package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"exoplanet-finder-api/config"
	"exoplanet-finder-api/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth() *services.AuthService {
	return services.NewAuthService(config.JWTConfig{
		Secret:             "test-secret",
		AccessExpiryMin:    15,
		RefreshExpiryHours: 24,
	}, &services.CacheService{})
}

func newAuthRouter(auth *services.AuthService, required bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	mw := OptionalAuth(auth)
	if required {
		mw = RequireAuth(auth)
	}

	r.GET("/whoami", mw, func(c *gin.Context) {
		if id := UserID(c); id != nil {
			c.JSON(http.StatusOK, gin.H{"user_id": *id})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": nil})
	})
	return r
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	router := newAuthRouter(newTestAuth(), true)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthRejectsGarbageToken(t *testing.T) {
	router := newAuthRouter(newTestAuth(), true)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthAcceptsBearerToken(t *testing.T) {
	auth := newTestAuth()
	router := newAuthRouter(auth, true)

	token, err := auth.GenerateAccessToken(42, "user@test.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":42`)
}

func TestRequireAuthAcceptsCookie(t *testing.T) {
	auth := newTestAuth()
	router := newAuthRouter(auth, true)

	token, err := auth.GenerateAccessToken(7, "user@test.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}

func TestRequireAuthRejectsRefreshToken(t *testing.T) {
	auth := newTestAuth()
	router := newAuthRouter(auth, true)

	refresh, err := auth.GenerateRefreshToken(7, "user@test.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code, "refresh tokens must not grant access")
}

func TestOptionalAuthPassesAnonymous(t *testing.T) {
	router := newAuthRouter(newTestAuth(), false)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":null`)
}

func TestOptionalAuthAttachesIdentity(t *testing.T) {
	auth := newTestAuth()
	router := newAuthRouter(auth, false)

	token, err := auth.GenerateAccessToken(9, "user@test.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":9`)
}
