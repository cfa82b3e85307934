package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediclic/vademecum-ai/internal/config"
	apperrors "github.com/mediclic/vademecum-ai/pkg/errors"
)

func testIssuer() *TokenIssuer {
	return NewTokenIssuer(config.AuthConfig{
		Secret:        "test-secret",
		AccessExpiry:  time.Hour,
		RefreshExpiry: 24 * time.Hour,
	})
}

func TestIssueAndParse(t *testing.T) {
	issuer := testIssuer()

	pair, err := issuer.Issue("user-1", "patient")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	claims, err := issuer.Parse(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "patient", claims.Role)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	pair, err := testIssuer().Issue("user-1", "patient")
	require.NoError(t, err)

	other := NewTokenIssuer(config.AuthConfig{
		Secret: "different-secret", AccessExpiry: time.Hour, RefreshExpiry: time.Hour,
	})
	_, err = other.Parse(pair.AccessToken)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestParseRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer(config.AuthConfig{
		Secret: "test-secret", AccessExpiry: -time.Minute, RefreshExpiry: time.Hour,
	})
	pair, err := issuer.Issue("user-1", "patient")
	require.NoError(t, err)

	_, err = issuer.Parse(pair.AccessToken)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := testIssuer().Parse("not.a.token")
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := testIssuer()

	router := gin.New()
	router.GET("/protected", Middleware(issuer), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString(ContextUserID)})
	})
	router.GET("/admin", Middleware(issuer, "admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func(path, token string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	patient, err := issuer.Issue("user-1", "patient")
	require.NoError(t, err)
	admin, err := issuer.Issue("user-2", "admin")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do("/protected", ""))
	assert.Equal(t, http.StatusUnauthorized, do("/protected", "garbage"))
	assert.Equal(t, http.StatusOK, do("/protected", patient.AccessToken))
	assert.Equal(t, http.StatusForbidden, do("/admin", patient.AccessToken))
	assert.Equal(t, http.StatusOK, do("/admin", admin.AccessToken))
}
