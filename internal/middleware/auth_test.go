package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storegate/internal/apperr"
	"storegate/internal/models"
	"storegate/internal/rpcclient"
)

type fakeValidator struct {
	calls  int
	result *rpcclient.TokenValidation
	err    error
}

func (f *fakeValidator) ValidateToken(_ context.Context, _ string) (*rpcclient.TokenValidation, error) {
	f.calls++
	return f.result, f.err
}

func doAuthRequest(t *testing.T, validator TokenValidator, header string) (*httptest.ResponseRecorder, *models.Principal) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var seen *models.Principal
	router := gin.New()
	router.Use(Auth(validator))
	router.GET("/protected", func(c *gin.Context) {
		if principal, ok := PrincipalFrom(c); ok {
			seen = &principal
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec, seen
}

func TestAuthMissingHeader(t *testing.T) {
	validator := &fakeValidator{}

	rec, _ := doAuthRequest(t, validator, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing authorization")
	assert.Zero(t, validator.calls, "validator must not be invoked without a credential")
}

func TestAuthMalformedHeader(t *testing.T) {
	validator := &fakeValidator{}

	for _, header := range []string{"Basic xyz", "Bearer", "Bearer a b", "bearer token"} {
		rec, _ := doAuthRequest(t, validator, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
	assert.Zero(t, validator.calls)
}

func TestAuthInvalidToken(t *testing.T) {
	validator := &fakeValidator{result: &rpcclient.TokenValidation{Valid: false}}

	rec, seen := doAuthRequest(t, validator, "Bearer expired-token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
	assert.Equal(t, 1, validator.calls)
	assert.Nil(t, seen)
}

func TestAuthServiceUnavailable(t *testing.T) {
	validator := &fakeValidator{err: apperr.New(apperr.Unavailable, "auth service unreachable")}

	rec, _ := doAuthRequest(t, validator, "Bearer some-token")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuthRemoteRejection(t *testing.T) {
	validator := &fakeValidator{err: apperr.New(apperr.Unauthenticated, "token validation failed")}

	rec, _ := doAuthRequest(t, validator, "Bearer some-token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthAttachesPrincipal(t *testing.T) {
	validator := &fakeValidator{result: &rpcclient.TokenValidation{
		Valid:  true,
		UserID: "u1",
		Email:  "u1@example.com",
		Role:   "admin",
	}}

	rec, seen := doAuthRequest(t, validator, "Bearer good-token")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "u1", seen.UserID)
	assert.Equal(t, "u1@example.com", seen.Email)
	assert.Equal(t, models.RoleAdmin, seen.Role)
}
