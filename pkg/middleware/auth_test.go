package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func identityEcho() (http.Handler, *string, *string) {
	var gotUser, gotRole string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return h, &gotUser, &gotRole
}

func TestJWTAuth_ValidToken(t *testing.T) {
	next, user, role := identityEcho()
	handler := JWTAuth(testSecret, testLogger())(next)

	token := signToken(t, jwt.MapClaims{
		"user_id": "user-1",
		"role":    "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	req := httptest.NewRequest("GET", "/reviews", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", *user)
	assert.Equal(t, "admin", *role)
}

func TestJWTAuth_SubClaimFallback(t *testing.T) {
	next, user, _ := identityEcho()
	handler := JWTAuth(testSecret, testLogger())(next)

	token := signToken(t, jwt.MapClaims{
		"sub": "user-2",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	req := httptest.NewRequest("GET", "/reviews", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-2", *user)
}

func TestJWTAuth_NoHeaderPassesThroughAnonymously(t *testing.T) {
	next, user, _ := identityEcho()
	handler := JWTAuth(testSecret, testLogger())(next)

	req := httptest.NewRequest("GET", "/reviews", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, *user)
}

func TestJWTAuth_WrongSecretRejected(t *testing.T) {
	next, _, _ := identityEcho()
	handler := JWTAuth(testSecret, testLogger())(next)

	token := signToken(t, jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, "other-secret")

	req := httptest.NewRequest("GET", "/reviews", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTHENTICATION_REQUIRED")
}

func TestJWTAuth_ExpiredTokenRejected(t *testing.T) {
	next, _, _ := identityEcho()
	handler := JWTAuth(testSecret, testLogger())(next)

	token := signToken(t, jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}, testSecret)

	req := httptest.NewRequest("GET", "/reviews", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_MalformedHeaderRejected(t *testing.T) {
	next, _, _ := identityEcho()
	handler := JWTAuth(testSecret, testLogger())(next)

	req := httptest.NewRequest("GET", "/reviews", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
