package server

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedforward-app/feedforward-services/api/internal/config"
)

func signToken(t *testing.T, method jwt.SigningMethod, secret []byte, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func testServer(configs []config.JWTConfig, audience string) *Server {
	return &Server{
		logger:      log.New(io.Discard, "", 0),
		jwtConfigs:  configs,
		jwtAudience: audience,
	}
}

func validClaims() *authClaims {
	return &authClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "feedforward-auth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Name:  "Ada",
		Email: "ada@example.com",
	}
}

func TestParseAuthToken(t *testing.T) {
	secret := []byte("test-secret")
	srv := testServer([]config.JWTConfig{{Issuer: "feedforward-auth", Secret: secret}}, "")

	token := signToken(t, jwt.SigningMethodHS256, secret, validClaims())

	claims, err := srv.parseAuthToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "Ada", claims.Name)
}

func TestParseAuthTokenWrongSecret(t *testing.T) {
	srv := testServer([]config.JWTConfig{{Issuer: "feedforward-auth", Secret: []byte("right")}}, "")

	token := signToken(t, jwt.SigningMethodHS256, []byte("wrong"), validClaims())

	_, err := srv.parseAuthToken(token)
	assert.Error(t, err)
}

func TestParseAuthTokenWrongIssuer(t *testing.T) {
	secret := []byte("test-secret")
	srv := testServer([]config.JWTConfig{{Issuer: "feedforward-auth", Secret: secret}}, "")

	claims := validClaims()
	claims.Issuer = "someone-else"
	token := signToken(t, jwt.SigningMethodHS256, secret, claims)

	_, err := srv.parseAuthToken(token)
	assert.Error(t, err)
}

func TestParseAuthTokenExpired(t *testing.T) {
	secret := []byte("test-secret")
	srv := testServer([]config.JWTConfig{{Issuer: "feedforward-auth", Secret: secret}}, "")

	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-5 * time.Minute))
	token := signToken(t, jwt.SigningMethodHS256, secret, claims)

	_, err := srv.parseAuthToken(token)
	assert.Error(t, err)
}

func TestParseAuthTokenMissingSubject(t *testing.T) {
	secret := []byte("test-secret")
	srv := testServer([]config.JWTConfig{{Issuer: "feedforward-auth", Secret: secret}}, "")

	claims := validClaims()
	claims.Subject = ""
	token := signToken(t, jwt.SigningMethodHS256, secret, claims)

	_, err := srv.parseAuthToken(token)
	assert.Error(t, err)
}

func TestParseAuthTokenAudience(t *testing.T) {
	secret := []byte("test-secret")
	srv := testServer([]config.JWTConfig{{Issuer: "feedforward-auth", Secret: secret}}, "feedforward-api")

	claims := validClaims()
	token := signToken(t, jwt.SigningMethodHS256, secret, claims)
	_, err := srv.parseAuthToken(token)
	assert.Error(t, err, "token without the expected audience must be rejected")

	claims.Audience = jwt.ClaimStrings{"feedforward-api"}
	token = signToken(t, jwt.SigningMethodHS256, secret, claims)
	parsed, err := srv.parseAuthToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", parsed.Subject)
}

func TestParseAuthTokenSecondConfig(t *testing.T) {
	// Secret rotation keeps both configs live; a token signed with the
	// second secret must still verify.
	srv := testServer([]config.JWTConfig{
		{Issuer: "feedforward-auth", Secret: []byte("old-secret")},
		{Issuer: "feedforward-auth", Secret: []byte("new-secret")},
	}, "")

	token := signToken(t, jwt.SigningMethodHS256, []byte("new-secret"), validClaims())

	claims, err := srv.parseAuthToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestParseAuthTokenRejectsOtherAlgorithms(t *testing.T) {
	secret := []byte("test-secret")
	srv := testServer([]config.JWTConfig{{Issuer: "feedforward-auth", Secret: secret}}, "")

	token := signToken(t, jwt.SigningMethodHS512, secret, validClaims())

	_, err := srv.parseAuthToken(token)
	assert.Error(t, err)
}

func TestWithCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := withCORS([]string{"https://app.example.com"})(next)

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/surveys", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets no grant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/surveys", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/surveys", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("wildcard", func(t *testing.T) {
		wildcard := withCORS([]string{"*"})(next)
		req := httptest.NewRequest(http.MethodGet, "/api/surveys", nil)
		req.Header.Set("Origin", "https://anywhere.example.com")
		rec := httptest.NewRecorder()
		wildcard.ServeHTTP(rec, req)

		assert.Equal(t, "https://anywhere.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
