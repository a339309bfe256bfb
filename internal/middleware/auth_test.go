package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmbroker/internal/config"
	"llmbroker/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var authCfg = &config.AuthConfig{JWTSecret: "test-secret", JWTIssuer: "llmbroker"}

func signToken(t *testing.T, secret, issuer, role string, expiresIn time.Duration) string {
	t.Helper()
	claims := &middleware.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "svc-reporting",
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
		Role: role,
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func protectedEngine(roles ...string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.JWTAuth(authCfg))
	handlers := []gin.HandlerFunc{}
	if len(roles) > 0 {
		handlers = append(handlers, middleware.RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": middleware.GetSubject(c), "role": middleware.GetRole(c)})
	})
	r.GET("/test", handlers...)
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_ValidToken(t *testing.T) {
	w := doGet(protectedEngine(), "Bearer "+signToken(t, "test-secret", "llmbroker", "member", time.Hour))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "svc-reporting", resp["subject"])
	assert.Equal(t, "member", resp["role"])
}

func TestJWTAuth_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", "llmbroker", "admin", time.Hour)},
		{"wrong issuer", "Bearer " + signToken(t, "test-secret", "someone-else", "admin", time.Hour)},
		{"expired", "Bearer " + signToken(t, "test-secret", "llmbroker", "admin", -time.Minute)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(protectedEngine(), tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := protectedEngine(middleware.RoleAdmin)

	w := doGet(r, "Bearer "+signToken(t, "test-secret", "llmbroker", "admin", time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)

	w = doGet(r, "Bearer "+signToken(t, "test-secret", "llmbroker", "member", time.Hour))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doGet(r, "Bearer "+signToken(t, "test-secret", "llmbroker", "", time.Hour))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, &middleware.Claims{Role: "admin"})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = middleware.ParseToken(s, "test-secret", "")
	assert.Error(t, err)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	r.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("X-Request-ID", "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}
