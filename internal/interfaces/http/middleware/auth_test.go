package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repair-guide-api/internal/interfaces/http/dto"
	"repair-guide-api/pkg/utils"
)

const (
	testSecret   = "test-secret"
	testIssuer   = "https://tenant.example/"
	testAudience = "client-123"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthEngine(configured bool) *gin.Engine {
	r := gin.New()
	r.Use(RequireIdentity(configured))
	r.Use(Auth(AuthConfig{Secret: testSecret, Issuer: testIssuer, Audience: testAudience}))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":      GetUserIDFromGin(c),
			"name":    GetUserNameFromGin(c),
			"display": GetDisplayNameFromGin(c),
			"email":   GetUserEmailFromGin(c),
		})
	})
	return r
}

func doGet(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func TestAuthAcceptsValidToken(t *testing.T) {
	jwt := utils.NewJWTManager(testSecret, testIssuer, testAudience)
	token, err := jwt.GenerateToken("auth0|tech-1", "", "tech@example.com", time.Hour)
	require.NoError(t, err)

	w := doGet(newAuthEngine(true), "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "auth0|tech-1", body["id"])
	assert.Empty(t, body["name"])
	assert.Equal(t, "tech@example.com", body["display"])
	assert.Equal(t, "tech@example.com", body["email"])
}

func TestAuthRejections(t *testing.T) {
	expired, err := utils.NewJWTManager(testSecret, testIssuer, testAudience).
		GenerateToken("auth0|tech-1", "Tech", "", -time.Minute)
	require.NoError(t, err)
	wrongAudience, err := utils.NewJWTManager(testSecret, testIssuer, "other-client").
		GenerateToken("auth0|tech-1", "Tech", "", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{name: "missing", header: "", code: "2003"},
		{name: "wrong scheme", header: "Basic abc", code: "2002"},
		{name: "garbage", header: "Bearer not-a-jwt", code: "2002"},
		{name: "expired", header: "Bearer " + expired, code: "2001"},
		{name: "wrong audience", header: "Bearer " + wrongAudience, code: "2002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(newAuthEngine(true), tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Error.ErrorCode)
		})
	}
}

func TestRequireIdentityBlocksWhenUnconfigured(t *testing.T) {
	w := doGet(newAuthEngine(false), "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	resp := decodeError(t, w)
	assert.Equal(t, "5006", resp.Error.ErrorCode)
	assert.Equal(t, "unavailable", resp.Error.Kind)
}
