package handler

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
	"repair-guide-api/internal/interfaces/http/middleware"
	"repair-guide-api/pkg/utils"
)

func TestGetMeSeparatesNameClaimFromDisplayName(t *testing.T) {
	const secret = "user-secret"
	r := gin.New()
	r.Use(middleware.Auth(middleware.AuthConfig{Secret: secret}))
	r.GET("/v1/users/me", NewUserHandler().GetMe)

	tests := []struct {
		name        string
		claimName   string
		email       string
		wantName    string
		wantDisplay string
	}{
		{name: "name claim", claimName: "Robin", email: "robin@example.com", wantName: "Robin", wantDisplay: "Robin"},
		{name: "email fallback", email: "robin@example.com", wantName: "", wantDisplay: "robin@example.com"},
		{name: "default", wantName: "", wantDisplay: "Technician"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := utils.NewJWTManager(secret, "", "").GenerateToken("auth0|7", tt.claimName, tt.email, time.Hour)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code)

			var resp dto.Response[dto.UserResponse]
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "auth0|7", resp.Data.ID)
			assert.Equal(t, tt.wantName, resp.Data.Name)
			assert.Equal(t, tt.wantDisplay, resp.Data.DisplayName)
			assert.Equal(t, tt.email, resp.Data.Email)
		})
	}
}
