package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func serveReady(h *HealthHandler) (*httptest.ResponseRecorder, readinessResponse) {
	r := gin.New()
	r.GET("/ready", h.Ready)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var resp readinessResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestReadyWithoutRedis(t *testing.T) {
	w, resp := serveReady(NewHealthHandler("v1.2.3", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", resp.Status)
	require.Contains(t, resp.Checks, "redis")
	assert.Equal(t, "disabled", resp.Checks["redis"].Status)
}

func TestReadyReportsRedisFailure(t *testing.T) {
	w, resp := serveReady(NewHealthHandler("v1.2.3", checkerFunc(func(context.Context) error {
		return errors.New("dial tcp: connection refused")
	})))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "error", resp.Checks["redis"].Status)
	assert.Contains(t, resp.Checks["redis"].Error, "connection refused")
}

func TestHealthReportsVersion(t *testing.T) {
	r := gin.New()
	h := NewHealthHandler("v1.2.3", checkerFunc(func(context.Context) error { return nil }))
	r.GET("/health", h.Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, HealthResponse{Status: "ok", Version: "v1.2.3"}, resp)
}
