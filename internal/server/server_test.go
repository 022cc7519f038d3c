package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestHealth_AllDependenciesConnected(t *testing.T) {
	srv := New("127.0.0.1:0", gin.TestMode, map[string]HealthChecker{
		"database":   PingFunc(func(context.Context) error { return nil }),
		"localstore": PingFunc(func(context.Context) error { return nil }),
	})

	resp := httptest.NewRecorder()
	srv.Engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	require.JSONEq(t, `{"status":"healthy","database":"connected","localstore":"connected"}`, resp.Body.String())
}

func TestHealth_UnreachableDependency(t *testing.T) {
	srv := New("127.0.0.1:0", gin.TestMode, map[string]HealthChecker{
		"database": PingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})

	resp := httptest.NewRecorder()
	srv.Engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	require.Contains(t, resp.Body.String(), "database unreachable")
}

func TestMetrics_Exposed(t *testing.T) {
	srv := New("127.0.0.1:0", gin.TestMode, nil)

	resp := httptest.NewRecorder()
	srv.Engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "go_goroutines")
}
