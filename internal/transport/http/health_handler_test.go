package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/cache"
	"salespulse/internal/config"
	"salespulse/internal/services"
	"salespulse/internal/shared/testutil"
)

type stubSource struct {
	path string
}

func (s stubSource) Source() string          { return s.path }
func (s stubSource) CacheStats() cache.Stats { return cache.Stats{Loads: 1} }

func newTestHealthHandler(t *testing.T, withSource bool) (*HealthHandler, *services.HealthService) {
	t.Helper()

	paths, err := config.PathsConfig{BaseDir: t.TempDir()}.Resolve("")
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	source := filepath.Join(paths.DataDir, "sales.csv")
	if withSource {
		require.NoError(t, os.WriteFile(source, []byte(testutil.SimpleSalesCSV), 0o644))
	}

	logger, _ := testutil.NewTestLogger(t)
	svc := services.NewHealthService("v1.0.0-test", "", paths, stubSource{path: source}, logger)
	return NewHealthHandler(svc, logger), svc
}

func TestHealthHandler_Endpoints(t *testing.T) {
	handler, _ := newTestHealthHandler(t, true)

	tests := []struct {
		name           string
		endpoint       string
		handlerFunc    http.HandlerFunc
		expectedStatus int
		checkResponse  func(t *testing.T, body map[string]interface{})
	}{
		{
			name:           "health check endpoint",
			endpoint:       "/api/health",
			handlerFunc:    handler.HealthCheck,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "ok", body["status"])
				assert.Equal(t, "v1.0.0-test", body["version"])
			},
		},
		{
			name:           "readiness endpoint",
			endpoint:       "/api/health/ready",
			handlerFunc:    handler.ReadinessCheck,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "ready", body["status"])
				assert.Contains(t, body["services"], "source")
			},
		},
		{
			name:           "liveness endpoint",
			endpoint:       "/api/health/live",
			handlerFunc:    handler.LivenessCheck,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "alive", body["status"])
			},
		},
		{
			name:           "version endpoint",
			endpoint:       "/api/version",
			handlerFunc:    handler.Version,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "v1.0.0-test", body["version"])
				assert.NotEmpty(t, body["go_version"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.endpoint, nil)
			rec := httptest.NewRecorder()

			tt.handlerFunc(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			tt.checkResponse(t, body)
		})
	}
}

func TestHealthHandler_NotReady(t *testing.T) {
	handler, _ := newTestHealthHandler(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/health/ready", nil)
	rec := httptest.NewRecorder()
	handler.ReadinessCheck(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"not_ready"`)
}

func TestMetricsHandler(t *testing.T) {
	_, health := newTestHealthHandler(t, true)

	t.Run("system stats", func(t *testing.T) {
		handler := NewMetricsHandler(nil, health)
		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		rec := httptest.NewRecorder()

		handler.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "sales.csv", data["source_file"])
		assert.Contains(t, body["human"], "source_size")
	})

	t.Run("metrics disabled", func(t *testing.T) {
		handler := NewMetricsHandler(nil, health)
		rec := httptest.NewRecorder()
		handler.ServeMetrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("metrics exporter", func(t *testing.T) {
		exporter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("salespulse_loads_total 1\n"))
		})
		handler := NewMetricsHandler(exporter, health)
		rec := httptest.NewRecorder()
		handler.ServeMetrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "salespulse_loads_total")
	})
}
