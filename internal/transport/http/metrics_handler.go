package http

import (
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"salespulse/internal/services"
)

// MetricsHandler serves the Prometheus scrape endpoint and system statistics
type MetricsHandler struct {
	exporter http.Handler
	health   *services.HealthService
}

// NewMetricsHandler creates a new metrics handler. exporter may be nil when
// metrics are disabled.
func NewMetricsHandler(exporter http.Handler, health *services.HealthService) *MetricsHandler {
	return &MetricsHandler{exporter: exporter, health: health}
}

// Routes sets up the system routes, mounted under /api/system
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/stats", h.GetStats)
	return r
}

// ServeMetrics handles GET /metrics
func (h *MetricsHandler) ServeMetrics(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		http.NotFound(w, r)
		return
	}
	h.exporter.ServeHTTP(w, r)
}

// GetStats handles GET /api/system/stats
func (h *MetricsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.health.SystemStats(r.Context())
	render.JSON(w, r, map[string]interface{}{
		"status": "ok",
		"data":   stats,
		"human": map[string]string{
			"source_size":  humanize.Bytes(uint64(stats.SourceBytes)),
			"exports_size": humanize.Bytes(uint64(stats.ExportBytes)),
			"heap_alloc":   humanize.Bytes(stats.HeapAllocBytes),
		},
	})
}
