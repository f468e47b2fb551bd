package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"salespulse/internal/cache"
	"salespulse/internal/config"
	"salespulse/internal/validation"
)

// SourceInspector is the part of the sales service the health checks look at
type SourceInspector interface {
	Source() string
	CacheStats() cache.Stats
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	paths     *config.Paths
	sales     SourceInspector
	validator *validation.FileValidator
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// SystemStats represents system statistics
type SystemStats struct {
	UptimeSeconds  float64     `json:"uptime_seconds"`
	SourceFile     string      `json:"source_file"`
	SourceBytes    int64       `json:"source_bytes"`
	TotalExports   int         `json:"total_exports"`
	ExportBytes    int64       `json:"export_bytes"`
	Cache          cache.Stats `json:"cache"`
	GoVersion      string      `json:"go_version"`
	OS             string      `json:"os"`
	Arch           string      `json:"arch"`
	NumGoroutines  int         `json:"goroutines"`
	HeapAllocBytes uint64      `json:"heap_alloc_bytes"`
}

// NewHealthService creates a new health service. sales may be nil when only
// liveness is served.
func NewHealthService(version, buildTime string, paths *config.Paths, sales SourceInspector, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	logger = logger.With(slog.String("component", "health_service"))
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		paths:     paths,
		sales:     sales,
		validator: validation.NewFileValidator(logger),
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports whether the source can be read and exports written
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]interface{}{
			"source":  hs.checkSourceHealth(),
			"reports": hs.checkReportsHealth(),
		},
	}

	for name, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "readiness check failed",
				slog.String("service", name),
				slog.String("message", sh.Message))
		}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

// SystemStats returns source, export and runtime statistics
func (hs *HealthService) SystemStats(ctx context.Context) SystemStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := SystemStats{
		UptimeSeconds:  time.Since(hs.startTime).Seconds(),
		GoVersion:      runtime.Version(),
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
		NumGoroutines:  runtime.NumGoroutine(),
		HeapAllocBytes: mem.HeapAlloc,
	}

	if hs.sales != nil {
		stats.SourceFile = filepath.Base(hs.sales.Source())
		if info, err := os.Stat(hs.sales.Source()); err == nil {
			stats.SourceBytes = info.Size()
		}
		stats.Cache = hs.sales.CacheStats()
	}

	if hs.paths != nil {
		files, size, err := hs.validator.DirectoryUsage(hs.paths.ReportsDir)
		if err == nil {
			stats.TotalExports = files
			stats.ExportBytes = size
		}
	}

	hs.logger.DebugContext(ctx, "SystemStats: collected",
		slog.Int("exports", stats.TotalExports),
		slog.Int64("source_bytes", stats.SourceBytes))

	return stats
}

// checkSourceHealth checks that the sales source exists and is a readable file
func (hs *HealthService) checkSourceHealth() ServiceHealth {
	if hs.sales == nil {
		return ServiceHealth{Status: "not_ready", Message: "sales service not initialized"}
	}

	if _, err := hs.validator.ValidateSourceFile(hs.sales.Source()); err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	return ServiceHealth{Status: "ready", Message: "Sales source is readable"}
}

// checkReportsHealth checks that exports can be written
func (hs *HealthService) checkReportsHealth() ServiceHealth {
	if hs.paths == nil {
		return ServiceHealth{Status: "not_ready", Message: "paths not configured"}
	}

	if err := hs.validator.ValidateOutputDirectory(hs.paths.ReportsDir); err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	return ServiceHealth{Status: "ready", Message: "Reports directory is writable"}
}
