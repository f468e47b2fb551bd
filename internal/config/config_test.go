package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults only",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "latin1", cfg.Pipeline.Encoding)
				assert.Equal(t, "sample", cfg.Pipeline.MappingPreset)
				assert.Equal(t, 5, cfg.Pipeline.TopN)
				assert.Equal(t, "stat", cfg.Pipeline.CacheKey)
			},
		},
		{
			name: "file overrides defaults",
			file: `
server:
  port: 9090
  read_timeout: 5s
pipeline:
  mapping_preset: simple
  top_n: 3
  mapping:
    region: Territory
  date_layouts: ["2006-01-02", "02.01.2006"]
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, "simple", cfg.Pipeline.MappingPreset)
				assert.Equal(t, 3, cfg.Pipeline.TopN)
				assert.Equal(t, "Territory", cfg.Pipeline.Mapping.Region)
				assert.Equal(t, []string{"2006-01-02", "02.01.2006"}, cfg.Pipeline.DateLayouts)
				assert.Equal(t, "latin1", cfg.Pipeline.Encoding)
			},
		},
		{
			name: "env overrides file",
			file: "server:\n  port: 9090\n",
			env: map[string]string{
				"SALES_SERVER_PORT":             "7070",
				"SALES_LOGGING_LEVEL":           "debug",
				"SALES_PIPELINE_MAPPING_PRODUCT": "Line",
				"SALES_PIPELINE_DATE_LAYOUTS":   "2006-01-02,1/2/2006",
				"SALES_TELEMETRY_ENABLED":       "false",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "Line", cfg.Pipeline.Mapping.Product)
				assert.Equal(t, []string{"2006-01-02", "1/2/2006"}, cfg.Pipeline.DateLayouts)
				assert.False(t, cfg.Telemetry.Enabled)
			},
		},
		{
			name:    "invalid yaml",
			file:    "server: [",
			wantErr: true,
		},
		{
			name:    "invalid env value",
			env:     map[string]string{"SALES_SERVER_PORT": "eighty"},
			wantErr: true,
		},
		{
			name:    "validation failure",
			env:     map[string]string{"SALES_PIPELINE_TOP_N": "0"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFile(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "default is valid", modify: func(c *Config) {}},
		{name: "bad port", modify: func(c *Config) { c.Server.Port = 70000 }, wantErr: "invalid server port"},
		{name: "zero read timeout", modify: func(c *Config) { c.Server.ReadTimeout = 0 }, wantErr: "read timeout"},
		{name: "cors without origins", modify: func(c *Config) { c.Security.AllowedOrigins = nil }, wantErr: "allowed origin"},
		{name: "bad rate limit", modify: func(c *Config) { c.Security.RateLimit.RPS = 0 }, wantErr: "rate limit"},
		{name: "bad log level", modify: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "log level"},
		{name: "bad delimiter", modify: func(c *Config) { c.Pipeline.Delimiter = ";;" }, wantErr: "delimiter"},
		{name: "bad cache key", modify: func(c *Config) { c.Pipeline.CacheKey = "mtime" }, wantErr: "cache_key"},
		{name: "bad preview rows", modify: func(c *Config) { c.Pipeline.PreviewRows = -1 }, wantErr: "preview_rows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "app.log", cfg.Logging.FilePath)
}

func TestServerAddr(t *testing.T) {
	assert.Equal(t, ":8080", Default().Server.Addr())
	assert.Equal(t, "127.0.0.1:9000", ServerConfig{Host: "127.0.0.1", Port: 9000}.Addr())
}
