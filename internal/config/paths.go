package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all resolved application paths. Every path is absolute.
type Paths struct {
	BaseDir    string
	DataDir    string
	ReportsDir string
	LogsDir    string
}

// GetPaths returns the default paths relative to the executable location
func GetPaths() (*Paths, error) {
	exeDir, err := executableDir()
	if err != nil {
		return nil, err
	}
	return Default().Paths.Resolve(exeDir)
}

// Resolve turns the configured directories into absolute paths. BaseDir wins
// over fallbackBase when set; relative directories are joined to the base.
func (c PathsConfig) Resolve(fallbackBase string) (*Paths, error) {
	base := c.BaseDir
	if base == "" {
		base = fallbackBase
	}
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	join := func(dir, fallback string) string {
		if dir == "" {
			dir = fallback
		}
		if filepath.IsAbs(dir) {
			return filepath.Clean(dir)
		}
		return filepath.Join(base, dir)
	}

	return &Paths{
		BaseDir:    base,
		DataDir:    join(c.DataDir, "data"),
		ReportsDir: join(c.ReportsDir, filepath.Join("data", "reports")),
		LogsDir:    join(c.LogsDir, "logs"),
	}, nil
}

// ResolvePaths resolves the configured paths against the executable directory
func (c *Config) ResolvePaths() (*Paths, error) {
	fallback := ""
	if c.Paths.BaseDir == "" {
		dir, err := executableDir()
		if err != nil {
			return nil, err
		}
		fallback = dir
	}
	return c.Paths.Resolve(fallback)
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.ReportsDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// SourcePath resolves a sales source file. Absolute paths and paths that
// exist relative to the working directory are used as given; anything else
// is looked up in the data directory.
func (p *Paths) SourcePath(name string) string {
	if name == "" {
		name = DefaultSourceFile
	}
	if filepath.IsAbs(name) || FileExists(name) {
		return name
	}
	return filepath.Join(p.DataDir, name)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved directories
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
		))
}
