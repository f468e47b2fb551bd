package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// ErrNotRegularFile is returned when a source path names a directory or device
var ErrNotRegularFile = errors.New("not a regular file")

// FileValidator checks the files and directories the sales pipeline reads
// from and writes to
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateSourceFile checks that path exists, is a regular file and can be
// opened for reading. A missing file wraps fs.ErrNotExist.
func (v *FileValidator) ValidateSourceFile(path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		v.logger.Debug("Source file does not exist",
			slog.String("file", path))
		return nil, fmt.Errorf("sales source %s: %w", filepath.Base(path), err)
	}
	if err != nil {
		v.logger.Error("Failed to stat source file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to stat %s: %w", filepath.Base(path), err)
	}
	if !info.Mode().IsRegular() {
		v.logger.Error("Source path is not a regular file",
			slog.String("path", path))
		return nil, fmt.Errorf("sales source %s: %w", filepath.Base(path), ErrNotRegularFile)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Source file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("sales source %s is not readable: %w", filepath.Base(path), err)
	}
	file.Close()

	v.logger.Debug("Source file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return info, nil
}

// ValidateOutputDirectory ensures dir exists or can be created and that a
// file can be written into it
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write-test-*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("cannot write to %s: %w", dir, err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// DirectoryUsage counts the regular files below dir and their total size.
// A missing directory counts as empty.
func (v *FileValidator) DirectoryUsage(dir string) (files int, bytes int64, err error) {
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return nil
			}
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files++
		bytes += info.Size()
		return nil
	})
	if err != nil {
		v.logger.Error("Failed to measure directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return 0, 0, fmt.Errorf("failed to measure %s: %w", dir, err)
	}

	v.logger.Debug("Directory measured",
		slog.String("directory", dir),
		slog.Int("files", files),
		slog.Int64("bytes", bytes))
	return files, bytes, nil
}
