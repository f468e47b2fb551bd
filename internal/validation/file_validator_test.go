package validation

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileValidator_ValidateSourceFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       error
		errorContains string
	}{
		{
			name: "readable file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "sales.csv")
				require.NoError(t, os.WriteFile(file, []byte("Sales\n1\n"), 0644))
				return file
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.csv")
			},
			wantErr:       fs.ErrNotExist,
			errorContains: "missing.csv",
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr: ErrNotRegularFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := NewFileValidator(slog.Default())
			path := tt.setupFunc(t)

			info, err := validator.ValidateSourceFile(path)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(8), info.Size())
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	validator := NewFileValidator(nil)

	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "data", "reports")
		require.NoError(t, validator.ValidateOutputDirectory(dir))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "write probe must be removed")
	})

	t.Run("parent is a file", func(t *testing.T) {
		parent := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(parent, []byte("x"), 0644))

		err := validator.ValidateOutputDirectory(filepath.Join(parent, "reports"))
		assert.Error(t, err)
	})
}

func TestFileValidator_DirectoryUsage(t *testing.T) {
	validator := NewFileValidator(nil)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("12345"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.json"), []byte("123"), 0644))

	files, size, err := validator.DirectoryUsage(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, files)
	assert.Equal(t, int64(8), size)

	files, size, err = validator.DirectoryUsage(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Zero(t, files)
	assert.Zero(t, size)
}
