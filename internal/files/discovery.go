package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SourceExtensions are the file extensions treated as delimited sales sources
var SourceExtensions = []string{".csv", ".tsv", ".txt"}

// SourceFile represents a candidate sales source found on disk
type SourceFile struct {
	Name    string    `json:"name"`
	Path    string    `json:"-"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified"`
	Active  bool      `json:"active"`
}

// Discovery finds sales sources below a base path
type Discovery struct {
	basePath   string
	extensions []string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath, extensions: SourceExtensions}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// IsSource reports whether name has one of the source extensions
func (d *Discovery) IsSource(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range d.extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// FindSources lists the sales sources in dir, newest first. Hidden files
// and spreadsheet lock files are skipped.
func (d *Discovery) FindSources(dir string) ([]SourceFile, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []SourceFile
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if !d.IsSource(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, SourceFile{
			Name:    name,
			Path:    filepath.Join(fullPath, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.After(files[j].ModTime)
	})

	return files, nil
}

// FindFilesByPattern finds sources in dir matching a glob pattern
func (d *Discovery) FindFilesByPattern(dir string, pattern string) ([]SourceFile, error) {
	fullPath := d.resolve(dir)

	matches, err := filepath.Glob(filepath.Join(fullPath, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []SourceFile
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, SourceFile{
			Name:    filepath.Base(match),
			Path:    match,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	return files, nil
}

// MarkActive flags the entry whose path is active
func MarkActive(files []SourceFile, active string) {
	active = filepath.Clean(active)
	for i := range files {
		files[i].Active = filepath.Clean(files[i].Path) == active
	}
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []SourceFile) (SourceFile, bool) {
	if len(files) == 0 {
		return SourceFile{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}

	return latest, true
}
