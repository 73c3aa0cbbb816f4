package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/lectern/internal/apperr"
	"github.com/starford/lectern/internal/models"
	"github.com/starford/lectern/internal/pathutil"
)

// SourcesFile is the registry's file name inside the data directory.
const SourcesFile = "library-sources.json"

// Registry stores library sources as a pretty-printed JSON array.
// Concurrent mutations are last-writer-wins; each write is a whole-file replace.
type Registry struct {
	path   string
	logger *slog.Logger
}

var _ SourceStore = (*Registry)(nil)

// NewRegistry creates a registry stored in dataDir.
func NewRegistry(dataDir string, logger *slog.Logger) *Registry {
	return &Registry{path: filepath.Join(dataDir, SourcesFile), logger: logger}
}

// Path returns the registry file location.
func (r *Registry) Path() string {
	return r.path
}

// Load reads the registry. A missing, unreadable or malformed file yields an
// empty registry.
func (r *Registry) Load() []models.LibrarySource {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("registry: read failed", slog.String("path", r.path), slog.String("error", err.Error()))
		}
		return []models.LibrarySource{}
	}
	var sources []models.LibrarySource
	if err := json.Unmarshal(data, &sources); err != nil {
		r.logger.Warn("registry: decode failed", slog.String("path", r.path), slog.String("error", err.Error()))
		return []models.LibrarySource{}
	}
	if sources == nil {
		sources = []models.LibrarySource{}
	}
	return sources
}

// Save rewrites the registry file.
func (r *Registry) Save(sources []models.LibrarySource) error {
	if sources == nil {
		sources = []models.LibrarySource{}
	}
	if err := WriteJSON(r.path, sources); err != nil {
		return fmt.Errorf("%w: save library sources: %w", apperr.ErrIO, err)
	}
	return nil
}

// Add registers the directory at source.Path under its canonical path.
// A directory that is already registered is left untouched and Add reports
// false. A blank name falls back to the directory's last segment.
func (r *Registry) Add(source models.LibrarySource) (bool, error) {
	canonical, ok := pathutil.Canonicalize(source.Path)
	if !ok {
		return false, fmt.Errorf("registry: %w: %s", apperr.ErrPathNotFound, source.Path)
	}
	if !pathutil.IsDir(canonical) {
		return false, fmt.Errorf("registry: library source must be a directory: %w: %s", apperr.ErrNotADirectory, canonical)
	}

	sources := r.Load()
	target := pathutil.CanonicalizeForCompare(canonical)
	for _, existing := range sources {
		if pathutil.CanonicalizeForCompare(existing.Path) == target {
			return false, nil
		}
	}

	name := strings.TrimSpace(source.Name)
	if name == "" {
		name = filepath.Base(canonical)
		if name == string(filepath.Separator) || name == "." {
			name = "Library"
		}
	}

	sources = append(sources, models.LibrarySource{Name: name, Path: canonical})
	if err := r.Save(sources); err != nil {
		return false, err
	}
	r.logger.Info("registry: source added", slog.String("name", name), slog.String("path", canonical))
	return true, nil
}

// Remove drops every source whose compare-safe canonical path matches path.
// The directory does not need to exist any more.
func (r *Registry) Remove(path string) error {
	target := pathutil.CanonicalizeForCompare(path)
	sources := r.Load()
	kept := sources[:0]
	for _, s := range sources {
		if pathutil.CanonicalizeForCompare(s.Path) != target {
			kept = append(kept, s)
		}
	}
	if err := r.Save(kept); err != nil {
		return err
	}
	r.logger.Info("registry: source removed", slog.String("path", target))
	return nil
}

// Roots returns the canonical paths of every registered source that still
// exists on disk.
func (r *Registry) Roots() []string {
	return CanonicalRoots(r.Load())
}

// CanonicalRoots canonicalizes the paths of sources, dropping those that do
// not exist.
func CanonicalRoots(sources []models.LibrarySource) []string {
	roots := make([]string, 0, len(sources))
	for _, s := range sources {
		if root, ok := pathutil.Canonicalize(s.Path); ok {
			roots = append(roots, root)
		}
	}
	return roots
}
