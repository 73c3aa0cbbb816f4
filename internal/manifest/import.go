package manifest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/lectern/internal/apperr"
	"github.com/starford/lectern/internal/models"
	"github.com/starford/lectern/internal/pathutil"
	"github.com/starford/lectern/internal/storage"
)

// Import reconciles the sources of m against folders under sharedRoot and
// registers the ones that resolve. The store is written once, after every
// source has been processed.
//
// A source resolves to sharedRoot/<rootName>. When the manifest has a single
// source and that folder is absent, sharedRoot itself is used; this can pick
// the wrong folder when the user points at an unrelated directory.
func Import(store storage.SourceStore, m *models.Manifest, sharedRoot string, logger *slog.Logger) (*models.ImportSummary, error) {
	root, ok := pathutil.Canonicalize(sharedRoot)
	if !ok || !pathutil.IsDir(root) {
		return nil, fmt.Errorf("manifest: %w: %s", apperr.ErrSharedRootInvalid, sharedRoot)
	}

	sources := store.Load()
	known := make(map[string]struct{}, len(sources))
	for _, s := range sources {
		known[pathutil.CanonicalizeForCompare(s.Path)] = struct{}{}
	}

	entries := make(map[string][]string, len(m.Sources))
	for _, e := range m.Entries {
		entries[e.SourceName] = append(entries[e.SourceName], e.RelativePath)
	}

	summary := &models.ImportSummary{Results: make([]models.ImportSourceResult, 0, len(m.Sources))}
	for _, src := range m.Sources {
		resolved, ok := resolveFolder(root, src.RootName, len(m.Sources) == 1)
		if !ok {
			summary.Missing++
			summary.Results = append(summary.Results, models.ImportSourceResult{
				SourceName: src.Name,
				Status:     models.ImportMissing,
				Message:    fmt.Sprintf(`Missing folder "%s" under shared root`, src.RootName),
			})
			continue
		}

		if rels := entries[src.Name]; len(rels) > 0 && !anyExists(resolved, rels) {
			summary.Missing++
			summary.Results = append(summary.Results, models.ImportSourceResult{
				SourceName:   src.Name,
				Status:       models.ImportMissing,
				ResolvedPath: resolved,
				Message:      "No manifest files found under resolved folder",
			})
			continue
		}

		key := pathutil.CanonicalizeForCompare(resolved)
		if _, seen := known[key]; seen {
			summary.Existing++
			summary.Results = append(summary.Results, models.ImportSourceResult{
				SourceName:   src.Name,
				Status:       models.ImportExisting,
				ResolvedPath: resolved,
				Message:      "Source already configured",
			})
			continue
		}

		sources = append(sources, models.LibrarySource{Name: src.Name, Path: resolved})
		known[key] = struct{}{}
		summary.Added++
		summary.Results = append(summary.Results, models.ImportSourceResult{
			SourceName:   src.Name,
			Status:       models.ImportAdded,
			ResolvedPath: resolved,
			Message:      "Source added",
		})
	}

	if err := store.Save(sources); err != nil {
		return nil, fmt.Errorf("manifest: import: %w", err)
	}
	logger.Info("manifest: imported",
		slog.String("shared_root", root),
		slog.Int("added", summary.Added),
		slog.Int("existing", summary.Existing),
		slog.Int("missing", summary.Missing),
	)
	return summary, nil
}

func resolveFolder(sharedRoot, rootName string, single bool) (string, bool) {
	expected := filepath.Join(sharedRoot, rootName)
	if pathutil.IsDir(expected) {
		if canonical, ok := pathutil.Canonicalize(expected); ok {
			return canonical, true
		}
		return expected, true
	}
	if single {
		return sharedRoot, true
	}
	return "", false
}

func anyExists(folder string, relPaths []string) bool {
	for _, rel := range relPaths {
		if _, err := os.Stat(filepath.Join(folder, filepath.FromSlash(rel))); err == nil {
			return true
		}
	}
	return false
}
