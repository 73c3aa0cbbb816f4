// Package manifest builds, reads and reconciles portable library manifests.
package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/lectern/internal/apperr"
	"github.com/starford/lectern/internal/content"
	"github.com/starford/lectern/internal/models"
	"github.com/starford/lectern/internal/pathutil"
	"github.com/starford/lectern/internal/scanner"
	"github.com/starford/lectern/internal/storage"
)

const (
	Schema  = "reader-library-manifest"
	Version = 1
)

// Build returns a manifest describing every registered source. Sources whose
// root no longer exists are listed without entries. Sources are scanned
// concurrently; the output keeps registry order.
func Build(ctx context.Context, sources []models.LibrarySource, exportedAt time.Time, logger *slog.Logger) (*models.Manifest, error) {
	results := make([][]models.ManifestEntry, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			root, ok := pathutil.Canonicalize(src.Path)
			if !ok {
				logger.Warn("manifest: source root missing, entries skipped",
					slog.String("name", src.Name), slog.String("path", src.Path))
				return nil
			}
			results[i] = entriesFor(src.Name, root, scanner.Scan(root, logger))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("manifest: build: %w", err)
	}

	m := &models.Manifest{
		Schema:     Schema,
		Version:    Version,
		ExportedAt: exportedAt.UTC().Format(time.RFC3339Nano),
		Sources:    []models.ManifestSource{},
		Entries:    []models.ManifestEntry{},
	}
	for i, src := range sources {
		m.Sources = append(m.Sources, models.ManifestSource{Name: src.Name, RootName: pathutil.RootName(src.Path)})
		m.Entries = append(m.Entries, results[i]...)
	}
	return m, nil
}

func entriesFor(sourceName, root string, items []models.LibraryItem) []models.ManifestEntry {
	entries := make([]models.ManifestEntry, 0, len(items))
	for _, item := range items {
		rel, ok := pathutil.RelativeSlash(root, item.Path)
		if !ok || rel == "" {
			continue
		}
		entries = append(entries, models.ManifestEntry{
			SourceName:                 sourceName,
			RelativePath:               rel,
			Type:                       item.Type,
			NormalizedTextRelativePath: normalizedTextPath(root, item, rel),
			Size:                       item.Size,
			ModifiedAt:                 item.ModifiedAt,
		})
	}
	return entries
}

func normalizedTextPath(root string, item models.LibraryItem, rel string) string {
	if item.Type == models.TypeTXT {
		return rel
	}
	sidecar, err := content.SnapshotPath(item.Path)
	if err != nil {
		return ""
	}
	sidecarRel, ok := pathutil.RelativeSlash(root, sidecar)
	if !ok {
		return ""
	}
	return sidecarRel
}

// Save writes m to path as pretty-printed JSON, creating parent directories.
func Save(m *models.Manifest, path string) error {
	if err := storage.WriteJSON(path, m); err != nil {
		return fmt.Errorf("%w: failed to write manifest %s: %w", apperr.ErrIO, path, err)
	}
	return nil
}
