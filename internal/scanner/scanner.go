// Package scanner enumerates the books under a library root.
package scanner

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/starford/lectern/internal/models"
)

// SupportedTypes lists the book extensions a scan reports.
var SupportedTypes = []string{models.TypePDF, models.TypeEPUB, models.TypeTXT}

// IsSupportedType reports whether ext (lowercase, no dot) is a book type.
func IsSupportedType(ext string) bool {
	return slices.Contains(SupportedTypes, ext)
}

// Extension returns the lowercased extension of path without the dot. A name
// whose only dot is the leading one, like ".pdf", has no extension.
func Extension(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == base {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Scan walks root without following symlinks and returns every regular file
// with a supported extension, sorted by (ParentDir, Name). Entries that cannot
// be read are skipped; a scan never fails as a whole.
func Scan(root string, logger *slog.Logger) []models.LibraryItem {
	items := []models.LibraryItem{}

	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			logger.Debug("scan: skipped", slog.String("path", p), slog.String("error", walkErr.Error()))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		ext := Extension(d.Name())
		if !IsSupportedType(ext) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			logger.Debug("scan: stat failed", slog.String("path", p), slog.String("error", err.Error()))
			return nil
		}

		items = append(items, models.LibraryItem{
			Name:          d.Name(),
			Path:          p,
			Type:          ext,
			Size:          info.Size(),
			ModifiedAt:    modifiedMillis(info),
			ParentDir:     parentDir(root, p),
			IsFrontmatter: IsFrontmatter(d.Name()),
		})
		return nil
	})

	slices.SortStableFunc(items, func(a, b models.LibraryItem) int {
		if c := strings.Compare(a.ParentDir, b.ParentDir); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return items
}

func modifiedMillis(info fs.FileInfo) float64 {
	mod := info.ModTime()
	if mod.IsZero() {
		return 0
	}
	ms := mod.UnixMilli()
	if ms < 0 {
		return 0
	}
	return float64(ms)
}

// parentDir is the slash-separated parent of p relative to root, empty when
// p sits directly under root.
func parentDir(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return ""
	}
	parent := filepath.Dir(rel)
	if parent == "." {
		return ""
	}
	return filepath.ToSlash(parent)
}
