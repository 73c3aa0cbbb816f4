// Package content turns an allowed book path into readable text.
//
// Binary PDF and EPUB files are never parsed here; they are read through a
// normalized ".txt" snapshot that sits next to them with the same stem.
package content

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/starford/lectern/internal/apperr"
	"github.com/starford/lectern/internal/models"
	"github.com/starford/lectern/internal/pathutil"
	"github.com/starford/lectern/internal/scanner"
)

// DefaultCacheSize is the number of snapshots kept in memory.
const DefaultCacheSize = 32

// Loader reads book text, caching snapshots by path, size and mtime.
type Loader struct {
	cache *lru.Cache[string, string]
}

// NewLoader creates a Loader keeping up to size snapshots in memory.
func NewLoader(size int) (*Loader, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("content: init cache: %w", err)
	}
	return &Loader{cache: cache}, nil
}

// OpenBook loads the text for allowedPath, which must already have passed the
// access guard.
func (l *Loader) OpenBook(allowedPath string) (*models.ExtractedContent, error) {
	ext := scanner.Extension(allowedPath)
	if ext == "" || !scanner.IsSupportedType(ext) {
		return nil, fmt.Errorf("content: %w: %q", apperr.ErrUnsupportedFileType, ext)
	}

	contentPath := allowedPath
	if ext != models.TypeTXT {
		snapshot, err := SnapshotPath(allowedPath)
		if err != nil {
			return nil, err
		}
		contentPath = snapshot
	}

	text, err := l.read(contentPath)
	if err != nil {
		return nil, err
	}

	return &models.ExtractedContent{
		Title:        FormatTitle(allowedPath),
		Content:      text,
		SourcePath:   allowedPath,
		AssetBaseURL: DirectoryURL(filepath.Dir(allowedPath)),
	}, nil
}

// SnapshotPath returns the canonical path of the normalized .txt file next to
// bookPath. The snapshot must resolve to a regular file inside the book's own
// directory; a symlink leading elsewhere is rejected with
// ErrPathOutsideLibrary.
func SnapshotPath(bookPath string) (string, error) {
	sidecar := pathutil.SiblingWithExt(bookPath, models.TypeTXT)
	if !pathutil.IsFile(sidecar) {
		return "", fmt.Errorf("content: %w for .%s file; add a normalized .txt file next to %s",
			apperr.ErrNoNormalizedSnapshot, scanner.Extension(bookPath), filepath.Base(bookPath))
	}
	dir, okDir := pathutil.Canonicalize(filepath.Dir(bookPath))
	resolved, okFile := pathutil.Canonicalize(sidecar)
	if !okDir || !okFile || !pathutil.IsWithinRoot(resolved, dir) {
		return "", fmt.Errorf("content: snapshot %s: %w", sidecar, apperr.ErrPathOutsideLibrary)
	}
	return resolved, nil
}

func (l *Loader) read(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read file %s: %w", apperr.ErrIO, path, err)
	}
	key := fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
	if text, ok := l.cache.Get(key); ok {
		return text, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read file %s: %w", apperr.ErrIO, path, err)
	}
	text := string(data)
	l.cache.Add(key, text)
	return text, nil
}

// FormatTitle derives a display title from the file stem, with hyphens and
// underscores turned into spaces.
func FormatTitle(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "Untitled"
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return strings.NewReplacer("-", " ", "_", " ").Replace(stem)
}

// DirectoryURL returns the file:// URL of dir with a trailing slash, used to
// resolve relative asset references in the text.
func DirectoryURL(dir string) string {
	p := filepath.ToSlash(dir)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
