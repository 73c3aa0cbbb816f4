// Package guard confines caller-supplied paths to the registered library
// roots. Every operation that touches a path from outside the process must
// pass through ResolveAllowedPath first.
package guard

import (
	"fmt"

	"github.com/starford/lectern/internal/apperr"
	"github.com/starford/lectern/internal/pathutil"
	"github.com/starford/lectern/internal/storage"
)

// Guard checks paths against the sources in a SourceStore.
type Guard struct {
	store storage.SourceStore
}

// New creates a Guard over store. Sources are re-read on every check.
func New(store storage.SourceStore) *Guard {
	return &Guard{store: store}
}

// ResolveAllowedPath canonicalizes requested and returns it when it equals
// or lies under a registered root.
func (g *Guard) ResolveAllowedPath(requested string) (string, error) {
	normalized, ok := pathutil.Canonicalize(requested)
	if !ok {
		return "", fmt.Errorf("guard: %w: %s", apperr.ErrPathNotFound, requested)
	}

	roots := storage.CanonicalRoots(g.store.Load())
	if len(roots) == 0 {
		return "", fmt.Errorf("guard: %w", apperr.ErrNoSourcesConfigured)
	}

	for _, root := range roots {
		if pathutil.IsWithinRoot(normalized, root) {
			return normalized, nil
		}
	}
	return "", fmt.Errorf("guard: %w: %s", apperr.ErrPathOutsideLibrary, requested)
}
