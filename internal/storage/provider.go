package storage

import "github.com/starford/lectern/internal/models"

// SourceStore is the persisted set of library sources. Every Save replaces
// the whole set.
type SourceStore interface {
	// Load returns the registered sources; an absent store is empty.
	Load() []models.LibrarySource
	// Save replaces the registered sources.
	Save(sources []models.LibrarySource) error
}
