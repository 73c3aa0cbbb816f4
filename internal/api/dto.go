package api

import (
	"github.com/starford/lectern/internal/models"
	"github.com/starford/lectern/internal/quiz"
)

// AddSourceRequest is the request body for registering a source.
type AddSourceRequest struct {
	Name string `json:"name" example:"Fiction"`
	Path string `json:"path" example:"/home/me/Books/fiction" validate:"required"`
}

// RemoveSourceRequest is the request body for unregistering a source.
type RemoveSourceRequest struct {
	Path string `json:"path" example:"/home/me/Books/fiction" validate:"required"`
}

// SourcesResponse wraps the registered sources.
type SourcesResponse struct {
	Sources []models.LibrarySource `json:"sources" validate:"required"`
}

// BooksResponse wraps a directory scan.
type BooksResponse struct {
	Books []models.LibraryItem `json:"books" validate:"required"`
}

// ExportRequest is the request body for a manifest export. An empty path
// cancels; "-" writes to the suggested location.
type ExportRequest struct {
	Path string `json:"path" example:"/tmp/library.json"`
}

// ImportRequest is the request body for a manifest import. An empty field
// cancels.
type ImportRequest struct {
	ManifestPath string `json:"manifestPath" example:"/tmp/library.json"`
	SharedRoot   string `json:"sharedRoot" example:"/mnt/shared/Books"`
}

// SecretsStatusResponse reports whether secret storage can be offered.
type SecretsStatusResponse struct {
	Available bool `json:"available"`
}

// SecretResponse carries a stored secret, null when absent.
type SecretResponse struct {
	KeyID string  `json:"keyId" example:"comprehension-gemini"`
	Value *string `json:"value"`
}

// SetSecretRequest stores a secret; null or blank deletes it.
type SetSecretRequest struct {
	Value *string `json:"value"`
}

// SampleResponse carries a sampled article, null when none is available.
type SampleResponse struct {
	Article *models.CorpusArticle `json:"article"`
}

// QuizResponse carries a sampled article with generated questions. Both are
// null when the corpus has no article for the tier.
type QuizResponse struct {
	Article   *models.CorpusArticle `json:"article"`
	Questions []quiz.Question       `json:"questions"`
}
