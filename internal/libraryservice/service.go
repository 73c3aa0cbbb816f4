// Package libraryservice exposes the library operations offered to the
// application shell, composing the registry, access guard, content loader,
// manifest exchange, secrets and corpus.
package libraryservice

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/lectern/internal/apperr"
	"github.com/starford/lectern/internal/content"
	"github.com/starford/lectern/internal/corpus"
	"github.com/starford/lectern/internal/guard"
	"github.com/starford/lectern/internal/manifest"
	"github.com/starford/lectern/internal/models"
	"github.com/starford/lectern/internal/pathutil"
	"github.com/starford/lectern/internal/quiz"
	"github.com/starford/lectern/internal/scanner"
	"github.com/starford/lectern/internal/secrets"
	"github.com/starford/lectern/internal/storage"
)

// Notifier is told when the set of registered sources changes.
type Notifier interface {
	PublishSourcesUpdated(count int)
}

// Deps holds the collaborators of a Service.
type Deps struct {
	Registry *storage.Registry
	Loader   *content.Loader
	Corpus   *corpus.Cache
	Secrets  *secrets.Store
	Quiz     *quiz.Generator
	Notifier Notifier
	Logger   *slog.Logger
}

// Service implements the library commands.
type Service struct {
	registry *storage.Registry
	guard    *guard.Guard
	loader   *content.Loader
	corpus   *corpus.Cache
	secrets  *secrets.Store
	quiz     *quiz.Generator
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Service.
func New(d Deps) *Service {
	return &Service{
		registry: d.Registry,
		guard:    guard.New(d.Registry),
		loader:   d.Loader,
		corpus:   d.Corpus,
		secrets:  d.Secrets,
		quiz:     d.Quiz,
		notifier: d.Notifier,
		logger:   d.Logger,
		now:      time.Now,
	}
}

// Sources returns the registered sources.
func (s *Service) Sources() []models.LibrarySource {
	return s.registry.Load()
}

// AddSource registers a directory and returns the updated list.
func (s *Service) AddSource(name, path string) ([]models.LibrarySource, error) {
	added, err := s.registry.Add(models.LibrarySource{Name: name, Path: path})
	if err != nil {
		return nil, err
	}
	sources := s.registry.Load()
	if added {
		s.notify(len(sources))
	}
	return sources, nil
}

// RemoveSource unregisters a directory and returns the updated list.
func (s *Service) RemoveSource(path string) ([]models.LibrarySource, error) {
	if err := s.registry.Remove(path); err != nil {
		return nil, err
	}
	sources := s.registry.Load()
	s.notify(len(sources))
	return sources, nil
}

// ListBooks scans dir, which must lie within a registered source.
func (s *Service) ListBooks(dir string) ([]models.LibraryItem, error) {
	allowed, err := s.guard.ResolveAllowedPath(dir)
	if err != nil {
		return nil, err
	}
	if !pathutil.IsDir(allowed) {
		return nil, fmt.Errorf("libraryservice: list books: %w: %s", apperr.ErrNotADirectory, allowed)
	}
	return scanner.Scan(allowed, s.logger), nil
}

// OpenBook returns the text of a book within a registered source.
func (s *Service) OpenBook(path string) (*models.ExtractedContent, error) {
	allowed, err := s.guard.ResolveAllowedPath(path)
	if err != nil {
		return nil, err
	}
	return s.loader.OpenBook(allowed)
}

// ExportManifest asks picker for a destination and writes the manifest of
// every registered source there.
func (s *Service) ExportManifest(ctx context.Context, picker Picker) (*models.ExportResult, error) {
	sources := s.registry.Load()
	if len(sources) == 0 {
		return nil, fmt.Errorf("libraryservice: export: %w", apperr.ErrNoSourcesConfigured)
	}

	dest, ok := picker.SaveFile(ctx, "Export library manifest", s.SuggestedManifestPath())
	if !ok {
		return models.CancelledExport(), nil
	}

	m, err := manifest.Build(ctx, sources, s.now(), s.logger)
	if err != nil {
		return nil, err
	}
	if err := manifest.Save(m, dest); err != nil {
		return nil, err
	}

	sourceCount, entryCount := len(m.Sources), len(m.Entries)
	s.logger.Info("library: manifest exported",
		slog.String("path", dest), slog.Int("sources", sourceCount), slog.Int("entries", entryCount))
	return &models.ExportResult{
		Status:      models.StatusExported,
		Path:        dest,
		SourceCount: &sourceCount,
		EntryCount:  &entryCount,
	}, nil
}

// SuggestedManifestPath is the default export destination:
// reader-library-manifest-YYYY-MM-DD.json in the user's documents directory,
// or the working directory when there is none.
func (s *Service) SuggestedManifestPath() string {
	name := fmt.Sprintf("%s-%s.json", manifest.Schema, s.now().Format(time.DateOnly))
	return filepath.Join(documentsDir(), name)
}

func documentsDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		docs := filepath.Join(home, "Documents")
		if pathutil.IsDir(docs) {
			return docs
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}

// ImportManifest asks picker for a manifest file and then for the shared
// root its sources live under, and reconciles them into the registry.
func (s *Service) ImportManifest(ctx context.Context, picker Picker) (*models.ImportResult, error) {
	manifestPath, ok := picker.PickFile(ctx, "Import library manifest")
	if !ok {
		return models.CancelledImport(), nil
	}
	sharedRoot, ok := picker.PickFolder(ctx, "Select shared library root")
	if !ok {
		return models.CancelledImport(), nil
	}

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	summary, err := manifest.Import(s.registry, m, sharedRoot, s.logger)
	if err != nil {
		return nil, err
	}
	if summary.Added > 0 {
		s.notify(len(s.registry.Load()))
	}
	return &models.ImportResult{
		Status:         models.StatusImported,
		ManifestPath:   manifestPath,
		SharedRootPath: sharedRoot,
		Added:          &summary.Added,
		Existing:       &summary.Existing,
		Missing:        &summary.Missing,
		Results:        summary.Results,
	}, nil
}

// SecretsAvailable reports whether the OS credential store can be used.
func (s *Service) SecretsAvailable() bool {
	return s.secrets.IsAvailable()
}

// GetSecret returns the stored value for keyID, or nil when none is stored.
func (s *Service) GetSecret(keyID string) (*string, error) {
	id, err := secrets.ParseKeyID(keyID)
	if err != nil {
		return nil, err
	}
	value, ok, err := s.secrets.Get(id)
	if err != nil || !ok {
		return nil, err
	}
	return &value, nil
}

// SetSecret stores value for keyID; nil or blank deletes it.
func (s *Service) SetSecret(keyID string, value *string) error {
	id, err := secrets.ParseKeyID(keyID)
	if err != nil {
		return err
	}
	return s.secrets.Set(id, value)
}

// CorpusInfo reports availability of every corpus family and tier.
func (s *Service) CorpusInfo() map[string]map[string]models.CorpusTierInfo {
	return s.corpus.Info()
}

// SampleArticle returns one article, or nil when none is available.
func (s *Service) SampleArticle(family, tier string) *models.CorpusArticle {
	article, ok := s.corpus.Sample(family, tier)
	if !ok {
		return nil
	}
	return &article
}

// Quiz samples an article and generates questions about it. The article is
// nil when the corpus has none for family and tier.
func (s *Service) Quiz(ctx context.Context, family, tier string) (*models.CorpusArticle, []quiz.Question, error) {
	article := s.SampleArticle(family, tier)
	if article == nil {
		return nil, nil, nil
	}
	questions, err := s.quiz.Generate(ctx, *article)
	if err != nil {
		return article, nil, err
	}
	return article, questions, nil
}

func (s *Service) notify(count int) {
	if s.notifier != nil {
		s.notifier.PublishSourcesUpdated(count)
	}
}
