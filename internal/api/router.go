package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lectern/internal/libraryservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *libraryservice.Service, logger *slog.Logger, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/sources", h.ListSources)
	r.Post("/sources", h.AddSource)
	r.Delete("/sources", h.RemoveSource)

	r.Get("/books", h.ListBooks)
	r.Get("/book", h.OpenBook)

	r.Post("/manifest/export", h.ExportManifest)
	r.Post("/manifest/import", h.ImportManifest)

	r.Get("/secrets/status", h.SecretsStatus)
	r.Get("/secrets/{keyID}", h.GetSecret)
	r.Put("/secrets/{keyID}", h.SetSecret)

	r.Get("/corpus", h.CorpusInfo)
	r.Get("/corpus/{family}/{tier}/sample", h.SampleArticle)
	r.Post("/corpus/{family}/{tier}/quiz", h.Quiz)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
