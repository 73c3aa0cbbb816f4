package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lectern/internal/libraryservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *libraryservice.Service
	logger *slog.Logger
}

// NewHandler creates a new Handler. A nil logger falls back to slog.Default.
func NewHandler(svc *libraryservice.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// ListSources handles GET /api/sources.
//
//	@Summary	List registered library sources
//	@Tags		sources
//	@Produce	json
//	@Success	200	{object}	SourcesResponse
//	@Security	BearerAuth
//	@Router		/sources [get]
func (h *Handler) ListSources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SourcesResponse{Sources: h.svc.Sources()})
}

// AddSource handles POST /api/sources.
//
//	@Summary	Register a directory as a library source
//	@Tags		sources
//	@Accept		json
//	@Produce	json
//	@Param		body	body		AddSourceRequest	true	"Source to add"
//	@Success	200		{object}	SourcesResponse
//	@Failure	400		{object}	errResponse
//	@Failure	404		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/sources [post]
func (h *Handler) AddSource(w http.ResponseWriter, r *http.Request) {
	var req AddSourceRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	sources, err := h.svc.AddSource(req.Name, req.Path)
	if err != nil {
		h.writeError(w, "add source", err)
		return
	}
	writeJSON(w, http.StatusOK, SourcesResponse{Sources: sources})
}

// RemoveSource handles DELETE /api/sources.
//
//	@Summary	Unregister a library source
//	@Tags		sources
//	@Accept		json
//	@Produce	json
//	@Param		body	body		RemoveSourceRequest	true	"Source to remove"
//	@Success	200		{object}	SourcesResponse
//	@Security	BearerAuth
//	@Router		/sources [delete]
func (h *Handler) RemoveSource(w http.ResponseWriter, r *http.Request) {
	var req RemoveSourceRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	sources, err := h.svc.RemoveSource(req.Path)
	if err != nil {
		h.writeError(w, "remove source", err)
		return
	}
	writeJSON(w, http.StatusOK, SourcesResponse{Sources: sources})
}

// ListBooks handles GET /api/books.
//
//	@Summary	Scan a directory inside a library source
//	@Tags		books
//	@Produce	json
//	@Param		dir	query		string	true	"Directory path"
//	@Success	200	{object}	BooksResponse
//	@Failure	403	{object}	errResponse
//	@Security	BearerAuth
//	@Router		/books [get]
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("dir")
	if dir == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'dir' is required"))
		return
	}
	items, err := h.svc.ListBooks(dir)
	if err != nil {
		h.writeError(w, "list books", err)
		return
	}
	writeJSON(w, http.StatusOK, BooksResponse{Books: items})
}

// OpenBook handles GET /api/book.
//
//	@Summary	Read the text of a book
//	@Tags		books
//	@Produce	json
//	@Param		path	query		string	true	"Book path"
//	@Success	200		{object}	models.ExtractedContent
//	@Failure	403		{object}	errResponse
//	@Failure	422		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/book [get]
func (h *Handler) OpenBook(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'path' is required"))
		return
	}
	book, err := h.svc.OpenBook(path)
	if err != nil {
		h.writeError(w, "open book", err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// ExportManifest handles POST /api/manifest/export.
//
//	@Summary	Export the library manifest
//	@Tags		manifest
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ExportRequest	true	"Destination"
//	@Success	200		{object}	models.ExportResult
//	@Security	BearerAuth
//	@Router		/manifest/export [post]
func (h *Handler) ExportManifest(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.ExportManifest(r.Context(), libraryservice.StaticPicker{Save: req.Path})
	if err != nil {
		h.writeError(w, "export manifest", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ImportManifest handles POST /api/manifest/import.
//
//	@Summary	Import a library manifest against a shared root
//	@Tags		manifest
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ImportRequest	true	"Manifest and shared root"
//	@Success	200		{object}	models.ImportResult
//	@Failure	422		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/manifest/import [post]
func (h *Handler) ImportManifest(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !decode(w, r, &req) {
		return
	}
	picker := libraryservice.StaticPicker{File: req.ManifestPath, Folder: req.SharedRoot}
	res, err := h.svc.ImportManifest(r.Context(), picker)
	if err != nil {
		h.writeError(w, "import manifest", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SecretsStatus handles GET /api/secrets/status.
//
//	@Summary	Report whether secure storage is available
//	@Tags		secrets
//	@Produce	json
//	@Success	200	{object}	SecretsStatusResponse
//	@Security	BearerAuth
//	@Router		/secrets/status [get]
func (h *Handler) SecretsStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SecretsStatusResponse{Available: h.svc.SecretsAvailable()})
}

// GetSecret handles GET /api/secrets/{keyID}.
//
//	@Summary	Read a stored secret
//	@Tags		secrets
//	@Produce	json
//	@Param		keyID	path		string	true	"Key identifier"
//	@Success	200		{object}	SecretResponse
//	@Failure	400		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/secrets/{keyID} [get]
func (h *Handler) GetSecret(w http.ResponseWriter, r *http.Request) {
	keyID := chi.URLParam(r, "keyID")
	value, err := h.svc.GetSecret(keyID)
	if err != nil {
		h.writeError(w, "get secret", err)
		return
	}
	writeJSON(w, http.StatusOK, SecretResponse{KeyID: keyID, Value: value})
}

// SetSecret handles PUT /api/secrets/{keyID}.
//
//	@Summary	Store or delete a secret
//	@Tags		secrets
//	@Accept		json
//	@Param		keyID	path	string				true	"Key identifier"
//	@Param		body	body	SetSecretRequest	true	"Value; null or blank deletes"
//	@Success	204		"Stored"
//	@Failure	400		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/secrets/{keyID} [put]
func (h *Handler) SetSecret(w http.ResponseWriter, r *http.Request) {
	var req SetSecretRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.SetSecret(chi.URLParam(r, "keyID"), req.Value); err != nil {
		h.writeError(w, "set secret", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CorpusInfo handles GET /api/corpus.
//
//	@Summary	Report corpus availability per family and tier
//	@Tags		corpus
//	@Produce	json
//	@Success	200	{object}	map[string]map[string]models.CorpusTierInfo
//	@Security	BearerAuth
//	@Router		/corpus [get]
func (h *Handler) CorpusInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.CorpusInfo())
}

// SampleArticle handles GET /api/corpus/{family}/{tier}/sample.
//
//	@Summary	Sample one corpus article
//	@Tags		corpus
//	@Produce	json
//	@Param		family	path		string	true	"Corpus family"	Enums(wiki, prose)
//	@Param		tier	path		string	true	"Difficulty tier"	Enums(easy, medium, hard)
//	@Success	200		{object}	SampleResponse
//	@Security	BearerAuth
//	@Router		/corpus/{family}/{tier}/sample [get]
func (h *Handler) SampleArticle(w http.ResponseWriter, r *http.Request) {
	article := h.svc.SampleArticle(chi.URLParam(r, "family"), chi.URLParam(r, "tier"))
	writeJSON(w, http.StatusOK, SampleResponse{Article: article})
}

// Quiz handles POST /api/corpus/{family}/{tier}/quiz.
//
//	@Summary	Sample an article and generate comprehension questions
//	@Tags		corpus
//	@Produce	json
//	@Param		family	path		string	true	"Corpus family"
//	@Param		tier	path		string	true	"Difficulty tier"
//	@Success	200		{object}	QuizResponse
//	@Failure	412		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/corpus/{family}/{tier}/quiz [post]
func (h *Handler) Quiz(w http.ResponseWriter, r *http.Request) {
	article, questions, err := h.svc.Quiz(r.Context(), chi.URLParam(r, "family"), chi.URLParam(r, "tier"))
	if err != nil {
		h.writeError(w, "quiz", err)
		return
	}
	writeJSON(w, http.StatusOK, QuizResponse{Article: article, Questions: questions})
}
