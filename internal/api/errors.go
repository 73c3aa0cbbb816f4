package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/lectern/internal/apperr"
	"github.com/starford/lectern/internal/quiz"
)

var errorStatus = []struct {
	kind   error
	status int
}{
	{apperr.ErrPathNotFound, http.StatusNotFound},
	{apperr.ErrPathOutsideLibrary, http.StatusForbidden},
	{apperr.ErrNoSourcesConfigured, http.StatusConflict},
	{apperr.ErrNotADirectory, http.StatusBadRequest},
	{apperr.ErrSharedRootInvalid, http.StatusBadRequest},
	{apperr.ErrUnknownKeyID, http.StatusBadRequest},
	{apperr.ErrUnsupportedFileType, http.StatusUnsupportedMediaType},
	{apperr.ErrNoNormalizedSnapshot, http.StatusUnprocessableEntity},
	{apperr.ErrManifestSchemaMismatch, http.StatusUnprocessableEntity},
	{apperr.ErrManifestMalformed, http.StatusUnprocessableEntity},
	{apperr.ErrSecretService, http.StatusServiceUnavailable},
	{quiz.ErrNoAPIKey, http.StatusPreconditionFailed},
	{quiz.ErrInvalidResponse, http.StatusBadGateway},
}

// writeError maps a service error onto a status code. Known kinds carry their
// message to the caller; anything else is logged and reported as internal.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.kind) {
			writeJSON(w, e.status, errorBody(err.Error()))
			return
		}
	}
	h.logger.Error("api: "+op+" failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}
