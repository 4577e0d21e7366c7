package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"promogen/internal/domain"
	"promogen/internal/pipeline"
)

type App struct {
	Logger   zerolog.Logger
	Pipeline *pipeline.Pipeline
	Jobs     domain.JobStore

	// StorageBaseURL resolves stored asset keys into public URLs in responses.
	StorageBaseURL string
}

func NewApp(logger zerolog.Logger, p *pipeline.Pipeline, jobs domain.JobStore, storageBaseURL string) *App {
	return &App{Logger: logger, Pipeline: p, Jobs: jobs, StorageBaseURL: storageBaseURL}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

// domainError maps pipeline sentinel errors onto HTTP responses. Unknown
// errors are reported as internal without leaking detail to the client.
func (a *App) domainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrUpstream):
		a.error(w, http.StatusBadGateway, "upstream_failed", "generation providers unavailable")
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("handler: unexpected error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
