package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/bolao-platform/bolao-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// UUIDURLParam parses a chi URL parameter as a UUID.
func UUIDURLParam(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").
			WithDetails(map[string]any{"param": key})
	}
	return id, nil
}

// UUIDQueryParam parses a required query parameter as a UUID.
func UUIDQueryParam(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter required").
			WithDetails(map[string]any{"param": key})
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").
			WithDetails(map[string]any{"param": key})
	}
	return id, nil
}
