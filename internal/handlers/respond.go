package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/diewo77/go-users/gate"
	"github.com/diewo77/go-users/httpx"
	"github.com/diewo77/go-users/i18n"
	"github.com/diewo77/go-users/internal/users"
	"github.com/diewo77/go-users/validation"
)

var errInvalidJSON = errors.New("invalid json body")

// writeError maps service errors onto the API error responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		httpx.Validation(w, i18n.Tc(ctx, "validation_failed"), verr.Violations)
	case errors.Is(err, errInvalidJSON):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", "")
	case errors.Is(err, gate.ErrUnauthenticated):
		httpx.JSONError(w, http.StatusUnauthorized, "unauthenticated", i18n.Tc(ctx, "unauthenticated"))
	case errors.Is(err, gate.ErrForbidden):
		var denied *gate.DeniedError
		if errors.As(err, &denied) {
			slog.InfoContext(ctx, "request forbidden", "action", denied.Action, "resource", denied.Resource, "path", r.URL.Path)
		}
		httpx.JSONError(w, http.StatusForbidden, "forbidden", i18n.Tc(ctx, "forbidden"))
	case errors.Is(err, users.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", i18n.Tc(ctx, "not_found"))
	default:
		slog.ErrorContext(ctx, "request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

// decodeBody reads a JSON object. An empty body is an empty object.
func decodeBody(r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, errInvalidJSON
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}

// queryMap keeps the first value of each query parameter.
func queryMap(r *http.Request) map[string]any {
	q := r.URL.Query()
	out := make(map[string]any, len(q))
	for k, vs := range q {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

// pathID parses the {id} route parameter. Malformed ids resolve to nothing.
func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, users.ErrNotFound
	}
	return uint(id), nil
}
