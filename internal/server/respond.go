package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/melodi/internal/shared"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Message string              `json:"message"`
	Errors  []shared.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
// Failures come back as [shared.ValidationError] so they map to 400.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil {
		return nil
	}

	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)
	switch {
	case errors.Is(err, io.EOF):
		return shared.NewValidationError("Request body is required")
	case errors.As(err, &typeErr):
		return shared.NewValidationError("Invalid request body", shared.FieldError{
			Field:   typeErr.Field,
			Message: "must be a " + jsonKind(typeErr.Type.Kind().String()),
		})
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return shared.NewValidationError("Malformed JSON body")
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return shared.NewValidationError("Invalid request body", shared.FieldError{Field: field, Message: "is not allowed"})
	default:
		return shared.NewValidationError(fmt.Sprintf("Invalid request body: %v", err))
	}
}

func jsonKind(kind string) string {
	switch kind {
	case "string":
		return "string"
	case "bool":
		return "boolean"
	case "slice", "array":
		return "list"
	case "struct", "map":
		return "object"
	default:
		return "number"
	}
}

// notFoundMessage names the missing resource.
func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, shared.ErrTrackNotFound):
		return "Track not found"
	case errors.Is(err, shared.ErrPlaylistNotFound):
		return "Playlist not found"
	case errors.Is(err, shared.ErrInteractionNotFound):
		return "Interaction not found"
	case errors.Is(err, shared.ErrPreferencesNotFound):
		return "Preferences not found"
	default:
		return "Not found"
	}
}

// fail maps err onto a response: validation errors are 400, missing records 404 and anything
// else a 500 carrying only fallback. The cause of a 500 is logged.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *shared.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Message: verr.Message, Errors: verr.Fields})
	case errors.Is(err, shared.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody{Message: err.Error()})
	case errors.Is(err, shared.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Message: notFoundMessage(err)})
	default:
		s.logger.Error(fallback, "error", err, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: fallback})
	}
}
