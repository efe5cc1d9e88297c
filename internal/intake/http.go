package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/wolfman30/llc-formation-platform/pkg/logging"
	"github.com/xeipuuv/gojsonschema"
)

const maxBodyBytes = 64 << 10

// ErrorResponse is the JSON body returned for failed submissions.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// BodySchema checks the JSON shape of a request body before it is decoded.
type BodySchema struct {
	loader gojsonschema.JSONLoader
}

// NewBodySchema compiles a JSON schema document given as a Go value.
func NewBodySchema(schema map[string]any) *BodySchema {
	return &BodySchema{loader: gojsonschema.NewGoLoader(schema)}
}

// StringFields builds an object schema whose listed properties must be
// strings when present. Presence itself is left to field validation so the
// caller can report which field is missing.
func StringFields(names ...string) map[string]any {
	props := make(map[string]any, len(names))
	for _, n := range names {
		props[n] = map[string]any{"type": "string", "maxLength": 5000}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
	}
}

// Decode reads the request body, checks it against the schema and
// unmarshals it into dst.
func (s *BodySchema) Decode(r *http.Request, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("intake: read body: %w", err)
	}
	if s != nil && s.loader != nil {
		result, err := gojsonschema.Validate(s.loader, gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return fmt.Errorf("intake: malformed body: %w", err)
		}
		if !result.Valid() {
			msgs := make([]string, 0, len(result.Errors()))
			for _, desc := range result.Errors() {
				msgs = append(msgs, desc.String())
			}
			return fmt.Errorf("intake: body does not match schema: %s", strings.Join(msgs, "; "))
		}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("intake: decode body: %w", err)
	}
	return nil
}

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps the intake error taxonomy onto HTTP responses. Validation
// failures name the field, persistence failures never expose their cause.
func WriteError(w http.ResponseWriter, logger *logging.Logger, err error) {
	var ve *ValidationError
	var pe *PersistenceError
	switch {
	case errors.As(err, &ve):
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: ve.Error(), Field: ve.Field})
	case errors.As(err, &pe):
		if logger != nil {
			logger.Error("persistence failure", "op", pe.Op, "error", pe.Err)
		}
		WriteJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: pe.Error()})
	default:
		if logger != nil {
			logger.Error("unexpected intake failure", "error", err)
		}
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "something went wrong"})
	}
}
