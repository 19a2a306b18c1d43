package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/petclinic/records/internal/domain"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes what went wrong. Fields is set for validation errors.
type ErrorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError is one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// notFoundBody returns an ErrorResponse for a missing resource.
// The caller supplies the message because the handler is the layer that
// knows what was being looked up.
func notFoundBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "not_found", Message: message}}
}

// validationBody returns an ErrorResponse listing every rejected field of a
// domain validation failure.
func validationBody(err error) ErrorResponse {
	body := ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: domain.ErrValidation.Error()}}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body.Error.Message = verr.Error()
		for _, f := range verr.Fields {
			body.Error.Fields = append(body.Error.Fields, FieldError(f))
		}
	}
	return body
}

// requestBody returns an ErrorResponse for a request rejected before
// reaching the service layer (e.g. malformed body or path parameter).
func requestBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "bad_request", Message: message}}
}

func internalBody() ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "internal_error", Message: "internal server error"}}
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail maps a service error onto a response. notFound is the message used
// when err wraps domain.ErrNotFound. Anything unrecognised is logged and
// reported as an opaque 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, notFoundBody(notFound))
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
	default:
		s.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, internalBody())
	}
}
