package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/omnigram/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError. Errors lists messages per request field for validation failures.
type ErrorResponse struct {
	Success bool                `json:"success"`
	Error   APIError            `json:"error"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// Common error codes
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeRateLimited       = "RATE_LIMITED"
	CodePuzzleUnavailable = "PUZZLE_UNAVAILABLE"
	CodeNotFound          = "NOT_FOUND"
	CodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	CodeInternalError     = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
	fields   map[string][]string
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError, Errors: he.fields})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return &httpError{
			status:   http.StatusUnprocessableEntity,
			apiError: APIError{CodeValidationFailed, ve.Message},
			fields:   map[string][]string{ve.Field: {ve.Message}},
		}
	}

	switch {
	case errors.Is(err, model.ErrOmnigramPoolEmpty):
		return &httpError{status: http.StatusServiceUnavailable, apiError: APIError{CodePuzzleUnavailable, "No puzzle is available right now"}}
	default:
		return &httpError{status: http.StatusInternalServerError, apiError: APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{status: http.StatusBadRequest, apiError: APIError{CodeInvalidRequest, message}}
}

// NewRateLimitedError creates a too many requests error
func NewRateLimitedError() error {
	return &httpError{status: http.StatusTooManyRequests, apiError: APIError{CodeRateLimited, "Too many requests"}}
}

// NewNotFoundError creates a not found error for unrouted paths
func NewNotFoundError() error {
	return &httpError{status: http.StatusNotFound, apiError: APIError{CodeNotFound, "Not found"}}
}

// NewMethodNotAllowedError creates an error for a known path requested with the wrong method
func NewMethodNotAllowedError() error {
	return &httpError{status: http.StatusMethodNotAllowed, apiError: APIError{CodeMethodNotAllowed, "Method not allowed"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{status: http.StatusInternalServerError, apiError: APIError{CodeInternalError, "Internal server error"}}
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}
