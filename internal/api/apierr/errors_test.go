package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/omnigram/internal/model"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", model.NewValidationError("word", "The word field is required."), http.StatusUnprocessableEntity},
		{"wrapped validation", fmt.Errorf("submit: %w", model.NewValidationError("word", "x")), http.StatusUnprocessableEntity},
		{"empty pool", fmt.Errorf("load: %w", model.ErrOmnigramPoolEmpty), http.StatusServiceUnavailable},
		{"invalid request", NewInvalidRequestError("bad"), http.StatusBadRequest},
		{"rate limited", NewRateLimitedError(), http.StatusTooManyRequests},
		{"not found", NewNotFoundError(), http.StatusNotFound},
		{"method not allowed", NewMethodNotAllowedError(), http.StatusMethodNotAllowed},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`, rr.Body.String())
}

func TestWriteErrorListsFieldErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, model.NewValidationError("word_count", "The word count field is required."))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.JSONEq(t, `{
		"success": false,
		"error": {"code": "VALIDATION_FAILED", "message": "The word count field is required."},
		"errors": {"word_count": ["The word count field is required."]}
	}`, rr.Body.String())
}
