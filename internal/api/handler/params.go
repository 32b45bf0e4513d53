package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/mcoot/omnigram/internal/api/apierr"
	"github.com/mcoot/omnigram/internal/model"
)

// decodeBody decodes a JSON request body into dst. An empty body leaves dst untouched,
// so required fields surface as validation errors. A field of the wrong type is a validation error.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return model.NewValidationError(typeErr.Field, "The "+fieldLabel(typeErr.Field)+" field must be "+kindLabel(typeErr.Type.Kind())+".")
	}
	return apierr.NewInvalidRequestError("invalid request body")
}

// limitParam reads the optional ?limit= query parameter; zero means the default
func limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, model.NewValidationError("limit", "The limit must be a positive integer.")
	}
	return limit, nil
}

// fieldLabel turns a JSON field name into the wording used in validation messages
func fieldLabel(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func kindLabel(kind reflect.Kind) string {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "an integer"
	case reflect.String:
		return "a string"
	default:
		return "a " + kind.String()
	}
}
