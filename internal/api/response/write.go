package response

import (
	"encoding/json"
	"net/http"
)

// JSON encodes data as the response body with the given status
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// OK writes a 200 response carrying one of the success bodies in this package
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}
