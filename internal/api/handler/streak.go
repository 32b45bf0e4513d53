package handler

import (
	"net/http"

	"github.com/mcoot/omnigram/internal/api/apierr"
	"github.com/mcoot/omnigram/internal/api/middleware"
	"github.com/mcoot/omnigram/internal/api/response"
	"github.com/mcoot/omnigram/internal/services/streak"
)

// StreakHandler handles daily visit streak endpoints
type StreakHandler struct {
	service *streak.Service
}

// NewStreakHandler creates a new streak handler
func NewStreakHandler(service *streak.Service) *StreakHandler {
	return &StreakHandler{service: service}
}

// Record handles POST /api/v1/session
func (h *StreakHandler) Record(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	info, err := h.service.Record(r.Context(), playerID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.OK(w, response.StreakFromInfo(info, playerID))
}

// Get handles GET /api/v1/session/streak
func (h *StreakHandler) Get(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	info, err := h.service.GetStreakInfo(r.Context(), playerID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.OK(w, response.StreakFromInfo(info, playerID))
}
