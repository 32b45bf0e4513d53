package handler

import (
	"net/http"

	"github.com/mcoot/omnigram/internal/api/apierr"
	"github.com/mcoot/omnigram/internal/api/middleware"
	"github.com/mcoot/omnigram/internal/api/request"
	"github.com/mcoot/omnigram/internal/api/response"
	"github.com/mcoot/omnigram/internal/services/playsession"
)

// PlaySessionHandler handles daily puzzle session endpoints
type PlaySessionHandler struct {
	service *playsession.Service
}

// NewPlaySessionHandler creates a new play session handler
func NewPlaySessionHandler(service *playsession.Service) *PlaySessionHandler {
	return &PlaySessionHandler{service: service}
}

// Current handles GET /api/v1/play-session/current
func (h *PlaySessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	view, err := h.service.GetCurrentSession(r.Context(), playerID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.OK(w, response.PlaySessionFromView(view, playerID))
}

// SubmitWord handles POST /api/v1/play-session/submit-word.
// Words the session refuses are reported with success false and status 200.
func (h *PlaySessionHandler) SubmitWord(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	var req request.SubmitWordRequest
	if err := decodeBody(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	res, err := h.service.SubmitWord(r.Context(), playerID, req.Word)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.OK(w, response.SubmitSessionWordFromResult(res, playerID))
}

// TopScores handles GET /api/v1/play-session/top-scores
func (h *PlaySessionHandler) TopScores(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	entries, err := h.service.GetTopScores(r.Context(), limit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.OK(w, response.TopScoresFromEntries(entries))
}
