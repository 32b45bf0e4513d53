package handler

import (
	"net/http"

	"github.com/mcoot/omnigram/internal/api/apierr"
	"github.com/mcoot/omnigram/internal/api/middleware"
	"github.com/mcoot/omnigram/internal/api/request"
	"github.com/mcoot/omnigram/internal/api/response"
	"github.com/mcoot/omnigram/internal/model"
	"github.com/mcoot/omnigram/internal/services/wordcount"
)

// WordCountHandler handles game word-count endpoints
type WordCountHandler struct {
	service *wordcount.Service
}

// NewWordCountHandler creates a new word-count handler
func NewWordCountHandler(service *wordcount.Service) *WordCountHandler {
	return &WordCountHandler{service: service}
}

// Update handles POST /api/v1/game-words/update
func (h *WordCountHandler) Update(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	var req request.UpdateWordCountRequest
	if err := decodeBody(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}
	if req.WordCount == nil {
		apierr.WriteError(w, model.NewValidationError("word_count", "The word count field is required."))
		return
	}

	res, err := h.service.Update(r.Context(), playerID, *req.WordCount)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.OK(w, response.WordCountUpdateFromResult(res, playerID))
}

// Highest handles GET /api/v1/game-words/highest
func (h *WordCountHandler) Highest(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	highest, err := h.service.GetHighest(r.Context(), playerID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.OK(w, response.HighestWordCount{
		Success:          true,
		HighestWordCount: highest,
		PlayerID:         string(playerID),
	})
}

// Top handles GET /api/v1/game-words/top
func (h *WordCountHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	entries, err := h.service.GetTop(r.Context(), limit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.OK(w, response.TopWordCountsFromEntries(entries))
}
