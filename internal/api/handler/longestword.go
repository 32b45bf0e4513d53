package handler

import (
	"net/http"

	"github.com/mcoot/omnigram/internal/api/apierr"
	"github.com/mcoot/omnigram/internal/api/middleware"
	"github.com/mcoot/omnigram/internal/api/request"
	"github.com/mcoot/omnigram/internal/api/response"
	"github.com/mcoot/omnigram/internal/services/longestword"
)

// LongestWordHandler handles longest-word endpoints
type LongestWordHandler struct {
	service *longestword.Service
}

// NewLongestWordHandler creates a new longest-word handler
func NewLongestWordHandler(service *longestword.Service) *LongestWordHandler {
	return &LongestWordHandler{service: service}
}

// Submit handles POST /api/v1/longest-word
func (h *LongestWordHandler) Submit(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	var req request.SubmitWordRequest
	if err := decodeBody(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	res, err := h.service.Submit(r.Context(), playerID, req.Word)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.OK(w, response.SubmitLongestWordFromResult(res, playerID))
}

// Get handles GET /api/v1/longest-word
func (h *LongestWordHandler) Get(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	word, length, err := h.service.GetLongest(r.Context(), playerID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.OK(w, response.LongestWord{
		Success:     true,
		LongestWord: word,
		Length:      length,
		PlayerID:    string(playerID),
	})
}

// Top handles GET /api/v1/longest-word/top
func (h *LongestWordHandler) Top(w http.ResponseWriter, r *http.Request) {
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

	response.OK(w, response.TopWordsFromEntries(entries))
}
