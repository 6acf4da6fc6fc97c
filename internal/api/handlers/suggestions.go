package handlers

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/titorm/shop-wise-sub000/internal/api/middleware"
	"github.com/titorm/shop-wise-sub000/internal/logger"
	"github.com/titorm/shop-wise-sub000/internal/suggest"
)

// SuggestionsHandler proposes shopping-list items.
type SuggestionsHandler struct {
	suggester suggest.Suggester
}

// NewSuggestionsHandler creates a new suggestions handler. A nil suggester
// always yields an empty list.
func NewSuggestionsHandler(suggester suggest.Suggester) *SuggestionsHandler {
	return &SuggestionsHandler{suggester: suggester}
}

type suggestionsRequest struct {
	History  string   `json:"history"`
	Adults   int      `json:"adults"`
	Children int      `json:"children"`
	Existing []string `json:"existing"`
}

// Suggest handles POST /api/suggestions. A failed suggester is reported as an
// empty list, not an error.
func (h *SuggestionsHandler) Suggest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	var req suggestionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if h.suggester == nil {
		middleware.WriteJSON(w, http.StatusOK, map[string][]string{"suggestions": {}})
		return
	}

	items, err := suggest.Intake(ctx, h.suggester, req.History, suggest.FamilySize{Adults: req.Adults, Children: req.Children})
	if err != nil {
		var sErr *suggest.SuggestionError
		if !errors.As(err, &sErr) {
			writeServiceError(w, logger.FromContext(ctx), err, "Failed to get suggestions")
			return
		}
		items = nil
	}

	if req.Existing != nil {
		items = suggest.MergeNew(req.Existing, items)
	}
	if items == nil {
		items = []string{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string][]string{"suggestions": items})
}
