package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/titorm/shop-wise-sub000/internal/api/middleware"
	"github.com/titorm/shop-wise-sub000/internal/extraction"
)

// CategoriesHandler serves the product taxonomy.
type CategoriesHandler struct {
	taxonomy *extraction.Taxonomy
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(taxonomy *extraction.Taxonomy) *CategoriesHandler {
	return &CategoriesHandler{taxonomy: taxonomy}
}

// ListCategories handles GET /api/categories
func (h *CategoriesHandler) ListCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	categories := h.taxonomy.Categories()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}
