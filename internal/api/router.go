// Package api assembles the HTTP surface: routes, middleware and CORS.
package api

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/titorm/shop-wise-sub000/internal/api/handlers"
	"github.com/titorm/shop-wise-sub000/internal/api/middleware"
	"github.com/titorm/shop-wise-sub000/internal/extraction"
	"github.com/titorm/shop-wise-sub000/internal/jobs"
	"github.com/titorm/shop-wise-sub000/internal/purchase"
	"github.com/titorm/shop-wise-sub000/internal/suggest"
)

// Deps are the services the routes call into. Uploader and Suggester may be nil.
type Deps struct {
	Taxonomy  *extraction.Taxonomy
	Publisher jobs.Publisher
	Jobs      jobs.JobStore
	Purchases *purchase.Service
	Suggester suggest.Suggester
	Uploader  handlers.Uploader
}

// NewRouter registers every route. Endpoints that call the model are rate limited.
func NewRouter(deps Deps, limiter *middleware.RateLimiter) *httprouter.Router {
	categories := handlers.NewCategoriesHandler(deps.Taxonomy)
	uploads := handlers.NewUploadsHandler(deps.Uploader)
	extractions := handlers.NewExtractionsHandler(deps.Publisher, deps.Jobs)
	purchases := handlers.NewPurchasesHandler(deps.Purchases)
	suggestions := handlers.NewSuggestionsHandler(deps.Suggester)

	router := httprouter.New()
	router.GET("/health", health)
	router.GET("/api/categories", categories.ListCategories)
	router.POST("/api/uploads", uploads.Upload)
	router.POST("/api/extractions", limiter.Limit(extractions.CreateExtraction))
	router.GET("/api/extractions/:id", extractions.GetExtraction)
	router.GET("/api/households/:household/extractions", extractions.ListExtractions)
	router.POST("/api/households/:household/purchases", purchases.CreatePurchase)
	router.PUT("/api/households/:household/purchases/:purchase/items", purchases.ReconcileItems)
	router.POST("/api/suggestions", limiter.Limit(suggestions.Suggest))

	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	})

	return router
}

// NewHandler wraps the router with CORS, request IDs, access logs and panic recovery.
func NewHandler(router http.Handler, log zerolog.Logger) http.Handler {
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         3600,
	}).Handler(router)

	return middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(corsHandler),
		),
	)
}

func health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
