package handlers

import (
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/julienschmidt/httprouter"

	"github.com/titorm/shop-wise-sub000/internal/api/middleware"
	"github.com/titorm/shop-wise-sub000/internal/domain"
	"github.com/titorm/shop-wise-sub000/internal/logger"
	"github.com/titorm/shop-wise-sub000/internal/purchase"
)

// PurchasesHandler saves and edits purchases.
type PurchasesHandler struct {
	service *purchase.Service
}

// NewPurchasesHandler creates a new purchases handler.
func NewPurchasesHandler(service *purchase.Service) *PurchasesHandler {
	return &PurchasesHandler{service: service}
}

type createPurchaseRequest struct {
	StoreName     string                `json:"storeName"`
	Date          civil.Date            `json:"date"`
	Store         *domain.StoreInfo     `json:"store"`
	Items         []purchase.EditedItem `json:"items"`
	AllowUnlinked bool                  `json:"allowUnlinked"`
}

type reconcileRequest struct {
	Items         []purchase.EditedItem `json:"items"`
	AllowUnlinked bool                  `json:"allowUnlinked"`
}

// CreatePurchase handles POST /api/households/:household/purchases
func (h *PurchasesHandler) CreatePurchase(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	household := ps.ByName("household")

	var req createPurchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Date.IsValid() {
		middleware.WriteError(w, http.StatusBadRequest, "date is required")
		return
	}
	storeName := req.StoreName
	if storeName == "" && req.Store != nil {
		storeName = req.Store.Name
	}

	header := domain.Purchase{StoreName: storeName, Date: req.Date, Store: req.Store}
	res, err := h.service.Create(ctx, household, header, req.Items, purchase.Options{AllowUnlinked: req.AllowUnlinked})
	if err != nil {
		writeServiceError(w, logger.FromContext(ctx), err, "Failed to create purchase")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"purchaseId":  res.PurchaseID,
		"assigned":    res.Assigned,
		"totalAmount": res.Plan.TotalAmount,
	})
}

// ReconcileItems handles PUT /api/households/:household/purchases/:purchase/items
func (h *PurchasesHandler) ReconcileItems(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()

	var req reconcileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.service.Reconcile(ctx, ps.ByName("household"), ps.ByName("purchase"), req.Items,
		purchase.Options{AllowUnlinked: req.AllowUnlinked})
	if err != nil {
		writeServiceError(w, logger.FromContext(ctx), err, "Failed to reconcile purchase")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"purchaseId":  res.PurchaseID,
		"assigned":    res.Assigned,
		"inserted":    len(res.Plan.Inserts),
		"updated":     len(res.Plan.Updates),
		"deleted":     len(res.Plan.Deletes),
		"totalAmount": res.Plan.TotalAmount,
	})
}
