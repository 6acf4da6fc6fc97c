package purchase

import (
	"context"
	"fmt"

	"github.com/titorm/shop-wise-sub000/internal/domain"
	"github.com/titorm/shop-wise-sub000/internal/logger"
)

// Options tune a reconciliation.
type Options struct {
	// AllowUnlinked persists an item without a catalog reference when the
	// catalog fails, instead of aborting.
	AllowUnlinked bool
}

// Result describes a successful reconciliation.
type Result struct {
	PurchaseID string            `json:"purchaseId"`
	Plan       *Plan             `json:"-"`
	Assigned   map[string]string `json:"assigned"`
}

// Service reconciles edited item sets into the store.
type Service struct {
	store   Store
	catalog ProductResolver
}

// NewService creates a Service.
func NewService(store Store, catalog ProductResolver) *Service {
	return &Service{store: store, catalog: catalog}
}

// Reconcile brings the stored items of a purchase in line with edited and
// rewrites its total, all in one atomic batch. edited is never modified.
func (s *Service) Reconcile(ctx context.Context, householdID, purchaseID string, edited []EditedItem, opts Options) (*Result, error) {
	ctx = logger.WithContext(ctx, logger.WithFields(logger.FromContext(ctx), map[string]interface{}{
		"household_id": householdID,
		"purchase_id":  purchaseID,
	}))
	log := logger.FromContext(ctx)

	if _, err := s.store.GetPurchase(ctx, householdID, purchaseID); err != nil {
		return nil, fmt.Errorf("Reconcile: load purchase: %w", err)
	}

	persisted, err := s.store.ListItems(ctx, householdID, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("Reconcile: list items: %w", err)
	}

	if err := ValidateEdit(persisted, edited); err != nil {
		return nil, fmt.Errorf("Reconcile: %w", err)
	}

	refs, err := s.resolveRefs(ctx, edited, opts)
	if err != nil {
		return nil, fmt.Errorf("Reconcile: %w", err)
	}

	plan, err := Diff(persisted, edited, refs, func() string {
		return s.store.NewItemID(householdID, purchaseID)
	})
	if err != nil {
		return nil, fmt.Errorf("Reconcile: %w", err)
	}
	plan.HouseholdID = householdID
	plan.PurchaseID = purchaseID

	if err := s.store.Apply(ctx, plan); err != nil {
		log.Error().Err(err).Msg("Failed to apply purchase changes")
		return nil, &PersistenceError{HouseholdID: householdID, PurchaseID: purchaseID, Err: err}
	}

	log.Info().
		Int("inserted", len(plan.Inserts)).
		Int("updated", len(plan.Updates)).
		Int("deleted", len(plan.Deletes)).
		Str("total", plan.TotalAmount.String()).
		Msg("Reconciled purchase")

	return &Result{PurchaseID: purchaseID, Plan: plan, Assigned: plan.Assigned}, nil
}

// Create saves a new purchase with items in one atomic batch. Every item must
// carry a new-item id. The header's ID, HouseholdID and TotalAmount are set here.
func (s *Service) Create(ctx context.Context, householdID string, header domain.Purchase, items []EditedItem, opts Options) (*Result, error) {
	purchaseID := s.store.NewPurchaseID(householdID)

	ctx = logger.WithContext(ctx, logger.WithFields(logger.FromContext(ctx), map[string]interface{}{
		"household_id": householdID,
		"purchase_id":  purchaseID,
	}))
	log := logger.FromContext(ctx)

	if err := ValidateEdit(nil, items); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	refs, err := s.resolveRefs(ctx, items, opts)
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	plan, err := Diff(nil, items, refs, func() string {
		return s.store.NewItemID(householdID, purchaseID)
	})
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	header.ID = purchaseID
	header.HouseholdID = householdID
	header.TotalAmount = plan.TotalAmount
	plan.HouseholdID = householdID
	plan.PurchaseID = purchaseID
	plan.Header = &header

	if err := s.store.Apply(ctx, plan); err != nil {
		log.Error().Err(err).Msg("Failed to create purchase")
		return nil, &PersistenceError{HouseholdID: householdID, PurchaseID: purchaseID, Err: err}
	}

	log.Info().
		Int("items", len(plan.Inserts)).
		Str("total", plan.TotalAmount.String()).
		Msg("Created purchase")

	return &Result{PurchaseID: purchaseID, Plan: plan, Assigned: plan.Assigned}, nil
}

func (s *Service) resolveRefs(ctx context.Context, items []EditedItem, opts Options) ([]*domain.ProductRef, error) {
	refs := make([]*domain.ProductRef, len(items))
	for i, item := range items {
		if item.Product != nil {
			refs[i] = item.Product
			continue
		}

		ref, err := s.catalog.Resolve(ctx, item.Line)
		if err != nil {
			if !opts.AllowUnlinked {
				return nil, fmt.Errorf("resolve item %s: %w", item.ID, err)
			}
			log := logger.FromContext(ctx)
			log.Warn().
				Err(err).
				Str("item", item.ID.String()).
				Msg("Catalog unavailable, saving item without product link")
			continue
		}
		refs[i] = ref
	}
	return refs, nil
}
