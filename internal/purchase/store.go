// Package purchase persists the edited item set of a purchase as one atomic
// batch of inserts, updates and deletes.
package purchase

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/titorm/shop-wise-sub000/internal/domain"
)

var (
	// ErrNotFound is returned when the purchase does not exist.
	ErrNotFound = errors.New("purchase not found")

	// ErrInvalidEdit is returned when the edited set cannot be reconciled
	// against the persisted one.
	ErrInvalidEdit = errors.New("invalid purchase edit")
)

// Store is the persistence boundary for purchases and their items.
type Store interface {
	GetPurchase(ctx context.Context, householdID, purchaseID string) (*domain.Purchase, error)
	ListItems(ctx context.Context, householdID, purchaseID string) ([]domain.PurchaseItem, error)
	NewPurchaseID(householdID string) string
	NewItemID(householdID, purchaseID string) string

	// Apply writes every change in plan or none of them.
	Apply(ctx context.Context, plan *Plan) error
}

// ProductResolver links a line to the product catalog. *catalog.Resolver implements it.
type ProductResolver interface {
	Resolve(ctx context.Context, item domain.UnifiedLineItem) (*domain.ProductRef, error)
}

// Plan is the write set for one reconciliation.
type Plan struct {
	HouseholdID string
	PurchaseID  string

	// Header is set when the purchase document itself must be created.
	Header *domain.Purchase

	Inserts     []domain.PurchaseItem
	Updates     []domain.PurchaseItem
	Deletes     []string
	TotalAmount decimal.Decimal

	// Assigned maps the temporary id of each inserted item to its new id.
	Assigned map[string]string
}

// Empty reports whether the plan touches no item.
func (p *Plan) Empty() bool {
	return len(p.Inserts) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}
