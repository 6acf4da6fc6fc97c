package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/titorm/shop-wise-sub000/internal/domain"
	"github.com/titorm/shop-wise-sub000/internal/purchase"
)

// ErrInjectedFailure is returned by Apply when FailAfter is reached.
var ErrInjectedFailure = errors.New("injected store failure")

type purchaseRecord struct {
	purchase domain.Purchase
	items    []domain.PurchaseItem
}

func (r *purchaseRecord) clone() *purchaseRecord {
	cp := &purchaseRecord{purchase: r.purchase}
	cp.items = append([]domain.PurchaseItem(nil), r.items...)
	return cp
}

// PurchaseStore is a purchase.Store that applies plans atomically: changes
// are staged on a copy and swapped in only when every write succeeds.
type PurchaseStore struct {
	mu        sync.RWMutex
	purchases map[string]*purchaseRecord

	// FailAfter makes Apply fail after that many staged writes. Zero disables it.
	FailAfter int
}

// NewPurchaseStore creates an empty PurchaseStore.
func NewPurchaseStore() *PurchaseStore {
	return &PurchaseStore{purchases: make(map[string]*purchaseRecord)}
}

func key(householdID, purchaseID string) string {
	return householdID + "/" + purchaseID
}

func (s *PurchaseStore) GetPurchase(ctx context.Context, householdID, purchaseID string) (*domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.purchases[key(householdID, purchaseID)]
	if !ok {
		return nil, purchase.ErrNotFound
	}
	p := rec.purchase
	return &p, nil
}

func (s *PurchaseStore) ListItems(ctx context.Context, householdID, purchaseID string) ([]domain.PurchaseItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.purchases[key(householdID, purchaseID)]
	if !ok {
		return nil, purchase.ErrNotFound
	}
	return append([]domain.PurchaseItem(nil), rec.items...), nil
}

func (s *PurchaseStore) NewPurchaseID(householdID string) string {
	return uuid.NewString()
}

func (s *PurchaseStore) NewItemID(householdID, purchaseID string) string {
	return uuid.NewString()
}

func (s *PurchaseStore) Apply(ctx context.Context, plan *purchase.Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(plan.HouseholdID, plan.PurchaseID)
	writes := 0
	stage := func() error {
		writes++
		if s.FailAfter > 0 && writes > s.FailAfter {
			return ErrInjectedFailure
		}
		return nil
	}

	var rec *purchaseRecord
	if plan.Header != nil {
		if _, exists := s.purchases[k]; exists {
			return fmt.Errorf("purchase %s already exists", k)
		}
		rec = &purchaseRecord{purchase: *plan.Header}
		if err := stage(); err != nil {
			return err
		}
	} else {
		current, ok := s.purchases[k]
		if !ok {
			return purchase.ErrNotFound
		}
		rec = current.clone()
	}

	index := make(map[string]int, len(rec.items))
	for i, item := range rec.items {
		index[item.ID] = i
	}

	deleted := make(map[string]struct{}, len(plan.Deletes))
	for _, id := range plan.Deletes {
		if _, ok := index[id]; !ok {
			return fmt.Errorf("delete %s: item not found", id)
		}
		if err := stage(); err != nil {
			return err
		}
		deleted[id] = struct{}{}
	}

	for _, item := range plan.Updates {
		i, ok := index[item.ID]
		if !ok {
			return fmt.Errorf("update %s: item not found", item.ID)
		}
		if err := stage(); err != nil {
			return err
		}
		rec.items[i] = item
	}

	kept := rec.items[:0:0]
	for _, item := range rec.items {
		if _, ok := deleted[item.ID]; !ok {
			kept = append(kept, item)
		}
	}

	for _, item := range plan.Inserts {
		if _, ok := index[item.ID]; ok {
			return fmt.Errorf("insert %s: item already exists", item.ID)
		}
		if err := stage(); err != nil {
			return err
		}
		kept = append(kept, item)
	}
	rec.items = kept

	if err := stage(); err != nil {
		return err
	}
	rec.purchase.TotalAmount = plan.TotalAmount

	s.purchases[k] = rec
	return nil
}

// Put stores a purchase and its items directly, replacing any previous state.
func (s *PurchaseStore) Put(p domain.Purchase, items []domain.PurchaseItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purchases[key(p.HouseholdID, p.ID)] = &purchaseRecord{
		purchase: p,
		items:    append([]domain.PurchaseItem(nil), items...),
	}
}
