package purchase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/titorm/shop-wise-sub000/internal/domain"
)

// EditedItem is one line of the caller's edited item set.
type EditedItem struct {
	ID      domain.ItemID          `json:"id"`
	Product *domain.ProductRef     `json:"product,omitempty"`
	Line    domain.UnifiedLineItem `json:"line"`
}

// ValidateEdit checks the ids of edited against persisted: every item needs an
// id, temporary ids are unique, and existing ids name a persisted item at most
// once. It touches nothing, so callers run it before any catalog write.
func ValidateEdit(persisted []domain.PurchaseItem, edited []EditedItem) error {
	previous := make(map[string]struct{}, len(persisted))
	for _, item := range persisted {
		previous[item.ID] = struct{}{}
	}

	kept := make(map[string]struct{}, len(edited))
	tempIDs := make(map[string]struct{})

	for i, e := range edited {
		switch {
		case e.ID.IsZero():
			return fmt.Errorf("%w: item %d has no id", ErrInvalidEdit, i)

		case e.ID.IsNew():
			if _, dup := tempIDs[e.ID.Value()]; dup {
				return fmt.Errorf("%w: duplicate item %s", ErrInvalidEdit, e.ID)
			}
			tempIDs[e.ID.Value()] = struct{}{}

		default:
			id := e.ID.Value()
			if _, ok := previous[id]; !ok {
				return fmt.Errorf("%w: unknown item %s", ErrInvalidEdit, e.ID)
			}
			if _, dup := kept[id]; dup {
				return fmt.Errorf("%w: duplicate item %s", ErrInvalidEdit, e.ID)
			}
			kept[id] = struct{}{}
		}
	}
	return nil
}

// Diff computes the write set that turns persisted into edited.
//
// refs[i] is the catalog reference for edited[i]. mint returns a fresh id for
// each inserted item. Existing items are updated only when a stored field
// changes; persisted ids missing from edited are deleted. TotalAmount is the
// sum of TotalPrice over edited.
func Diff(persisted []domain.PurchaseItem, edited []EditedItem, refs []*domain.ProductRef, mint func() string) (*Plan, error) {
	if len(refs) != len(edited) {
		return nil, fmt.Errorf("Diff: %d refs for %d items", len(refs), len(edited))
	}
	if err := ValidateEdit(persisted, edited); err != nil {
		return nil, err
	}

	previous := make(map[string]domain.PurchaseItem, len(persisted))
	for _, item := range persisted {
		previous[item.ID] = item
	}

	plan := &Plan{
		TotalAmount: decimal.Zero,
		Assigned:    make(map[string]string),
	}

	kept := make(map[string]struct{}, len(edited))

	for i, e := range edited {
		if e.ID.IsNew() {
			id := mint()
			plan.Inserts = append(plan.Inserts, toItem(id, refs[i], e.Line))
			plan.Assigned[e.ID.Value()] = id
		} else {
			id := e.ID.Value()
			kept[id] = struct{}{}

			next := toItem(id, refs[i], e.Line)
			if !previous[id].SameContent(next) {
				plan.Updates = append(plan.Updates, next)
			}
		}

		plan.TotalAmount = plan.TotalAmount.Add(e.Line.TotalPrice)
	}

	// previous - kept, in persisted order
	for _, item := range persisted {
		if _, ok := kept[item.ID]; !ok {
			plan.Deletes = append(plan.Deletes, item.ID)
		}
	}

	return plan, nil
}

func toItem(id string, ref *domain.ProductRef, line domain.UnifiedLineItem) domain.PurchaseItem {
	var product *domain.ProductRef
	if ref != nil {
		product = &domain.ProductRef{ID: ref.ID}
	}
	return domain.PurchaseItem{
		ID:            id,
		Product:       product,
		Name:          line.Name,
		UnitOfMeasure: line.UnitOfMeasure,
		Quantity:      line.Quantity,
		UnitPrice:     line.UnitPrice,
		TotalPrice:    line.TotalPrice,
	}
}
