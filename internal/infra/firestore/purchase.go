package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/titorm/shop-wise-sub000/internal/domain"
	"github.com/titorm/shop-wise-sub000/internal/purchase"
)

type storeDoc struct {
	Name      string   `firestore:"name"`
	TaxID     string   `firestore:"taxId"`
	Address   string   `firestore:"address"`
	Latitude  *float64 `firestore:"latitude"`
	Longitude *float64 `firestore:"longitude"`
}

// Money and quantities are stored twice: a float for queries and sorting, and
// the exact decimal string, which is what reads use when present.
type purchaseDoc struct {
	StoreName        string    `firestore:"storeName"`
	Date             string    `firestore:"date"`
	TotalAmount      float64   `firestore:"totalAmount"`
	TotalAmountExact string    `firestore:"totalAmountExact"`
	Store            *storeDoc `firestore:"store,omitempty"`
	CreatedAt        time.Time `firestore:"createdAt,serverTimestamp"`
}

type itemDoc struct {
	Product         *firestore.DocumentRef `firestore:"product"`
	Name            string                 `firestore:"name"`
	UnitOfMeasure   *string                `firestore:"unitOfMeasure"`
	Quantity        float64                `firestore:"quantity"`
	QuantityExact   string                 `firestore:"quantityExact"`
	UnitPrice       float64                `firestore:"unitPrice"`
	UnitPriceExact  string                 `firestore:"unitPriceExact"`
	TotalPrice      float64                `firestore:"totalPrice"`
	TotalPriceExact string                 `firestore:"totalPriceExact"`
	Position        int                    `firestore:"position"`
}

// PurchaseStore is a purchase.Store that applies plans in one Firestore transaction.
type PurchaseStore struct {
	client *firestore.Client
}

// NewPurchaseStore creates a PurchaseStore.
func NewPurchaseStore(client *firestore.Client) *PurchaseStore {
	return &PurchaseStore{client: client}
}

func (s *PurchaseStore) purchaseRef(householdID, purchaseID string) *firestore.DocumentRef {
	return s.client.Collection(householdsCollection).Doc(householdID).
		Collection(purchasesCollection).Doc(purchaseID)
}

func (s *PurchaseStore) productRef(ref *domain.ProductRef) *firestore.DocumentRef {
	if ref == nil {
		return nil
	}
	return s.client.Collection(productsCollection).Doc(ref.ID)
}

// productValue and optionalValue return an untyped nil so Update writes null.
func (s *PurchaseStore) productValue(ref *domain.ProductRef) interface{} {
	if ref == nil {
		return nil
	}
	return s.productRef(ref)
}

func optionalValue(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func (s *PurchaseStore) NewPurchaseID(householdID string) string {
	return s.client.Collection(householdsCollection).Doc(householdID).
		Collection(purchasesCollection).NewDoc().ID
}

func (s *PurchaseStore) NewItemID(householdID, purchaseID string) string {
	return s.purchaseRef(householdID, purchaseID).Collection(itemsCollection).NewDoc().ID
}

func (s *PurchaseStore) GetPurchase(ctx context.Context, householdID, purchaseID string) (*domain.Purchase, error) {
	snap, err := s.purchaseRef(householdID, purchaseID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, purchase.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetPurchase: %w", err)
	}
	return decodePurchase(householdID, snap)
}

func (s *PurchaseStore) ListItems(ctx context.Context, householdID, purchaseID string) ([]domain.PurchaseItem, error) {
	iter := s.purchaseRef(householdID, purchaseID).Collection(itemsCollection).
		OrderBy("position", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var items []domain.PurchaseItem
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListItems: iterate: %w", err)
		}
		item, err := decodeItem(snap)
		if err != nil {
			return nil, fmt.Errorf("ListItems: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Apply runs every write of plan inside one transaction.
func (s *PurchaseStore) Apply(ctx context.Context, plan *purchase.Plan) error {
	pRef := s.purchaseRef(plan.HouseholdID, plan.PurchaseID)
	itemsColl := pRef.Collection(itemsCollection)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		nextPos := 0

		if plan.Header == nil {
			if _, err := tx.Get(pRef); err != nil {
				if status.Code(err) == codes.NotFound {
					return purchase.ErrNotFound
				}
				return fmt.Errorf("read purchase: %w", err)
			}

			snaps, err := tx.Documents(itemsColl).GetAll()
			if err != nil {
				return fmt.Errorf("read items: %w", err)
			}
			for _, snap := range snaps {
				var doc itemDoc
				if err := snap.DataTo(&doc); err != nil {
					return fmt.Errorf("decode item %s: %w", snap.Ref.ID, err)
				}
				if doc.Position >= nextPos {
					nextPos = doc.Position + 1
				}
			}
		} else {
			if err := tx.Create(pRef, encodePurchase(plan.Header)); err != nil {
				return fmt.Errorf("create purchase: %w", err)
			}
		}

		for _, id := range plan.Deletes {
			if err := tx.Delete(itemsColl.Doc(id), firestore.Exists); err != nil {
				return fmt.Errorf("delete item %s: %w", id, err)
			}
		}

		for _, item := range plan.Updates {
			updates := []firestore.Update{
				{Path: "product", Value: s.productValue(item.Product)},
				{Path: "name", Value: item.Name},
				{Path: "unitOfMeasure", Value: optionalValue(item.UnitOfMeasure)},
				{Path: "quantity", Value: item.Quantity.InexactFloat64()},
				{Path: "quantityExact", Value: item.Quantity.String()},
				{Path: "unitPrice", Value: item.UnitPrice.InexactFloat64()},
				{Path: "unitPriceExact", Value: item.UnitPrice.String()},
				{Path: "totalPrice", Value: item.TotalPrice.InexactFloat64()},
				{Path: "totalPriceExact", Value: item.TotalPrice.String()},
			}
			if err := tx.Update(itemsColl.Doc(item.ID), updates); err != nil {
				return fmt.Errorf("update item %s: %w", item.ID, err)
			}
		}

		for i, item := range plan.Inserts {
			doc := s.encodeItem(item, nextPos+i)
			if err := tx.Create(itemsColl.Doc(item.ID), doc); err != nil {
				return fmt.Errorf("insert item %s: %w", item.ID, err)
			}
		}

		if plan.Header == nil {
			return tx.Update(pRef, []firestore.Update{
				{Path: "totalAmount", Value: plan.TotalAmount.InexactFloat64()},
				{Path: "totalAmountExact", Value: plan.TotalAmount.String()},
				{Path: "updatedAt", Value: firestore.ServerTimestamp},
			})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, purchase.ErrNotFound) {
			return err
		}
		return fmt.Errorf("Apply: %w", err)
	}
	return nil
}

func encodePurchase(p *domain.Purchase) purchaseDoc {
	doc := purchaseDoc{
		StoreName:        p.StoreName,
		TotalAmount:      p.TotalAmount.InexactFloat64(),
		TotalAmountExact: p.TotalAmount.String(),
	}
	if p.Date.IsValid() {
		doc.Date = p.Date.String()
	}
	if p.Store != nil {
		doc.Store = &storeDoc{
			Name:      p.Store.Name,
			TaxID:     p.Store.TaxID,
			Address:   p.Store.Address,
			Latitude:  p.Store.Latitude,
			Longitude: p.Store.Longitude,
		}
	}
	return doc
}

func decodePurchase(householdID string, snap *firestore.DocumentSnapshot) (*domain.Purchase, error) {
	var doc purchaseDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode purchase %s: %w", snap.Ref.ID, err)
	}
	return purchaseFromDoc(householdID, snap.Ref.ID, doc)
}

func purchaseFromDoc(householdID, id string, doc purchaseDoc) (*domain.Purchase, error) {
	total, err := amount(doc.TotalAmountExact, doc.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("decode purchase %s: totalAmount: %w", id, err)
	}

	p := &domain.Purchase{
		ID:          id,
		HouseholdID: householdID,
		StoreName:   doc.StoreName,
		TotalAmount: total,
	}
	if doc.Date != "" {
		d, err := civil.ParseDate(doc.Date)
		if err != nil {
			return nil, fmt.Errorf("decode purchase %s: date: %w", id, err)
		}
		p.Date = d
	}
	if doc.Store != nil {
		p.Store = &domain.StoreInfo{
			Name:      doc.Store.Name,
			TaxID:     doc.Store.TaxID,
			Address:   doc.Store.Address,
			Latitude:  doc.Store.Latitude,
			Longitude: doc.Store.Longitude,
		}
	}
	return p, nil
}

func (s *PurchaseStore) encodeItem(item domain.PurchaseItem, position int) itemDoc {
	return itemDoc{
		Product:         s.productRef(item.Product),
		Name:            item.Name,
		UnitOfMeasure:   item.UnitOfMeasure,
		Quantity:        item.Quantity.InexactFloat64(),
		QuantityExact:   item.Quantity.String(),
		UnitPrice:       item.UnitPrice.InexactFloat64(),
		UnitPriceExact:  item.UnitPrice.String(),
		TotalPrice:      item.TotalPrice.InexactFloat64(),
		TotalPriceExact: item.TotalPrice.String(),
		Position:        position,
	}
}

func decodeItem(snap *firestore.DocumentSnapshot) (domain.PurchaseItem, error) {
	var doc itemDoc
	if err := snap.DataTo(&doc); err != nil {
		return domain.PurchaseItem{}, fmt.Errorf("decode item %s: %w", snap.Ref.ID, err)
	}
	return itemFromDoc(snap.Ref.ID, doc)
}

func itemFromDoc(id string, doc itemDoc) (domain.PurchaseItem, error) {
	item := domain.PurchaseItem{
		ID:            id,
		Name:          doc.Name,
		UnitOfMeasure: doc.UnitOfMeasure,
	}

	var err error
	if item.Quantity, err = amount(doc.QuantityExact, doc.Quantity); err != nil {
		return domain.PurchaseItem{}, fmt.Errorf("decode item %s: quantity: %w", id, err)
	}
	if item.UnitPrice, err = amount(doc.UnitPriceExact, doc.UnitPrice); err != nil {
		return domain.PurchaseItem{}, fmt.Errorf("decode item %s: unitPrice: %w", id, err)
	}
	if item.TotalPrice, err = amount(doc.TotalPriceExact, doc.TotalPrice); err != nil {
		return domain.PurchaseItem{}, fmt.Errorf("decode item %s: totalPrice: %w", id, err)
	}

	if doc.Product != nil {
		item.Product = &domain.ProductRef{ID: doc.Product.ID}
	}
	return item, nil
}

// amount prefers the exact string. Documents written before it existed only
// carry the float.
func amount(exact string, approx float64) (decimal.Decimal, error) {
	if exact == "" {
		return decimal.NewFromFloat(approx), nil
	}
	return decimal.NewFromString(exact)
}
