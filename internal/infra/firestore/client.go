// Package firestore stores the product catalog and household purchases in
// Cloud Firestore.
//
// Layout:
//
//	products/{normalizedBarcode}
//	households/{householdID}/purchases/{purchaseID}
//	households/{householdID}/purchases/{purchaseID}/items/{itemID}
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

const (
	productsCollection   = "products"
	householdsCollection = "households"
	purchasesCollection  = "purchases"
	itemsCollection      = "items"
)

// NewClient opens a client for the given project and database.
func NewClient(ctx context.Context, projectID, databaseID string, opts ...option.ClientOption) (*firestore.Client, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewClient: create firestore client: %w", err)
	}
	return client, nil
}
