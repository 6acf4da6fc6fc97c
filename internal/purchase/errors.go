package purchase

import "fmt"

// PersistenceError means the atomic batch was rejected. Nothing was written.
type PersistenceError struct {
	HouseholdID string
	PurchaseID  string
	Err         error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist purchase %s/%s: %v", e.HouseholdID, e.PurchaseID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
