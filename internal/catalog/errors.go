package catalog

import "fmt"

// LookupError is returned when the catalog could not be queried.
type LookupError struct {
	Barcode string
	Err     error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("catalog lookup failed for barcode %s: %v", e.Barcode, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// WriteError is returned when a new catalog entry could not be created.
type WriteError struct {
	Barcode string
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("catalog write failed for barcode %s: %v", e.Barcode, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
