package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

type itemIDKind uint8

const (
	itemIDExisting itemIDKind = iota + 1
	itemIDNew
)

// ItemID identifies a line in an edit session: either an item that is already
// persisted or a new one carrying a client-side temporary id.
type ItemID struct {
	kind  itemIDKind
	value string
}

// ExistingItem refers to a persisted purchase item.
func ExistingItem(id string) ItemID {
	return ItemID{kind: itemIDExisting, value: id}
}

// NewItem refers to a line added during the edit session.
func NewItem(tempID string) ItemID {
	return ItemID{kind: itemIDNew, value: tempID}
}

// IsNew reports whether the item has not been persisted yet.
func (id ItemID) IsNew() bool { return id.kind == itemIDNew }

// IsZero reports whether id was never set.
func (id ItemID) IsZero() bool { return id.kind == 0 }

// Value returns the persisted id or the temporary id.
func (id ItemID) Value() string { return id.value }

func (id ItemID) String() string {
	switch id.kind {
	case itemIDExisting:
		return "existing:" + id.value
	case itemIDNew:
		return "new:" + id.value
	}
	return "<unset>"
}

type itemIDJSON struct {
	Existing *string `json:"existing,omitempty"`
	New      *string `json:"new,omitempty"`
}

// MarshalJSON encodes {"existing":"<id>"} or {"new":"<tempID>"}.
func (id ItemID) MarshalJSON() ([]byte, error) {
	v := id.value
	switch id.kind {
	case itemIDExisting:
		return json.Marshal(itemIDJSON{Existing: &v})
	case itemIDNew:
		return json.Marshal(itemIDJSON{New: &v})
	}
	return nil, errors.New("ItemID: cannot marshal unset id")
}

// UnmarshalJSON accepts exactly one of "existing" or "new".
func (id *ItemID) UnmarshalJSON(data []byte) error {
	var raw itemIDJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("ItemID: %w", err)
	}
	switch {
	case raw.Existing != nil && raw.New != nil:
		return errors.New(`ItemID: set only one of "existing" or "new"`)
	case raw.Existing != nil:
		if *raw.Existing == "" {
			return errors.New(`ItemID: "existing" must not be empty`)
		}
		*id = ExistingItem(*raw.Existing)
	case raw.New != nil:
		*id = NewItem(*raw.New)
	default:
		return errors.New(`ItemID: one of "existing" or "new" is required`)
	}
	return nil
}
