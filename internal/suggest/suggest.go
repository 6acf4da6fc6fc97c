// Package suggest asks a suggester for shopping-list items based on purchase
// history and family size.
package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/titorm/shop-wise-sub000/internal/logger"
)

// Suggester produces item names from a history summary and a family size.
type Suggester interface {
	Suggest(ctx context.Context, history string, familySize int) ([]string, error)
}

// FamilySize counts the people a list is planned for.
type FamilySize struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

// Total returns adults plus children.
func (f FamilySize) Total() int {
	return f.Adults + f.Children
}

// SuggestionError wraps any suggester failure. Callers show an empty list.
type SuggestionError struct {
	Err error
}

func (e *SuggestionError) Error() string {
	return fmt.Sprintf("suggestion failed: %v", e.Err)
}

func (e *SuggestionError) Unwrap() error { return e.Err }

// Intake returns the suggester's output verbatim. No deduplication happens here;
// see MergeNew for the caller side.
func Intake(ctx context.Context, s Suggester, history string, family FamilySize) ([]string, error) {
	if family.Adults < 0 || family.Children < 0 {
		return nil, &SuggestionError{Err: fmt.Errorf("invalid family size %d adults, %d children", family.Adults, family.Children)}
	}

	items, err := s.Suggest(ctx, history, family.Total())
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("Suggestion service failed")
		return nil, &SuggestionError{Err: err}
	}
	return items, nil
}

// MergeNew returns the suggestions whose names are not already on the list,
// comparing case-insensitively, in suggestion order.
func MergeNew(existing, suggested []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(suggested))
	for _, name := range existing {
		seen[nameKey(name)] = struct{}{}
	}

	var out []string
	for _, name := range suggested {
		k := nameKey(name)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, strings.TrimSpace(name))
	}
	return out
}

func nameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
