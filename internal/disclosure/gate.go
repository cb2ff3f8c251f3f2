// Package disclosure shrinks premium content for anonymous visitors.
package disclosure

import (
	"slices"

	"github.com/spec-kit/dealership/internal/domain"
)

// Disclosure is the visible part of an ordered collection.
type Disclosure[T any] struct {
	Items  []T
	Total  int
	Hidden int
	Gated  bool
}

// Reveal returns the whole collection when authenticated. Otherwise it
// returns only the primary item, chosen by isPrimary or falling back to the
// first item, together with the size of the full collection. Collections of
// one item or fewer are never gated.
func Reveal[T any](items []T, authenticated bool, isPrimary func(T) bool) Disclosure[T] {
	total := len(items)
	if authenticated || total <= 1 {
		return Disclosure[T]{Items: slices.Clone(items), Total: total}
	}

	primary := items[0]
	if isPrimary != nil {
		if idx := slices.IndexFunc(items, isPrimary); idx >= 0 {
			primary = items[idx]
		}
	}
	return Disclosure[T]{
		Items:  []T{primary},
		Total:  total,
		Hidden: total - 1,
		Gated:  true,
	}
}

// RevealPhotos orders a vehicle gallery by display position and gates it.
func RevealPhotos(photos []domain.VehiclePhoto, authenticated bool) Disclosure[domain.VehiclePhoto] {
	ordered := slices.Clone(photos)
	slices.SortStableFunc(ordered, func(a, b domain.VehiclePhoto) int {
		return a.Position - b.Position
	})
	return Reveal(ordered, authenticated, func(p domain.VehiclePhoto) bool { return p.Primary })
}
