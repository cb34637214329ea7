package pattern

import (
	"context"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
)

// Store persists pattern records. Records are never updated in place: a
// placeholder stays a placeholder, and completed analyses arrive as fresh
// inserts, so the store only needs conflict-checked inserts.
type Store interface {
	// SeedPlaceholder inserts the empty pattern that accompanies a new
	// incident. Fails with sentinel.ErrConflict if the id is taken.
	SeedPlaceholder(ctx context.Context, id domain.PatternID) error

	// Insert stores a completed analysis record. Fails with
	// sentinel.ErrConflict if the id is taken.
	Insert(ctx context.Context, p CrimePattern) error

	// Get returns the record, or sentinel.ErrNotFound.
	Get(ctx context.Context, id domain.PatternID) (CrimePattern, error)

	// List returns all records in ascending id order.
	List(ctx context.Context) ([]CrimePattern, error)
}
