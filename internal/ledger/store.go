package ledger

import (
	"context"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
)

// Store is the ledger persistence contract. Append-only: there is no update
// or delete. Implementations return sentinel errors.
type Store interface {
	// Append records a new incident. Fails with sentinel.ErrConflict when the
	// id is already taken.
	Append(ctx context.Context, incident Incident) error

	// Get returns the incident, or sentinel.ErrNotFound.
	Get(ctx context.Context, id domain.IncidentID) (Incident, error)

	// List returns every incident in ascending id order (ledger order).
	List(ctx context.Context) ([]Incident, error)

	// LastID returns the highest assigned incident id, 0 for an empty ledger.
	// Used to seed the sequential id counter on startup.
	LastID(ctx context.Context) (domain.IncidentID, error)
}
