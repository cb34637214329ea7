package pending

import (
	"context"
	"time"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
)

// Store is the correlation table contract. Implementations return sentinel
// errors; services translate them into the callback error taxonomy
// (ErrNotFound becomes unknown-request, ErrInvalidState becomes
// kind-mismatch).
type Store interface {
	// Create records a new outstanding request. Fails with
	// sentinel.ErrConflict if a live entry already exists for the id.
	Create(ctx context.Context, req Request) error

	// Get returns the entry without consuming it. Fails with
	// sentinel.ErrNotFound when absent.
	Get(ctx context.Context, id domain.RequestID) (Request, error)

	// Consume atomically checks the stored kind and deletes the entry. On a
	// kind mismatch the entry is left untouched and sentinel.ErrInvalidState
	// is returned; missing or abandoned entries fail with
	// sentinel.ErrNotFound. At most one Consume per id can ever succeed.
	Consume(ctx context.Context, id domain.RequestID, kind domain.RequestKind) (Request, error)

	// SweepAbandoned marks entries issued before the cutoff as abandoned
	// without deleting them, preserving the audit trail. Abandoned entries
	// reject callbacks like missing ones. Returns how many were marked.
	SweepAbandoned(ctx context.Context, cutoff time.Time) (int, error)
}
