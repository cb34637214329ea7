package aggregate

import (
	"context"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
)

// Store keys aggregates by retailer. Put replaces the stored handles with
// the freshly added ones; the additive-only discipline lives in the service,
// which is the only writer.
type Store interface {
	// Get returns the aggregate, or sentinel.ErrNotFound before the first
	// contribution.
	Get(ctx context.Context, retailer domain.RetailerID) (RetailerAggregate, error)

	// Put stores the aggregate for the retailer.
	Put(ctx context.Context, retailer domain.RetailerID, agg RetailerAggregate) error
}
