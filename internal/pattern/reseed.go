package pattern

import (
	"context"
	"errors"

	"github.com/randi412-cooperh/RetailCrimeFhe/internal/ledger"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	dErrors "github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain-errors"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/platform/sentinel"
)

// ReseedPlaceholders restores the placeholder record for every incident that
// does not have one yet. A durable ledger paired with a volatile pattern
// store loses the placeholders on restart; reseeding at startup restores the
// record-per-incident invariant. Existing records, completed analyses
// included, are left untouched. Returns how many placeholders were created.
func ReseedPlaceholders(ctx context.Context, store Store, incidents []ledger.Incident) (int, error) {
	seeded := 0
	for _, incident := range incidents {
		err := store.SeedPlaceholder(ctx, domain.PatternID(incident.ID))
		if errors.Is(err, sentinel.ErrConflict) {
			continue
		}
		if err != nil {
			return seeded, dErrors.Wrap(err, dErrors.CodeInternal, "reseed pattern placeholder")
		}
		seeded++
	}
	return seeded, nil
}
