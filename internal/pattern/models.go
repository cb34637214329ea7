// Package pattern owns crime-pattern records and the joint-analysis round
// trip: flattening incident handles into a deterministic batch, tracking the
// outstanding request, and consuming the verified callback exactly once.
package pattern

import (
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
)

// CrimePattern is an analysis outcome slot. Placeholders are created empty
// alongside every incident (sharing the incident's numeric id); completed
// joint analyses get fresh records in the analysis id range.
//
// Invariant: Analyzed=true implies all three handles were populated by a
// verified callback; Analyzed=false implies zero-value placeholders. The
// transition happens at most once.
type CrimePattern struct {
	ID          domain.PatternID
	Frequency   fhe.Handle
	TotalLoss   fhe.Handle
	Correlation fhe.Handle
	Analyzed    bool
}
