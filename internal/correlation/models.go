package correlation

import (
	"time"

	"github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
)

// Result is the audit record for a completed cross-retailer correlation.
// The score stays encrypted; the record exists so completions can be listed
// and re-fetched without a second gateway round trip.
type Result struct {
	RequestID  domain.RequestID
	RetailerA  domain.RetailerID
	RetailerB  domain.RetailerID
	Score      fhe.Handle
	ReceivedAt time.Time
}
