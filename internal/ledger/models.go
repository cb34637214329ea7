// Package ledger is the append-only incident ledger. Incidents carry only
// opaque ciphertext handles; nothing in this package can read a plaintext
// value.
package ledger

import (
	"time"

	"github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
)

// Incident is one submitted crime incident. Immutable once created, never
// deleted: the ledger is the audit trail.
type Incident struct {
	ID        domain.IncidentID
	Retailer  fhe.Handle
	Loss      fhe.Handle
	Location  fhe.Handle
	Product   fhe.Handle
	CreatedAt time.Time
}
