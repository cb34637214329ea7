// Package pending implements the request correlation table: the long-lived
// record matching an asynchronous gateway callback back to the operation
// that issued it. Entries survive the suspension between request and
// callback and are consumed at most once.
package pending

import (
	"time"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
)

// Request is one outstanding computation request. The request id is
// gateway-issued; the kind is re-checked on every callback because the id is
// attacker-influenced input.
type Request struct {
	ID        domain.RequestID
	Kind      domain.RequestKind
	Subject   domain.SubjectKey
	IssuedAt  time.Time
	Abandoned bool
}
