// Package access holds the authorization gate. The original system only
// ever granted; the policy here is an explicit object supporting revoke as
// well, and the behavior change is pinned by tests rather than hidden.
package access

import (
	"sync"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
)

// Policy is the single authorization predicate guarding every mutating
// entry point. It is passed into services at construction so there is no
// global mutable state.
type Policy struct {
	mu       sync.RWMutex
	approved map[domain.RetailerID]struct{}
}

func NewPolicy() *Policy {
	return &Policy{approved: make(map[domain.RetailerID]struct{})}
}

// Grant approves a retailer identity.
func (p *Policy) Grant(id domain.RetailerID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.approved[id] = struct{}{}
}

// Revoke removes a previously granted identity. Revoking an unknown
// identity is a no-op.
func (p *Policy) Revoke(id domain.RetailerID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.approved, id)
}

// IsAuthorized reports whether the identity may submit incidents or request
// analyses.
func (p *Policy) IsAuthorized(id domain.RetailerID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.approved[id]
	return ok
}

// Authorizer is the read side services depend on.
type Authorizer interface {
	IsAuthorized(id domain.RetailerID) bool
}
