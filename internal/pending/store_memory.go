package pending

import (
	"context"
	"sync"
	"time"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/platform/sentinel"
)

// InMemoryStore keeps the correlation table in a mutex-guarded map. It is
// the baseline implementation for tests and single-node deployments; the
// redis store carries the same semantics for shared deployments.
type InMemoryStore struct {
	mu       sync.Mutex
	requests map[domain.RequestID]Request
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{requests: make(map[domain.RequestID]Request)}
}

func (s *InMemoryStore) Create(_ context.Context, req Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[req.ID]; ok {
		return sentinel.ErrConflict
	}
	s.requests[req.ID] = req
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.RequestID) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return Request{}, sentinel.ErrNotFound
	}
	return req, nil
}

func (s *InMemoryStore) Consume(_ context.Context, id domain.RequestID, kind domain.RequestKind) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok || req.Abandoned {
		return Request{}, sentinel.ErrNotFound
	}
	if req.Kind != kind {
		return Request{}, sentinel.ErrInvalidState
	}
	delete(s.requests, id)
	return req, nil
}

func (s *InMemoryStore) SweepAbandoned(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	marked := 0
	for id, req := range s.requests {
		if !req.Abandoned && req.IssuedAt.Before(cutoff) {
			req.Abandoned = true
			s.requests[id] = req
			marked++
		}
	}
	return marked, nil
}

// Snapshot returns a copy of the table for state-equality assertions in
// tests.
func (s *InMemoryStore) Snapshot() map[domain.RequestID]Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.RequestID]Request, len(s.requests))
	for id, req := range s.requests {
		out[id] = req
	}
	return out
}
