package aggregate

import (
	"context"
	"sync"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu         sync.RWMutex
	aggregates map[domain.RetailerID]RetailerAggregate
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{aggregates: make(map[domain.RetailerID]RetailerAggregate)}
}

func (s *InMemoryStore) Get(_ context.Context, retailer domain.RetailerID) (RetailerAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agg, ok := s.aggregates[retailer]
	if !ok {
		return RetailerAggregate{}, sentinel.ErrNotFound
	}
	return agg, nil
}

func (s *InMemoryStore) Put(_ context.Context, retailer domain.RetailerID, agg RetailerAggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aggregates[retailer] = agg
	return nil
}
