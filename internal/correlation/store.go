package correlation

import (
	"context"
	"sort"
	"sync"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/platform/sentinel"
)

// Store keeps completed correlation results keyed by request id.
type Store interface {
	// Insert records a completed correlation. A second insert for the same
	// request id returns sentinel.ErrConflict.
	Insert(ctx context.Context, result Result) error
	// Get returns a result, or sentinel.ErrNotFound.
	Get(ctx context.Context, id domain.RequestID) (Result, error)
	// List returns every result ordered by receipt time.
	List(ctx context.Context) ([]Result, error)
}

// InMemoryStore is the baseline Store.
type InMemoryStore struct {
	mu      sync.RWMutex
	results map[domain.RequestID]Result
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{results: make(map[domain.RequestID]Result)}
}

func (s *InMemoryStore) Insert(_ context.Context, result Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[result.RequestID]; ok {
		return sentinel.ErrConflict
	}
	s.results[result.RequestID] = result
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.RequestID) (Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[id]
	if !ok {
		return Result{}, sentinel.ErrNotFound
	}
	return result, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Result, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ReceivedAt.Before(out[j].ReceivedAt)
	})
	return out, nil
}
