package pattern

import (
	"context"
	"sort"
	"sync"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	patterns map[domain.PatternID]CrimePattern
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{patterns: make(map[domain.PatternID]CrimePattern)}
}

func (s *InMemoryStore) SeedPlaceholder(_ context.Context, id domain.PatternID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patterns[id]; ok {
		return sentinel.ErrConflict
	}
	s.patterns[id] = CrimePattern{ID: id}
	return nil
}

func (s *InMemoryStore) Insert(_ context.Context, p CrimePattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patterns[p.ID]; ok {
		return sentinel.ErrConflict
	}
	s.patterns[p.ID] = p
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.PatternID) (CrimePattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patterns[id]
	if !ok {
		return CrimePattern{}, sentinel.ErrNotFound
	}
	return p, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]CrimePattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CrimePattern, 0, len(s.patterns))
	for _, p := range s.patterns {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
