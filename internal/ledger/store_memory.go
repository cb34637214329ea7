package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/platform/sentinel"
)

// InMemoryStore favors clarity over performance; it is the baseline behind
// the Store interface, with postgres as the durable implementation.
type InMemoryStore struct {
	mu        sync.RWMutex
	incidents map[domain.IncidentID]Incident
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{incidents: make(map[domain.IncidentID]Incident)}
}

func (s *InMemoryStore) Append(_ context.Context, incident Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.incidents[incident.ID]; ok {
		return sentinel.ErrConflict
	}
	s.incidents[incident.ID] = incident
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.IncidentID) (Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	incident, ok := s.incidents[id]
	if !ok {
		return Incident{}, sentinel.ErrNotFound
	}
	return incident, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Incident, 0, len(s.incidents))
	for _, incident := range s.incidents {
		out = append(out, incident)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) LastID(_ context.Context) (domain.IncidentID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var last domain.IncidentID
	for id := range s.incidents {
		if id > last {
			last = id
		}
	}
	return last, nil
}
