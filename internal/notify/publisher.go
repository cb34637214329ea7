package notify

import (
	"context"
	"sync"
	"time"
)

// Publisher is what domain services emit through. Implementations must be
// safe for concurrent use; emission failures are the caller's to decide on
// (notifications are observability, not bookkeeping, so services log and
// continue).
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// StampedPublisher fills in the timestamp when the emitter left it zero and
// forwards to the wrapped sink.
type StampedPublisher struct {
	Sink Publisher
}

func (p StampedPublisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return p.Sink.Emit(ctx, event)
}

// MemorySink records events in order. It backs unit tests and single-node
// deployments without Kafka.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything emitted so far.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event{}, s.events...)
}

// ByKind filters recorded events.
func (s *MemorySink) ByKind(kind Kind) []Event {
	var out []Event
	for _, e := range s.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
