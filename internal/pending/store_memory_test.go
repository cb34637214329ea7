package pending

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemoryStore
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemoryStore()
}

func (s *MemoryStoreSuite) newRequest(id string, kind domain.RequestKind) Request {
	return Request{
		ID:       domain.RequestID(id),
		Kind:     kind,
		Subject:  domain.IncidentSubject(1),
		IssuedAt: time.Now().UTC(),
	}
}

func (s *MemoryStoreSuite) TestCreate() {
	s.Run("stores and retrieves a request", func() {
		req := s.newRequest("req-1", domain.KindPattern)
		s.Require().NoError(s.store.Create(s.ctx, req))

		got, err := s.store.Get(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Equal(req.Kind, got.Kind)
		s.Equal(req.Subject, got.Subject)
	})

	s.Run("rejects a duplicate request id", func() {
		req := s.newRequest("req-2", domain.KindPattern)
		s.Require().NoError(s.store.Create(s.ctx, req))
		s.Require().ErrorIs(s.store.Create(s.ctx, req), sentinel.ErrConflict)
	})

	s.Run("returns ErrNotFound for unknown ids", func() {
		_, err := s.store.Get(s.ctx, "req-missing")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestConsume() {
	s.Run("deletes only on kind match", func() {
		req := s.newRequest("req-3", domain.KindLoss)
		s.Require().NoError(s.store.Create(s.ctx, req))

		_, err := s.store.Consume(s.ctx, req.ID, domain.KindPattern)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)

		// The entry survived the mismatched attempt.
		got, err := s.store.Consume(s.ctx, req.ID, domain.KindLoss)
		s.Require().NoError(err)
		s.Equal(req.Subject, got.Subject)

		_, err = s.store.Consume(s.ctx, req.ID, domain.KindLoss)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("refuses abandoned entries", func() {
		req := s.newRequest("req-4", domain.KindPattern)
		req.IssuedAt = time.Now().Add(-48 * time.Hour)
		s.Require().NoError(s.store.Create(s.ctx, req))

		marked, err := s.store.SweepAbandoned(s.ctx, time.Now().Add(-24*time.Hour))
		s.Require().NoError(err)
		s.Equal(1, marked)

		_, err = s.store.Consume(s.ctx, req.ID, domain.KindPattern)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestSweepAbandoned() {
	s.Run("marks old entries but never deletes them", func() {
		old := s.newRequest("req-old", domain.KindPattern)
		old.IssuedAt = time.Now().Add(-48 * time.Hour)
		fresh := s.newRequest("req-fresh", domain.KindPattern)
		s.Require().NoError(s.store.Create(s.ctx, old))
		s.Require().NoError(s.store.Create(s.ctx, fresh))

		marked, err := s.store.SweepAbandoned(s.ctx, time.Now().Add(-24*time.Hour))
		s.Require().NoError(err)
		s.Equal(1, marked)

		got, err := s.store.Get(s.ctx, old.ID)
		s.Require().NoError(err)
		s.True(got.Abandoned)

		got, err = s.store.Get(s.ctx, fresh.ID)
		s.Require().NoError(err)
		s.False(got.Abandoned)
	})

	s.Run("is idempotent", func() {
		old := s.newRequest("req-idem", domain.KindPattern)
		old.IssuedAt = time.Now().Add(-48 * time.Hour)
		s.Require().NoError(s.store.Create(s.ctx, old))

		_, err := s.store.SweepAbandoned(s.ctx, time.Now().Add(-24*time.Hour))
		s.Require().NoError(err)
		marked, err := s.store.SweepAbandoned(s.ctx, time.Now().Add(-24*time.Hour))
		s.Require().NoError(err)
		s.Equal(0, marked)
	})
}
