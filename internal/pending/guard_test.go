package pending

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	dErrors "github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain-errors"
)

type GuardSuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemoryStore
	guard *Guard
}

func TestGuardSuite(t *testing.T) {
	suite.Run(t, new(GuardSuite))
}

func (s *GuardSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemoryStore()
	s.guard = NewGuard(s.store)
}

func (s *GuardSuite) TestRegister() {
	s.Run("records a fresh request", func() {
		err := s.guard.Register(s.ctx, "req-1", domain.KindPattern, domain.IncidentSubject(1))
		s.Require().NoError(err)

		entry, ok := s.store.Snapshot()["req-1"]
		s.Require().True(ok)
		s.Equal(domain.KindPattern, entry.Kind)
		s.False(entry.IssuedAt.IsZero())
	})

	s.Run("a reissued live id is a conflict", func() {
		s.Require().NoError(s.guard.Register(s.ctx, "req-2", domain.KindPattern, domain.IncidentSubject(1)))

		err := s.guard.Register(s.ctx, "req-2", domain.KindLoss, domain.IncidentSubject(2))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *GuardSuite) TestCheckAndConsume() {
	s.Run("check validates without consuming", func() {
		s.Require().NoError(s.guard.Register(s.ctx, "req-3", domain.KindLoss, domain.RetailerSubject(domain.NewRetailerID())))

		req, err := s.guard.Check(s.ctx, "req-3", domain.KindLoss)
		s.Require().NoError(err)
		s.Equal(domain.KindLoss, req.Kind)

		// Still there after the check.
		_, err = s.guard.Check(s.ctx, "req-3", domain.KindLoss)
		s.Require().NoError(err)
	})

	s.Run("consume is terminal", func() {
		s.Require().NoError(s.guard.Register(s.ctx, "req-4", domain.KindPattern, domain.IncidentSubject(4)))

		_, err := s.guard.Consume(s.ctx, "req-4", domain.KindPattern)
		s.Require().NoError(err)

		_, err = s.guard.Check(s.ctx, "req-4", domain.KindPattern)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnknownRequest))
	})

	s.Run("kind mismatch maps to its own code and keeps the entry", func() {
		s.Require().NoError(s.guard.Register(s.ctx, "req-5", domain.KindCorrelation, domain.IncidentSubject(5)))

		_, err := s.guard.Check(s.ctx, "req-5", domain.KindPattern)
		s.True(dErrors.HasCode(err, dErrors.CodeKindMismatch))

		_, err = s.guard.Consume(s.ctx, "req-5", domain.KindPattern)
		s.True(dErrors.HasCode(err, dErrors.CodeKindMismatch))

		_, ok := s.store.Snapshot()["req-5"]
		s.True(ok)
	})
}

func (s *GuardSuite) TestSweep() {
	s.Require().NoError(s.store.Create(s.ctx, Request{
		ID:       "req-stale",
		Kind:     domain.KindPattern,
		Subject:  domain.IncidentSubject(1),
		IssuedAt: time.Now().Add(-48 * time.Hour),
	}))
	s.Require().NoError(s.guard.Register(s.ctx, "req-live", domain.KindPattern, domain.IncidentSubject(2)))

	marked, err := s.guard.Sweep(s.ctx, 24*time.Hour)
	s.Require().NoError(err)
	s.Equal(1, marked)

	// Abandoned entries reject callbacks as unknown, but the record remains
	// for diagnosis.
	_, err = s.guard.Check(s.ctx, "req-stale", domain.KindPattern)
	s.True(dErrors.HasCode(err, dErrors.CodeUnknownRequest))
	_, ok := s.store.Snapshot()["req-stale"]
	s.True(ok)

	_, err = s.guard.Check(s.ctx, "req-live", domain.KindPattern)
	s.Require().NoError(err)
}
