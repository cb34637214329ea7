//go:build integration

package pending_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/randi412-cooperh/RetailCrimeFhe/internal/pending"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/platform/sentinel"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite

	ctx   context.Context
	redis *containers.RedisContainer
	store *pending.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	rc := containers.NewRedisContainer(t)

	s := &RedisStoreSuite{
		ctx:   context.Background(),
		redis: rc,
		store: pending.NewRedisStore(rc.Client),
	}
	suite.Run(t, s)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisStoreSuite) request(id string, kind domain.RequestKind) pending.Request {
	return pending.Request{
		ID:       domain.RequestID(id),
		Kind:     kind,
		Subject:  domain.IncidentSubject(7),
		IssuedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func (s *RedisStoreSuite) TestCreateAndGet() {
	want := s.request("req-1", domain.KindPattern)
	s.Require().NoError(s.store.Create(s.ctx, want))

	got, err := s.store.Get(s.ctx, want.ID)
	s.Require().NoError(err)
	s.Equal(want.ID, got.ID)
	s.Equal(want.Kind, got.Kind)
	s.Equal(want.Subject, got.Subject)
	s.False(got.Abandoned)
	s.WithinDuration(want.IssuedAt, got.IssuedAt, time.Millisecond)
}

func (s *RedisStoreSuite) TestCreateDuplicate() {
	req := s.request("req-2", domain.KindLoss)
	s.Require().NoError(s.store.Create(s.ctx, req))

	err := s.store.Create(s.ctx, s.request("req-2", domain.KindPattern))
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	// The original kind survives.
	got, err := s.store.Get(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(domain.KindLoss, got.Kind)
}

func (s *RedisStoreSuite) TestConsume() {
	s.Run("kind mismatch keeps the entry", func() {
		req := s.request("req-3", domain.KindPattern)
		s.Require().NoError(s.store.Create(s.ctx, req))

		_, err := s.store.Consume(s.ctx, req.ID, domain.KindLoss)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)

		got, err := s.store.Get(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Equal(domain.KindPattern, got.Kind)
	})

	s.Run("matching kind consumes exactly once", func() {
		req := s.request("req-4", domain.KindCorrelation)
		s.Require().NoError(s.store.Create(s.ctx, req))

		got, err := s.store.Consume(s.ctx, req.ID, domain.KindCorrelation)
		s.Require().NoError(err)
		s.Equal(req.Subject, got.Subject)

		_, err = s.store.Consume(s.ctx, req.ID, domain.KindCorrelation)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("concurrent deliveries race to a single winner", func() {
		req := s.request("req-5", domain.KindPattern)
		s.Require().NoError(s.store.Create(s.ctx, req))

		const attempts = 16
		var wg sync.WaitGroup
		errs := make([]error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = s.store.Consume(s.ctx, req.ID, domain.KindPattern)
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
			} else {
				s.ErrorIs(err, sentinel.ErrNotFound)
			}
		}
		s.Equal(1, winners)
	})
}

func (s *RedisStoreSuite) TestSweepAbandoned() {
	stale := s.request("req-stale", domain.KindLoss)
	stale.IssuedAt = time.Now().UTC().Add(-48 * time.Hour)
	s.Require().NoError(s.store.Create(s.ctx, stale))

	fresh := s.request("req-fresh", domain.KindLoss)
	s.Require().NoError(s.store.Create(s.ctx, fresh))

	marked, err := s.store.SweepAbandoned(s.ctx, time.Now().UTC().Add(-24*time.Hour))
	s.Require().NoError(err)
	s.Equal(1, marked)

	got, err := s.store.Get(s.ctx, stale.ID)
	s.Require().NoError(err)
	s.True(got.Abandoned)

	// Abandoned entries are audit records and refuse consumption.
	_, err = s.store.Consume(s.ctx, stale.ID, domain.KindLoss)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	got, err = s.store.Get(s.ctx, fresh.ID)
	s.Require().NoError(err)
	s.False(got.Abandoned)

	// A second sweep is a no-op.
	marked, err = s.store.SweepAbandoned(s.ctx, time.Now().UTC().Add(-24*time.Hour))
	s.Require().NoError(err)
	s.Zero(marked)
}

// Sanity check for many entries crossing the scan page size.
func (s *RedisStoreSuite) TestSweepScansAllPages() {
	cutoffAge := -48 * time.Hour
	const entries = 250
	for i := 0; i < entries; i++ {
		req := s.request(fmt.Sprintf("req-page-%d", i), domain.KindPattern)
		req.IssuedAt = time.Now().UTC().Add(cutoffAge)
		s.Require().NoError(s.store.Create(s.ctx, req))
	}

	marked, err := s.store.SweepAbandoned(s.ctx, time.Now().UTC().Add(-24*time.Hour))
	s.Require().NoError(err)
	s.Equal(entries, marked)
}
