package ledger_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/randi412-cooperh/RetailCrimeFhe/internal/access"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe/gatewaytest"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/ledger"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/notify"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/pattern"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	dErrors "github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain-errors"
)

type LedgerServiceSuite struct {
	suite.Suite
	ctx context.Context

	policy   *access.Policy
	caller   domain.RetailerID
	store    *ledger.InMemoryStore
	patterns *pattern.InMemoryStore
	sink     *notify.MemorySink
	svc      *ledger.Service
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.policy = access.NewPolicy()
	s.caller = domain.NewRetailerID()
	s.policy.Grant(s.caller)

	s.store = ledger.NewInMemoryStore()
	s.patterns = pattern.NewInMemoryStore()
	s.sink = notify.NewMemorySink()

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.svc = ledger.NewService(s.store, s.policy, s.patterns, s.sink, ledger.WithLogger(quiet))
}

func (s *LedgerServiceSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *LedgerServiceSuite) submit() ledger.Incident {
	incident, err := s.svc.Submit(s.ctx, s.caller,
		gatewaytest.EncryptValue(1),
		gatewaytest.EncryptValue(250),
		gatewaytest.EncryptValue(12),
		gatewaytest.EncryptValue(77),
	)
	s.Require().NoError(err)
	return incident
}

func (s *LedgerServiceSuite) TestSubmit() {
	s.Run("assigns sequential ids starting at one", func() {
		first := s.submit()
		second := s.submit()
		s.Equal(domain.IncidentID(1), first.ID)
		s.Equal(domain.IncidentID(2), second.ID)
	})

	s.Run("seeds an empty pattern placeholder per incident", func() {
		incident := s.submit()

		placeholder, err := s.patterns.Get(s.ctx, domain.PatternID(incident.ID))
		s.Require().NoError(err)
		s.False(placeholder.Analyzed)
		s.True(placeholder.Frequency.IsZero())
		s.True(placeholder.TotalLoss.IsZero())
		s.True(placeholder.Correlation.IsZero())
	})

	s.Run("emits a recorded notification", func() {
		incident := s.submit()

		events := s.sink.ByKind(notify.KindIncidentRecorded)
		s.Require().NotEmpty(events)
		s.Equal(incident.ID, events[len(events)-1].IncidentID)
	})

	s.Run("rejects unapproved retailers without touching state", func() {
		before, err := s.store.List(s.ctx)
		s.Require().NoError(err)

		_, err = s.svc.Submit(s.ctx, domain.NewRetailerID(),
			fhe.Zero(), fhe.Zero(), fhe.Zero(), fhe.Zero())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		after, err := s.store.List(s.ctx)
		s.Require().NoError(err)
		s.Equal(before, after)
	})

	s.Run("revoked retailers lose submission rights", func() {
		revoked := domain.NewRetailerID()
		s.policy.Grant(revoked)
		_, err := s.svc.Submit(s.ctx, revoked,
			gatewaytest.EncryptValue(1), gatewaytest.EncryptValue(2),
			gatewaytest.EncryptValue(3), gatewaytest.EncryptValue(4))
		s.Require().NoError(err)

		s.policy.Revoke(revoked)
		_, err = s.svc.Submit(s.ctx, revoked,
			gatewaytest.EncryptValue(1), gatewaytest.EncryptValue(2),
			gatewaytest.EncryptValue(3), gatewaytest.EncryptValue(4))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *LedgerServiceSuite) TestReads() {
	s.Run("get returns the stored handles untouched", func() {
		incident := s.submit()

		got, err := s.svc.Get(s.ctx, incident.ID)
		s.Require().NoError(err)
		s.True(got.Loss.Equal(incident.Loss))
		s.True(got.Retailer.Equal(incident.Retailer))
	})

	s.Run("get returns not found for unknown ids", func() {
		_, err := s.svc.Get(s.ctx, 404)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("list returns the ledger in id order", func() {
		first := s.submit()
		second := s.submit()

		all, err := s.svc.List(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(all, 2)
		s.Equal(first.ID, all[0].ID)
		s.Equal(second.ID, all[1].ID)
	})
}

// TestCounterSeedsFromStore pins the restart behavior: the id counter
// continues after the highest persisted id instead of restarting at one.
func (s *LedgerServiceSuite) TestCounterSeedsFromStore() {
	s.submit()
	s.submit()

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	restarted := ledger.NewService(s.store, s.policy, s.patterns, s.sink, ledger.WithLogger(quiet))
	incident, err := restarted.Submit(s.ctx, s.caller,
		gatewaytest.EncryptValue(1), gatewaytest.EncryptValue(2),
		gatewaytest.EncryptValue(3), gatewaytest.EncryptValue(4))
	s.Require().NoError(err)
	s.Equal(domain.IncidentID(3), incident.ID)
}
