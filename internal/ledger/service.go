package ledger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/randi412-cooperh/RetailCrimeFhe/internal/access"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe"
	ledgermetrics "github.com/randi412-cooperh/RetailCrimeFhe/internal/ledger/metrics"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/notify"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	dErrors "github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain-errors"
)

// PatternSeeder creates the empty placeholder pattern that accompanies every
// new incident. Implemented by the pattern store; an interface here keeps
// the ledger free of a pattern-package dependency cycle.
type PatternSeeder interface {
	SeedPlaceholder(ctx context.Context, id domain.PatternID) error
}

// Service owns incident submission. It assigns sequential ids, never reuses
// one, and validates fully before any write so rejected submissions leave
// state untouched.
type Service struct {
	store    Store
	policy   access.Authorizer
	patterns PatternSeeder
	notifier notify.Publisher
	logger   *slog.Logger
	metrics  *ledgermetrics.Metrics

	mu     sync.Mutex
	nextID domain.IncidentID
	seeded bool
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *ledgermetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(store Store, policy access.Authorizer, patterns PatternSeeder, notifier notify.Publisher, opts ...Option) *Service {
	s := &Service{
		store:    store,
		policy:   policy,
		patterns: patterns,
		notifier: notifier,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit appends a new incident and seeds its empty pattern placeholder.
// The four handles are stored as-is; no encrypted value is inspected beyond
// being present.
func (s *Service) Submit(ctx context.Context, caller domain.RetailerID, retailer, loss, location, product fhe.Handle) (Incident, error) {
	start := time.Now()

	if !s.policy.IsAuthorized(caller) {
		if s.metrics != nil {
			s.metrics.SubmissionsRejected.Inc()
		}
		return Incident{}, dErrors.New(dErrors.CodeUnauthorized, "retailer is not approved to submit incidents")
	}

	incident := Incident{
		ID:        s.mintID(ctx),
		Retailer:  retailer,
		Loss:      loss,
		Location:  location,
		Product:   product,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Append(ctx, incident); err != nil {
		return Incident{}, dErrors.Wrap(err, dErrors.CodeInternal, "append incident")
	}
	if err := s.patterns.SeedPlaceholder(ctx, domain.PatternID(incident.ID)); err != nil {
		return Incident{}, dErrors.Wrap(err, dErrors.CodeInternal, "seed pattern placeholder")
	}

	if err := s.notifier.Emit(ctx, notify.Event{
		Kind:       notify.KindIncidentRecorded,
		Timestamp:  incident.CreatedAt,
		IncidentID: incident.ID,
	}); err != nil {
		s.logger.WarnContext(ctx, "incident notification dropped",
			"incident_id", incident.ID.String(),
			"error", err,
		)
	}

	if s.metrics != nil {
		s.metrics.IncidentsSubmitted.Inc()
		s.metrics.SubmitDurationMillis.Observe(float64(time.Since(start).Milliseconds()))
	}
	return incident, nil
}

// Get returns a single incident. Read access returns raw handles; any
// downstream decryption authorization is out of core scope.
func (s *Service) Get(ctx context.Context, id domain.IncidentID) (Incident, error) {
	incident, err := s.store.Get(ctx, id)
	if err != nil {
		return Incident{}, dErrors.Wrap(err, dErrors.CodeNotFound, "incident not found")
	}
	return incident, nil
}

// List returns the whole ledger in id order.
func (s *Service) List(ctx context.Context) ([]Incident, error) {
	incidents, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list incidents")
	}
	return incidents, nil
}

// mintID hands out the next sequential id. Ids advance only after the
// authorization check passes, but once minted an id is never reissued even
// if the append itself fails.
func (s *Service) mintID(ctx context.Context) domain.IncidentID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.seeded {
		last, err := s.store.LastID(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "seeding incident counter failed, starting from empty", "error", err)
		}
		s.nextID = last
		s.seeded = true
	}
	s.nextID++
	return s.nextID
}
