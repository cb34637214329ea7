package screening

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/ledger"
	platformmetrics "github.com/randi412-cooperh/RetailCrimeFhe/internal/platform/metrics"
	dErrors "github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain-errors"
)

// defaultParallelism bounds concurrent gateway comparisons so a large ledger
// does not stampede the gateway.
const defaultParallelism = 8

// IncidentLister is the slice of the ledger the screen reads.
type IncidentLister interface {
	List(ctx context.Context) ([]ledger.Incident, error)
}

// Comparer is the slice of the gateway contract used here.
type Comparer interface {
	GreaterThan(ctx context.Context, a, b fhe.Handle) (fhe.Handle, error)
}

// Service runs read-side threshold screens over the incident ledger.
type Service struct {
	incidents   IncidentLister
	gateway     Comparer
	logger      *slog.Logger
	metrics     *platformmetrics.Metrics
	parallelism int
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *platformmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithParallelism overrides the comparison fan-out bound.
func WithParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

func NewService(incidents IncidentLister, gateway Comparer, opts ...Option) *Service {
	s := &Service{
		incidents:   incidents,
		gateway:     gateway,
		logger:      slog.Default(),
		parallelism: defaultParallelism,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DetectHighRiskLocations evaluates loss > threshold for every incident and
// returns the encrypted verdicts in ledger order. The comparisons fan out in
// parallel but each verdict is written to its incident's slot, so the order
// of the result is the order of the ledger regardless of which comparison
// finishes first. Pure read: no ledger mutation, no pending entry.
func (s *Service) DetectHighRiskLocations(ctx context.Context, threshold fhe.Handle) ([]fhe.Handle, error) {
	if threshold.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "threshold handle is required")
	}
	start := time.Now()

	incidents, err := s.incidents.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list incidents")
	}
	verdicts := make([]fhe.Handle, len(incidents))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i, incident := range incidents {
		g.Go(func() error {
			verdict, err := s.gateway.GreaterThan(gctx, incident.Loss, threshold)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeUnavailable, "compare loss for incident "+incident.ID.String())
			}
			verdicts[i] = verdict
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ScreeningDuration.Observe(float64(time.Since(start).Milliseconds()))
	}
	s.logger.DebugContext(ctx, "threshold screen complete",
		"incidents", len(incidents),
		"elapsed", time.Since(start),
	)
	return verdicts, nil
}
