package correlation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/randi412-cooperh/RetailCrimeFhe/internal/access"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/aggregate"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/notify"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/pending"
	platformmetrics "github.com/randi412-cooperh/RetailCrimeFhe/internal/platform/metrics"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/verifier"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	dErrors "github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain-errors"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/platform/sentinel"
)

// AggregateReader is the slice of the aggregate store this service reads.
type AggregateReader interface {
	Get(ctx context.Context, retailer domain.RetailerID) (aggregate.RetailerAggregate, error)
}

// Submitter is the slice of the gateway contract used here.
type Submitter interface {
	SubmitComputation(ctx context.Context, batch []fhe.Handle, tag fhe.OperationTag) (domain.RequestID, error)
}

// Service drives the cross-retailer correlation round trip.
type Service struct {
	policy     access.Authorizer
	aggregates AggregateReader
	gateway    Submitter
	pendings   *pending.Guard
	verifier   *verifier.Verifier
	store      Store
	notifier   notify.Publisher
	logger     *slog.Logger
	metrics    *platformmetrics.Metrics
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

func NewService(
	policy access.Authorizer,
	aggregates AggregateReader,
	gateway Submitter,
	pendings *pending.Guard,
	v *verifier.Verifier,
	store Store,
	notifier notify.Publisher,
	opts ...Option,
) *Service {
	s := &Service{
		policy:     policy,
		aggregates: aggregates,
		gateway:    gateway,
		pendings:   pendings,
		verifier:   v,
		store:      store,
		notifier:   notifier,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestCorrelation submits the running losses of two retailers for an
// encrypted correlation score. The returned handle is a zero placeholder;
// the real score arrives through OnCorrelationResult. Both aggregates must
// already exist, since correlating against an implicit zero would silently
// produce a meaningless score.
func (s *Service) RequestCorrelation(ctx context.Context, caller domain.RetailerID, a, b domain.RetailerID) (domain.RequestID, fhe.Handle, error) {
	if !s.policy.IsAuthorized(caller) {
		return "", fhe.Handle{}, dErrors.New(dErrors.CodeUnauthorized, "retailer is not approved to request analyses")
	}
	if a == b {
		return "", fhe.Handle{}, dErrors.New(dErrors.CodeInvalidArgument, "correlation needs two distinct retailers")
	}

	aggA, err := s.aggregates.Get(ctx, a)
	if err != nil {
		return "", fhe.Handle{}, missingAggregate(err, a)
	}
	aggB, err := s.aggregates.Get(ctx, b)
	if err != nil {
		return "", fhe.Handle{}, missingAggregate(err, b)
	}

	requestID, err := s.gateway.SubmitComputation(ctx, []fhe.Handle{aggA.TotalLoss, aggB.TotalLoss}, fhe.TagCorrelation)
	if err != nil {
		return "", fhe.Handle{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "submit correlation")
	}
	if err := s.pendings.Register(ctx, requestID, domain.KindCorrelation, domain.RetailerPairSubject(a, b)); err != nil {
		return "", fhe.Handle{}, err
	}

	s.emit(ctx, notify.Event{
		Kind:        notify.KindAnalysisRequested,
		RequestID:   requestID,
		RequestKind: domain.KindCorrelation,
	})
	if s.metrics != nil {
		s.metrics.AnalysesRequested.WithLabelValues(string(domain.KindCorrelation)).Inc()
	}
	return requestID, fhe.Zero(), nil
}

// OnCorrelationResult consumes the gateway callback for a correlation and
// records the encrypted score for audit. Rejections leave state untouched;
// consumption is the commit point, so a store failure after it is surfaced
// but the request stays spent and a retried delivery cannot double-record.
func (s *Service) OnCorrelationResult(ctx context.Context, requestID domain.RequestID, score fhe.Handle, proof []byte) (Result, error) {
	if _, err := s.pendings.Check(ctx, requestID, domain.KindCorrelation); err != nil {
		return Result{}, err
	}

	payload := fhe.EncodeResultPayload(score)
	if err := s.verifier.Verify(ctx, requestID, payload, proof); err != nil {
		s.pendings.RejectProof(domain.KindCorrelation)
		return Result{}, err
	}

	req, err := s.pendings.Consume(ctx, requestID, domain.KindCorrelation)
	if err != nil {
		return Result{}, err
	}
	retailerA, retailerB, err := domain.RetailerPairFromSubject(req.Subject)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		RequestID:  requestID,
		RetailerA:  retailerA,
		RetailerB:  retailerB,
		Score:      score,
		ReceivedAt: time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, result); err != nil {
		return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "store correlation result")
	}

	s.emit(ctx, notify.Event{
		Kind:      notify.KindJointAnalysisCompleted,
		RequestID: requestID,
	})
	return result, nil
}

// Get returns a completed correlation by request id.
func (s *Service) Get(ctx context.Context, id domain.RequestID) (Result, error) {
	result, err := s.store.Get(ctx, id)
	if err != nil {
		return Result{}, dErrors.Wrap(err, dErrors.CodeNotFound, "correlation result not found")
	}
	return result, nil
}

// List returns every completed correlation.
func (s *Service) List(ctx context.Context) ([]Result, error) {
	results, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list correlation results")
	}
	return results, nil
}

func (s *Service) emit(ctx context.Context, event notify.Event) {
	if err := s.notifier.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "notification dropped",
			"kind", string(event.Kind),
			"error", err,
		)
	}
}

func missingAggregate(err error, retailer domain.RetailerID) error {
	if errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeMissingData) {
		return dErrors.New(dErrors.CodeMissingData, "no aggregate for retailer "+retailer.String())
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "load aggregate")
}
