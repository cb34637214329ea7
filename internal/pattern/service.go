package pattern

import (
	"context"
	"log/slog"
	"sync"

	"github.com/randi412-cooperh/RetailCrimeFhe/internal/access"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/ledger"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/notify"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/pending"
	platformmetrics "github.com/randi412-cooperh/RetailCrimeFhe/internal/platform/metrics"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/verifier"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	dErrors "github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain-errors"
)

// IncidentReader is the slice of the ledger the analysis needs.
type IncidentReader interface {
	Get(ctx context.Context, id domain.IncidentID) (ledger.Incident, error)
}

// Submitter is the slice of the gateway contract used here.
type Submitter interface {
	SubmitComputation(ctx context.Context, batch []fhe.Handle, tag fhe.OperationTag) (domain.RequestID, error)
}

// Service drives the joint-analysis round trip.
type Service struct {
	policy    access.Authorizer
	incidents IncidentReader
	gateway   Submitter
	pendings  *pending.Guard
	verifier  *verifier.Verifier
	store     Store
	notifier  notify.Publisher
	logger    *slog.Logger
	metrics   *platformmetrics.Metrics

	mu         sync.Mutex
	nextResult domain.PatternID
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
	incidents IncidentReader,
	gateway Submitter,
	pendings *pending.Guard,
	v *verifier.Verifier,
	store Store,
	notifier notify.Publisher,
	opts ...Option,
) *Service {
	s := &Service{
		policy:     policy,
		incidents:  incidents,
		gateway:    gateway,
		pendings:   pendings,
		verifier:   v,
		store:      store,
		notifier:   notifier,
		logger:     slog.Default(),
		nextResult: domain.AnalysisPatternBase,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestJointAnalysis batches the handles of the referenced incidents and
// submits them for multi-party pattern detection. The batch is flattened in
// the order the ids were given, four handles per incident, because the
// gateway's result vector is positionally defined by exactly this order.
func (s *Service) RequestJointAnalysis(ctx context.Context, caller domain.RetailerID, incidentIDs []domain.IncidentID) (domain.RequestID, error) {
	if !s.policy.IsAuthorized(caller) {
		return "", dErrors.New(dErrors.CodeUnauthorized, "retailer is not approved to request analyses")
	}
	if len(incidentIDs) < 2 {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "joint analysis requires at least two incidents")
	}

	batch := make([]fhe.Handle, 0, len(incidentIDs)*4)
	for _, id := range incidentIDs {
		incident, err := s.incidents.Get(ctx, id)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInvalidArgument, "unknown incident "+id.String())
		}
		batch = append(batch, incident.Retailer, incident.Loss, incident.Location, incident.Product)
	}

	requestID, err := s.gateway.SubmitComputation(ctx, batch, fhe.TagPattern)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "submit pattern analysis")
	}
	if err := s.pendings.Register(ctx, requestID, domain.KindPattern, domain.IncidentSubject(incidentIDs[0])); err != nil {
		return "", err
	}

	s.emit(ctx, notify.Event{
		Kind:        notify.KindAnalysisRequested,
		RequestID:   requestID,
		RequestKind: domain.KindPattern,
	})
	if s.metrics != nil {
		s.metrics.AnalysesRequested.WithLabelValues(string(domain.KindPattern)).Inc()
	}
	return requestID, nil
}

// OnPatternResult consumes the gateway callback for a pattern analysis.
// Rejections (unknown request, kind mismatch, bad proof) leave state exactly
// as it was. Consumption is the commit point: a store failure after it is
// surfaced but the request stays spent, so a delivery is applied at most
// once and a retry can never record the result twice.
func (s *Service) OnPatternResult(ctx context.Context, requestID domain.RequestID, results [3]fhe.Handle, proof []byte) (CrimePattern, error) {
	if _, err := s.pendings.Check(ctx, requestID, domain.KindPattern); err != nil {
		return CrimePattern{}, err
	}

	payload := fhe.EncodeResultPayload(results[0], results[1], results[2])
	if err := s.verifier.Verify(ctx, requestID, payload, proof); err != nil {
		s.pendings.RejectProof(domain.KindPattern)
		return CrimePattern{}, err
	}

	if _, err := s.pendings.Consume(ctx, requestID, domain.KindPattern); err != nil {
		return CrimePattern{}, err
	}

	result := CrimePattern{
		ID:          s.mintResultID(),
		Frequency:   results[0],
		TotalLoss:   results[1],
		Correlation: results[2],
		Analyzed:    true,
	}
	if err := s.store.Insert(ctx, result); err != nil {
		return CrimePattern{}, dErrors.Wrap(err, dErrors.CodeInternal, "store analysis result")
	}

	s.emit(ctx, notify.Event{
		Kind:      notify.KindPatternIdentified,
		PatternID: result.ID,
		RequestID: requestID,
	})
	return result, nil
}

// Get returns a pattern record by id.
func (s *Service) Get(ctx context.Context, id domain.PatternID) (CrimePattern, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return CrimePattern{}, dErrors.Wrap(err, dErrors.CodeNotFound, "pattern not found")
	}
	return p, nil
}

// List returns every pattern record, placeholders included.
func (s *Service) List(ctx context.Context) ([]CrimePattern, error) {
	patterns, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list patterns")
	}
	return patterns, nil
}

func (s *Service) emit(ctx context.Context, event notify.Event) {
	if err := s.notifier.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "notification dropped",
			"kind", string(event.Kind),
			"error", err,
		)
	}
}

// mintResultID hands out analysis pattern ids from a counter independent of
// incident ids, so concurrent completed analyses can never collide with each
// other or with incident-keyed placeholders.
func (s *Service) mintResultID() domain.PatternID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextResult
	s.nextResult++
	return id
}
