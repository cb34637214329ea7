package aggregate

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/randi412-cooperh/RetailCrimeFhe/internal/access"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/notify"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/pending"
	platformmetrics "github.com/randi412-cooperh/RetailCrimeFhe/internal/platform/metrics"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/verifier"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	dErrors "github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain-errors"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/platform/sentinel"
)

// GatewayOps is the slice of the gateway contract this service uses.
type GatewayOps interface {
	Add(ctx context.Context, a, b fhe.Handle) (fhe.Handle, error)
	EncryptScalar(ctx context.Context, value uint64) (fhe.Handle, error)
	SubmitDecryption(ctx context.Context, batch []fhe.Handle) (domain.RequestID, error)
}

// Service maintains the retailer aggregates and handles the disclosure
// round trip for a retailer's own running loss.
type Service struct {
	store    Store
	policy   access.Authorizer
	gateway  GatewayOps
	pendings *pending.Guard
	verifier *verifier.Verifier
	sink     DisclosureSink
	notifier notify.Publisher
	logger   *slog.Logger
	metrics  *platformmetrics.Metrics

	// Per-retailer locks serialize the read-add-write accrual cycle. The
	// gateway round trips inside Accrue are suspension points, so without
	// this two concurrent accruals read the same base and one contribution
	// is lost on the second Put.
	mu    sync.Mutex
	locks map[domain.RetailerID]*sync.Mutex
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
	store Store,
	policy access.Authorizer,
	gateway GatewayOps,
	pendings *pending.Guard,
	v *verifier.Verifier,
	sink DisclosureSink,
	notifier notify.Publisher,
	opts ...Option,
) *Service {
	s := &Service{
		store:    store,
		policy:   policy,
		gateway:  gateway,
		pendings: pendings,
		verifier: v,
		sink:     sink,
		notifier: notifier,
		logger:   slog.Default(),
		locks:    make(map[domain.RetailerID]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) retailerLock(retailer domain.RetailerID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[retailer]
	if !ok {
		l = &sync.Mutex{}
		s.locks[retailer] = l
	}
	return l
}

// Accrue folds a confirmed loss into the retailer's running totals via
// homomorphic addition. The retailer key must be a disclosed plaintext key
// supplied by the caller (typically obtained through the loss-decryption
// round trip); the core does not derive it from the encrypted field and
// does not deduplicate repeated invocations for the same incident.
// Accruals for the same retailer are serialized so the totals only ever
// grow; concurrent accruals for different retailers proceed in parallel.
func (s *Service) Accrue(ctx context.Context, caller, retailer domain.RetailerID, loss fhe.Handle) (RetailerAggregate, error) {
	if !s.policy.IsAuthorized(caller) {
		return RetailerAggregate{}, dErrors.New(dErrors.CodeUnauthorized, "retailer is not approved to record losses")
	}
	if retailer.IsNil() {
		return RetailerAggregate{}, dErrors.New(dErrors.CodeInvalidArgument, "retailer key is required")
	}

	lock := s.retailerLock(retailer)
	lock.Lock()
	defer lock.Unlock()

	agg, err := s.store.Get(ctx, retailer)
	if errors.Is(err, sentinel.ErrNotFound) {
		agg = RetailerAggregate{
			TotalLoss:     fhe.Zero(),
			IncidentCount: fhe.Zero(),
		}
	} else if err != nil {
		return RetailerAggregate{}, dErrors.Wrap(err, dErrors.CodeInternal, "load aggregate")
	}

	newLoss, err := s.gateway.Add(ctx, agg.TotalLoss, loss)
	if err != nil {
		return RetailerAggregate{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "homomorphic add of loss")
	}
	one, err := s.gateway.EncryptScalar(ctx, 1)
	if err != nil {
		return RetailerAggregate{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "encrypt counter increment")
	}
	newCount, err := s.gateway.Add(ctx, agg.IncidentCount, one)
	if err != nil {
		return RetailerAggregate{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "homomorphic add of count")
	}

	updated := RetailerAggregate{
		TotalLoss:     newLoss,
		IncidentCount: newCount,
		Initialized:   true,
	}
	if err := s.store.Put(ctx, retailer, updated); err != nil {
		return RetailerAggregate{}, dErrors.Wrap(err, dErrors.CodeInternal, "store aggregate")
	}
	return updated, nil
}

// Get returns the aggregate for a retailer, or CodeMissingData.
func (s *Service) Get(ctx context.Context, retailer domain.RetailerID) (RetailerAggregate, error) {
	agg, err := s.store.Get(ctx, retailer)
	if errors.Is(err, sentinel.ErrNotFound) {
		return RetailerAggregate{}, dErrors.New(dErrors.CodeMissingData, "no aggregate for retailer yet")
	}
	if err != nil {
		return RetailerAggregate{}, dErrors.Wrap(err, dErrors.CodeInternal, "load aggregate")
	}
	return agg, nil
}

// RequestLossDecryption submits the retailer's running loss for threshold
// decryption. The plaintext arrives later through OnLossDecrypted.
func (s *Service) RequestLossDecryption(ctx context.Context, caller domain.RetailerID, retailer domain.RetailerID) (domain.RequestID, error) {
	if !s.policy.IsAuthorized(caller) {
		return "", dErrors.New(dErrors.CodeUnauthorized, "retailer is not approved to request disclosure")
	}
	agg, err := s.Get(ctx, retailer)
	if err != nil {
		return "", err
	}

	requestID, err := s.gateway.SubmitDecryption(ctx, []fhe.Handle{agg.TotalLoss})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "submit loss decryption")
	}
	if err := s.pendings.Register(ctx, requestID, domain.KindLoss, domain.RetailerSubject(retailer)); err != nil {
		return "", err
	}

	s.emit(ctx, notify.Event{
		Kind:        notify.KindAnalysisRequested,
		RequestID:   requestID,
		RequestKind: domain.KindLoss,
	})
	if s.metrics != nil {
		s.metrics.AnalysesRequested.WithLabelValues(string(domain.KindLoss)).Inc()
	}
	return requestID, nil
}

// OnLossDecrypted consumes the decryption callback and hands the verified
// plaintext to the disclosure collaborator. Rejections (unknown request,
// kind mismatch, bad proof) leave all state untouched. Consumption is the
// commit point: if the sink then fails, the error is surfaced but the
// request stays spent, so a result is disclosed at most once and a retried
// delivery can never disclose it twice.
func (s *Service) OnLossDecrypted(ctx context.Context, requestID domain.RequestID, totalLoss uint64, proof []byte) error {
	if _, err := s.pendings.Check(ctx, requestID, domain.KindLoss); err != nil {
		return err
	}

	payload := fhe.EncodePlaintextPayload(totalLoss)
	if err := s.verifier.Verify(ctx, requestID, payload, proof); err != nil {
		s.pendings.RejectProof(domain.KindLoss)
		return err
	}

	req, err := s.pendings.Consume(ctx, requestID, domain.KindLoss)
	if err != nil {
		return err
	}
	retailer, err := domain.RetailerFromSubject(req.Subject)
	if err != nil {
		return err
	}

	if err := s.sink.Disclose(ctx, retailer, totalLoss); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "disclose decrypted loss")
	}
	return nil
}

func (s *Service) emit(ctx context.Context, event notify.Event) {
	if err := s.notifier.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "notification dropped",
			"kind", string(event.Kind),
			"error", err,
		)
	}
}
