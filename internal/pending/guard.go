package pending

import (
	"context"
	"errors"
	"log/slog"
	"time"

	platformmetrics "github.com/randi412-cooperh/RetailCrimeFhe/internal/platform/metrics"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	dErrors "github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain-errors"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/platform/sentinel"
)

// Guard is the callback-facing view of the correlation table. It translates
// store sentinels into the callback error taxonomy and counts rejections, so
// the three analysis services share one discipline instead of three copies.
type Guard struct {
	store   Store
	logger  *slog.Logger
	metrics *platformmetrics.Metrics
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

func WithLogger(logger *slog.Logger) GuardOption {
	return func(g *Guard) {
		g.logger = logger
	}
}

func WithMetrics(m *platformmetrics.Metrics) GuardOption {
	return func(g *Guard) {
		g.metrics = m
	}
}

func NewGuard(store Store, opts ...GuardOption) *Guard {
	g := &Guard{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Register records a freshly issued request.
func (g *Guard) Register(ctx context.Context, id domain.RequestID, kind domain.RequestKind, subject domain.SubjectKey) error {
	err := g.store.Create(ctx, Request{
		ID:       id,
		Kind:     kind,
		Subject:  subject,
		IssuedAt: time.Now().UTC(),
	})
	if errors.Is(err, sentinel.ErrConflict) {
		// The gateway guarantees unique request ids; a collision means it is
		// misbehaving.
		return dErrors.Wrap(err, dErrors.CodeConflict, "gateway reissued a live request id")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "record pending request")
	}
	return nil
}

// Check validates that a callback addresses a live entry of the expected
// kind without consuming it. Runs before proof verification so a spoofed
// request id is rejected cheaply and the entry survives a kind-confused
// delivery.
func (g *Guard) Check(ctx context.Context, id domain.RequestID, kind domain.RequestKind) (Request, error) {
	req, err := g.store.Get(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		g.reject(kind, "unknown_request")
		return Request{}, dErrors.New(dErrors.CodeUnknownRequest, "no outstanding request for callback")
	}
	if err != nil {
		return Request{}, dErrors.Wrap(err, dErrors.CodeInternal, "look up pending request")
	}
	if req.Abandoned {
		g.reject(kind, "unknown_request")
		return Request{}, dErrors.New(dErrors.CodeUnknownRequest, "request was marked abandoned")
	}
	if req.Kind != kind {
		g.reject(kind, "kind_mismatch")
		g.logger.WarnContext(ctx, "callback kind mismatch, possible spoofing",
			"request_id", string(id),
			"stored_kind", string(req.Kind),
			"callback_kind", string(kind),
		)
		return Request{}, dErrors.New(dErrors.CodeKindMismatch, "callback kind does not match pending request")
	}
	return req, nil
}

// Consume is the atomic exactly-once gate, called after proof verification.
// A concurrent duplicate delivery loses here, before anything is written.
func (g *Guard) Consume(ctx context.Context, id domain.RequestID, kind domain.RequestKind) (Request, error) {
	req, err := g.store.Consume(ctx, id, kind)
	switch {
	case err == nil:
		if g.metrics != nil {
			g.metrics.CallbacksAccepted.WithLabelValues(string(kind)).Inc()
		}
		return req, nil
	case errors.Is(err, sentinel.ErrNotFound):
		g.reject(kind, "unknown_request")
		return Request{}, dErrors.New(dErrors.CodeUnknownRequest, "request already consumed")
	case errors.Is(err, sentinel.ErrInvalidState):
		g.reject(kind, "kind_mismatch")
		return Request{}, dErrors.New(dErrors.CodeKindMismatch, "callback kind does not match pending request")
	default:
		return Request{}, dErrors.Wrap(err, dErrors.CodeInternal, "consume pending request")
	}
}

// RejectProof counts a proof rejection against the kind. The verifier does
// the logging; this keeps the counter labels consistent with the other
// rejection reasons.
func (g *Guard) RejectProof(kind domain.RequestKind) {
	g.reject(kind, "proof_invalid")
}

// Sweep marks requests issued before now-horizon as abandoned.
func (g *Guard) Sweep(ctx context.Context, horizon time.Duration) (int, error) {
	marked, err := g.store.SweepAbandoned(ctx, time.Now().UTC().Add(-horizon))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "sweep abandoned requests")
	}
	if marked > 0 {
		g.logger.InfoContext(ctx, "marked abandoned pending requests", "count", marked)
	}
	return marked, nil
}

func (g *Guard) reject(kind domain.RequestKind, reason string) {
	if g.metrics != nil {
		g.metrics.CallbacksRejected.WithLabelValues(string(kind), reason).Inc()
	}
}
