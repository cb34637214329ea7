// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// domain services, and encode; business rules stay out of this package.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/randi412-cooperh/RetailCrimeFhe/internal/aggregate"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/correlation"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/ledger"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/pattern"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/platform/middleware"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/platform/httputil"
)

// LedgerService is the ledger surface the transport needs.
type LedgerService interface {
	Submit(ctx context.Context, caller domain.RetailerID, retailer, loss, location, product fhe.Handle) (ledger.Incident, error)
	Get(ctx context.Context, id domain.IncidentID) (ledger.Incident, error)
	List(ctx context.Context) ([]ledger.Incident, error)
}

// AnalysisService is the joint-analysis surface.
type AnalysisService interface {
	RequestJointAnalysis(ctx context.Context, caller domain.RetailerID, incidentIDs []domain.IncidentID) (domain.RequestID, error)
	OnPatternResult(ctx context.Context, requestID domain.RequestID, results [3]fhe.Handle, proof []byte) (pattern.CrimePattern, error)
	Get(ctx context.Context, id domain.PatternID) (pattern.CrimePattern, error)
	List(ctx context.Context) ([]pattern.CrimePattern, error)
}

// AggregateService is the retailer-aggregate surface.
type AggregateService interface {
	Accrue(ctx context.Context, caller, retailer domain.RetailerID, loss fhe.Handle) (aggregate.RetailerAggregate, error)
	Get(ctx context.Context, retailer domain.RetailerID) (aggregate.RetailerAggregate, error)
	RequestLossDecryption(ctx context.Context, caller, retailer domain.RetailerID) (domain.RequestID, error)
	OnLossDecrypted(ctx context.Context, requestID domain.RequestID, totalLoss uint64, proof []byte) error
}

// CorrelationService is the cross-retailer correlation surface.
type CorrelationService interface {
	RequestCorrelation(ctx context.Context, caller, a, b domain.RetailerID) (domain.RequestID, fhe.Handle, error)
	OnCorrelationResult(ctx context.Context, requestID domain.RequestID, score fhe.Handle, proof []byte) (correlation.Result, error)
	Get(ctx context.Context, id domain.RequestID) (correlation.Result, error)
	List(ctx context.Context) ([]correlation.Result, error)
}

// ScreeningService is the threshold-screen surface.
type ScreeningService interface {
	DetectHighRiskLocations(ctx context.Context, threshold fhe.Handle) ([]fhe.Handle, error)
}

// AccessAdmin is the approval surface for the admin endpoints.
type AccessAdmin interface {
	Grant(id domain.RetailerID)
	Revoke(id domain.RetailerID)
}

// HealthProber reports whether the computation gateway is reachable.
type HealthProber interface {
	Available(ctx context.Context) bool
}

// Handler wires all endpoints to their services.
type Handler struct {
	ledger       LedgerService
	analyses     AnalysisService
	aggregates   AggregateService
	correlations CorrelationService
	screening    ScreeningService
	admin        AccessAdmin
	gateway      HealthProber
	logger       *slog.Logger
}

func NewHandler(
	ledgerSvc LedgerService,
	analyses AnalysisService,
	aggregates AggregateService,
	correlations CorrelationService,
	screening ScreeningService,
	admin AccessAdmin,
	gateway HealthProber,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		ledger:       ledgerSvc,
		analyses:     analyses,
		aggregates:   aggregates,
		correlations: correlations,
		screening:    screening,
		admin:        admin,
		gateway:      gateway,
		logger:       logger,
	}
}

// NewRouter builds the full route tree. Retailer-facing routes require a
// bearer token; callback routes are gateway-facing and unauthenticated at the
// HTTP layer, since the proof inside the body is the real authentication.
func NewRouter(h *Handler, validator middleware.JWTValidator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))

		r.Post("/incidents", h.HandleSubmitIncident)
		r.Get("/incidents", h.HandleListIncidents)
		r.Get("/incidents/{id}", h.HandleGetIncident)

		r.Post("/analyses/joint", h.HandleRequestJointAnalysis)
		r.Get("/patterns", h.HandleListPatterns)
		r.Get("/patterns/{id}", h.HandleGetPattern)

		r.Post("/aggregates/accrue", h.HandleAccrue)
		r.Get("/aggregates/{retailer}", h.HandleGetAggregate)
		r.Post("/aggregates/loss-decryption", h.HandleRequestLossDecryption)

		r.Post("/correlations", h.HandleRequestCorrelation)
		r.Get("/correlations", h.HandleListCorrelations)
		r.Get("/correlations/{id}", h.HandleGetCorrelation)

		r.Post("/screenings", h.HandleScreening)

		r.Put("/admin/retailers/{retailer}/approval", h.HandleGrant)
		r.Delete("/admin/retailers/{retailer}/approval", h.HandleRevoke)
	})

	r.Post("/gateway/callbacks/pattern", h.HandlePatternCallback)
	r.Post("/gateway/callbacks/loss", h.HandleLossCallback)
	r.Post("/gateway/callbacks/correlation", h.HandleCorrelationCallback)

	r.Get("/healthz", h.HandleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// HandleHealthz reports process liveness plus gateway reachability. A dead
// gateway degrades the report but keeps 200 so orchestrators do not restart
// the core over a dependency outage.
func (h *Handler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	gatewayStatus := "ok"
	if !h.gateway.Available(r.Context()) {
		gatewayStatus = "unreachable"
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"gateway": gatewayStatus,
	})
}
