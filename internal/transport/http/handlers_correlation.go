package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	dErrors "github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain-errors"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/platform/httputil"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/requestcontext"
)

// HandleRequestCorrelation handles POST /correlations.
func (h *Handler) HandleRequestCorrelation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller := requestcontext.RetailerID(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[CorrelationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	gatewayRequestID, placeholder, err := h.correlations.RequestCorrelation(ctx, caller, req.parsedA, req.parsedB)
	if err != nil {
		h.logger.WarnContext(ctx, "correlation request failed",
			"request_id", requestID,
			"caller", caller.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, CorrelationAcceptedResponse{
		RequestID:   string(gatewayRequestID),
		Placeholder: encodeHandle(placeholder),
	})
}

// HandleGetCorrelation handles GET /correlations/{id}.
func (h *Handler) HandleGetCorrelation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidArgument, "correlation id is required"))
		return
	}
	result, err := h.correlations.Get(r.Context(), domain.RequestID(id))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromCorrelationResult(result))
}

// HandleListCorrelations handles GET /correlations.
func (h *Handler) HandleListCorrelations(w http.ResponseWriter, r *http.Request) {
	results, err := h.correlations.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]CorrelationResultResponse, 0, len(results))
	for _, result := range results {
		out = append(out, fromCorrelationResult(result))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleScreening handles POST /screenings.
func (h *Handler) HandleScreening(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ScreeningRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	verdicts, err := h.screening.DetectHighRiskLocations(ctx, req.parsedThreshold)
	if err != nil {
		h.logger.WarnContext(ctx, "threshold screening failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromVerdicts(verdicts))
}
