package httptransport

import (
	"net/http"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/platform/httputil"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/requestcontext"
)

// Callback endpoints face the computation gateway, not retailers. They carry
// no bearer token; the correlation table plus the proof inside the body are
// what authenticate a delivery, and the services reject anything that does
// not check out without mutating state.

// HandlePatternCallback handles POST /gateway/callbacks/pattern.
func (h *Handler) HandlePatternCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[PatternCallbackRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.analyses.OnPatternResult(ctx, domain.RequestID(req.RequestID), req.parsedResults, req.parsedProof)
	if err != nil {
		h.logger.WarnContext(ctx, "pattern callback rejected",
			"request_id", requestID,
			"gateway_request_id", req.RequestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "pattern callback accepted",
		"request_id", requestID,
		"gateway_request_id", req.RequestID,
		"pattern_id", result.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusOK, fromPattern(result))
}

// HandleLossCallback handles POST /gateway/callbacks/loss.
func (h *Handler) HandleLossCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LossCallbackRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.aggregates.OnLossDecrypted(ctx, domain.RequestID(req.RequestID), req.TotalLoss, req.parsedProof); err != nil {
		h.logger.WarnContext(ctx, "loss callback rejected",
			"request_id", requestID,
			"gateway_request_id", req.RequestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "loss callback accepted",
		"request_id", requestID,
		"gateway_request_id", req.RequestID,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleCorrelationCallback handles POST /gateway/callbacks/correlation.
func (h *Handler) HandleCorrelationCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CorrelationCallbackRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.correlations.OnCorrelationResult(ctx, domain.RequestID(req.RequestID), req.parsedScore, req.parsedProof)
	if err != nil {
		h.logger.WarnContext(ctx, "correlation callback rejected",
			"request_id", requestID,
			"gateway_request_id", req.RequestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "correlation callback accepted",
		"request_id", requestID,
		"gateway_request_id", req.RequestID,
		"retailer_a", result.RetailerA.String(),
		"retailer_b", result.RetailerB.String(),
	)
	httputil.WriteJSON(w, http.StatusOK, fromCorrelationResult(result))
}
