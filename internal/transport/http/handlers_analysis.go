package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	dErrors "github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain-errors"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/platform/httputil"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/requestcontext"
)

// HandleRequestJointAnalysis handles POST /analyses/joint.
func (h *Handler) HandleRequestJointAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller := requestcontext.RetailerID(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[JointAnalysisRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	gatewayRequestID, err := h.analyses.RequestJointAnalysis(ctx, caller, req.parsedIDs)
	if err != nil {
		h.logger.WarnContext(ctx, "joint analysis request failed",
			"request_id", requestID,
			"caller", caller.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "joint analysis submitted",
		"request_id", requestID,
		"gateway_request_id", gatewayRequestID.String(),
		"incidents", len(req.parsedIDs),
	)
	httputil.WriteJSON(w, http.StatusAccepted, RequestAcceptedResponse{
		RequestID: string(gatewayRequestID),
	})
}

// HandleGetPattern handles GET /patterns/{id}.
func (h *Handler) HandleGetPattern(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParsePatternID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.analyses.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromPattern(p))
}

// HandleListPatterns handles GET /patterns.
func (h *Handler) HandleListPatterns(w http.ResponseWriter, r *http.Request) {
	patterns, err := h.analyses.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromPatterns(patterns))
}
