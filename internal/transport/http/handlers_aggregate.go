package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	dErrors "github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain-errors"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/platform/httputil"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/requestcontext"
)

// HandleAccrue handles POST /aggregates/accrue.
func (h *Handler) HandleAccrue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller := requestcontext.RetailerID(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[AccrueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	agg, err := h.aggregates.Accrue(ctx, caller, req.parsedRetailer, req.parsedLoss)
	if err != nil {
		h.logger.WarnContext(ctx, "aggregate accrual failed",
			"request_id", requestID,
			"caller", caller.String(),
			"retailer", req.parsedRetailer.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AggregateResponse{
		TotalLoss:     encodeHandle(agg.TotalLoss),
		IncidentCount: encodeHandle(agg.IncidentCount),
	})
}

// HandleGetAggregate handles GET /aggregates/{retailer}.
func (h *Handler) HandleGetAggregate(w http.ResponseWriter, r *http.Request) {
	retailer, err := domain.ParseRetailerID(chi.URLParam(r, "retailer"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	agg, err := h.aggregates.Get(r.Context(), retailer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AggregateResponse{
		TotalLoss:     encodeHandle(agg.TotalLoss),
		IncidentCount: encodeHandle(agg.IncidentCount),
	})
}

// HandleRequestLossDecryption handles POST /aggregates/loss-decryption.
func (h *Handler) HandleRequestLossDecryption(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller := requestcontext.RetailerID(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[LossDecryptionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	gatewayRequestID, err := h.aggregates.RequestLossDecryption(ctx, caller, req.parsedRetailer)
	if err != nil {
		h.logger.WarnContext(ctx, "loss decryption request failed",
			"request_id", requestID,
			"caller", caller.String(),
			"retailer", req.parsedRetailer.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, RequestAcceptedResponse{
		RequestID: string(gatewayRequestID),
	})
}

// HandleGrant handles PUT /admin/retailers/{retailer}/approval.
func (h *Handler) HandleGrant(w http.ResponseWriter, r *http.Request) {
	retailer, err := domain.ParseRetailerID(chi.URLParam(r, "retailer"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.admin.Grant(retailer)
	h.logger.InfoContext(r.Context(), "retailer approved", "retailer", retailer.String())
	w.WriteHeader(http.StatusNoContent)
}

// HandleRevoke handles DELETE /admin/retailers/{retailer}/approval.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	retailer, err := domain.ParseRetailerID(chi.URLParam(r, "retailer"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.admin.Revoke(retailer)
	h.logger.InfoContext(r.Context(), "retailer approval revoked", "retailer", retailer.String())
	w.WriteHeader(http.StatusNoContent)
}
