package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	dErrors "github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain-errors"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/platform/httputil"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/requestcontext"
)

// HandleSubmitIncident handles POST /incidents.
func (h *Handler) HandleSubmitIncident(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller := requestcontext.RetailerID(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[SubmitIncidentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	incident, err := h.ledger.Submit(ctx, caller, req.parsedRetailer, req.parsedLoss, req.parsedLocation, req.parsedProduct)
	if err != nil {
		h.logger.WarnContext(ctx, "incident submission failed",
			"request_id", requestID,
			"caller", caller.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "incident recorded",
		"request_id", requestID,
		"incident_id", incident.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, fromIncident(incident))
}

// HandleGetIncident handles GET /incidents/{id}.
func (h *Handler) HandleGetIncident(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseIncidentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	incident, err := h.ledger.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromIncident(incident))
}

// HandleListIncidents handles GET /incidents.
func (h *Handler) HandleListIncidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.ledger.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromIncidents(incidents))
}
