package httptransport

import (
	"encoding/base64"
	"time"

	"github.com/randi412-cooperh/RetailCrimeFhe/internal/correlation"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/ledger"
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/pattern"
)

func encodeHandle(h fhe.Handle) string {
	return base64.StdEncoding.EncodeToString(h.Bytes())
}

// IncidentResponse is the wire shape of a ledger incident.
type IncidentResponse struct {
	ID        int64     `json:"id"`
	Retailer  string    `json:"retailer"`
	Loss      string    `json:"loss"`
	Location  string    `json:"location"`
	Product   string    `json:"product"`
	CreatedAt time.Time `json:"created_at"`
}

func fromIncident(incident ledger.Incident) IncidentResponse {
	return IncidentResponse{
		ID:        int64(incident.ID),
		Retailer:  encodeHandle(incident.Retailer),
		Loss:      encodeHandle(incident.Loss),
		Location:  encodeHandle(incident.Location),
		Product:   encodeHandle(incident.Product),
		CreatedAt: incident.CreatedAt,
	}
}

func fromIncidents(incidents []ledger.Incident) []IncidentResponse {
	out := make([]IncidentResponse, 0, len(incidents))
	for _, incident := range incidents {
		out = append(out, fromIncident(incident))
	}
	return out
}

// PatternResponse is the wire shape of a crime pattern record.
type PatternResponse struct {
	ID          int64  `json:"id"`
	Frequency   string `json:"frequency"`
	TotalLoss   string `json:"total_loss"`
	Correlation string `json:"correlation"`
	Analyzed    bool   `json:"analyzed"`
}

func fromPattern(p pattern.CrimePattern) PatternResponse {
	return PatternResponse{
		ID:          int64(p.ID),
		Frequency:   encodeHandle(p.Frequency),
		TotalLoss:   encodeHandle(p.TotalLoss),
		Correlation: encodeHandle(p.Correlation),
		Analyzed:    p.Analyzed,
	}
}

func fromPatterns(patterns []pattern.CrimePattern) []PatternResponse {
	out := make([]PatternResponse, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, fromPattern(p))
	}
	return out
}

// RequestAcceptedResponse acknowledges an asynchronous gateway submission.
type RequestAcceptedResponse struct {
	RequestID string `json:"request_id"`
}

// CorrelationAcceptedResponse acknowledges a correlation submission. The
// placeholder handle is encrypted zero until the callback lands.
type CorrelationAcceptedResponse struct {
	RequestID   string `json:"request_id"`
	Placeholder string `json:"placeholder"`
}

// AggregateResponse is the wire shape of a retailer aggregate. Both fields
// stay encrypted; the loss becomes visible only through the decryption flow.
type AggregateResponse struct {
	TotalLoss     string `json:"total_loss"`
	IncidentCount string `json:"incident_count"`
}

// CorrelationResultResponse is the wire shape of a completed correlation.
type CorrelationResultResponse struct {
	RequestID  string    `json:"request_id"`
	RetailerA  string    `json:"retailer_a"`
	RetailerB  string    `json:"retailer_b"`
	Score      string    `json:"score"`
	ReceivedAt time.Time `json:"received_at"`
}

func fromCorrelationResult(result correlation.Result) CorrelationResultResponse {
	return CorrelationResultResponse{
		RequestID:  string(result.RequestID),
		RetailerA:  result.RetailerA.String(),
		RetailerB:  result.RetailerB.String(),
		Score:      encodeHandle(result.Score),
		ReceivedAt: result.ReceivedAt,
	}
}

// ScreeningResponse carries the encrypted verdicts in ledger order.
type ScreeningResponse struct {
	Verdicts []string `json:"verdicts"`
}

func fromVerdicts(verdicts []fhe.Handle) ScreeningResponse {
	out := ScreeningResponse{Verdicts: make([]string, 0, len(verdicts))}
	for _, v := range verdicts {
		out.Verdicts = append(out.Verdicts, encodeHandle(v))
	}
	return out
}
