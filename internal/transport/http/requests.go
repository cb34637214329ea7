package httptransport

import (
	"encoding/base64"

	"github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	dErrors "github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain-errors"
)

// Handles travel as base64 strings on the wire and stay opaque in transit;
// request types decode them during Validate so handlers only ever see parsed
// domain values.

func decodeHandle(field, value string) (fhe.Handle, error) {
	if value == "" {
		return fhe.Handle{}, dErrors.New(dErrors.CodeInvalidArgument, field+" is required")
	}
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return fhe.Handle{}, dErrors.New(dErrors.CodeInvalidArgument, field+" is not valid base64")
	}
	return fhe.NewHandle(raw), nil
}

func decodeProof(value string) ([]byte, error) {
	if value == "" {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "proof is required")
	}
	proof, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "proof is not valid base64")
	}
	return proof, nil
}

// SubmitIncidentRequest is the body for POST /incidents.
type SubmitIncidentRequest struct {
	Retailer string `json:"retailer"`
	Loss     string `json:"loss"`
	Location string `json:"location"`
	Product  string `json:"product"`

	parsedRetailer fhe.Handle
	parsedLoss     fhe.Handle
	parsedLocation fhe.Handle
	parsedProduct  fhe.Handle
}

func (r *SubmitIncidentRequest) Validate() error {
	var err error
	if r.parsedRetailer, err = decodeHandle("retailer", r.Retailer); err != nil {
		return err
	}
	if r.parsedLoss, err = decodeHandle("loss", r.Loss); err != nil {
		return err
	}
	if r.parsedLocation, err = decodeHandle("location", r.Location); err != nil {
		return err
	}
	if r.parsedProduct, err = decodeHandle("product", r.Product); err != nil {
		return err
	}
	return nil
}

// JointAnalysisRequest is the body for POST /analyses/joint.
type JointAnalysisRequest struct {
	IncidentIDs []int64 `json:"incident_ids"`

	parsedIDs []domain.IncidentID
}

func (r *JointAnalysisRequest) Validate() error {
	if len(r.IncidentIDs) == 0 {
		return dErrors.New(dErrors.CodeInvalidArgument, "incident_ids is required")
	}
	r.parsedIDs = make([]domain.IncidentID, 0, len(r.IncidentIDs))
	for _, raw := range r.IncidentIDs {
		if raw <= 0 {
			return dErrors.New(dErrors.CodeInvalidArgument, "incident ids must be positive")
		}
		r.parsedIDs = append(r.parsedIDs, domain.IncidentID(raw))
	}
	return nil
}

// AccrueRequest is the body for POST /aggregates/accrue.
type AccrueRequest struct {
	Retailer string `json:"retailer"`
	Loss     string `json:"loss"`

	parsedRetailer domain.RetailerID
	parsedLoss     fhe.Handle
}

func (r *AccrueRequest) Validate() error {
	retailer, err := domain.ParseRetailerID(r.Retailer)
	if err != nil {
		return err
	}
	r.parsedRetailer = retailer
	if r.parsedLoss, err = decodeHandle("loss", r.Loss); err != nil {
		return err
	}
	return nil
}

// LossDecryptionRequest is the body for POST /aggregates/loss-decryption.
type LossDecryptionRequest struct {
	Retailer string `json:"retailer"`

	parsedRetailer domain.RetailerID
}

func (r *LossDecryptionRequest) Validate() error {
	retailer, err := domain.ParseRetailerID(r.Retailer)
	if err != nil {
		return err
	}
	r.parsedRetailer = retailer
	return nil
}

// CorrelationRequest is the body for POST /correlations.
type CorrelationRequest struct {
	RetailerA string `json:"retailer_a"`
	RetailerB string `json:"retailer_b"`

	parsedA domain.RetailerID
	parsedB domain.RetailerID
}

func (r *CorrelationRequest) Validate() error {
	a, err := domain.ParseRetailerID(r.RetailerA)
	if err != nil {
		return err
	}
	b, err := domain.ParseRetailerID(r.RetailerB)
	if err != nil {
		return err
	}
	r.parsedA, r.parsedB = a, b
	return nil
}

// ScreeningRequest is the body for POST /screenings.
type ScreeningRequest struct {
	Threshold string `json:"threshold"`

	parsedThreshold fhe.Handle
}

func (r *ScreeningRequest) Validate() error {
	threshold, err := decodeHandle("threshold", r.Threshold)
	if err != nil {
		return err
	}
	r.parsedThreshold = threshold
	return nil
}

// PatternCallbackRequest is the gateway's body for
// POST /gateway/callbacks/pattern.
type PatternCallbackRequest struct {
	RequestID string    `json:"request_id"`
	Results   [3]string `json:"results"`
	Proof     string    `json:"proof"`

	parsedResults [3]fhe.Handle
	parsedProof   []byte
}

func (r *PatternCallbackRequest) Validate() error {
	if r.RequestID == "" {
		return dErrors.New(dErrors.CodeInvalidArgument, "request_id is required")
	}
	names := [3]string{"results[0]", "results[1]", "results[2]"}
	for i, raw := range r.Results {
		handle, err := decodeHandle(names[i], raw)
		if err != nil {
			return err
		}
		r.parsedResults[i] = handle
	}
	var err error
	r.parsedProof, err = decodeProof(r.Proof)
	return err
}

// LossCallbackRequest is the gateway's body for POST /gateway/callbacks/loss.
type LossCallbackRequest struct {
	RequestID string `json:"request_id"`
	TotalLoss uint64 `json:"total_loss"`
	Proof     string `json:"proof"`

	parsedProof []byte
}

func (r *LossCallbackRequest) Validate() error {
	if r.RequestID == "" {
		return dErrors.New(dErrors.CodeInvalidArgument, "request_id is required")
	}
	var err error
	r.parsedProof, err = decodeProof(r.Proof)
	return err
}

// CorrelationCallbackRequest is the gateway's body for
// POST /gateway/callbacks/correlation.
type CorrelationCallbackRequest struct {
	RequestID string `json:"request_id"`
	Score     string `json:"score"`
	Proof     string `json:"proof"`

	parsedScore fhe.Handle
	parsedProof []byte
}

func (r *CorrelationCallbackRequest) Validate() error {
	if r.RequestID == "" {
		return dErrors.New(dErrors.CodeInvalidArgument, "request_id is required")
	}
	score, err := decodeHandle("score", r.Score)
	if err != nil {
		return err
	}
	r.parsedScore = score
	r.parsedProof, err = decodeProof(r.Proof)
	return err
}
