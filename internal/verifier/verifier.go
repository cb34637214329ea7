// Package verifier gates every callback result behind cryptographic proof
// verification. Nothing downstream of a callback mutates state until the
// proof binding (request id, payload) checks out.
package verifier

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	dErrors "github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain-errors"
)

var proofRejections = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rcf_proof_rejections_total",
	Help: "Callback results rejected because proof verification failed",
})

// ProofChecker is the slice of the gateway contract the verifier needs.
type ProofChecker interface {
	VerifyProof(ctx context.Context, requestID domain.RequestID, payload, proof []byte) (bool, error)
}

// Verifier validates callback proofs, fail-closed: verification transport
// errors count as invalid proofs.
type Verifier struct {
	checker ProofChecker
	logger  *slog.Logger
}

func New(checker ProofChecker, logger *slog.Logger) *Verifier {
	return &Verifier{checker: checker, logger: logger}
}

// Verify returns CodeProofInvalid unless the proof is positively valid.
// Rejections are logged as potential attacks since a well-behaved gateway
// never delivers an unverifiable result.
func (v *Verifier) Verify(ctx context.Context, requestID domain.RequestID, payload, proof []byte) error {
	valid, err := v.checker.VerifyProof(ctx, requestID, payload, proof)
	if err != nil {
		proofRejections.Inc()
		v.logger.ErrorContext(ctx, "proof verification errored, failing closed",
			"request_id", string(requestID),
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeProofInvalid, "proof verification unavailable")
	}
	if !valid {
		proofRejections.Inc()
		v.logger.WarnContext(ctx, "invalid proof rejected, possible replay or tampering",
			"request_id", string(requestID),
		)
		return dErrors.New(dErrors.CodeProofInvalid, "result proof failed verification")
	}
	return nil
}
