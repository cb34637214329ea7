package fhe

import (
	"context"

	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
)

// OperationTag names the analysis a computation batch is submitted for. The
// gateway's result vector is positionally defined by the batch order, so
// batching must be deterministic for a given tag.
type OperationTag string

const (
	TagPattern     OperationTag = "pattern"
	TagCorrelation OperationTag = "correlation"
)

// Gateway is the narrow contract the core consumes from the external
// encrypted-computation engine. Submissions are fire-and-forget: the request
// id is returned synchronously, the result arrives later through a callback
// on the core's HTTP surface. Add, GreaterThan, and EncryptScalar are the
// gateway's synchronous primitives.
//
// The engine's homomorphic arithmetic, key management, and proof generation
// are a black box behind this interface.
type Gateway interface {
	// SubmitComputation schedules an asynchronous analysis over the ordered
	// batch and returns the gateway-issued request id.
	SubmitComputation(ctx context.Context, batch []Handle, tag OperationTag) (domain.RequestID, error)

	// SubmitDecryption schedules an asynchronous threshold decryption of the
	// batch and returns the gateway-issued request id.
	SubmitDecryption(ctx context.Context, batch []Handle) (domain.RequestID, error)

	// VerifyProof checks the cryptographic attestation binding a payload to a
	// request id. Callers treat verification errors as a failed check.
	VerifyProof(ctx context.Context, requestID domain.RequestID, payload, proof []byte) (bool, error)

	// Add returns a handle to the homomorphic sum of a and b.
	Add(ctx context.Context, a, b Handle) (Handle, error)

	// GreaterThan returns a handle to the encrypted boolean a > b.
	GreaterThan(ctx context.Context, a, b Handle) (Handle, error)

	// EncryptScalar trivially encrypts a public constant, used for the
	// encrypted one added to incident counters.
	EncryptScalar(ctx context.Context, value uint64) (Handle, error)

	// Available is a liveness probe.
	Available(ctx context.Context) bool
}
