// Package gatewaytest provides an in-process Gateway for tests. Handles wrap
// plaintext uint64 stand-ins so homomorphic properties (commutativity of
// addition, comparison results) can be asserted for real, and proofs are
// HMAC tags over (request id, payload) so tampering is detectable exactly
// like with the production verifier.
package gatewaytest

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
)

// Submission records one asynchronous request as the gateway received it.
type Submission struct {
	Batch      []fhe.Handle
	Tag        fhe.OperationTag
	Decryption bool
}

// Fake implements fhe.Gateway on plaintext stand-ins.
type Fake struct {
	mu          sync.Mutex
	secret      []byte
	nextRequest int
	submissions map[domain.RequestID]Submission
	down        bool
}

func New() *Fake {
	return &Fake{
		secret:      []byte("gatewaytest-proof-secret"),
		submissions: make(map[domain.RequestID]Submission),
	}
}

// EncryptValue wraps a plaintext stand-in as a handle.
func EncryptValue(v uint64) fhe.Handle {
	return fhe.NewHandle(binary.BigEndian.AppendUint64(nil, v))
}

// Value recovers the plaintext stand-in behind a handle. The zero handle
// decodes as 0, matching the homomorphic zero.
func Value(h fhe.Handle) uint64 {
	b := h.Bytes()
	if len(b) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// SetDown toggles the liveness probe and makes submissions fail.
func (f *Fake) SetDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

// Submission returns what the gateway recorded for a request id.
func (f *Fake) Submission(id domain.RequestID) (Submission, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.submissions[id]
	return s, ok
}

// ProofFor produces the valid proof for a payload, as the real engine would
// attach to its callback.
func (f *Fake) ProofFor(id domain.RequestID, payload []byte) []byte {
	mac := hmac.New(sha256.New, f.secret)
	mac.Write([]byte(id))
	mac.Write(payload)
	return mac.Sum(nil)
}

func (f *Fake) SubmitComputation(_ context.Context, batch []fhe.Handle, tag fhe.OperationTag) (domain.RequestID, error) {
	return f.record(batch, tag, false)
}

func (f *Fake) SubmitDecryption(_ context.Context, batch []fhe.Handle) (domain.RequestID, error) {
	return f.record(batch, "", true)
}

func (f *Fake) record(batch []fhe.Handle, tag fhe.OperationTag, decryption bool) (domain.RequestID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return "", fmt.Errorf("gateway down")
	}
	f.nextRequest++
	id := domain.RequestID(fmt.Sprintf("req-%06d", f.nextRequest))
	stored := make([]fhe.Handle, len(batch))
	copy(stored, batch)
	f.submissions[id] = Submission{Batch: stored, Tag: tag, Decryption: decryption}
	return id, nil
}

func (f *Fake) VerifyProof(_ context.Context, id domain.RequestID, payload, proof []byte) (bool, error) {
	return hmac.Equal(f.ProofFor(id, payload), proof), nil
}

func (f *Fake) Add(_ context.Context, a, b fhe.Handle) (fhe.Handle, error) {
	return EncryptValue(Value(a) + Value(b)), nil
}

func (f *Fake) GreaterThan(_ context.Context, a, b fhe.Handle) (fhe.Handle, error) {
	if Value(a) > Value(b) {
		return EncryptValue(1), nil
	}
	return EncryptValue(0), nil
}

func (f *Fake) EncryptScalar(_ context.Context, value uint64) (fhe.Handle, error) {
	return EncryptValue(value), nil
}

func (f *Fake) Available(_ context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.down
}
