// Package fhe defines the opaque ciphertext handle and the computation
// gateway contract. The core never decodes a handle: every operation on
// encrypted values goes through the Gateway capability interface, so the
// type system is what keeps plaintext arithmetic out of the codebase.
package fhe

import (
	"bytes"
	"encoding/hex"
)

// Handle is an opaque reference to an encrypted value. The zero value is
// the homomorphic zero placeholder used for uninitialized aggregates and
// empty pattern slots.
type Handle struct {
	data []byte
}

// NewHandle wraps raw handle bytes. The slice is copied; handles are
// immutable once constructed.
func NewHandle(b []byte) Handle {
	if len(b) == 0 {
		return Handle{}
	}
	data := make([]byte, len(b))
	copy(data, b)
	return Handle{data: data}
}

// Zero returns the placeholder handle representing an encrypted zero.
func Zero() Handle {
	return Handle{}
}

// Bytes returns a copy of the raw handle bytes for transport encoding.
func (h Handle) Bytes() []byte {
	if len(h.data) == 0 {
		return nil
	}
	out := make([]byte, len(h.data))
	copy(out, h.data)
	return out
}

// IsZero reports whether the handle is the uninitialized placeholder.
func (h Handle) IsZero() bool {
	return len(h.data) == 0
}

// Equal compares handle identity (the reference, not the plaintext).
func (h Handle) Equal(other Handle) bool {
	return bytes.Equal(h.data, other.data)
}

// String renders a short prefix for logs. Handles are opaque, but operators
// still need to correlate them across log lines.
func (h Handle) String() string {
	if h.IsZero() {
		return "handle(zero)"
	}
	s := hex.EncodeToString(h.data)
	if len(s) > 12 {
		s = s[:12]
	}
	return "handle(" + s + ")"
}
