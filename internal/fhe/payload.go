package fhe

import "encoding/binary"

// Callback payloads are verified as raw bytes against the gateway proof, so
// both sides need one canonical encoding. Handles are length-prefixed and
// concatenated; plaintext decryption results are fixed-width big endian.

// EncodeResultPayload canonically encodes a result handle vector for proof
// verification.
func EncodeResultPayload(handles ...Handle) []byte {
	size := 0
	for _, h := range handles {
		size += 4 + len(h.Bytes())
	}
	out := make([]byte, 0, size)
	for _, h := range handles {
		b := h.Bytes()
		out = binary.BigEndian.AppendUint32(out, uint32(len(b)))
		out = append(out, b...)
	}
	return out
}

// EncodePlaintextPayload canonically encodes a decrypted value for proof
// verification.
func EncodePlaintextPayload(value uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, value)
}
