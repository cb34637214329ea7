package fhe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeResultPayload(t *testing.T) {
	t.Run("length prefixes keep handle boundaries distinct", func(t *testing.T) {
		// Without prefixes these two vectors would concatenate to the same
		// bytes and a forged callback could shuffle boundaries.
		a := EncodeResultPayload(NewHandle([]byte{0xAA, 0xBB}), NewHandle([]byte{0xCC}))
		b := EncodeResultPayload(NewHandle([]byte{0xAA}), NewHandle([]byte{0xBB, 0xCC}))
		assert.NotEqual(t, a, b)
	})

	t.Run("zero handles encode as empty slots", func(t *testing.T) {
		payload := EncodeResultPayload(Zero())
		assert.Equal(t, []byte{0, 0, 0, 0}, payload)
	})

	t.Run("deterministic for equal inputs", func(t *testing.T) {
		h := NewHandle([]byte{1, 2, 3})
		assert.Equal(t, EncodeResultPayload(h, h), EncodeResultPayload(h, h))
	})
}

func TestEncodePlaintextPayload(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0}, EncodePlaintextPayload(0))
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 0}, EncodePlaintextPayload(256))
	assert.NotEqual(t, EncodePlaintextPayload(1), EncodePlaintextPayload(1<<32))
}

func TestHandleImmutability(t *testing.T) {
	raw := []byte{9, 8, 7}
	h := NewHandle(raw)
	raw[0] = 0
	assert.Equal(t, []byte{9, 8, 7}, h.Bytes())

	out := h.Bytes()
	out[1] = 0
	assert.Equal(t, []byte{9, 8, 7}, h.Bytes())
}
