package haar

import (
	"encoding/binary"
	"fmt"
)

// BlobSize is the raw byte length of the signature blob stored alongside
// each persisted row: 2 bytes * 3 channels * 40 coefficients.
const BlobSize = 2 * Channels * Coefs

// EncodeBlob serializes the coefficient positions as little-endian int16,
// channel-major, position-within-channel-minor. The store treats this as
// an opaque byte string; it never interprets it.
func (s Signature) EncodeBlob() []byte {
	blob := make([]byte, BlobSize)
	off := 0
	for c := 0; c < Channels; c++ {
		for i := 0; i < Coefs; i++ {
			binary.LittleEndian.PutUint16(blob[off:], uint16(s.Sig[c][i]))
			off += 2
		}
	}
	return blob
}

// DecodeBlob reconstructs a Signature from its stored average-luminance
// triple and raw coefficient blob.
func DecodeBlob(avglf [Channels]float64, blob []byte) (Signature, error) {
	if len(blob) != BlobSize {
		return Signature{}, fmt.Errorf("haar: signature blob has %d bytes, want %d", len(blob), BlobSize)
	}
	sig := Signature{AvgLF: avglf}
	off := 0
	for c := 0; c < Channels; c++ {
		for i := 0; i < Coefs; i++ {
			sig.Sig[c][i] = int16(binary.LittleEndian.Uint16(blob[off:]))
			off += 2
		}
	}
	return sig, nil
}
