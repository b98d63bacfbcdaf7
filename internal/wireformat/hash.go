// Package wireformat implements the hex signature encoding used on the
// HTTP surface: three 16-hex-char little-endian doubles (the average
// luminance triple) followed by 3*40 4-hex-char signed 16-bit coefficient
// positions, channel-major.
package wireformat

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/tomas/iqdb/internal/haar"
)

const (
	lumHexLen  = 16 // one float64, little-endian, hex-encoded
	coefHexLen = 4  // one int16, little-endian, hex-encoded
	// HashLen is the total length of an encoded hash string.
	HashLen = haar.Channels*lumHexLen + haar.Channels*haar.Coefs*coefHexLen
)

// EncodeHash renders a signature as the fixed-width hex string described in
// the HTTP surface: avglf[0..2] then sig[0..2][0..39].
func EncodeHash(sig haar.Signature) string {
	var b strings.Builder
	b.Grow(HashLen)

	var buf8 [8]byte
	for c := 0; c < haar.Channels; c++ {
		binary.LittleEndian.PutUint64(buf8[:], math.Float64bits(sig.AvgLF[c]))
		b.WriteString(hex.EncodeToString(buf8[:]))
	}

	var buf2 [2]byte
	for c := 0; c < haar.Channels; c++ {
		for i := 0; i < haar.Coefs; i++ {
			binary.LittleEndian.PutUint16(buf2[:], uint16(sig.Sig[c][i]))
			b.WriteString(hex.EncodeToString(buf2[:]))
		}
	}

	return b.String()
}

// DecodeHash parses a hex hash string of exactly HashLen characters back
// into a signature. A malformed hash is a ParamError at the HTTP boundary.
func DecodeHash(s string) (haar.Signature, error) {
	if len(s) != HashLen {
		return haar.Signature{}, fmt.Errorf("wireformat: hash has length %d, want %d", len(s), HashLen)
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return haar.Signature{}, fmt.Errorf("wireformat: invalid hex in hash: %w", err)
	}

	var sig haar.Signature
	off := 0
	for c := 0; c < haar.Channels; c++ {
		bits := binary.LittleEndian.Uint64(raw[off:])
		sig.AvgLF[c] = math.Float64frombits(bits)
		off += 8
	}
	for c := 0; c < haar.Channels; c++ {
		for i := 0; i < haar.Coefs; i++ {
			sig.Sig[c][i] = int16(binary.LittleEndian.Uint16(raw[off:]))
			off += 2
		}
	}

	return sig, nil
}
