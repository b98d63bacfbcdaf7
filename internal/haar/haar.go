// Package haar builds the perceptual signature used by the retrieval core:
// a Haar wavelet decomposition of an image's YIQ planes, reduced to the
// per-channel average luminance plus the 40 largest-magnitude AC
// coefficients.
package haar

import "math"

// Fixed shape of the signature. These are process-wide constants, computed
// once and never mutated (spec invariant: bin matrix, weight table and
// bucket shape are established before any query).
const (
	Pixels    = 128
	Coefs     = 40
	Channels  = 3
	Signs     = 2
	BucketDim = Pixels * Pixels
)

// Channel indices, in the order the signature stores them.
const (
	ChannelY = iota
	ChannelI
	ChannelQ
)

// WeightTable is the 6x3 scoring weight table, band-major, channel-minor.
// Band 0 is the DC weight (used only for the luminance contribution);
// bands 1-5 are AC weights consumed by the query engine's coefficient
// match step. It is passed by value: callers that need a retuned table
// build one from DefaultWeights and thread it through, rather than
// mutating shared state.
type WeightTable [6][3]float64

// DefaultWeights is the scoring weight table baked into the retrieval
// core. It is read-only, construct-at-startup data: nothing in this
// package ever mutates it, and callers that need an override copy it by
// value into their own WeightTable instead.
var DefaultWeights = WeightTable{
	{5.00, 19.21, 34.37},
	{0.83, 1.26, 0.36},
	{1.01, 0.44, 0.45},
	{0.52, 0.53, 0.14},
	{0.47, 0.28, 0.18},
	{0.30, 0.14, 0.27},
}

// Bin classifies a raster position into one of six frequency bands.
// Equivalent to a 128x128 matrix B[i][j] = min(max(i,j), 5), computed
// lazily from row/column rather than materialized, since it's a pure
// function of i and j.
func Bin(i, j int) int {
	m := i
	if j > m {
		m = j
	}
	if m > 5 {
		m = 5
	}
	return m
}

// BandOf returns the frequency band for a raster index in 0..BucketDim-1.
func BandOf(raster int) int {
	return Bin(raster/Pixels, raster%Pixels)
}

// grayscaleThreshold is the |avglf[1]|+|avglf[2]| cutoff below which a
// signature is treated as chrominance-free.
const grayscaleThreshold = 0.006

// Signature is the immutable perceptual fingerprint of one image.
type Signature struct {
	AvgLF [Channels]float64
	Sig   [Channels][Coefs]int16
}

// IsGrayscale reports whether the I/Q channels carry negligible chrominance.
func (s Signature) IsGrayscale() bool {
	return math.Abs(s.AvgLF[ChannelI])+math.Abs(s.AvgLF[ChannelQ]) < grayscaleThreshold
}

// NumColors returns 1 for a grayscale signature, 3 otherwise. This is the
// only place the grayscale fast path is decided; index and query code
// derive their channel range from it.
func (s Signature) NumColors() int {
	if s.IsGrayscale() {
		return 1
	}
	return Channels
}

// FromRGB builds a signature from three row-major 128x128 byte planes.
func FromRGB(r, g, b []byte) Signature {
	var y, i, q [BucketDim]float64
	rgbToYIQ(r, g, b, y[:], i[:], q[:])
	return fromPlanes(y[:], i[:], q[:])
}

// rgbToYIQ converts three RGB byte planes into three float64 YIQ planes in
// a single pass, per the standard NTSC matrix.
func rgbToYIQ(r, g, b []byte, y, i, q []float64) {
	for idx := range r {
		rf, gf, bf := float64(r[idx]), float64(g[idx]), float64(b[idx])
		y[idx] = 0.299*rf + 0.587*gf + 0.114*bf
		i[idx] = 0.596*rf - 0.274*gf - 0.322*bf
		q[idx] = 0.211*rf - 0.523*gf + 0.312*bf
	}
}

// fromPlanes runs the Haar decomposition and coefficient selection on
// already-converted YIQ planes.
func fromPlanes(y, i, q []float64) Signature {
	var sig Signature
	planes := [Channels][]float64{y, i, q}
	for c := 0; c < Channels; c++ {
		work := make([]float64, BucketDim)
		copy(work, planes[c])
		haarTransform2D(work)
		sig.AvgLF[c] = work[0]
		sig.Sig[c] = topCoefficients(work)
	}
	return sig
}

// haarTransform2D runs an in-place, separable 2D Haar pyramid decomposition
// on a Pixels x Pixels row-major plane, halving the working extent each
// pass until the top-left corner holds the single DC average.
func haarTransform2D(data []float64) {
	tmp := make([]float64, Pixels)
	col := make([]float64, Pixels)

	for level := Pixels; level > 1; level /= 2 {
		half := level / 2

		for r := 0; r < level; r++ {
			row := data[r*Pixels : r*Pixels+level]
			haarStep(row, tmp[:level], half)
		}

		for c := 0; c < level; c++ {
			for r := 0; r < level; r++ {
				col[r] = data[r*Pixels+c]
			}
			haarStep(col[:level], tmp[:level], half)
			for r := 0; r < level; r++ {
				data[r*Pixels+c] = col[r]
			}
		}
	}
}

// haarStep applies one level of the pairwise average/difference Haar
// transform to x, writing averages into the low half and differences into
// the high half via the scratch buffer out.
func haarStep(x, out []float64, half int) {
	for i := 0; i < half; i++ {
		a, b := x[2*i], x[2*i+1]
		out[i] = (a + b) / 2
		out[half+i] = (a - b) / 2
	}
	copy(x, out[:2*half])
}

// coefCandidate tracks one AC coefficient during top-K selection.
type coefCandidate struct {
	raster int
	value  float64
}

// topCoefficients picks the Coefs AC positions of largest magnitude
// (excluding the DC term at raster 0), breaking ties toward the lower
// raster index, and returns them sorted ascending as signed positions.
func topCoefficients(plane []float64) [Coefs]int16 {
	heap := make([]coefCandidate, 0, Coefs)

	for raster := 1; raster < BucketDim; raster++ {
		v := plane[raster]
		mag := math.Abs(v)

		if len(heap) < Coefs {
			heap = append(heap, coefCandidate{raster, v})
			if len(heap) == Coefs {
				sortCandidatesByMag(heap)
			}
			continue
		}
		if mag > math.Abs(heap[0].value) {
			heap[0] = coefCandidate{raster, v}
			sortCandidatesByMag(heap)
		}
	}
	sortCandidatesByMag(heap)

	var out [Coefs]int16
	for idx, cand := range heap {
		pos := int16(cand.raster)
		if cand.value < 0 {
			pos = -pos
		}
		out[idx] = pos
	}
	sortSignedAscending(out[:])
	return out
}

// sortCandidatesByMag keeps candidates ascending by magnitude so index 0 is
// always the smallest-magnitude (and hence next to evict) entry. Among equal
// magnitudes the higher raster index sorts first, so it is evicted before
// a lower one.
func sortCandidatesByMag(c []coefCandidate) {
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && candidateAfter(c[j-1], c[j]); j-- {
			c[j-1], c[j] = c[j], c[j-1]
		}
	}
}

// candidateAfter reports whether a belongs after b in eviction order.
func candidateAfter(a, b coefCandidate) bool {
	ma, mb := math.Abs(a.value), math.Abs(b.value)
	if ma != mb {
		return ma > mb
	}
	return a.raster < b.raster
}

// sortSignedAscending sorts the 40 signed positions ascending, matching the
// per-channel sort invariant consumed by diagnostic printers and equality
// comparisons. Scoring itself does not depend on this order.
func sortSignedAscending(s []int16) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
