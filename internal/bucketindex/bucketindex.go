// Package bucketindex implements the inverted posting-list index that maps
// each (channel, sign, coefficient magnitude) triple to the set of internal
// image indices carrying that coefficient.
//
// The index performs no locking of its own: callers hold the core's single
// readers-writer gate for the duration of any Add/Remove/Bucket sequence.
package bucketindex

import "github.com/tomas/iqdb/internal/haar"

// Index is the fixed-shape [channel][sign][magnitude] posting-list table.
// The three outer dimensions are plain arrays, not maps, so an empty
// database's bucket heads cost a constant ~2.3 MiB (98304 slice headers)
// and Bucket is a pure array lookup.
type Index struct {
	buckets [haar.Channels][haar.Signs][haar.BucketDim][]uint32
}

// New returns an empty index. The zero value is also usable directly.
func New() *Index {
	return &Index{}
}

func signOf(v int16) int {
	if v < 0 {
		return 1
	}
	return 0
}

func magOf(v int16) int {
	if v < 0 {
		return int(-v)
	}
	return int(v)
}

// Add places k into the bucket for every coefficient of sig, restricted to
// the grayscale fast path when sig carries no chrominance.
func (idx *Index) Add(sig haar.Signature, k uint32) {
	numColors := sig.NumColors()
	for c := 0; c < numColors; c++ {
		for i := 0; i < haar.Coefs; i++ {
			v := sig.Sig[c][i]
			s, m := signOf(v), magOf(v)
			idx.buckets[c][s][m] = append(idx.buckets[c][s][m], k)
		}
	}
}

// Remove erases k from every bucket sig placed it in. Order within a
// bucket is not preserved.
func (idx *Index) Remove(sig haar.Signature, k uint32) {
	numColors := sig.NumColors()
	for c := 0; c < numColors; c++ {
		for i := 0; i < haar.Coefs; i++ {
			v := sig.Sig[c][i]
			s, m := signOf(v), magOf(v)
			removeFrom(&idx.buckets[c][s][m], k)
		}
	}
}

// removeFrom deletes the first occurrence of k, swapping in the last
// element to avoid an O(n) shift. Removal is rare, so a linear scan for
// the occurrence itself is acceptable.
func removeFrom(bucket *[]uint32, k uint32) {
	b := *bucket
	for i, v := range b {
		if v == k {
			b[i] = b[len(b)-1]
			*bucket = b[:len(b)-1]
			return
		}
	}
}

// Bucket returns the posting list for channel c and signed coefficient v.
// An unknown v yields an empty (nil) slice.
func (idx *Index) Bucket(c int, v int16) []uint32 {
	s, m := signOf(v), magOf(v)
	return idx.buckets[c][s][m]
}
