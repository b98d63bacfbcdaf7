// Package query implements the ranked similarity search: a luminance seed
// over every image, a coefficient-match pass over the inverted index, and a
// bounded top-K selection.
package query

import (
	"container/heap"

	"github.com/tomas/iqdb/internal/bucketindex"
	"github.com/tomas/iqdb/internal/haar"
	"github.com/tomas/iqdb/internal/imagetable"
)

// Result is one ranked match: an external post id and its similarity
// score, where larger is more similar (best-first ordering).
type Result struct {
	PostID int64
	Score  float64
}

// Run scores every live image in table against sig and returns the K best
// matches, best-first, weighting bands per weights. Tombstoned slots are
// scored (cheaply, as part of the linear luminance pass) but never make it
// into the returned list.
func Run(sig haar.Signature, k int, table *imagetable.Table, index *bucketindex.Index, weights haar.WeightTable) []Result {
	n := table.Len()
	if n == 0 || k <= 0 {
		return nil
	}

	numColors := sig.NumColors()
	scores := make([]float64, n)

	// Luminance seed: every slot, including tombstones, gets a base score.
	for idx := 0; idx < n; idx++ {
		rec, _ := table.Get(uint32(idx))
		var s float64
		for c := 0; c < numColors; c++ {
			s += weights[0][c] * absf(rec.AvgL[c]-sig.AvgLF[c])
		}
		scores[idx] = s
	}

	// Coefficient match: every hit in a query coefficient's bucket lowers
	// that image's score by the band weight; smaller scores are better.
	scale := 0.0
	for c := 0; c < numColors; c++ {
		for i := 0; i < haar.Coefs; i++ {
			v := sig.Sig[c][i]
			mag := int(v)
			if mag < 0 {
				mag = -mag
			}
			band := haar.BandOf(mag)
			w := weights[band][c]

			scale -= w
			for _, hit := range index.Bucket(c, v) {
				scores[hit] -= w
			}
		}
	}

	results := topK(scores, table, k)

	if scale != 0 {
		scale = 1 / scale
	}
	for i := range results {
		results[i].Score *= 100 * scale
	}
	return results
}

// heapItem is one candidate held in the bounded max-heap during selection.
type heapItem struct {
	score float64
	idx   uint32
}

// scoreHeap is a max-heap on raw score: the root is always the *worst*
// (largest) score currently kept, so a new candidate only needs comparing
// against the root to know whether it displaces anything.
type scoreHeap []heapItem

func (h scoreHeap) Len() int            { return len(h) }
func (h scoreHeap) Less(i, j int) bool  { return h[i].score > h[j].score }
func (h scoreHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *scoreHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *scoreHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// topK selects the k live slots with the smallest raw scores and returns
// them as Results carrying the raw score (still unscaled), ordered
// best-first.
func topK(scores []float64, table *imagetable.Table, k int) []Result {
	h := &scoreHeap{}

	for idx, s := range scores {
		rec, _ := table.Get(uint32(idx))
		if rec.Tombstoned() {
			continue
		}
		if h.Len() < k {
			heap.Push(h, heapItem{score: s, idx: uint32(idx)})
			continue
		}
		if s < (*h)[0].score {
			(*h)[0] = heapItem{score: s, idx: uint32(idx)}
			heap.Fix(h, 0)
		}
	}

	results := make([]Result, h.Len())
	for i := len(results) - 1; i >= 0; i-- {
		item := heap.Pop(h).(heapItem)
		rec, _ := table.Get(item.idx)
		results[i] = Result{PostID: rec.PostID, Score: item.score}
	}
	return results
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
