package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomas/iqdb/internal/bucketindex"
	"github.com/tomas/iqdb/internal/haar"
	"github.com/tomas/iqdb/internal/imagetable"
)

func checkerboardSig(seed byte) haar.Signature {
	plane := make([]byte, haar.BucketDim)
	for y := 0; y < haar.Pixels; y++ {
		for x := 0; x < haar.Pixels; x++ {
			if (x+y+int(seed))%2 == 0 {
				plane[y*haar.Pixels+x] = 255
			}
		}
	}
	return haar.FromRGB(plane, plane, plane)
}

func buildIndex(t *testing.T, sigs map[uint32]haar.Signature) (*imagetable.Table, *bucketindex.Index) {
	t.Helper()
	table := imagetable.New()
	index := bucketindex.New()
	for k, sig := range sigs {
		table.Set(k, imagetable.Record{PostID: int64(k) + 1000, AvgL: sig.AvgLF})
		index.Add(sig, k)
	}
	return table, index
}

func TestRun_SelfMatchScoresHighest(t *testing.T) {
	target := checkerboardSig(0)
	other := checkerboardSig(1)

	table, index := buildIndex(t, map[uint32]haar.Signature{
		0: target,
		1: other,
	})

	results := Run(target, 2, table, index, haar.DefaultWeights)
	require.Len(t, results, 2)
	assert.Equal(t, int64(1000), results[0].PostID)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestRun_BestFirstOrdering(t *testing.T) {
	target := checkerboardSig(0)

	sigs := map[uint32]haar.Signature{
		0: target,
		1: checkerboardSig(1),
		2: checkerboardSig(0), // identical to target
	}
	table, index := buildIndex(t, sigs)

	results := Run(target, 3, table, index, haar.DefaultWeights)
	require.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestRun_SkipsTombstonedSlots(t *testing.T) {
	target := checkerboardSig(0)
	table, index := buildIndex(t, map[uint32]haar.Signature{
		0: target,
		1: checkerboardSig(1),
	})
	table.Tombstone(0)

	results := Run(target, 5, table, index, haar.DefaultWeights)
	for _, r := range results {
		assert.NotEqual(t, int64(1000), r.PostID)
	}
}

func TestRun_EmptyTableReturnsNil(t *testing.T) {
	table := imagetable.New()
	index := bucketindex.New()

	results := Run(checkerboardSig(0), 5, table, index, haar.DefaultWeights)
	assert.Nil(t, results)
}

func TestRun_ZeroLimitReturnsNil(t *testing.T) {
	table, index := buildIndex(t, map[uint32]haar.Signature{0: checkerboardSig(0)})
	results := Run(checkerboardSig(0), 0, table, index, haar.DefaultWeights)
	assert.Nil(t, results)
}

func TestRun_LimitCapsResultCount(t *testing.T) {
	sigs := map[uint32]haar.Signature{}
	for i := uint32(0); i < 5; i++ {
		sigs[i] = checkerboardSig(byte(i))
	}
	table, index := buildIndex(t, sigs)

	results := Run(checkerboardSig(0), 2, table, index, haar.DefaultWeights)
	assert.Len(t, results, 2)
}
