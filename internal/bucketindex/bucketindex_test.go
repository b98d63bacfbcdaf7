package bucketindex

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tomas/iqdb/internal/haar"
)

func sigWithCoef(c int, pos int16) haar.Signature {
	var sig haar.Signature
	sig.AvgLF[haar.ChannelI] = 1 // force color path
	sig.AvgLF[haar.ChannelQ] = 1
	sig.Sig[c][0] = pos
	return sig
}

func TestAddAndBucket(t *testing.T) {
	idx := New()
	sig := sigWithCoef(haar.ChannelY, 42)

	idx.Add(sig, 7)

	assert.Equal(t, []uint32{7}, idx.Bucket(haar.ChannelY, 42))
	assert.Empty(t, idx.Bucket(haar.ChannelY, -42))
}

func TestRemove_ErasesFromBucket(t *testing.T) {
	idx := New()
	sig := sigWithCoef(haar.ChannelY, 42)

	idx.Add(sig, 7)
	idx.Add(sig, 8)
	idx.Remove(sig, 7)

	assert.ElementsMatch(t, []uint32{8}, idx.Bucket(haar.ChannelY, 42))
}

func TestAdd_GrayscaleSkipsChromaChannels(t *testing.T) {
	idx := New()
	var sig haar.Signature // AvgLF all zero: grayscale
	sig.Sig[haar.ChannelI][0] = 5
	sig.Sig[haar.ChannelQ][0] = 5

	idx.Add(sig, 1)

	assert.Empty(t, idx.Bucket(haar.ChannelI, 5))
	assert.Empty(t, idx.Bucket(haar.ChannelQ, 5))
}

func TestSignOf_And_MagOf(t *testing.T) {
	assert.Equal(t, 0, signOf(5))
	assert.Equal(t, 1, signOf(-5))
	assert.Equal(t, 5, magOf(5))
	assert.Equal(t, 5, magOf(-5))
}
