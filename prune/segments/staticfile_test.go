package segments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/erigon-archive/prune"
	"github.com/erigontech/erigon-archive/staticfile"
	"github.com/erigontech/erigon-archive/types"
)

func writeHeaderPartitions(t *testing.T, p *staticfile.Provider, blocksPerSegment uint64, through uint64) {
	t.Helper()
	rng := staticfile.FindFixedRange(through, blocksPerSegment)
	w, err := p.GetWriter(staticfile.Headers, through)
	require.NoError(t, err)
	for n := rng.From; n <= through; n++ {
		require.NoError(t, w.AppendHeader(types.Header{Number: n}, nil, types.Hash{}))
	}
	require.NoError(t, p.Commit(w))
}

func TestStaticFileSegmentPrunesWholePartitionsBelowTarget(t *testing.T) {
	p, err := staticfile.NewProvider(t.TempDir(), 10)
	require.NoError(t, err)
	writeHeaderPartitions(t, p, 10, 5)  // partition 0-9
	writeHeaderPartitions(t, p, 10, 15) // partition 10-19

	seg := NewHeaders(prune.Full(), p)
	assert.Equal(t, prune.PurposeHeaders, seg.ID().Purpose)

	out, err := seg.Prune(prune.Input{
		PruneTargetBlock: 9, // target 9 means "keep above 9", so PruneBelow(10) deletes partition 0-9
		Limiter:          prune.NewLimiter(nil, nil),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.PrunedCount)
	assert.True(t, out.Progress.Finished)
	require.NotNil(t, out.Checkpoint)
	assert.Equal(t, uint64(9), *out.Checkpoint.BlockNumber)

	jar := staticfile.NewJar(p, nil, nil, nil, nil)
	_, _, ok, _ := jar.HeaderByNumber(5)
	assert.False(t, ok)
	_, _, ok, _ = jar.HeaderByNumber(15)
	assert.True(t, ok)
}

func TestStaticFileSegmentRespectsDeleteLimit(t *testing.T) {
	p, err := staticfile.NewProvider(t.TempDir(), 10)
	require.NoError(t, err)
	writeHeaderPartitions(t, p, 10, 5)
	writeHeaderPartitions(t, p, 10, 15)
	writeHeaderPartitions(t, p, 10, 25)

	assert.Equal(t, prune.PurposeTransactions, NewTransactions(prune.Full(), p).ID().Purpose)

	limit := 1
	headersSeg := NewHeaders(prune.Full(), p)
	out, err := headersSeg.Prune(prune.Input{
		PruneTargetBlock: 29,
		Limiter:          prune.NewLimiter(&limit, nil),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.PrunedCount)
	assert.False(t, out.Progress.Finished)
	assert.NotEmpty(t, out.Progress.MoreDataHint)
}

func TestStaticFileSegmentNilCheckpointWhenNothingDeleted(t *testing.T) {
	p, err := staticfile.NewProvider(t.TempDir(), 10)
	require.NoError(t, err)
	writeHeaderPartitions(t, p, 10, 5)

	seg := NewHeaders(prune.Full(), p)
	out, err := seg.Prune(prune.Input{PruneTargetBlock: 0, Limiter: prune.NewLimiter(nil, nil)})
	require.NoError(t, err)
	assert.Equal(t, 0, out.PrunedCount)
	assert.Nil(t, out.Checkpoint)
}
