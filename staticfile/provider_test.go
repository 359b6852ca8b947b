package staticfile

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/erigon-archive/types"
)

const testBlocksPerSegment = 10

// writeHeadersThrough commits a Headers partition covering blockNum,
// filling every block from the partition's base up to and including
// blockNum (AppendHeader requires contiguous, in-order writes).
func writeHeadersThrough(t *testing.T, p *Provider, blockNum types.BlockNumber) map[types.BlockNumber]types.Hash {
	t.Helper()
	rng := FindFixedRange(blockNum, testBlocksPerSegment)
	w, err := p.GetWriter(Headers, blockNum)
	require.NoError(t, err)
	hashes := make(map[types.BlockNumber]types.Hash, blockNum-rng.From+1)
	for n := rng.From; n <= blockNum; n++ {
		hash := types.Hash{byte(n + 1)}
		require.NoError(t, w.AppendHeader(types.Header{Number: n, Payload: []byte("hdr")}, uint256.NewInt(n), hash))
		hashes[n] = hash
	}
	require.NoError(t, p.Commit(w))
	return hashes
}

func TestProviderWriteCommitReadRoundTrip(t *testing.T) {
	p, err := NewProvider(t.TempDir(), testBlocksPerSegment)
	require.NoError(t, err)

	hashes := writeHeadersThrough(t, p, 3)

	jar := NewJar(p, nil, nil, nil, nil)
	h, _, ok, err := jar.HeaderByNumber(3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, hashes[3], h.Hash)

	_, _, ok, err = jar.HeaderByNumber(4)
	require.NoError(t, err)
	assert.False(t, ok, "unwritten block must report absent, not an error")
}

func TestProviderHeaderAppendRejectsNonContiguousBlock(t *testing.T) {
	p, err := NewProvider(t.TempDir(), testBlocksPerSegment)
	require.NoError(t, err)
	w, err := p.GetWriter(Headers, 0)
	require.NoError(t, err)
	require.NoError(t, w.AppendHeader(types.Header{Number: 0}, nil, types.Hash{}))
	err = w.AppendHeader(types.Header{Number: 2}, nil, types.Hash{}) // skips block 1
	assert.Error(t, err)
}

func TestProviderHighestBlockAcrossPartitions(t *testing.T) {
	p, err := NewProvider(t.TempDir(), testBlocksPerSegment)
	require.NoError(t, err)

	writeHeadersThrough(t, p, 5)
	writeHeadersThrough(t, p, 13) // second partition (10-19)

	hi, ok := p.HighestBlock(Headers)
	require.True(t, ok)
	assert.Equal(t, types.BlockNumber(13), hi)
}

func TestProviderTransactionsAppendAndTruncate(t *testing.T) {
	dir := t.TempDir()
	p, err := NewProvider(dir, testBlocksPerSegment)
	require.NoError(t, err)

	w, err := p.GetWriter(Transactions, 0)
	require.NoError(t, err)
	for i := uint64(0); i < 5; i++ {
		require.NoError(t, w.AppendTransaction(i, types.Transaction{Payload: []byte{byte(i)}}))
	}
	require.NoError(t, w.IncrementBlock(Transactions, 0))
	require.NoError(t, p.Commit(w))

	jar := NewJar(nil, p, nil, nil, nil)
	start, end, ok := jar.BlockTxRange(0)
	require.True(t, ok)
	assert.Equal(t, types.TxNumber(0), start)
	assert.Equal(t, types.TxNumber(5), end)

	tx, ok, err := jar.TransactionByNumber(4)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{4}, tx.Payload)

	// Truncate above tx 2 (keep txs 0,1,2).
	require.NoError(t, p.TruncateTxsAbove(Transactions, 2))
	_, ok, err = jar.TransactionByNumber(3)
	require.NoError(t, err)
	assert.False(t, ok)
	tx, ok, err = jar.TransactionByNumber(2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{2}, tx.Payload)
}

func TestProviderReceiptHoleForPrunedPosition(t *testing.T) {
	p, err := NewProvider(t.TempDir(), testBlocksPerSegment)
	require.NoError(t, err)

	w, err := p.GetWriter(Receipts, 0)
	require.NoError(t, err)
	require.NoError(t, w.AppendReceipt(0, &types.Receipt{Payload: []byte("r0")}))
	require.NoError(t, w.AppendReceipt(1, nil)) // pruned-at-source hole
	require.NoError(t, w.AppendReceipt(2, &types.Receipt{Payload: []byte("r2")}))
	require.NoError(t, w.IncrementBlock(Receipts, 0))
	require.NoError(t, p.Commit(w))

	jar := NewJar(nil, nil, p, nil, nil)
	r0, present, err := jar.ReceiptByTxNumber(0)
	require.NoError(t, err)
	require.True(t, present)
	assert.Equal(t, []byte("r0"), r0.Payload)

	r1, present, err := jar.ReceiptByTxNumber(1)
	require.NoError(t, err)
	assert.True(t, present, "hole is present-in-partition, just nil")
	assert.Nil(t, r1)

	receipts, err := jar.ReceiptsByBlock(0, 3)
	require.NoError(t, err)
	require.Len(t, receipts, 3)
	assert.NotNil(t, receipts[0])
	assert.Nil(t, receipts[1])
	assert.NotNil(t, receipts[2])
}

func TestProviderPruneBelowDeletesWholePartitionsOldestFirst(t *testing.T) {
	p, err := NewProvider(t.TempDir(), testBlocksPerSegment)
	require.NoError(t, err)

	writeHeadersThrough(t, p, 0)  // partition 0-9
	writeHeadersThrough(t, p, 15) // partition 10-19
	writeHeadersThrough(t, p, 25) // partition 20-29

	deleted, moreData, err := p.PruneBelow(Headers, 20, -1)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted) // partitions 0-9 and 10-19 lie entirely below 20
	assert.False(t, moreData)

	jar := NewJar(p, nil, nil, nil, nil)
	_, _, ok, _ := jar.HeaderByNumber(0)
	assert.False(t, ok)
	_, _, ok, _ = jar.HeaderByNumber(15)
	assert.False(t, ok)
	_, _, ok, _ = jar.HeaderByNumber(25)
	assert.True(t, ok, "partition at/above cutoff survives")
}

func TestProviderPruneBelowRespectsLimit(t *testing.T) {
	p, err := NewProvider(t.TempDir(), testBlocksPerSegment)
	require.NoError(t, err)

	writeHeadersThrough(t, p, 0)
	writeHeadersThrough(t, p, 15)
	writeHeadersThrough(t, p, 25)

	deleted, moreData, err := p.PruneBelow(Headers, 30, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.True(t, moreData)
}

func TestProviderPruneBelowIdempotent(t *testing.T) {
	p, err := NewProvider(t.TempDir(), testBlocksPerSegment)
	require.NoError(t, err)
	writeHeadersThrough(t, p, 0)

	_, _, err = p.PruneBelow(Headers, 10, -1)
	require.NoError(t, err)
	deleted, moreData, err := p.PruneBelow(Headers, 10, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
	assert.False(t, moreData)
}

func TestProviderGetWriterReturnsSameWriterUntilCommit(t *testing.T) {
	p, err := NewProvider(t.TempDir(), testBlocksPerSegment)
	require.NoError(t, err)
	w1, err := p.GetWriter(Headers, 3)
	require.NoError(t, err)
	w2, err := p.GetWriter(Headers, 7) // same partition, different block in range
	require.NoError(t, err)
	assert.Same(t, w1, w2)
}

func TestProviderReopenLoadsSealedPartitions(t *testing.T) {
	dir := t.TempDir()
	p1, err := NewProvider(dir, testBlocksPerSegment)
	require.NoError(t, err)
	writeHeadersThrough(t, p1, 4)

	p2, err := NewProvider(dir, testBlocksPerSegment)
	require.NoError(t, err)
	hi, ok := p2.HighestBlock(Headers)
	require.True(t, ok)
	assert.Equal(t, types.BlockNumber(4), hi)
}
