package staticfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part.conf")
	d := descriptor{
		Kind:        Transactions,
		Range:       FixedRange{From: 0, To: 10},
		Count:       7,
		HighestBase: 0,
		Codec:       "zstd",
		BlockRanges: []blockTxRange{{Block: 0, Start: 0, End: 3}, {Block: 1, Start: 3, End: 7}},
	}

	require.NoError(t, writeDescriptor(path, d))

	got, err := readDescriptor(path)
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestDescriptorOmitsEmptyBlockRanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part.conf")
	d := descriptor{Kind: Headers, Range: FixedRange{From: 0, To: 10}, Count: 5, Codec: "zstd"}
	require.NoError(t, writeDescriptor(path, d))

	got, err := readDescriptor(path)
	require.NoError(t, err)
	assert.Nil(t, got.BlockRanges)
}

func TestReadDescriptorMissingFile(t *testing.T) {
	_, err := readDescriptor(filepath.Join(t.TempDir(), "absent.conf"))
	assert.Error(t, err)
}
